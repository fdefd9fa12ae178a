package feed

import (
	"teto/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	recorder   interfaces.MessageRecorder
	engagement interfaces.EngagementTracker
}

func New(recorder interfaces.MessageRecorder, engagement interfaces.EngagementTracker) *Feature {
	return &Feature{
		recorder:   recorder,
		engagement: engagement,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleFeed(s, i)
}
