package leaderboard

import (
	"teto/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// Feature answers /leaderboard with a rendered card
type Feature struct {
	service   interfaces.LeaderboardService
	generator *ImageGenerator
}

func New(service interfaces.LeaderboardService, generator *ImageGenerator) *Feature {
	return &Feature{
		service:   service,
		generator: generator,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleLeaderboard(s, i)
}
