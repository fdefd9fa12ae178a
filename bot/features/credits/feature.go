package credits

import (
	"teto/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	ledger    interfaces.CreditLedger
	refillCap int64
}

func New(ledger interfaces.CreditLedger, refillCap int64) *Feature {
	return &Feature{
		ledger:    ledger,
		refillCap: refillCap,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleCredits(s, i)
}
