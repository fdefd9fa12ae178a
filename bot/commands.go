package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var (
	minLeaderboardLimit = float64(1)
	dmPermission        = false
)

// commandDefinitions lists the slash commands the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "credits",
			Description: "Check how many message credits you have left",
		},
		{
			Name:         "feed",
			Description:  "Feed Teto once a day to raise your intimacy",
			DMPermission: &dmPermission,
		},
		{
			Name:         "leaderboard",
			Description:  "Show this server's intimacy leaderboard",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "How many members to show (default 10)",
					Required:    false,
					MinValue:    &minLeaderboardLimit,
					MaxValue:    100,
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commandDefinitions())
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}
	b.commands = registered
	return nil
}
