// Package bot connects the credit economy to Discord.
package bot

import (
	"fmt"

	"teto/bot/features/credits"
	"teto/bot/features/feed"
	"teto/bot/features/leaderboard"
	"teto/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token     string
	GuildID   string // register commands to one guild when set, globally otherwise
	RefillCap int64
}

// Services are the domain services the bot dispatches to
type Services struct {
	Ledger      interfaces.CreditLedger
	Engagement  interfaces.EngagementTracker
	Recorder    interfaces.MessageRecorder
	Leaderboard interfaces.LeaderboardService
	Channels    interfaces.ChannelService // guild replies are limited to registered channels when set
}

// CommandHandler handles one slash command
type CommandHandler interface {
	HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate)
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	recorder interfaces.MessageRecorder
	channels interfaces.ChannelService
	features map[string]CommandHandler
	commands []*discordgo.ApplicationCommand
}

// New creates the bot, opens the gateway connection and registers slash commands
func New(config Config, services Services) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuilds

	generator, err := leaderboard.NewImageGenerator()
	if err != nil {
		return nil, fmt.Errorf("error creating leaderboard renderer: %w", err)
	}

	bot := &Bot{
		config:   config,
		session:  dg,
		recorder: services.Recorder,
		channels: services.Channels,
		features: map[string]CommandHandler{
			"credits":     credits.New(services.Ledger, config.RefillCap),
			"feed":        feed.New(services.Recorder, services.Engagement),
			"leaderboard": leaderboard.New(services.Leaderboard, generator),
		},
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleMessageCreate)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("user", dg.State.User.Username).Info("Discord bot connected")
	return bot, nil
}

// Close removes guild-scoped commands and closes the gateway connection
func (b *Bot) Close() error {
	if b.config.GuildID != "" {
		for _, cmd := range b.commands {
			if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.config.GuildID, cmd.ID); err != nil {
				log.WithError(err).WithField("command", cmd.Name).Warn("Failed to delete command")
			}
		}
	}
	return b.session.Close()
}

// handleCommands routes slash commands to their feature
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	handler, ok := b.features[name]
	if !ok {
		log.WithField("command", name).Warn("Unknown command")
		return
	}
	handler.HandleCommand(s, i)
}
