package cmd

import (
	"context"
	"fmt"
	"time"

	"teto/api"
	"teto/application"
	"teto/bot"
	"teto/config"
	"teto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Run starts the API, the daily reset scheduler and the Discord bot, and
// blocks until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting teto...")

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	stopWorker, err := a.worker.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start daily reset worker: %w", err)
	}
	defer stopWorker()

	server := api.NewServer(api.Deps{
		Ledger:      a.ledger,
		Guilds:      a.guilds,
		Channels:    a.channels,
		Engagement:  a.engagement,
		Recorder:    a.recorder,
		Leaderboard: a.leaderboard,
		Bonus:       a.bonus,
		Reset:       a.worker,
		Dedup:       a.dedup,
		Prompts:     a.prompts,
	}, api.Options{
		Addr:                  cfg.HTTPAddr,
		BotAPIKey:             cfg.BotAPIKey,
		TopggWebAuthToken:     cfg.TopggWebAuthToken,
		PurchaseWebhookSecret: cfg.PurchaseWebhookSecret,
		RateLimitPerSecond:    cfg.RateLimitPerSecond,
		RateLimitBurst:        cfg.RateLimitBurst,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("Initializing Discord bot...")
	var replyChannels interfaces.ChannelService
	if cfg.RegisteredChannelsOnly {
		replyChannels = a.channels
	}
	discordBot, err := bot.New(bot.Config{
		Token:     cfg.DiscordToken,
		GuildID:   cfg.DiscordGuildID,
		RefillCap: cfg.Economy.DailyCreditRefillCap,
	}, bot.Services{
		Ledger:      a.ledger,
		Engagement:  a.engagement,
		Recorder:    a.recorder,
		Leaderboard: a.leaderboard,
		Channels:    replyChannels,
	})
	if err != nil {
		shutdownServer(server)
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.Info("teto is running")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
	}

	log.Info("Shutting down...")

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	shutdownServer(server)

	return runErr
}

// RunDailyReset performs one daily reset outside the scheduler
func RunDailyReset(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.worker.RunOnce(ctx)
	if err != nil {
		if result != nil {
			log.WithFields(application.ResultFields(result)).WithError(err).Warn("Daily reset stopped early")
		}
		return err
	}

	log.WithFields(application.ResultFields(result)).Info("Daily reset finished")
	return nil
}

func shutdownServer(server *api.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP API")
	}
}
