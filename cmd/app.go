package cmd

import (
	"context"
	"fmt"

	"teto/application"
	"teto/config"
	"teto/database"
	"teto/domain/interfaces"
	"teto/domain/services"
	"teto/events"
	"teto/infrastructure"
	"teto/metrics"
	"teto/repository"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// app holds every long-lived component built from configuration
type app struct {
	cfg         *config.Config
	db          *database.DB
	redis       *redis.Client
	nats        *infrastructure.NATSClient
	ledger      interfaces.CreditLedger
	guilds      interfaces.GuildService
	channels    interfaces.ChannelService
	engagement  interfaces.EngagementTracker
	recorder    interfaces.MessageRecorder
	leaderboard interfaces.LeaderboardService
	bonus       interfaces.BonusIntake
	worker      *application.DailyResetWorker
	dedup       interfaces.DeliveryDeduplicator
	prompts     interfaces.SystemPromptStore
}

// buildApp connects to the stores and wires the domain services
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db

	// Redis backs optional features; the economy keeps working without it
	var lock interfaces.JobLock
	if cfg.RedisURL != "" {
		client, err := infrastructure.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, webhook dedup, reset lock and system prompt disabled")
		} else {
			a.redis = client
			lock = infrastructure.NewRedisJobLock(client)
			a.dedup = infrastructure.NewRedisDeliveryDeduplicator(client, infrastructure.DefaultDeliveryTTL)
			a.prompts = infrastructure.NewRedisSystemPromptStore(client)
		}
	}

	bus := events.NewBus()
	metrics.RegisterEventHandlers(bus)

	mapper := infrastructure.NewEventSubjectMapper()
	var messagePublisher infrastructure.MessagePublisher
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := natsClient.EnsureStream(infrastructure.DomainEventStream, mapper.GetAllSubjects()); err != nil {
			natsClient.Close()
			a.Close()
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		a.nats = natsClient
		messagePublisher = natsClient
	}
	publisher := infrastructure.NewNATSEventPublisher(messagePublisher, mapper, bus)

	userRepo := repository.NewUserRepository(db)
	guildRepo := repository.NewGuildRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	userGuildRepo := repository.NewUserGuildRepository(db)

	economy := cfg.Economy
	a.ledger = services.NewCreditLedger(userRepo, publisher)
	a.engagement = services.NewEngagementTracker(userGuildRepo, publisher, economy.FeedIntimacyGain)
	a.guilds = services.NewGuildService(guildRepo)
	a.channels = services.NewChannelService(channelRepo, a.guilds)
	a.recorder = services.NewMessageRecorder(a.ledger, a.guilds, a.engagement, economy.MessageCreditCost)
	a.leaderboard = services.NewLeaderboardService(userGuildRepo)
	a.bonus = services.NewBonusIntake(a.ledger, economy)

	resetService := services.NewDailyResetService(userRepo, userGuildRepo, a.ledger, a.engagement, publisher, economy.DailyCreditRefillCap)
	a.worker = application.NewDailyResetWorker(resetService, lock, cfg.DailyResetCron)

	return a, nil
}

// Close releases connections in reverse order of creation
func (a *app) Close() {
	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS connection")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Warn("Error closing Redis connection")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
