package interfaces

import (
	"context"
	"time"

	"teto/domain/entities"
	"teto/events"
)

// UserRepository defines data access for users and their credit balance.
// Every credit mutation is a single-row atomic update.
type UserRepository interface {
	// GetByID retrieves a user, returning nil when not found
	GetByID(ctx context.Context, userID int64) (*entities.User, error)

	// Create inserts a user; a duplicate ID yields entities.ErrUniqueViolation
	Create(ctx context.Context, userID int64, role entities.Role, initialCredits int64) (*entities.User, error)

	// GetAll returns every user
	GetAll(ctx context.Context) ([]*entities.User, error)

	// Delete removes a user; relationships cascade
	Delete(ctx context.Context, userID int64) error

	// UpdateRole changes a user's role
	UpdateRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error)

	// DeductCredits subtracts cost only if the balance covers it.
	// Returns *entities.InsufficientCreditsError or entities.ErrUserNotFound otherwise.
	DeductCredits(ctx context.Context, userID int64, cost int64) (*entities.User, error)

	// AddCredits adds amount to the balance, optionally stamping last_voted_at.
	// Returns entities.ErrUserNotFound when the user does not exist.
	AddCredits(ctx context.Context, userID int64, amount int64, votedAt *time.Time) (*entities.User, error)

	// RefillCredits raises the balance to refillCap when it is below it.
	// Reports whether the row was changed.
	RefillCredits(ctx context.Context, userID int64, refillCap int64) (bool, error)

	// FindBelowCredits returns users whose balance is below the threshold
	FindBelowCredits(ctx context.Context, threshold int64) ([]*entities.User, error)
}

// GuildRepository defines data access for guilds
type GuildRepository interface {
	GetByID(ctx context.Context, guildID int64) (*entities.Guild, error)
	Create(ctx context.Context, guildID int64) (*entities.Guild, error)
	GetAll(ctx context.Context) ([]*entities.Guild, error)
	Delete(ctx context.Context, guildID int64) error
}

// ChannelRepository defines data access for registered channels
type ChannelRepository interface {
	// GetByChannelID retrieves a channel, returning nil when not found
	GetByChannelID(ctx context.Context, channelID int64) (*entities.Channel, error)

	// Create registers a channel; a duplicate channel ID yields entities.ErrUniqueViolation
	Create(ctx context.Context, channelID, guildID int64) (*entities.Channel, error)

	GetAll(ctx context.Context) ([]*entities.Channel, error)
	GetByGuildID(ctx context.Context, guildID int64) ([]*entities.Channel, error)

	// Update moves a channel to another guild. Returns entities.ErrChannelNotFound when absent.
	Update(ctx context.Context, channelID, guildID int64) (*entities.Channel, error)

	// Delete removes a channel. Returns entities.ErrChannelNotFound when absent.
	Delete(ctx context.Context, channelID int64) error
}

// UserGuildRepository defines data access for user-guild relationships
type UserGuildRepository interface {
	// Get retrieves a relationship, returning nil when not found
	Get(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error)

	// Create inserts a relationship with zeroed counters; duplicates yield entities.ErrUniqueViolation
	Create(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error)

	// RecordMessage bumps the daily count, applies the intimacy increment (floored at 0)
	// and stamps last_message_at
	RecordMessage(ctx context.Context, userID, guildID int64, intimacyIncrement int, at time.Time) (*entities.UserGuild, error)

	// AdjustIntimacy applies delta, floored at 0
	AdjustIntimacy(ctx context.Context, userID, guildID int64, delta int) (*entities.UserGuild, error)

	// ResetDaily zeroes the daily count and clears the feed cooldown
	ResetDaily(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error)

	// MarkFed sets last_feed and adds intimacyGain if the relationship has not been fed.
	// Returns entities.ErrFeedCooldown when it already has.
	MarkFed(ctx context.Context, userID, guildID int64, at time.Time, intimacyGain int) (*entities.UserGuild, error)

	// FindNeedingReset returns relationships with daily_message_count > 0 or last_feed set
	FindNeedingReset(ctx context.Context) ([]*entities.UserGuild, error)

	// TopByIntimacy returns a guild's relationships by intimacy descending, then user ID ascending
	TopByIntimacy(ctx context.Context, guildID int64, limit int) ([]*entities.UserGuild, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}
