package interfaces

import (
	"context"
	"time"

	"teto/domain/entities"
)

// CreditLedger owns the message credit balance of a user
type CreditLedger interface {
	// GetOrCreateUser retrieves an existing user or creates one with the default balance
	GetOrCreateUser(ctx context.Context, userID int64) (*entities.User, error)

	// GetUser retrieves a user, failing with entities.ErrUserNotFound
	GetUser(ctx context.Context, userID int64) (*entities.User, error)

	// Deduct removes cost credits, failing with entities.ErrInsufficientCredits without side effects
	Deduct(ctx context.Context, userID int64, cost int64) (*entities.User, error)

	// AwardBonus adds credits for a vote or purchase; never creates the user
	AwardBonus(ctx context.Context, userID int64, amount int64, kind entities.BonusKind) (*entities.User, error)

	// RefillIfBelowCap tops the balance up to refillCap; never decreases it
	RefillIfBelowCap(ctx context.Context, userID int64, refillCap int64) (bool, error)

	// SetRole changes a user's role
	SetRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error)

	ListUsers(ctx context.Context) ([]*entities.User, error)

	// DeleteUser removes a user and their relationships, failing with entities.ErrUserNotFound
	DeleteUser(ctx context.Context, userID int64) error
}

// EngagementTracker owns the user-guild relationship and intimacy scoring
type EngagementTracker interface {
	GetOrCreate(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error)
	Get(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error)
	RecordMessage(ctx context.Context, userID, guildID int64, intimacyIncrement int, at time.Time) (*entities.UserGuild, error)
	AdjustIntimacy(ctx context.Context, userID, guildID int64, delta int) (*entities.UserGuild, error)
	ResetDaily(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error)
	Feed(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error)
}

// GuildService manages guild records
type GuildService interface {
	GetOrCreateGuild(ctx context.Context, guildID int64) (*entities.Guild, error)
	ListGuilds(ctx context.Context) ([]*entities.Guild, error)

	// DeleteGuild removes a guild with its channels and relationships
	DeleteGuild(ctx context.Context, guildID int64) error
}

// ChannelService manages the channels the bot replies in
type ChannelService interface {
	ListChannels(ctx context.Context) ([]*entities.Channel, error)
	ListGuildChannels(ctx context.Context, guildID int64) ([]*entities.Channel, error)

	// GetChannel fails with entities.ErrChannelNotFound
	GetChannel(ctx context.Context, channelID int64) (*entities.Channel, error)

	// RegisterChannel creates the guild on first sight; a registered channel yields entities.ErrUniqueViolation
	RegisterChannel(ctx context.Context, channelID, guildID int64) (*entities.Channel, error)

	UpdateChannel(ctx context.Context, channelID, guildID int64) (*entities.Channel, error)
	DeleteChannel(ctx context.Context, channelID int64) error

	// IsRegistered reports whether the bot may reply in the channel
	IsRegistered(ctx context.Context, channelID int64) (bool, error)
}

// DailyResetService performs the scheduled credit refill and counter reset
type DailyResetService interface {
	PerformDailyReset(ctx context.Context) (*entities.DailyResetResult, error)
}

// LeaderboardService provides read-only intimacy rankings
type LeaderboardService interface {
	TopByIntimacy(ctx context.Context, guildID int64, limit int) ([]*entities.UserGuild, error)
}

// JobLock guards a scheduled job so only one process runs a given tick
type JobLock interface {
	// TryAcquire returns a release func when the lock was taken, nil when another holder has it
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (release func(), err error)
}

// DeliveryDeduplicator remembers processed webhook deliveries
type DeliveryDeduplicator interface {
	IsDuplicate(ctx context.Context, source, deliveryID string) (bool, error)
	Mark(ctx context.Context, source, deliveryID string) error
}

// SystemPromptStore persists the language model system prompt
type SystemPromptStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, prompt string) error
}

// MessageRecorder charges a message against the ledger and records the guild activity
type MessageRecorder interface {
	// RecordUserMessage deducts the message cost and, when guildID is set, records
	// engagement in that guild. A failed deduction records nothing.
	RecordUserMessage(ctx context.Context, userID int64, guildID *int64, intimacyIncrement int, at time.Time) (*entities.MessageRecord, error)

	// EnsureUserGuild creates the user, guild and relationship as needed
	EnsureUserGuild(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error)
}

// BonusIntake turns verified webhook deliveries into credit awards
type BonusIntake interface {
	HandleVote(ctx context.Context, payload entities.VotePayload) (*entities.BonusOutcome, error)
	HandlePurchase(ctx context.Context, payload entities.PurchasePayload) (*entities.BonusOutcome, error)
}
