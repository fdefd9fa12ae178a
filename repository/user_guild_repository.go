package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teto/database"
	"teto/domain/entities"

	"github.com/jackc/pgx/v5"
)

const userGuildColumns = `user_id, guild_id, intimacy, daily_message_count, last_message_at, last_feed, inserted_at, updated_at`

// UserGuildRepository implements the UserGuildRepository interface
type UserGuildRepository struct {
	q Queryable
}

// NewUserGuildRepository creates a new user-guild repository
func NewUserGuildRepository(db *database.DB) *UserGuildRepository {
	return &UserGuildRepository{q: db.Pool}
}

// NewUserGuildRepositoryWithTx creates a user-guild repository bound to a transaction
func NewUserGuildRepositoryWithTx(tx Queryable) *UserGuildRepository {
	return &UserGuildRepository{q: tx}
}

func scanUserGuild(row pgx.Row) (*entities.UserGuild, error) {
	var ug entities.UserGuild
	err := row.Scan(
		&ug.UserID,
		&ug.GuildID,
		&ug.Intimacy,
		&ug.DailyMessageCount,
		&ug.LastMessageAt,
		&ug.LastFeed,
		&ug.InsertedAt,
		&ug.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ug, nil
}

func collectUserGuilds(rows pgx.Rows) ([]*entities.UserGuild, error) {
	defer rows.Close()

	var result []*entities.UserGuild
	for rows.Next() {
		ug, err := scanUserGuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user guild: %w", err)
		}
		result = append(result, ug)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user guilds: %w", err)
	}

	return result, nil
}

// updateOne runs a single-row update and maps a missing row to ErrRelationshipNotFound
func (r *UserGuildRepository) updateOne(ctx context.Context, op string, userID, guildID int64, query string, args ...any) (*entities.UserGuild, error) {
	ug, err := scanUserGuild(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d guild %d: %w", userID, guildID, entities.ErrRelationshipNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s for user %d guild %d: %w", op, userID, guildID, err)
	}
	return ug, nil
}

// Get retrieves a relationship, returning nil when not found
func (r *UserGuildRepository) Get(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	query := `SELECT ` + userGuildColumns + ` FROM user_guilds WHERE user_id = $1 AND guild_id = $2`

	ug, err := scanUserGuild(r.q.QueryRow(ctx, query, userID, guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d guild %d: %w", userID, guildID, err)
	}

	return ug, nil
}

// Create inserts a relationship with zeroed counters
func (r *UserGuildRepository) Create(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	query := `
		INSERT INTO user_guilds (user_id, guild_id)
		VALUES ($1, $2)
		RETURNING ` + userGuildColumns

	ug, err := scanUserGuild(r.q.QueryRow(ctx, query, userID, guildID))
	if err != nil {
		return nil, mapPgError(err, "failed to create user %d guild %d", userID, guildID)
	}

	return ug, nil
}

// RecordMessage increments the daily count and applies the intimacy increment in one statement
func (r *UserGuildRepository) RecordMessage(ctx context.Context, userID, guildID int64, intimacyIncrement int, at time.Time) (*entities.UserGuild, error) {
	query := `
		UPDATE user_guilds
		SET daily_message_count = daily_message_count + 1,
		    intimacy = GREATEST(0, intimacy + $3),
		    last_message_at = $4,
		    updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
		RETURNING ` + userGuildColumns

	return r.updateOne(ctx, "record message", userID, guildID, query, userID, guildID, intimacyIncrement, at.UTC())
}

// AdjustIntimacy applies delta with a floor of zero
func (r *UserGuildRepository) AdjustIntimacy(ctx context.Context, userID, guildID int64, delta int) (*entities.UserGuild, error) {
	query := `
		UPDATE user_guilds
		SET intimacy = GREATEST(0, intimacy + $3), updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
		RETURNING ` + userGuildColumns

	return r.updateOne(ctx, "adjust intimacy", userID, guildID, query, userID, guildID, delta)
}

// ResetDaily clears the daily count and the feed cooldown
func (r *UserGuildRepository) ResetDaily(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	query := `
		UPDATE user_guilds
		SET daily_message_count = 0, last_feed = NULL, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
		RETURNING ` + userGuildColumns

	return r.updateOne(ctx, "reset daily counters", userID, guildID, query, userID, guildID)
}

// MarkFed stamps last_feed and adds intimacyGain if the relationship has not been fed since the last reset
func (r *UserGuildRepository) MarkFed(ctx context.Context, userID, guildID int64, at time.Time, intimacyGain int) (*entities.UserGuild, error) {
	query := `
		UPDATE user_guilds
		SET last_feed = $3, intimacy = GREATEST(0, intimacy + $4), updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2 AND last_feed IS NULL
		RETURNING ` + userGuildColumns

	ug, err := scanUserGuild(r.q.QueryRow(ctx, query, userID, guildID, at.UTC(), intimacyGain))
	if err == nil {
		return ug, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to feed user %d guild %d: %w", userID, guildID, err)
	}

	current, err := r.Get(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to check relationship: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("user %d guild %d: %w", userID, guildID, entities.ErrRelationshipNotFound)
	}

	return nil, fmt.Errorf("user %d guild %d: %w", userID, guildID, entities.ErrFeedCooldown)
}

// FindNeedingReset returns relationships that carry per-day state
func (r *UserGuildRepository) FindNeedingReset(ctx context.Context) ([]*entities.UserGuild, error) {
	query := `
		SELECT ` + userGuildColumns + `
		FROM user_guilds
		WHERE daily_message_count > 0 OR last_feed IS NOT NULL
		ORDER BY guild_id, user_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find relationships needing reset: %w", err)
	}

	return collectUserGuilds(rows)
}

// TopByIntimacy returns a guild's relationships ranked by intimacy, ties broken by user ID
func (r *UserGuildRepository) TopByIntimacy(ctx context.Context, guildID int64, limit int) ([]*entities.UserGuild, error) {
	query := `
		SELECT ` + userGuildColumns + `
		FROM user_guilds
		WHERE guild_id = $1
		ORDER BY intimacy DESC, user_id ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}

	return collectUserGuilds(rows)
}
