package repository

import (
	"context"
	"errors"
	"fmt"

	"teto/database"
	"teto/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const channelColumns = `id::text, channel_id, guild_id, inserted_at, updated_at`

// ChannelRepository implements the ChannelRepository interface
type ChannelRepository struct {
	q Queryable
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *database.DB) *ChannelRepository {
	return &ChannelRepository{q: db.Pool}
}

// NewChannelRepositoryWithTx creates a channel repository bound to a transaction
func NewChannelRepositoryWithTx(tx Queryable) *ChannelRepository {
	return &ChannelRepository{q: tx}
}

func scanChannel(row pgx.Row) (*entities.Channel, error) {
	var channel entities.Channel
	err := row.Scan(&channel.ID, &channel.ChannelID, &channel.GuildID, &channel.InsertedAt, &channel.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// GetByChannelID retrieves a channel, returning nil when not found
func (r *ChannelRepository) GetByChannelID(ctx context.Context, channelID int64) (*entities.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE channel_id = $1`

	channel, err := scanChannel(r.q.QueryRow(ctx, query, channelID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %d: %w", channelID, err)
	}

	return channel, nil
}

// Create registers a channel under a guild
func (r *ChannelRepository) Create(ctx context.Context, channelID, guildID int64) (*entities.Channel, error) {
	query := `
		INSERT INTO channels (id, channel_id, guild_id)
		VALUES ($1, $2, $3)
		RETURNING ` + channelColumns

	channel, err := scanChannel(r.q.QueryRow(ctx, query, uuid.New().String(), channelID, guildID))
	if err != nil {
		return nil, mapPgError(err, "failed to create channel %d", channelID)
	}

	return channel, nil
}

// GetAll returns all channels
func (r *ChannelRepository) GetAll(ctx context.Context) ([]*entities.Channel, error) {
	return r.list(ctx, `SELECT `+channelColumns+` FROM channels ORDER BY channel_id`)
}

// GetByGuildID returns the channels registered in a guild
func (r *ChannelRepository) GetByGuildID(ctx context.Context, guildID int64) ([]*entities.Channel, error) {
	return r.list(ctx, `SELECT `+channelColumns+` FROM channels WHERE guild_id = $1 ORDER BY channel_id`, guildID)
}

func (r *ChannelRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Channel, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	channels := make([]*entities.Channel, 0)
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channels: %w", err)
	}

	return channels, nil
}

// Update moves a channel to another guild
func (r *ChannelRepository) Update(ctx context.Context, channelID, guildID int64) (*entities.Channel, error) {
	query := `
		UPDATE channels
		SET guild_id = $2, updated_at = NOW()
		WHERE channel_id = $1
		RETURNING ` + channelColumns

	channel, err := scanChannel(r.q.QueryRow(ctx, query, channelID, guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("channel %d: %w", channelID, entities.ErrChannelNotFound)
	}
	if err != nil {
		return nil, mapPgError(err, "failed to update channel %d", channelID)
	}

	return channel, nil
}

// Delete removes a channel
func (r *ChannelRepository) Delete(ctx context.Context, channelID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM channels WHERE channel_id = $1`, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete channel %d: %w", channelID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("channel %d: %w", channelID, entities.ErrChannelNotFound)
	}

	return nil
}
