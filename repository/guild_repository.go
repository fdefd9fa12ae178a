package repository

import (
	"context"
	"errors"
	"fmt"

	"teto/database"
	"teto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// GuildRepository implements the GuildRepository interface
type GuildRepository struct {
	q Queryable
}

// NewGuildRepository creates a new guild repository
func NewGuildRepository(db *database.DB) *GuildRepository {
	return &GuildRepository{q: db.Pool}
}

// NewGuildRepositoryWithTx creates a guild repository bound to a transaction
func NewGuildRepositoryWithTx(tx Queryable) *GuildRepository {
	return &GuildRepository{q: tx}
}

// GetByID retrieves a guild, returning nil when not found
func (r *GuildRepository) GetByID(ctx context.Context, guildID int64) (*entities.Guild, error) {
	query := `SELECT guild_id, inserted_at, updated_at FROM guilds WHERE guild_id = $1`

	var guild entities.Guild
	err := r.q.QueryRow(ctx, query, guildID).Scan(&guild.GuildID, &guild.InsertedAt, &guild.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %d: %w", guildID, err)
	}

	return &guild, nil
}

// Create inserts a guild
func (r *GuildRepository) Create(ctx context.Context, guildID int64) (*entities.Guild, error) {
	query := `
		INSERT INTO guilds (guild_id)
		VALUES ($1)
		RETURNING guild_id, inserted_at, updated_at
	`

	var guild entities.Guild
	err := r.q.QueryRow(ctx, query, guildID).Scan(&guild.GuildID, &guild.InsertedAt, &guild.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err, "failed to create guild %d", guildID)
	}

	return &guild, nil
}

// GetAll returns all guilds
func (r *GuildRepository) GetAll(ctx context.Context) ([]*entities.Guild, error) {
	rows, err := r.q.Query(ctx, `SELECT guild_id, inserted_at, updated_at FROM guilds ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all guilds: %w", err)
	}
	defer rows.Close()

	var guilds []*entities.Guild
	for rows.Next() {
		var guild entities.Guild
		if err := rows.Scan(&guild.GuildID, &guild.InsertedAt, &guild.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guild: %w", err)
		}
		guilds = append(guilds, &guild)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guilds: %w", err)
	}

	return guilds, nil
}

// Delete removes a guild; user_guilds rows cascade
func (r *GuildRepository) Delete(ctx context.Context, guildID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM guilds WHERE guild_id = $1`, guildID)
	if err != nil {
		return fmt.Errorf("failed to delete guild %d: %w", guildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild %d: %w", guildID, entities.ErrGuildNotFound)
	}

	return nil
}
