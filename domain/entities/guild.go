package entities

import "time"

// Guild represents a Discord guild the bot has seen activity in
type Guild struct {
	GuildID    int64     `db:"guild_id" json:"guildId,string"`
	InsertedAt time.Time `db:"inserted_at" json:"insertedAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
