package entities

import "time"

// Channel is a text channel registered for the bot to reply in
type Channel struct {
	ID         string    `db:"id" json:"id"`
	ChannelID  int64     `db:"channel_id" json:"channelId,string"`
	GuildID    int64     `db:"guild_id" json:"guildId,string"`
	InsertedAt time.Time `db:"inserted_at" json:"insertedAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
