package entities

import "time"

// UserGuild is the engagement relationship between a user and a guild.
// It is created lazily on first activity and deleted only by cascade.
type UserGuild struct {
	UserID            int64      `db:"user_id" json:"userId,string"`
	GuildID           int64      `db:"guild_id" json:"guildId,string"`
	Intimacy          int        `db:"intimacy" json:"intimacy"`
	DailyMessageCount int64      `db:"daily_message_count" json:"dailyMessageCount"`
	LastMessageAt     *time.Time `db:"last_message_at" json:"lastMessageAt"`
	LastFeed          *time.Time `db:"last_feed" json:"lastFeed"`
	InsertedAt        time.Time  `db:"inserted_at" json:"insertedAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

// NeedsDailyReset reports whether the relationship carries any per-day state
func (ug *UserGuild) NeedsDailyReset() bool {
	return ug.DailyMessageCount > 0 || ug.LastFeed != nil
}

// HasFedToday reports whether the feed cooldown marker is set
func (ug *UserGuild) HasFedToday() bool {
	return ug.LastFeed != nil
}

// ClampIntimacy applies the intimacy floor of zero
func ClampIntimacy(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
