package testutil

import (
	"time"

	"teto/domain/entities"
)

// CreateTestUser creates a user entity with the default balance
func CreateTestUser(userID int64) *entities.User {
	now := time.Now().UTC()
	return &entities.User{
		UserID:         userID,
		Role:           entities.RoleUser,
		MessageCredits: entities.DefaultMessageCredits,
		InsertedAt:     now,
		UpdatedAt:      now,
	}
}

// CreateTestUserWithCredits creates a user entity with a specific balance
func CreateTestUserWithCredits(userID int64, credits int64) *entities.User {
	user := CreateTestUser(userID)
	user.MessageCredits = credits
	return user
}

// CreateTestGuild creates a guild entity
func CreateTestGuild(guildID int64) *entities.Guild {
	now := time.Now().UTC()
	return &entities.Guild{
		GuildID:    guildID,
		InsertedAt: now,
		UpdatedAt:  now,
	}
}

// CreateTestUserGuild creates a relationship with zeroed counters
func CreateTestUserGuild(userID, guildID int64) *entities.UserGuild {
	now := time.Now().UTC()
	return &entities.UserGuild{
		UserID:     userID,
		GuildID:    guildID,
		InsertedAt: now,
		UpdatedAt:  now,
	}
}

// CreateTestUserGuildWithActivity creates a relationship that has daily state to reset
func CreateTestUserGuildWithActivity(userID, guildID int64, intimacy int, dailyCount int64, fed bool) *entities.UserGuild {
	ug := CreateTestUserGuild(userID, guildID)
	ug.Intimacy = intimacy
	ug.DailyMessageCount = dailyCount
	if dailyCount > 0 {
		last := ug.UpdatedAt
		ug.LastMessageAt = &last
	}
	if fed {
		fedAt := ug.UpdatedAt
		ug.LastFeed = &fedAt
	}
	return ug
}
