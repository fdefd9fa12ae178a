package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// GetDisplayName returns the server-specific display name for a user.
// Falls back to username, then to a placeholder built from the ID.
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	if guildID != "" {
		member, err := s.GuildMember(guildID, userID)
		if err == nil && member != nil {
			if member.Nick != "" {
				return member.Nick
			}
			if member.User != nil {
				if member.User.GlobalName != "" {
					return member.User.GlobalName
				}
				return member.User.Username
			}
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "User " + userID
}

// ParseSnowflake converts a Discord ID string to int64
func ParseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatSnowflake converts an int64 Discord ID to string
func FormatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

// InteractionUser returns the invoking user for guild and DM interactions
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
