package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"teto/bot/common"
	"teto/domain/entities"
	"teto/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if i.GuildID == "" {
		common.RespondWithError(s, i, "The leaderboard only works inside a server.")
		return
	}

	guildID, err := common.ParseSnowflake(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	limit := services.DefaultLeaderboardLimit
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring leaderboard response: %v", err)
		return
	}

	entries, err := f.service.TopByIntimacy(ctx, guildID, limit)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidLimit) {
			common.FollowUpWithError(s, i, "Limit must be between 1 and 100.")
			return
		}
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to load leaderboard")
		common.FollowUpWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}

	rows := buildRows(entries, func(userID int64) string {
		return common.GetDisplayName(s, i.GuildID, common.FormatSnowflake(userID))
	})

	title := fmt.Sprintf("Top %d by intimacy", len(rows))
	png, err := f.generator.Generate(title, rows)
	if err != nil {
		log.WithError(err).Error("Failed to render leaderboard")
		common.FollowUpWithError(s, i, "Unable to render the leaderboard. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "💕 Intimacy leaderboard",
		Color: 0xE4457A,
	}
	if err := common.FollowUpWithImage(s, i, embed, "leaderboard.png", png); err != nil {
		log.Errorf("Error sending leaderboard image: %v", err)
	}
}

// buildRows ranks entries in their given order
func buildRows(entries []*entities.UserGuild, displayName func(userID int64) string) []Row {
	rows := make([]Row, len(entries))
	for idx, entry := range entries {
		rows[idx] = Row{
			Rank:          idx + 1,
			Name:          displayName(entry.UserID),
			Intimacy:      entry.Intimacy,
			DailyMessages: entry.DailyMessageCount,
		}
	}
	return rows
}
