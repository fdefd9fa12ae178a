package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teto/bot/common"
	"teto/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleFeed(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if i.GuildID == "" {
		common.RespondWithError(s, i, "Feeding only works inside a server.")
		return
	}

	invoker := common.InteractionUser(i)
	if invoker == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	userID, err := common.ParseSnowflake(invoker.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", invoker.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	guildID, err := common.ParseSnowflake(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	before, err := f.recorder.EnsureUserGuild(ctx, userID, guildID)
	if err != nil {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to ensure relationship before feeding")
		common.RespondWithError(s, i, "Unable to feed right now. Please try again.")
		return
	}

	after, err := f.engagement.Feed(ctx, userID, guildID)
	if err != nil {
		if errors.Is(err, entities.ErrFeedCooldown) {
			common.RespondWithError(s, i, cooldownMessage(time.Now()))
			return
		}
		log.WithFields(log.Fields{
			"user_id":  userID,
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to feed")
		common.RespondWithError(s, i, "Unable to feed right now. Please try again.")
		return
	}

	if err := common.RespondWithMessage(s, i, fedMessage(before.Intimacy, after.Intimacy), false); err != nil {
		log.Errorf("Error responding to feed command: %v", err)
	}
}

func fedMessage(before, after int) string {
	return fmt.Sprintf("🥖 Nom nom! Intimacy **%d** → **%d** (+%d)", before, after, after-before)
}

func cooldownMessage(now time.Time) string {
	return fmt.Sprintf("You already fed me today. Try again %s.",
		common.FormatDiscordTimestamp(common.NextDailyReset(now), "R"))
}
