package credits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"teto/bot/common"
	"teto/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleCredits(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

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

	user, err := f.ledger.GetOrCreateUser(ctx, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err,
		}).Error("Failed to load credits")
		common.RespondWithError(s, i, "Unable to retrieve credits. Please try again.")
		return
	}

	if err := common.RespondWithMessage(s, i, creditsMessage(user, f.refillCap, time.Now()), true); err != nil {
		log.Errorf("Error responding to credits command: %v", err)
	}
}

// creditsMessage describes the balance and when it next refills
func creditsMessage(user *entities.User, refillCap int64, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have **%s** message credits.", common.FormatCredits(user.MessageCredits))

	if user.MessageCredits < refillCap {
		fmt.Fprintf(&b, "\nYour credits refill to **%s** %s.",
			common.FormatCredits(refillCap),
			common.FormatDiscordTimestamp(common.NextDailyReset(now), "R"))
	}

	if user.LastVotedAt != nil {
		fmt.Fprintf(&b, "\nLast vote: %s", common.FormatDiscordTimestamp(*user.LastVotedAt, "R"))
	}

	return b.String()
}
