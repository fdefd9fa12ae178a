package bot

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

// handleMessageCreate charges a credit for every message addressed to the bot
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !addressedToBot(m, s.State.User.ID) {
		return
	}

	userID, err := common.ParseSnowflake(m.Author.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", m.Author.ID, err)
		return
	}

	var guildID *int64
	if m.GuildID != "" {
		id, err := common.ParseSnowflake(m.GuildID)
		if err != nil {
			log.Errorf("Error parsing guild ID %s: %v", m.GuildID, err)
			return
		}
		guildID = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !b.repliesIn(ctx, m) {
		return
	}

	record, err := b.recorder.RecordUserMessage(ctx, userID, guildID, entities.DefaultIntimacyIncrement, m.Timestamp)
	if err != nil {
		reply := rejectionReply(err, time.Now())
		if !errors.Is(err, entities.ErrInsufficientCredits) {
			log.WithFields(log.Fields{
				"user_id":  userID,
				"guild_id": m.GuildID,
				"error":    err,
			}).Error("Failed to record message")
		}
		if _, sendErr := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); sendErr != nil {
			log.WithError(sendErr).Warn("Failed to send rejection reply")
		}
		return
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"guild_id":  m.GuildID,
		"remaining": record.User.MessageCredits,
	}).Debug("Recorded message")
}

// repliesIn reports whether the bot answers in the message's channel.
// Direct messages are always answered.
func (b *Bot) repliesIn(ctx context.Context, m *discordgo.MessageCreate) bool {
	if b.channels == nil || m.GuildID == "" {
		return true
	}

	channelID, err := common.ParseSnowflake(m.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", m.ChannelID, err)
		return false
	}

	registered, err := b.channels.IsRegistered(ctx, channelID)
	if err != nil {
		log.WithFields(log.Fields{
			"channel_id": channelID,
			"error":      err,
		}).Warn("Failed to check channel registration")
		return false
	}
	return registered
}

// addressedToBot reports whether a human sent a DM or mentioned the bot
func addressedToBot(m *discordgo.MessageCreate, botID string) bool {
	if m.Author == nil || m.Author.Bot || m.Author.ID == botID {
		return false
	}
	if m.GuildID == "" {
		return true
	}
	for _, mention := range m.Mentions {
		if mention.ID == botID {
			return true
		}
	}
	return false
}

// rejectionReply is the user-facing reply when a message could not be charged
func rejectionReply(err error, now time.Time) string {
	if errors.Is(err, entities.ErrInsufficientCredits) {
		return fmt.Sprintf("You're out of message credits! They refill %s, or vote for me on top.gg to get more right away.",
			common.FormatDiscordTimestamp(common.NextDailyReset(now), "R"))
	}
	return "Something went wrong. Please try again later."
}
