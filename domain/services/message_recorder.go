package services

import (
	"context"
	"fmt"
	"time"

	"teto/domain/entities"
	"teto/domain/interfaces"
)

// messageRecorder implements the MessageRecorder interface
type messageRecorder struct {
	ledger      interfaces.CreditLedger
	guilds      interfaces.GuildService
	engagement  interfaces.EngagementTracker
	messageCost int64
}

// NewMessageRecorder creates a new message recorder
func NewMessageRecorder(ledger interfaces.CreditLedger, guilds interfaces.GuildService, engagement interfaces.EngagementTracker, messageCost int64) interfaces.MessageRecorder {
	return &messageRecorder{
		ledger:      ledger,
		guilds:      guilds,
		engagement:  engagement,
		messageCost: messageCost,
	}
}

// RecordUserMessage charges one message and records guild activity
func (s *messageRecorder) RecordUserMessage(ctx context.Context, userID int64, guildID *int64, intimacyIncrement int, at time.Time) (*entities.MessageRecord, error) {
	if _, err := s.ledger.GetOrCreateUser(ctx, userID); err != nil {
		return nil, err
	}

	if guildID != nil {
		if _, err := s.guilds.GetOrCreateGuild(ctx, *guildID); err != nil {
			return nil, err
		}
	}

	// The charge comes first so a rejected message leaves no activity behind
	user, err := s.ledger.Deduct(ctx, userID, s.messageCost)
	if err != nil {
		return nil, err
	}

	record := &entities.MessageRecord{User: user}
	if guildID == nil {
		return record, nil
	}

	if _, err := s.engagement.GetOrCreate(ctx, userID, *guildID); err != nil {
		return nil, err
	}

	ug, err := s.engagement.RecordMessage(ctx, userID, *guildID, intimacyIncrement, at)
	if err != nil {
		return nil, fmt.Errorf("failed to record guild activity: %w", err)
	}
	record.UserGuild = ug

	return record, nil
}

// EnsureUserGuild creates the user, guild and relationship as needed
func (s *messageRecorder) EnsureUserGuild(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	if _, err := s.ledger.GetOrCreateUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.guilds.GetOrCreateGuild(ctx, guildID); err != nil {
		return nil, err
	}
	return s.engagement.GetOrCreate(ctx, userID, guildID)
}
