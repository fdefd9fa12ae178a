package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teto/domain/entities"
	"teto/domain/interfaces"
	"teto/events"

	log "github.com/sirupsen/logrus"
)

// engagementTracker implements the EngagementTracker interface
type engagementTracker struct {
	userGuildRepo    interfaces.UserGuildRepository
	eventPublisher   interfaces.EventPublisher
	feedIntimacyGain int
	now              func() time.Time
}

// NewEngagementTracker creates a new engagement tracker
func NewEngagementTracker(userGuildRepo interfaces.UserGuildRepository, eventPublisher interfaces.EventPublisher, feedIntimacyGain int) interfaces.EngagementTracker {
	return &engagementTracker{
		userGuildRepo:    userGuildRepo,
		eventPublisher:   eventPublisher,
		feedIntimacyGain: feedIntimacyGain,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns the relationship, creating it with zeroed counters on first use
func (s *engagementTracker) GetOrCreate(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	ug, err := s.userGuildRepo.Get(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	if ug != nil {
		return ug, nil
	}

	ug, err = s.userGuildRepo.Create(ctx, userID, guildID)
	if errors.Is(err, entities.ErrUniqueViolation) {
		ug, err = s.userGuildRepo.Get(ctx, userID, guildID)
		if err != nil {
			return nil, fmt.Errorf("failed to get relationship after create conflict: %w", err)
		}
		if ug == nil {
			return nil, fmt.Errorf("user %d guild %d: %w", userID, guildID, entities.ErrRelationshipNotFound)
		}
		return ug, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"guild_id": guildID,
	}).Debug("Created user guild relationship")

	return ug, nil
}

// Get returns the relationship, failing with ErrRelationshipNotFound when absent
func (s *engagementTracker) Get(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	ug, err := s.userGuildRepo.Get(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	if ug == nil {
		return nil, fmt.Errorf("user %d guild %d: %w", userID, guildID, entities.ErrRelationshipNotFound)
	}
	return ug, nil
}

// RecordMessage counts one message and applies the intimacy increment
func (s *engagementTracker) RecordMessage(ctx context.Context, userID, guildID int64, intimacyIncrement int, at time.Time) (*entities.UserGuild, error) {
	if at.IsZero() {
		at = s.now()
	}

	ug, err := s.userGuildRepo.RecordMessage(ctx, userID, guildID, intimacyIncrement, at)
	if err != nil {
		if errors.Is(err, entities.ErrRelationshipNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	publishEvent(s.eventPublisher, events.MessageRecordedEvent{
		UserID:            userID,
		GuildID:           guildID,
		Intimacy:          ug.Intimacy,
		DailyMessageCount: ug.DailyMessageCount,
	})

	return ug, nil
}

// AdjustIntimacy applies delta to the intimacy score, never going below zero
func (s *engagementTracker) AdjustIntimacy(ctx context.Context, userID, guildID int64, delta int) (*entities.UserGuild, error) {
	ug, err := s.userGuildRepo.AdjustIntimacy(ctx, userID, guildID, delta)
	if err != nil {
		if errors.Is(err, entities.ErrRelationshipNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to adjust intimacy: %w", err)
	}
	return ug, nil
}

// ResetDaily clears the per-day counters
func (s *engagementTracker) ResetDaily(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	ug, err := s.userGuildRepo.ResetDaily(ctx, userID, guildID)
	if err != nil {
		if errors.Is(err, entities.ErrRelationshipNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reset daily counters: %w", err)
	}
	return ug, nil
}

// Feed grants the once-per-day feed bonus
func (s *engagementTracker) Feed(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	ug, err := s.userGuildRepo.MarkFed(ctx, userID, guildID, s.now(), s.feedIntimacyGain)
	if err != nil {
		if errors.Is(err, entities.ErrFeedCooldown) || errors.Is(err, entities.ErrRelationshipNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to feed: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"guild_id": guildID,
		"intimacy": ug.Intimacy,
	}).Debug("Fed")

	return ug, nil
}
