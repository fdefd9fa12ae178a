package services

import (
	"context"
	"fmt"
	"time"

	"teto/domain/entities"
	"teto/domain/interfaces"
	"teto/events"

	log "github.com/sirupsen/logrus"
)

// dailyResetService implements the DailyResetService interface
type dailyResetService struct {
	userRepo       interfaces.UserRepository
	userGuildRepo  interfaces.UserGuildRepository
	ledger         interfaces.CreditLedger
	engagement     interfaces.EngagementTracker
	eventPublisher interfaces.EventPublisher
	refillCap      int64
	now            func() time.Time
}

// NewDailyResetService creates a new daily reset service
func NewDailyResetService(
	userRepo interfaces.UserRepository,
	userGuildRepo interfaces.UserGuildRepository,
	ledger interfaces.CreditLedger,
	engagement interfaces.EngagementTracker,
	eventPublisher interfaces.EventPublisher,
	refillCap int64,
) interfaces.DailyResetService {
	return &dailyResetService{
		userRepo:       userRepo,
		userGuildRepo:  userGuildRepo,
		ledger:         ledger,
		engagement:     engagement,
		eventPublisher: eventPublisher,
		refillCap:      refillCap,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// PerformDailyReset tops up every balance below the cap and clears the per-day
// relationship counters. A failing row is logged and skipped; only a failed
// selection query fails the run.
func (s *dailyResetService) PerformDailyReset(ctx context.Context) (*entities.DailyResetResult, error) {
	startedAt := s.now()
	result := &entities.DailyResetResult{StartedAt: startedAt}

	log.WithFields(log.Fields{
		"refill_cap": s.refillCap,
	}).Info("Starting daily reset")

	users, err := s.userRepo.FindBelowCredits(ctx, s.refillCap)
	if err != nil {
		return nil, fmt.Errorf("failed to select users below cap: %w", err)
	}

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return s.finish(result, startedAt), fmt.Errorf("daily reset interrupted during refill: %w", err)
		}

		refilled, err := s.ledger.RefillIfBelowCap(ctx, user.UserID, s.refillCap)
		if err != nil {
			result.CreditFailures++
			log.WithFields(log.Fields{
				"user_id": user.UserID,
				"error":   err,
			}).Error("Failed to refill credits")
			continue
		}
		if refilled {
			result.CreditCount++
		}
	}

	relationships, err := s.userGuildRepo.FindNeedingReset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select relationships needing reset: %w", err)
	}

	for _, ug := range relationships {
		if err := ctx.Err(); err != nil {
			return s.finish(result, startedAt), fmt.Errorf("daily reset interrupted during counter reset: %w", err)
		}

		if _, err := s.engagement.ResetDaily(ctx, ug.UserID, ug.GuildID); err != nil {
			result.ResetFailures++
			log.WithFields(log.Fields{
				"user_id":  ug.UserID,
				"guild_id": ug.GuildID,
				"error":    err,
			}).Error("Failed to reset daily counters")
			continue
		}
		result.ResetCount++
	}

	s.finish(result, startedAt)

	log.WithFields(log.Fields{
		"credit_count":    result.CreditCount,
		"reset_count":     result.ResetCount,
		"credit_failures": result.CreditFailures,
		"reset_failures":  result.ResetFailures,
		"duration":        result.Duration,
	}).Info("Daily reset completed")

	publishEvent(s.eventPublisher, events.DailyResetCompletedEvent{
		CreditCount:    result.CreditCount,
		ResetCount:     result.ResetCount,
		CreditFailures: result.CreditFailures,
		ResetFailures:  result.ResetFailures,
		Duration:       result.Duration,
	})

	return result, nil
}

func (s *dailyResetService) finish(result *entities.DailyResetResult, startedAt time.Time) *entities.DailyResetResult {
	result.Duration = s.now().Sub(startedAt)
	return result
}
