package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"teto/config"
	"teto/domain/entities"
	"teto/domain/interfaces"

	"github.com/cenkalti/backoff/v5"
	log "github.com/sirupsen/logrus"
)

const (
	bonusMaxAttempts     = 3
	bonusInitialInterval = 100 * time.Millisecond
	bonusMultiplier      = 2.0
	bonusJitter          = 0.5
)

// bonusIntake implements the BonusIntake interface
type bonusIntake struct {
	ledger          interfaces.CreditLedger
	economy         config.EconomyConfig
	initialInterval time.Duration
}

// NewBonusIntake creates a new bonus intake
func NewBonusIntake(ledger interfaces.CreditLedger, economy config.EconomyConfig) interfaces.BonusIntake {
	return &bonusIntake{
		ledger:          ledger,
		economy:         economy,
		initialInterval: bonusInitialInterval,
	}
}

// HandleVote awards the vote bonus for a top.gg vote delivery
func (s *bonusIntake) HandleVote(ctx context.Context, payload entities.VotePayload) (*entities.BonusOutcome, error) {
	voteType := strings.ToLower(strings.TrimSpace(payload.Type))
	switch voteType {
	case entities.VoteTypeTest:
		log.WithField("user", payload.User).Info("Received test vote")
		return &entities.BonusOutcome{Kind: entities.BonusKindVote, Reason: "test vote"}, nil
	case entities.VoteTypeUpvote:
	default:
		return nil, entities.NewInvalidPayload("unknown vote type %q", payload.Type)
	}

	userID, err := parseDiscordID(payload.User)
	if err != nil {
		return nil, err
	}

	return s.award(ctx, userID, s.economy.VoteCreditBonus, entities.BonusKindVote)
}

// HandlePurchase awards the credits mapped to the purchased product
func (s *bonusIntake) HandlePurchase(ctx context.Context, payload entities.PurchasePayload) (*entities.BonusOutcome, error) {
	if payload.Type == "" {
		return nil, entities.NewInvalidPayload("missing event type")
	}
	if payload.Type != entities.PurchaseTypeOrderPaid {
		log.WithField("type", payload.Type).Debug("Ignoring purchase event")
		return &entities.BonusOutcome{Kind: entities.BonusKindPurchase, Reason: "ignored event " + payload.Type}, nil
	}

	userID, err := parseDiscordID(payload.Data.DiscordUserID())
	if err != nil {
		return nil, err
	}

	credits, ok := s.economy.PurchaseCreditsByProduct[payload.Data.ProductID]
	if !ok {
		return nil, entities.NewInvalidPayload("unknown product %q", payload.Data.ProductID)
	}

	return s.award(ctx, userID, credits, entities.BonusKindPurchase)
}

// award calls AwardBonus with bounded exponential retry. Missing users and
// malformed input are not retried.
func (s *bonusIntake) award(ctx context.Context, userID int64, amount int64, kind entities.BonusKind) (*entities.BonusOutcome, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	policy.Multiplier = bonusMultiplier
	policy.RandomizationFactor = bonusJitter

	attempt := 0
	user, err := backoff.Retry(ctx, func() (*entities.User, error) {
		attempt++
		user, err := s.ledger.AwardBonus(ctx, userID, amount, kind)
		if err == nil {
			return user, nil
		}
		if errors.Is(err, entities.ErrUserNotFound) ||
			errors.Is(err, entities.ErrInvalidPayload) ||
			errors.Is(err, entities.ErrInvalidAmount) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(bonusMaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WithFields(log.Fields{
				"user_id": userID,
				"kind":    kind,
				"attempt": attempt,
				"retry":   next,
				"error":   err,
			}).Warn("Bonus award failed, retrying")
		}),
	)
	if err != nil {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"kind":     kind,
			"attempts": attempt,
			"error":    err,
		}).Error("Failed to award bonus")
		return nil, err
	}

	return &entities.BonusOutcome{
		Awarded: true,
		Kind:    kind,
		UserID:  userID,
		Amount:  amount,
		User:    user,
	}, nil
}

// parseDiscordID parses a snowflake sent as a decimal string
func parseDiscordID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, entities.NewInvalidPayload("missing user id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, entities.NewInvalidPayload("invalid user id %q", raw)
	}
	return id, nil
}
