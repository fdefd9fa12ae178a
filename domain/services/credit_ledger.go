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

// creditLedger implements the CreditLedger interface
type creditLedger struct {
	userRepo       interfaces.UserRepository
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewCreditLedger creates a new credit ledger
func NewCreditLedger(userRepo interfaces.UserRepository, eventPublisher interfaces.EventPublisher) interfaces.CreditLedger {
	return &creditLedger{
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreateUser retrieves an existing user or creates a new one with the default balance
func (s *creditLedger) GetOrCreateUser(ctx context.Context, userID int64) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = s.userRepo.Create(ctx, userID, entities.RoleUser, entities.DefaultMessageCredits)
	if errors.Is(err, entities.ErrUniqueViolation) {
		// Lost a create race; the row exists now
		user, err = s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user after create conflict: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("user %d vanished after create conflict: %w", userID, entities.ErrUserNotFound)
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"credits": user.MessageCredits,
	}).Info("Created new user")

	publishEvent(s.eventPublisher, events.UserCreatedEvent{
		UserID:         userID,
		InitialCredits: user.MessageCredits,
	})

	return user, nil
}

// GetUser retrieves a user, failing when they do not exist
func (s *creditLedger) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	return user, nil
}

// Deduct removes cost credits from the balance, rejecting the call if it would go negative
func (s *creditLedger) Deduct(ctx context.Context, userID int64, cost int64) (*entities.User, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("cost %d: %w", cost, entities.ErrInvalidAmount)
	}

	user, err := s.userRepo.DeductCredits(ctx, userID, cost)
	if err != nil {
		var insufficient *entities.InsufficientCreditsError
		if errors.As(err, &insufficient) || errors.Is(err, entities.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to deduct credits: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"cost":    cost,
		"balance": user.MessageCredits,
	}).Debug("Deducted credits")

	publishEvent(s.eventPublisher, events.CreditsDeductedEvent{
		UserID:     userID,
		Cost:       cost,
		NewBalance: user.MessageCredits,
	})

	return user, nil
}

// AwardBonus adds a vote or purchase bonus to an existing user
func (s *creditLedger) AwardBonus(ctx context.Context, userID int64, amount int64, kind entities.BonusKind) (*entities.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bonus %d: %w", amount, entities.ErrInvalidAmount)
	}
	if !kind.IsValid() {
		return nil, entities.NewInvalidPayload("unknown bonus kind %q", kind)
	}

	var votedAt *time.Time
	if kind.StampsVote() {
		now := s.now()
		votedAt = &now
	}

	user, err := s.userRepo.AddCredits(ctx, userID, amount, votedAt)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to award %s bonus: %w", kind, err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
		"kind":    kind,
		"balance": user.MessageCredits,
	}).Info("Awarded bonus credits")

	publishEvent(s.eventPublisher, events.CreditsAwardedEvent{
		UserID:     userID,
		Amount:     amount,
		Kind:       string(kind),
		NewBalance: user.MessageCredits,
	})

	return user, nil
}

// RefillIfBelowCap raises the balance to refillCap when it is below it
func (s *creditLedger) RefillIfBelowCap(ctx context.Context, userID int64, refillCap int64) (bool, error) {
	refilled, err := s.userRepo.RefillCredits(ctx, userID, refillCap)
	if err != nil {
		return false, fmt.Errorf("failed to refill credits: %w", err)
	}
	return refilled, nil
}

// SetRole changes a user's role
func (s *creditLedger) SetRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error) {
	if !role.IsValid() {
		return nil, entities.NewInvalidPayload("unknown role %q", role)
	}

	user, err := s.userRepo.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set role: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"role":    role,
	}).Info("Updated user role")

	return user, nil
}

// ListUsers returns every user ordered by ID
func (s *creditLedger) ListUsers(ctx context.Context) ([]*entities.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*entities.User{}
	}
	return users, nil
}

// DeleteUser removes a user; their relationships cascade
func (s *creditLedger) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.WithField("user_id", userID).Info("Deleted user")
	return nil
}
