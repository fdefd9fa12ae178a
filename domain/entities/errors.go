package entities

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrGuildNotFound        = errors.New("guild not found")
	ErrRelationshipNotFound = errors.New("user-guild relationship not found")
	ErrChannelNotFound      = errors.New("channel not found")
	ErrUniqueViolation      = errors.New("unique constraint violation")
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrInvalidPayload       = errors.New("invalid payload")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidLimit         = errors.New("limit must be between 1 and 100")
	ErrFeedCooldown         = errors.New("already fed today")
)

// InsufficientCreditsError is returned when a deduction exceeds the balance.
// It matches ErrInsufficientCredits with errors.Is.
type InsufficientCreditsError struct {
	UserID   int64
	Balance  int64
	Required int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits for user %d: have %d, need %d", e.UserID, e.Balance, e.Required)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

// InvalidPayloadError wraps a payload problem with a client-facing reason
type InvalidPayloadError struct {
	Reason string
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid payload: %s", e.Reason)
}

func (e *InvalidPayloadError) Is(target error) bool {
	return target == ErrInvalidPayload
}

// NewInvalidPayload builds an InvalidPayloadError
func NewInvalidPayload(format string, args ...any) error {
	return &InvalidPayloadError{Reason: fmt.Sprintf(format, args...)}
}
