package entities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientCreditsError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("failed to deduct credits: %w", &InsufficientCreditsError{UserID: 1, Balance: 0, Required: 1})

	assert.True(t, errors.Is(err, ErrInsufficientCredits))
	assert.False(t, errors.Is(err, ErrUserNotFound))

	var typed *InsufficientCreditsError
	assert.True(t, errors.As(err, &typed))
	assert.Equal(t, int64(0), typed.Balance)
	assert.Equal(t, int64(1), typed.Required)
}

func TestInvalidPayloadError_MatchesSentinel(t *testing.T) {
	err := NewInvalidPayload("unknown product %q", "abc")

	assert.True(t, errors.Is(err, ErrInvalidPayload))
	assert.Contains(t, err.Error(), `unknown product "abc"`)
}

func TestClampIntimacy(t *testing.T) {
	assert.Equal(t, 0, ClampIntimacy(-5))
	assert.Equal(t, 0, ClampIntimacy(0))
	assert.Equal(t, 7, ClampIntimacy(7))
}

func TestUserGuild_NeedsDailyReset(t *testing.T) {
	ug := &UserGuild{}
	assert.False(t, ug.NeedsDailyReset())

	ug.DailyMessageCount = 2
	assert.True(t, ug.NeedsDailyReset())

	ug.DailyMessageCount = 0
	now := ug.InsertedAt
	ug.LastFeed = &now
	assert.True(t, ug.NeedsDailyReset())
}
