package credits

import (
	"testing"
	"time"

	"teto/bot/common"
	"teto/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestCreditsMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	midnight := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	t.Run("below cap mentions refill", func(t *testing.T) {
		msg := creditsMessage(&entities.User{MessageCredits: 4}, 30, now)

		assert.Contains(t, msg, "**4** message credits")
		assert.Contains(t, msg, "refill to **30**")
		assert.Contains(t, msg, common.FormatDiscordTimestamp(midnight, "R"))
		assert.NotContains(t, msg, "Last vote")
	})

	t.Run("at or above cap omits refill", func(t *testing.T) {
		voted := now.Add(-2 * time.Hour)
		msg := creditsMessage(&entities.User{MessageCredits: 1500, LastVotedAt: &voted}, 30, now)

		assert.Contains(t, msg, "**1,500** message credits")
		assert.NotContains(t, msg, "refill")
		assert.Contains(t, msg, "Last vote")
	})
}
