package leaderboard

import (
	"fmt"
	"testing"

	"teto/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestBuildRows(t *testing.T) {
	entries := []*entities.UserGuild{
		{UserID: 200, Intimacy: 9, DailyMessageCount: 4},
		{UserID: 100, Intimacy: 3},
	}

	rows := buildRows(entries, func(userID int64) string {
		return fmt.Sprintf("user-%d", userID)
	})

	assert.Equal(t, []Row{
		{Rank: 1, Name: "user-200", Intimacy: 9, DailyMessages: 4},
		{Rank: 2, Name: "user-100", Intimacy: 3},
	}, rows)
}
