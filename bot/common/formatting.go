package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatCredits formats a credit amount with thousand separators
func FormatCredits(credits int64) string {
	str := fmt.Sprintf("%d", credits)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	n := len(str)
	if n <= 3 {
		if negative {
			return "-" + str
		}
		return str
	}

	var result strings.Builder
	if negative {
		result.WriteRune('-')
	}
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone.
// Format types: "t" short time, "d" short date, "f" short date/time, "R" relative time.
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// NextDailyReset returns the next 00:00 UTC after now
func NextDailyReset(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
