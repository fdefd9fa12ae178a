package entities

import "time"

// DailyResetResult is the aggregate outcome of one daily reset run
type DailyResetResult struct {
	CreditCount    int           `json:"creditCount"`    // users topped up to the cap
	ResetCount     int           `json:"resetCount"`     // relationships whose daily counters were cleared
	CreditFailures int           `json:"creditFailures"` // users skipped because their refill failed
	ResetFailures  int           `json:"resetFailures"`  // relationships skipped because their reset failed
	Duration       time.Duration `json:"duration"`
	StartedAt      time.Time     `json:"startedAt"`
}
