package metrics

import (
	"testing"
	"time"

	"teto/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterEventHandlers(t *testing.T) {
	bus := events.NewBus()
	RegisterEventHandlers(bus)

	voteBefore := testutil.ToFloat64(CreditsAwardedTotal.WithLabelValues("vote"))
	deductedBefore := testutil.ToFloat64(CreditsDeductedTotal)

	_ = bus.Publish(events.CreditsAwardedEvent{UserID: 1, Amount: 30, Kind: "vote", NewBalance: 60})
	_ = bus.Publish(events.CreditsDeductedEvent{UserID: 1, Cost: 1, NewBalance: 59})
	_ = bus.Publish(events.DailyResetCompletedEvent{CreditCount: 4, ResetCount: 7, CreditFailures: 1})

	// Handlers run asynchronously
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(CreditsAwardedTotal.WithLabelValues("vote")) == voteBefore+30 &&
			testutil.ToFloat64(CreditsDeductedTotal) == deductedBefore+1 &&
			testutil.ToFloat64(DailyResetRows.WithLabelValues("reset")) == 7
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, float64(4), testutil.ToFloat64(DailyResetRows.WithLabelValues("refilled")))
	assert.Equal(t, float64(1), testutil.ToFloat64(DailyResetRows.WithLabelValues("refill_failed")))
}
