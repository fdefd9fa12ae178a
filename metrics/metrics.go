// Package metrics defines the Prometheus collectors for the credit economy
// and wires them to the domain event bus.
package metrics

import (
	"context"

	"teto/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "teto"

// CreditsDeductedTotal counts credits spent on messages
var CreditsDeductedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_deducted_total",
		Help:      "Total number of message credits deducted.",
	},
)

// CreditsAwardedTotal counts bonus credits granted.
// Label:
//   - kind: "vote" or "purchase"
var CreditsAwardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_awarded_total",
		Help:      "Total number of bonus credits awarded, by bonus kind.",
	},
	[]string{"kind"},
)

// UsersCreatedTotal counts users created on first interaction
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created.",
	},
)

// MessagesRecordedTotal counts guild messages recorded against a relationship
var MessagesRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_recorded_total",
		Help:      "Total number of guild messages recorded.",
	},
)

// DailyResetRunsTotal counts daily reset runs.
// Label:
//   - result: "success", "error" or "skipped" (lock held elsewhere)
var DailyResetRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "daily_reset_runs_total",
		Help:      "Total number of daily reset runs, by result.",
	},
	[]string{"result"},
)

// DailyResetRows counts rows touched by the last daily reset.
// Label:
//   - outcome: "refilled", "reset", "refill_failed", "reset_failed"
var DailyResetRows = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "daily_reset_rows",
		Help:      "Rows handled by the most recent daily reset, by outcome.",
	},
	[]string{"outcome"},
)

// DailyResetDuration measures how long a daily reset run takes
var DailyResetDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "daily_reset_duration_seconds",
		Help:      "Duration of daily reset runs.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	},
)

// WebhookDeliveriesTotal counts webhook deliveries.
// Labels:
//   - source: "topgg" or "purchase"
//   - result: "awarded", "ignored", "duplicate", "rejected", "error"
var WebhookDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_deliveries_total",
		Help:      "Total number of webhook deliveries, by source and result.",
	},
	[]string{"source", "result"},
)

// HTTPRequestDuration measures API request latency.
// Labels:
//   - route: the matched route template
//   - code: the response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "code"},
)

// RegisterEventHandlers subscribes the collectors to the domain event bus
func RegisterEventHandlers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) {
		UsersCreatedTotal.Inc()
	})

	bus.Subscribe(events.EventTypeCreditsDeducted, func(ctx context.Context, e events.Event) {
		if evt, ok := e.(events.CreditsDeductedEvent); ok {
			CreditsDeductedTotal.Add(float64(evt.Cost))
		}
	})

	bus.Subscribe(events.EventTypeCreditsAwarded, func(ctx context.Context, e events.Event) {
		if evt, ok := e.(events.CreditsAwardedEvent); ok {
			CreditsAwardedTotal.WithLabelValues(evt.Kind).Add(float64(evt.Amount))
		}
	})

	bus.Subscribe(events.EventTypeMessageRecorded, func(ctx context.Context, e events.Event) {
		MessagesRecordedTotal.Inc()
	})

	bus.Subscribe(events.EventTypeDailyResetCompleted, func(ctx context.Context, e events.Event) {
		evt, ok := e.(events.DailyResetCompletedEvent)
		if !ok {
			return
		}
		DailyResetRows.WithLabelValues("refilled").Set(float64(evt.CreditCount))
		DailyResetRows.WithLabelValues("reset").Set(float64(evt.ResetCount))
		DailyResetRows.WithLabelValues("refill_failed").Set(float64(evt.CreditFailures))
		DailyResetRows.WithLabelValues("reset_failed").Set(float64(evt.ResetFailures))
		DailyResetDuration.Observe(evt.Duration.Seconds())
	})
}
