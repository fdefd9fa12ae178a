package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teto/domain/entities"
	"teto/domain/interfaces"
	"teto/metrics"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const (
	dailyResetLockName = "daily_reset"
	dailyResetLockTTL  = 30 * time.Minute
)

// ErrResetInProgress is returned when another process holds the daily reset lock
var ErrResetInProgress = errors.New("daily reset already in progress")

// DailyResetWorker runs the daily reset on a cron schedule evaluated in UTC
type DailyResetWorker struct {
	resetService interfaces.DailyResetService
	lock         interfaces.JobLock
	schedule     string
	lockTTL      time.Duration
}

// NewDailyResetWorker creates a new daily reset worker. lock may be nil for single-instance deployments.
func NewDailyResetWorker(resetService interfaces.DailyResetService, lock interfaces.JobLock, schedule string) *DailyResetWorker {
	return &DailyResetWorker{
		resetService: resetService,
		lock:         lock,
		schedule:     schedule,
		lockTTL:      dailyResetLockTTL,
	}
}

// Start schedules the reset and returns a stop func that waits for a running job to finish
func (w *DailyResetWorker) Start(ctx context.Context) (func(), error) {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(w.schedule, func() {
		result, err := w.RunOnce(ctx)
		if err != nil && !errors.Is(err, ErrResetInProgress) {
			log.WithFields(ResultFields(result)).WithError(err).Error("Scheduled daily reset failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid daily reset schedule %q: %w", w.schedule, err)
	}

	c.Start()

	entries := c.Entries()
	if len(entries) > 0 {
		log.WithFields(log.Fields{
			"schedule": w.schedule,
			"next_run": entries[0].Next,
		}).Info("Daily reset worker started")
	}

	return func() {
		log.Info("Daily reset worker shutting down...")
		<-c.Stop().Done()
	}, nil
}

// RunOnce performs one guarded daily reset
func (w *DailyResetWorker) RunOnce(ctx context.Context) (result *entities.DailyResetResult, err error) {
	if w.lock != nil {
		release, lockErr := w.lock.TryAcquire(ctx, dailyResetLockName, w.lockTTL)
		if lockErr != nil {
			metrics.DailyResetRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to acquire daily reset lock: %w", lockErr)
		}
		if release == nil {
			metrics.DailyResetRunsTotal.WithLabelValues("skipped").Inc()
			log.Info("Daily reset lock held elsewhere, skipping run")
			return nil, ErrResetInProgress
		}
		defer release()
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.DailyResetRunsTotal.WithLabelValues("error").Inc()
			log.WithField("panic", r).Error("Daily reset panicked")
			result = nil
			err = fmt.Errorf("daily reset panicked: %v", r)
		}
	}()

	result, err = w.resetService.PerformDailyReset(ctx)
	if err != nil {
		metrics.DailyResetRunsTotal.WithLabelValues("error").Inc()
		return result, fmt.Errorf("failed to perform daily reset: %w", err)
	}

	metrics.DailyResetRunsTotal.WithLabelValues("success").Inc()
	return result, nil
}

// ResultFields flattens a reset result into log fields. A nil result yields no fields.
func ResultFields(result *entities.DailyResetResult) log.Fields {
	if result == nil {
		return log.Fields{}
	}
	return log.Fields{
		"credit_count":    result.CreditCount,
		"reset_count":     result.ResetCount,
		"credit_failures": result.CreditFailures,
		"reset_failures":  result.ResetFailures,
	}
}
