/*
scheduler.go - Automated rule lifecycle scheduler

PURPOSE:
  Periodically moves rules through their lifecycle. The pricing core only
  exposes the batch policies; this is the trigger that decides when they run.

JOBS:
  status_check (every StatusInterval, default 1 hour):
    scheduled rules whose window has opened become active, then active
    rules whose window has closed become expired
  cleanup (every CleanupInterval, default 24 hours):
    expires overdue rules again and deletes child records (quantity ranges,
    rule items, exclusions, gift products) whose rule is gone

DESIGN:
  - One background goroutine selects over both tickers
  - The status check runs once immediately on Start
  - Each run is logged and recorded in LifecycleMetrics
  - Both jobs are idempotent, so overlapping manual triggers are harmless

USAGE:
  scheduler := NewLifecycleScheduler(lifecycle, metrics, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerStatusCheck / TriggerCleanup endpoints
  - pricing/lifecycle.go: Batch policies
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/price-engine/pricing"
)

// LifecycleScheduler runs the rule lifecycle jobs on tickers.
type LifecycleScheduler struct {
	Lifecycle       *pricing.Lifecycle
	Metrics         *LifecycleMetrics
	Logger          *zap.Logger
	StatusInterval  time.Duration
	CleanupInterval time.Duration
	Enabled         bool

	// Now is the clock; tests replace it.
	Now func() time.Time

	statusTicker  *time.Ticker
	cleanupTicker *time.Ticker
	stop          chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
}

// NewLifecycleScheduler creates a scheduler with the default intervals.
func NewLifecycleScheduler(lifecycle *pricing.Lifecycle, metrics *LifecycleMetrics, logger *zap.Logger) *LifecycleScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleScheduler{
		Lifecycle:       lifecycle,
		Metrics:         metrics,
		Logger:          logger,
		StatusInterval:  time.Hour,
		CleanupInterval: 24 * time.Hour,
		Enabled:         true,
		Now:             func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the scheduler. Calling Start on a running scheduler is a no-op.
func (s *LifecycleScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("lifecycle scheduler disabled, not starting")
		return
	}
	if s.stop != nil {
		return
	}

	s.statusTicker = time.NewTicker(s.StatusInterval)
	s.cleanupTicker = time.NewTicker(s.CleanupInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.statusTicker, s.cleanupTicker, s.stop)

	s.Logger.Info("lifecycle scheduler started",
		zap.Duration("status_interval", s.StatusInterval),
		zap.Duration("cleanup_interval", s.CleanupInterval),
	)
}

// Stop stops the scheduler and waits for an in-flight job to finish.
func (s *LifecycleScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return
	}
	s.statusTicker.Stop()
	s.cleanupTicker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.stop = nil
	s.Logger.Info("lifecycle scheduler stopped")
}

func (s *LifecycleScheduler) run(status, cleanup *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	// Run immediately on start
	s.RunStatusCheck(context.Background())

	for {
		select {
		case <-status.C:
			s.RunStatusCheck(context.Background())
		case <-cleanup.C:
			s.RunCleanup(context.Background())
		case <-stop:
			return
		}
	}
}

// RunStatusCheck runs the hourly transition job once.
func (s *LifecycleScheduler) RunStatusCheck(ctx context.Context) (pricing.TransitionReport, error) {
	start := time.Now()
	report, err := s.Lifecycle.RunStatusCheck(ctx, s.Now())
	took := time.Since(start)

	s.Metrics.ObserveJob(JobStatusCheck, took, err)
	if err != nil {
		s.Logger.Error("status check failed", zap.String("job", JobStatusCheck), zap.Error(err))
		return report, err
	}
	s.Metrics.AddTransitions(report)

	s.Logger.Debug("status check completed",
		zap.String("job", JobStatusCheck),
		zap.Int64("activated", report.Activated),
		zap.Int64("expired", report.Expired),
		zap.Int64("duration_ms", took.Milliseconds()),
	)
	return report, nil
}

// RunCleanup runs the daily maintenance job once.
func (s *LifecycleScheduler) RunCleanup(ctx context.Context) (pricing.MaintenanceReport, error) {
	start := time.Now()
	report, err := s.Lifecycle.RunMaintenance(ctx, s.Now())
	took := time.Since(start)

	s.Metrics.ObserveJob(JobCleanup, took, err)
	if err != nil {
		s.Logger.Error("cleanup failed", zap.String("job", JobCleanup), zap.Error(err))
		return report, err
	}
	s.Metrics.AddTransitions(pricing.TransitionReport{Expired: report.Expired})
	s.Metrics.AddOrphans(report.Orphans)

	s.Logger.Debug("cleanup completed",
		zap.String("job", JobCleanup),
		zap.Int64("expired", report.Expired),
		zap.Int64("orphans_deleted", report.Orphans.Total()),
		zap.Int64("duration_ms", took.Milliseconds()),
	)
	return report, nil
}

// RunNow triggers both jobs immediately (for testing/admin).
func (s *LifecycleScheduler) RunNow(ctx context.Context) error {
	if _, err := s.RunStatusCheck(ctx); err != nil {
		return err
	}
	_, err := s.RunCleanup(ctx)
	return err
}

// NextStatusCheck returns when the next status check will occur, roughly.
func (s *LifecycleScheduler) NextStatusCheck() time.Time {
	return s.Now().Add(s.StatusInterval)
}
