package pricing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// LIFECYCLE - Batch policies run by an external trigger
// =============================================================================

// Lifecycle applies the scheduler policies to a store. It owns no timer;
// something outside (api.LifecycleScheduler) decides when to call it.
type Lifecycle struct {
	Store  LifecycleStore
	Logger *zap.Logger
}

// NewLifecycle creates a lifecycle runner. A nil logger is replaced by a no-op.
func NewLifecycle(store LifecycleStore, logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{Store: store, Logger: logger}
}

// MaintenanceReport summarizes one daily maintenance run.
type MaintenanceReport struct {
	Expired int64
	Orphans OrphanReport
}

// RunStatusCheck activates due scheduled rules, then expires overdue active ones.
func (l *Lifecycle) RunStatusCheck(ctx context.Context, now time.Time) (TransitionReport, error) {
	var report TransitionReport

	activated, err := l.Store.ActivateScheduled(ctx, now)
	if err != nil {
		return report, fmt.Errorf("activate scheduled rules: %w", err)
	}
	report.Activated = activated

	expired, err := l.Store.ExpireActive(ctx, now)
	if err != nil {
		return report, fmt.Errorf("expire active rules: %w", err)
	}
	report.Expired = expired

	l.Logger.Info("rule status check",
		zap.Time("now", now),
		zap.Int64("activated", report.Activated),
		zap.Int64("expired", report.Expired),
	)
	return report, nil
}

// RunMaintenance expires overdue rules and sweeps orphaned child records.
func (l *Lifecycle) RunMaintenance(ctx context.Context, now time.Time) (MaintenanceReport, error) {
	var report MaintenanceReport

	expired, err := l.Store.ExpireActive(ctx, now)
	if err != nil {
		return report, fmt.Errorf("expire active rules: %w", err)
	}
	report.Expired = expired

	orphans, err := l.Store.DeleteOrphans(ctx)
	if err != nil {
		return report, fmt.Errorf("delete orphaned child records: %w", err)
	}
	report.Orphans = orphans

	l.Logger.Info("rule maintenance",
		zap.Time("now", now),
		zap.Int64("expired", report.Expired),
		zap.Int64("orphans_deleted", orphans.Total()),
		zap.Bool("truncated", orphans.Truncated),
	)
	return report, nil
}

// UpcomingRules returns up to limit rules that start after now.
func (l *Lifecycle) UpcomingRules(ctx context.Context, now time.Time, limit int) ([]Rule, error) {
	if limit <= 0 {
		limit = 10
	}
	return l.Store.UpcomingRules(ctx, now, limit)
}

// ExpiringRules returns active rules ending within withinDays of now.
func (l *Lifecycle) ExpiringRules(ctx context.Context, now time.Time, withinDays int) ([]Rule, error) {
	if withinDays < 0 {
		withinDays = 0
	}
	return l.Store.ExpiringRules(ctx, now, Days(withinDays))
}
