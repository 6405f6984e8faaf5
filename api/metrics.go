package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/warp/price-engine/pricing"
)

// Job names used as the "job" label.
const (
	JobStatusCheck = "status_check"
	JobCleanup     = "cleanup"
)

// LifecycleMetrics records rule lifecycle job signals.
type LifecycleMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	orphans     *prometheus.CounterVec
}

// NewLifecycleMetrics creates the collectors and registers them. A nil
// registerer means prometheus.DefaultRegisterer.
func NewLifecycleMetrics(registerer prometheus.Registerer) *LifecycleMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &LifecycleMetrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "price_engine_lifecycle_job_runs_total",
			Help: "Rule lifecycle job runs by name.",
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "price_engine_lifecycle_job_errors_total",
			Help: "Rule lifecycle job failures by name.",
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "price_engine_lifecycle_job_duration_seconds",
			Help:    "Rule lifecycle job latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "price_engine_rule_transitions_total",
			Help: "Rule status transitions applied by the lifecycle jobs.",
		}, []string{"to"}),
		orphans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "price_engine_orphans_deleted_total",
			Help: "Orphaned child records deleted by table.",
		}, []string{"table"}),
	}

	registerer.MustRegister(m.jobRuns, m.jobErrors, m.jobDuration, m.transitions, m.orphans)
	return m
}

// ObserveJob records one job run.
func (m *LifecycleMetrics) ObserveJob(job string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
	m.jobDuration.WithLabelValues(job).Observe(took.Seconds())
	if err != nil {
		m.jobErrors.WithLabelValues(job).Inc()
	}
}

// AddTransitions records rules moved by a status check or maintenance run.
func (m *LifecycleMetrics) AddTransitions(report pricing.TransitionReport) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(pricing.StatusActive)).Add(float64(report.Activated))
	m.transitions.WithLabelValues(string(pricing.StatusExpired)).Add(float64(report.Expired))
}

// AddOrphans records deleted child rows per table.
func (m *LifecycleMetrics) AddOrphans(report pricing.OrphanReport) {
	if m == nil {
		return
	}
	m.orphans.WithLabelValues("rule_quantity_ranges").Add(float64(report.QuantityRanges))
	m.orphans.WithLabelValues("rule_items").Add(float64(report.RuleItems))
	m.orphans.WithLabelValues("rule_exclusions").Add(float64(report.Exclusions))
	m.orphans.WithLabelValues("rule_gift_products").Add(float64(report.GiftProducts))
}
