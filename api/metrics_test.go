package api

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/price-engine/pricing"
)

func TestLifecycleMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewLifecycleMetrics(registry)

	m.ObserveJob(JobCleanup, 20*time.Millisecond, nil)
	m.ObserveJob(JobCleanup, 5*time.Millisecond, errors.New("boom"))
	m.AddTransitions(pricing.TransitionReport{Activated: 3, Expired: 2})
	m.AddTransitions(pricing.TransitionReport{Expired: 1})
	m.AddOrphans(pricing.OrphanReport{ChildCounts: pricing.ChildCounts{QuantityRanges: 4, GiftProducts: 1}})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobRuns.WithLabelValues(JobCleanup)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobErrors.WithLabelValues(JobCleanup)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.transitions.WithLabelValues("active")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.transitions.WithLabelValues("expired")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.orphans.WithLabelValues("rule_quantity_ranges")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orphans.WithLabelValues("rule_gift_products")))

	n, err := testutil.GatherAndCount(registry, "price_engine_lifecycle_job_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLifecycleMetrics_NilIsNoop(t *testing.T) {
	var m *LifecycleMetrics

	assert.NotPanics(t, func() {
		m.ObserveJob(JobStatusCheck, time.Second, nil)
		m.AddTransitions(pricing.TransitionReport{Activated: 1})
		m.AddOrphans(pricing.OrphanReport{})
	})
}

func TestLifecycleMetrics_DoubleRegisterPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewLifecycleMetrics(registry)

	assert.Panics(t, func() { NewLifecycleMetrics(registry) })
}
