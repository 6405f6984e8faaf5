package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/price-engine/pricing"
	"github.com/warp/price-engine/pricing/store"
)

func newTestLifecycle(t *testing.T) (*pricing.Lifecycle, *store.Memory) {
	mem := store.NewMemory()
	return pricing.NewLifecycle(mem, nil), mem
}

func saveRule(t *testing.T, s pricing.RuleStore, rule pricing.Rule) pricing.RuleID {
	rule.ID = 0
	id, err := s.SaveRule(context.Background(), rule)
	require.NoError(t, err)
	return id
}

func TestLifecycle_RunStatusCheck(t *testing.T) {
	// GIVEN: A due scheduled rule, an overdue active rule and a future rule
	lc, mem := newTestLifecycle(t)
	ctx := context.Background()
	now := at(10, 12)

	due := saveRule(t, mem, windowRule(0, pricing.StatusScheduled, timePtr(at(10, 0)), timePtr(at(20, 0))))
	overdue := saveRule(t, mem, windowRule(0, pricing.StatusActive, nil, timePtr(at(9, 0))))
	future := saveRule(t, mem, windowRule(0, pricing.StatusScheduled, timePtr(at(15, 0)), nil))

	// WHEN: Running the status check twice
	first, err := lc.RunStatusCheck(ctx, now)
	require.NoError(t, err)
	second, err := lc.RunStatusCheck(ctx, now)
	require.NoError(t, err)

	// THEN: The first run moved two rules, the second nothing
	assert.Equal(t, pricing.TransitionReport{Activated: 1, Expired: 1}, first)
	assert.Equal(t, pricing.TransitionReport{}, second)

	assertStatus(t, mem, due, pricing.StatusActive)
	assertStatus(t, mem, overdue, pricing.StatusExpired)
	assertStatus(t, mem, future, pricing.StatusScheduled)
}

func TestLifecycle_RunMaintenance_SweepsOrphans(t *testing.T) {
	// GIVEN: Two tiered rules; one is deleted, leaving its children
	lc, mem := newTestLifecycle(t)
	ctx := context.Background()

	tiered := activeRule(0, pricing.DiscountFixed, "0")
	tiered.Name = "tiered"
	tiered.QuantityRanges = []pricing.QuantityRange{{MinQuantity: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("1")}}
	tiered.Targeting = pricing.Targeting{ProductIDs: []int64{1, 2}, ExcludedProductIDs: []int64{3}}
	tiered.GiftProducts = []pricing.GiftProduct{{ProductID: 900, Quantity: 1}}

	gone := saveRule(t, mem, tiered)
	kept := saveRule(t, mem, tiered)
	require.NoError(t, mem.DeleteRule(ctx, gone))

	// WHEN: Running maintenance
	report, err := lc.RunMaintenance(ctx, at(10, 12))
	require.NoError(t, err)

	// THEN: Only the deleted rule's children are removed
	assert.False(t, report.Orphans.Truncated)
	assert.Equal(t, int64(1), report.Orphans.QuantityRanges)
	assert.Equal(t, int64(2), report.Orphans.RuleItems)
	assert.Equal(t, int64(1), report.Orphans.Exclusions)
	assert.Equal(t, int64(1), report.Orphans.GiftProducts)

	counts, err := mem.CountChildren(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts.Total())

	rule, err := mem.GetRule(ctx, kept)
	require.NoError(t, err)
	assert.Len(t, rule.QuantityRanges, 1)
	assert.Equal(t, []int64{1, 2}, rule.Targeting.ProductIDs)
}

func TestLifecycle_RunMaintenance_EmptyStoreTruncates(t *testing.T) {
	// GIVEN: Every rule deleted
	lc, mem := newTestLifecycle(t)
	ctx := context.Background()

	rule := activeRule(0, pricing.DiscountFixed, "1")
	rule.Targeting.CategoryIDs = []int64{10}
	id := saveRule(t, mem, rule)
	require.NoError(t, mem.DeleteRule(ctx, id))

	// WHEN: Running maintenance
	report, err := lc.RunMaintenance(ctx, at(10, 12))
	require.NoError(t, err)

	// THEN: Child tables are cleared outright
	assert.True(t, report.Orphans.Truncated)
	assert.Equal(t, int64(1), report.Orphans.RuleItems)

	counts, err := mem.CountChildren(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Total())
}

func TestLifecycle_RunMaintenance_ExpiresOverdue(t *testing.T) {
	lc, mem := newTestLifecycle(t)
	id := saveRule(t, mem, windowRule(0, pricing.StatusActive, nil, timePtr(at(1, 0))))

	report, err := lc.RunMaintenance(context.Background(), at(10, 12))
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.Expired)
	assertStatus(t, mem, id, pricing.StatusExpired)
}

func TestLifecycle_UpcomingAndExpiring(t *testing.T) {
	lc, mem := newTestLifecycle(t)
	ctx := context.Background()
	now := at(10, 12)

	later := saveRule(t, mem, windowRule(0, pricing.StatusScheduled, timePtr(at(20, 0)), nil))
	sooner := saveRule(t, mem, windowRule(0, pricing.StatusScheduled, timePtr(at(12, 0)), nil))
	endsSoon := saveRule(t, mem, windowRule(0, pricing.StatusActive, nil, timePtr(at(11, 0))))
	saveRule(t, mem, windowRule(0, pricing.StatusActive, nil, timePtr(at(28, 0))))

	upcoming, err := lc.UpcomingRules(ctx, now, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, sooner, upcoming[0].ID)
	assert.Equal(t, later, upcoming[1].ID)

	limited, err := lc.UpcomingRules(ctx, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	expiring, err := lc.ExpiringRules(ctx, now, 7)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, endsSoon, expiring[0].ID)
}

func TestLifecycle_StoreErrorsPropagate(t *testing.T) {
	lc := pricing.NewLifecycle(failingStore{}, nil)

	_, err := lc.RunStatusCheck(context.Background(), at(10, 12))
	assert.ErrorIs(t, err, errStoreDown)

	_, err = lc.RunMaintenance(context.Background(), at(10, 12))
	assert.ErrorIs(t, err, errStoreDown)
}

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) ActivateScheduled(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) ExpireActive(context.Context, time.Time) (int64, error) { return 0, errStoreDown }
func (failingStore) DeleteOrphans(context.Context) (pricing.OrphanReport, error) {
	return pricing.OrphanReport{}, errStoreDown
}
func (failingStore) UpcomingRules(context.Context, time.Time, int) ([]pricing.Rule, error) {
	return nil, errStoreDown
}
func (failingStore) ExpiringRules(context.Context, time.Time, time.Duration) ([]pricing.Rule, error) {
	return nil, errStoreDown
}

func assertStatus(t *testing.T, s pricing.RuleStore, id pricing.RuleID, want pricing.Status) {
	t.Helper()
	rule, err := s.GetRule(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want, rule.Status)
}
