// Package store provides RuleStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/price-engine/pricing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps rules and their child records in separate collections so that
// deleting a rule leaves its children behind, the same as the SQL store.
type Memory struct {
	mu     sync.RWMutex
	nextID pricing.RuleID
	rules  map[pricing.RuleID]pricing.Rule

	ranges     []child[pricing.QuantityRange]
	items      []child[itemRef]
	exclusions []child[int64]
	gifts      []child[pricing.GiftProduct]
}

type child[T any] struct {
	RuleID pricing.RuleID
	Value  T
}

type itemRef struct {
	Kind string // "product" or "category"
	ID   int64
}

func NewMemory() *Memory {
	return &Memory{rules: make(map[pricing.RuleID]pricing.Rule)}
}

// SaveRule inserts a rule (ID zero) or replaces one, including its children.
func (m *Memory) SaveRule(_ context.Context, rule pricing.Rule) (pricing.RuleID, error) {
	if err := rule.Validate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if rule.ID == 0 {
		m.nextID++
		rule.ID = m.nextID
		rule.CreatedAt = now
	} else {
		if rule.ID > m.nextID {
			m.nextID = rule.ID
		}
		if existing, ok := m.rules[rule.ID]; ok {
			rule.CreatedAt = existing.CreatedAt
		} else {
			rule.CreatedAt = now
		}
		m.dropChildrenLocked(rule.ID)
	}
	if rule.Type == "" {
		rule.Type = pricing.RuleTypePrice
	}
	rule.UpdatedAt = now

	for _, qr := range rule.QuantityRanges {
		m.ranges = append(m.ranges, child[pricing.QuantityRange]{rule.ID, qr})
	}
	for _, id := range rule.Targeting.ProductIDs {
		m.items = append(m.items, child[itemRef]{rule.ID, itemRef{"product", id}})
	}
	for _, id := range rule.Targeting.CategoryIDs {
		m.items = append(m.items, child[itemRef]{rule.ID, itemRef{"category", id}})
	}
	for _, id := range rule.Targeting.ExcludedProductIDs {
		m.exclusions = append(m.exclusions, child[int64]{rule.ID, id})
	}
	for _, g := range rule.GiftProducts {
		m.gifts = append(m.gifts, child[pricing.GiftProduct]{rule.ID, g})
	}

	rule.QuantityRanges = nil
	rule.Targeting = pricing.Targeting{}
	rule.GiftProducts = nil
	m.rules[rule.ID] = rule
	return rule.ID, nil
}

func (m *Memory) dropChildrenLocked(id pricing.RuleID) {
	keep := func(rid pricing.RuleID) bool { return rid != id }
	m.ranges = filter(m.ranges, keep)
	m.items = filter(m.items, keep)
	m.exclusions = filter(m.exclusions, keep)
	m.gifts = filter(m.gifts, keep)
}

func filter[T any](children []child[T], keep func(pricing.RuleID) bool) []child[T] {
	out := children[:0]
	for _, c := range children {
		if keep(c.RuleID) {
			out = append(out, c)
		}
	}
	return out
}

// assembleLocked rebuilds a rule with fresh child slices.
func (m *Memory) assembleLocked(rule pricing.Rule) pricing.Rule {
	for _, c := range m.ranges {
		if c.RuleID == rule.ID {
			rule.QuantityRanges = append(rule.QuantityRanges, c.Value)
		}
	}
	for _, c := range m.items {
		if c.RuleID != rule.ID {
			continue
		}
		if c.Value.Kind == "category" {
			rule.Targeting.CategoryIDs = append(rule.Targeting.CategoryIDs, c.Value.ID)
		} else {
			rule.Targeting.ProductIDs = append(rule.Targeting.ProductIDs, c.Value.ID)
		}
	}
	for _, c := range m.exclusions {
		if c.RuleID == rule.ID {
			rule.Targeting.ExcludedProductIDs = append(rule.Targeting.ExcludedProductIDs, c.Value)
		}
	}
	for _, c := range m.gifts {
		if c.RuleID == rule.ID {
			rule.GiftProducts = append(rule.GiftProducts, c.Value)
		}
	}
	return rule
}

// orderedLocked returns assembled rules in priority order, then by ID.
func (m *Memory) orderedLocked(keep func(pricing.Rule) bool) []pricing.Rule {
	var out []pricing.Rule
	for _, r := range m.rules {
		if keep == nil || keep(r) {
			out = append(out, m.assembleLocked(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) GetRule(_ context.Context, id pricing.RuleID) (*pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[id]
	if !ok {
		return nil, pricing.ErrRuleNotFound
	}
	assembled := m.assembleLocked(r)
	return &assembled, nil
}

func (m *Memory) ListRules(_ context.Context) ([]pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orderedLocked(nil), nil
}

// DeleteRule removes only the rule. Children stay until DeleteOrphans runs.
func (m *Memory) DeleteRule(_ context.Context, id pricing.RuleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rules[id]; !ok {
		return pricing.ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *Memory) GetActiveRules(_ context.Context, ruleType pricing.RuleType) ([]pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orderedLocked(func(r pricing.Rule) bool {
		return r.Type == ruleType && r.Status == pricing.StatusActive
	}), nil
}

// =============================================================================
// LIFECYCLE (pricing.LifecycleStore)
// =============================================================================

func (m *Memory) ActivateScheduled(_ context.Context, now time.Time) (int64, error) {
	return m.transition(now, pricing.ActivateDue), nil
}

func (m *Memory) ExpireActive(_ context.Context, now time.Time) (int64, error) {
	return m.transition(now, pricing.ExpireOverdue), nil
}

// transition runs one set helper over a snapshot of the rule headers in ID
// order and stores back only the status changes.
func (m *Memory) transition(now time.Time, apply func([]pricing.Rule, time.Time) []int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]pricing.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		snapshot = append(snapshot, r)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })

	stamp := time.Now().UTC()
	changed := apply(snapshot, now)
	for _, i := range changed {
		r := snapshot[i]
		r.UpdatedAt = stamp
		m.rules[r.ID] = r
	}
	return int64(len(changed))
}

func (m *Memory) DeleteOrphans(_ context.Context) (pricing.OrphanReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var report pricing.OrphanReport
	if len(m.rules) == 0 {
		report.Truncated = true
		report.QuantityRanges = int64(len(m.ranges))
		report.RuleItems = int64(len(m.items))
		report.Exclusions = int64(len(m.exclusions))
		report.GiftProducts = int64(len(m.gifts))
		m.ranges, m.items, m.exclusions, m.gifts = nil, nil, nil, nil
		return report, nil
	}

	exists := func(id pricing.RuleID) bool { _, ok := m.rules[id]; return ok }
	before := m.countsLocked()
	m.ranges = filter(m.ranges, exists)
	m.items = filter(m.items, exists)
	m.exclusions = filter(m.exclusions, exists)
	m.gifts = filter(m.gifts, exists)
	after := m.countsLocked()

	report.QuantityRanges = before.QuantityRanges - after.QuantityRanges
	report.RuleItems = before.RuleItems - after.RuleItems
	report.Exclusions = before.Exclusions - after.Exclusions
	report.GiftProducts = before.GiftProducts - after.GiftProducts
	return report, nil
}

func (m *Memory) countsLocked() pricing.ChildCounts {
	return pricing.ChildCounts{
		QuantityRanges: int64(len(m.ranges)),
		RuleItems:      int64(len(m.items)),
		Exclusions:     int64(len(m.exclusions)),
		GiftProducts:   int64(len(m.gifts)),
	}
}

func (m *Memory) CountChildren(_ context.Context) (pricing.ChildCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countsLocked(), nil
}

func (m *Memory) UpcomingRules(_ context.Context, now time.Time, limit int) ([]pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.orderedLocked(func(r pricing.Rule) bool { return pricing.IsUpcoming(r, now) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduleFrom.Before(*out[j].ScheduleFrom) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ExpiringRules(_ context.Context, now time.Time, within time.Duration) ([]pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.orderedLocked(func(r pricing.Rule) bool { return pricing.IsExpiringWithin(r, now, within) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduleTo.Before(*out[j].ScheduleTo) })
	return out, nil
}

// Reset deletes all rules and child records.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = make(map[pricing.RuleID]pricing.Rule)
	m.ranges, m.items, m.exclusions, m.gifts = nil, nil, nil, nil
	m.nextID = 0
	return nil
}

var _ pricing.RuleStore = (*Memory)(nil)
