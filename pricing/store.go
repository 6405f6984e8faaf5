/*
store.go - Collaborator interfaces

PURPOSE:
  The core reads rules and writes lifecycle changes through these interfaces.
  The store owns persistence and concurrency; the core only defines the
  predicates that decide which rows change.

KEY INTERFACES:
  RuleSource:         Ordered, active rules by type (read path)
  ConditionEvaluator: Extra eligibility predicate per rule
  LifecycleStore:     Set-based status transitions and orphan sweep
  RuleStore:          Everything above plus basic rule persistence

SET-BASED CONTRACT:
  ActivateScheduled and ExpireActive are single predicate-based updates over
  all qualifying rules. Running them twice is a no-op beyond the first run,
  which makes them safe under at-least-once triggering.

IMPLEMENTATIONS:
  - pricing/store/memory.go: In-memory for tests and dev
  - store/sqlite/sqlite.go:  SQLite
*/
package pricing

import (
	"context"
	"time"
)

// RuleSource supplies rules for the resolver.
type RuleSource interface {
	// GetActiveRules returns active rules of the given type in priority order.
	GetActiveRules(ctx context.Context, ruleType RuleType) ([]Rule, error)
}

// ConditionEvaluator answers whether a rule's extra conditions hold.
type ConditionEvaluator interface {
	ConditionsMet(rule Rule, env Environment) bool
}

// ConditionFunc adapts a plain function to ConditionEvaluator.
type ConditionFunc func(rule Rule, env Environment) bool

func (f ConditionFunc) ConditionsMet(rule Rule, env Environment) bool { return f(rule, env) }

// LifecycleStore applies scheduler policies to persisted rules.
type LifecycleStore interface {
	// ActivateScheduled moves every rule satisfying ShouldActivate to active.
	ActivateScheduled(ctx context.Context, now time.Time) (int64, error)

	// ExpireActive moves every rule satisfying ShouldExpire to expired.
	ExpireActive(ctx context.Context, now time.Time) (int64, error)

	// DeleteOrphans removes child records whose rule no longer exists.
	// When no rules exist at all, child tables are cleared outright.
	DeleteOrphans(ctx context.Context) (OrphanReport, error)

	// UpcomingRules returns rules with schedule_from > now, soonest first.
	UpcomingRules(ctx context.Context, now time.Time, limit int) ([]Rule, error)

	// ExpiringRules returns active rules ending within the window, soonest first.
	ExpiringRules(ctx context.Context, now time.Time, within time.Duration) ([]Rule, error)
}

// RuleStore is the full persistence surface used by the service.
type RuleStore interface {
	RuleSource
	LifecycleStore

	SaveRule(ctx context.Context, rule Rule) (RuleID, error)
	GetRule(ctx context.Context, id RuleID) (*Rule, error)
	ListRules(ctx context.Context) ([]Rule, error)
	DeleteRule(ctx context.Context, id RuleID) error
	CountChildren(ctx context.Context) (ChildCounts, error)
}

// ChildCounts reports rows per child table.
type ChildCounts struct {
	QuantityRanges int64
	RuleItems      int64
	Exclusions     int64
	GiftProducts   int64
}

// Total is the sum over all child tables.
func (c ChildCounts) Total() int64 {
	return c.QuantityRanges + c.RuleItems + c.Exclusions + c.GiftProducts
}

// OrphanReport reports rows deleted per child table.
type OrphanReport struct {
	ChildCounts
	Truncated bool // rule store was empty; child tables cleared outright
}
