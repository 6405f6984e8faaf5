/*
Package pricing provides the price rule engine core.

PURPOSE:
  Given an ordered list of price rules, a product and a quantity, decide the
  single best discount. Also governs which rules are in force: rules move
  between scheduled, active and expired as their activation windows open
  and close.

KEY CONCEPTS IN THIS FILE (types.go):
  - Rule: A pricing rule with targeting, schedule window and discount shape
  - QuantityRange: A quantity-bounded override of a rule's discount
  - Product: What is being priced (base price + catalog identity)
  - Decision: The resolved discount for one product/quantity pair

DESIGN PRINCIPLES:
  1. Caller order is priority order. Nothing here re-sorts rules.
  2. Precision: Uses decimal.Decimal for prices and discount values
  3. Explicit inputs: "now", the cart and the user are always parameters
  4. Absence of a discount is a valid outcome, never an error

USAGE:
  resolver := pricing.NewResolver(conditions.NewCELEvaluator(logger))
  decision := resolver.BestDiscountForProduct(rules, product, 3, pricing.Environment{Now: time.Now()})
  if decision.Applied() {
      fmt.Println(decision.FinalPrice)
  }

SEE ALSO:
  - discount.go: Shared discount math
  - resolver.go: Best discount / table / all discounts
  - schedule.go: Activation window queries and transitions
  - lifecycle.go: Batch status checks and maintenance
*/
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// RuleID is assigned by the rule store. Zero means "no rule".
type RuleID int64

// RuleType categorizes rules. The resolver only considers RuleTypePrice.
type RuleType string

const (
	RuleTypePrice RuleType = "price_rule"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusInactive  Status = "inactive" // manually disabled, never moved by time
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusActive, StatusExpired, StatusInactive:
		return true
	}
	return false
}

// =============================================================================
// DISCOUNT SHAPE
// =============================================================================

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// QuantityRange overrides a rule's discount when the purchased quantity
// falls inside [MinQuantity, MaxQuantity]. A nil MaxQuantity is unbounded.
type QuantityRange struct {
	MinQuantity   int
	MaxQuantity   *int
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
}

// Contains reports whether quantity q falls inside the range.
func (qr QuantityRange) Contains(q int) bool {
	if q < qr.MinQuantity {
		return false
	}
	return qr.MaxQuantity == nil || q <= *qr.MaxQuantity
}

// =============================================================================
// RULE
// =============================================================================

// Targeting decides which products a rule applies to.
// Empty ProductIDs and CategoryIDs means every product.
type Targeting struct {
	ProductIDs         []int64
	CategoryIDs        []int64
	ExcludedProductIDs []int64
}

// GiftProduct is a free item granted by a rule. Stored as a child record.
type GiftProduct struct {
	ProductID int64
	Quantity  int
}

// Rule is a pricing policy: who it targets, when it is in force and what
// discount it grants.
type Rule struct {
	ID       RuleID
	Name     string
	Type     RuleType
	Status   Status
	Priority int // lower runs first; used by stores to build caller order

	ScheduleFrom *time.Time
	ScheduleTo   *time.Time

	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	Exclusive     bool

	// Tiers are evaluated in slice order. First match wins.
	QuantityRanges []QuantityRange

	Targeting    Targeting
	Condition    string // extra eligibility expression, empty = always
	GiftProducts []GiftProduct

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTiers reports whether the rule carries quantity ranges.
func (r Rule) HasTiers() bool { return len(r.QuantityRanges) > 0 }

// Targets reports whether the rule applies to product p.
func (r Rule) Targets(p Product) bool {
	if containsID(r.Targeting.ExcludedProductIDs, p.ID) {
		return false
	}
	if len(r.Targeting.ProductIDs) == 0 && len(r.Targeting.CategoryIDs) == 0 {
		return true
	}
	if containsID(r.Targeting.ProductIDs, p.ID) {
		return true
	}
	for _, c := range p.CategoryIDs {
		if containsID(r.Targeting.CategoryIDs, c) {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// =============================================================================
// PRODUCT & ENVIRONMENT
// =============================================================================

// Product is the priced item. Price is the undiscounted unit price.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	CategoryIDs []int64
}

// Environment carries everything condition evaluation may look at.
// Nothing in this package reads the clock or a "current cart" on its own.
type Environment struct {
	Now        time.Time
	UserID     string
	UserGroups []string
	Cart       *Cart
}

// =============================================================================
// RESOLUTION RESULTS
// =============================================================================

// Decision is the resolved discount for one product/quantity pair.
// Recomputed on demand, never persisted.
type Decision struct {
	Type       DiscountType
	Value      decimal.Decimal
	Amount     decimal.Decimal
	FinalPrice decimal.Decimal
	RuleID     RuleID
	RuleName   string
}

// Applied reports whether a rule produced this decision.
func (d Decision) Applied() bool { return d.RuleID != 0 }

// DiscountDescriptor describes one eligible rule for display.
type DiscountDescriptor struct {
	RuleID         RuleID
	RuleName       string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	QuantityRanges []QuantityRange
	Exclusive      bool
}

// TierRow is one line of a quantity price table.
type TierRow struct {
	MinQuantity     int
	MaxQuantity     *int
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
	OriginalPrice   decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountedPrice decimal.Decimal
	SavingsPercent  int64
}
