/*
Package factory provides JSON to Go price rule conversion.

PURPOSE:
  Converts JSON rule definitions into pricing.Rule values. Rule sets live in
  seed files and demo scenarios; the factory is the single place that knows
  the wire shape.

JSON SCHEMA:
  {
    "id": 0,
    "name": "Bulk coffee",
    "status": "active",
    "priority": 10,
    "schedule_from": "2026-11-01T00:00:00Z",
    "schedule_to": null,
    "discount_type": "percentage",
    "discount_value": "5",
    "exclusive": false,
    "product_ids": [101],
    "category_ids": [],
    "excluded_product_ids": [],
    "condition": "cart_subtotal >= 50.0",
    "quantity_ranges": [
      {"min_quantity": 1, "max_quantity": 4, "discount_type": "fixed", "discount_value": "5"},
      {"min_quantity": 5, "max_quantity": null, "discount_type": "fixed", "discount_value": "10"}
    ],
    "gift_products": [{"product_id": 900, "quantity": 1}]
  }

DEFAULTS:
  - status: derived from the window when omitted (scheduled if the window
    has not opened yet at parse time, expired if it closed, active otherwise)
  - type: price_rule
  - discount values accept JSON numbers or strings

USAGE:
  f := factory.NewRuleFactory(evaluator) // evaluator may be nil
  rules, err := f.ParseRuleSet(data, time.Now())

SEE ALSO:
  - presets.go: Ready-made rule sets
  - pricing/types.go: Rule type definition
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/price-engine/pricing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the JSON representation of a rule.
type RuleJSON struct {
	ID                 int64               `json:"id,omitempty"`
	Name               string              `json:"name"`
	Type               string              `json:"type,omitempty"`
	Status             string              `json:"status,omitempty"`
	Priority           int                 `json:"priority,omitempty"`
	ScheduleFrom       *time.Time          `json:"schedule_from,omitempty"`
	ScheduleTo         *time.Time          `json:"schedule_to,omitempty"`
	DiscountType       string              `json:"discount_type"`
	DiscountValue      decimal.Decimal     `json:"discount_value"`
	Exclusive          bool                `json:"exclusive,omitempty"`
	ProductIDs         []int64             `json:"product_ids,omitempty"`
	CategoryIDs        []int64             `json:"category_ids,omitempty"`
	ExcludedProductIDs []int64             `json:"excluded_product_ids,omitempty"`
	Condition          string              `json:"condition,omitempty"`
	QuantityRanges     []QuantityRangeJSON `json:"quantity_ranges,omitempty"`
	GiftProducts       []GiftProductJSON   `json:"gift_products,omitempty"`
}

// QuantityRangeJSON represents one quantity tier.
type QuantityRangeJSON struct {
	MinQuantity   int             `json:"min_quantity"`
	MaxQuantity   *int            `json:"max_quantity"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

// GiftProductJSON represents a free item granted by a rule.
type GiftProductJSON struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// ConditionValidator checks condition expressions at parse time.
type ConditionValidator interface {
	Validate(expr string) error
}

// RuleFactory converts JSON rules to pricing.Rule.
type RuleFactory struct {
	Conditions ConditionValidator
}

// NewRuleFactory creates a rule factory. conditions may be nil to skip
// condition validation.
func NewRuleFactory(conditions ConditionValidator) *RuleFactory {
	return &RuleFactory{Conditions: conditions}
}

// ParseRule parses one JSON rule.
func (f *RuleFactory) ParseRule(data []byte, now time.Time) (pricing.Rule, error) {
	var rj RuleJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return pricing.Rule{}, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return f.FromJSON(rj, now)
}

// ParseRuleSet parses a JSON array of rules, keeping array order.
func (f *RuleFactory) ParseRuleSet(data []byte, now time.Time) ([]pricing.Rule, error) {
	var set []RuleJSON
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse rule set JSON: %w", err)
	}

	rules := make([]pricing.Rule, 0, len(set))
	for i, rj := range set {
		rule, err := f.FromJSON(rj, now)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// FromJSON converts RuleJSON to pricing.Rule and validates it.
func (f *RuleFactory) FromJSON(rj RuleJSON, now time.Time) (pricing.Rule, error) {
	rule := pricing.Rule{
		ID:            pricing.RuleID(rj.ID),
		Name:          rj.Name,
		Type:          parseRuleType(rj.Type),
		Priority:      rj.Priority,
		ScheduleFrom:  utc(rj.ScheduleFrom),
		ScheduleTo:    utc(rj.ScheduleTo),
		DiscountType:  pricing.DiscountType(rj.DiscountType),
		DiscountValue: rj.DiscountValue,
		Exclusive:     rj.Exclusive,
		Targeting: pricing.Targeting{
			ProductIDs:         rj.ProductIDs,
			CategoryIDs:        rj.CategoryIDs,
			ExcludedProductIDs: rj.ExcludedProductIDs,
		},
		Condition: rj.Condition,
	}

	rule.Status = parseStatus(rj.Status)
	if rule.Status == "" {
		rule.Status = initialStatus(rule, now)
	}

	for _, qj := range rj.QuantityRanges {
		rule.QuantityRanges = append(rule.QuantityRanges, pricing.QuantityRange{
			MinQuantity:   qj.MinQuantity,
			MaxQuantity:   qj.MaxQuantity,
			DiscountType:  pricing.DiscountType(qj.DiscountType),
			DiscountValue: qj.DiscountValue,
		})
	}
	for _, gj := range rj.GiftProducts {
		qty := gj.Quantity
		if qty < 1 {
			qty = 1
		}
		rule.GiftProducts = append(rule.GiftProducts, pricing.GiftProduct{ProductID: gj.ProductID, Quantity: qty})
	}

	if err := rule.Validate(); err != nil {
		return pricing.Rule{}, err
	}
	if f.Conditions != nil {
		if err := f.Conditions.Validate(rule.Condition); err != nil {
			return pricing.Rule{}, &pricing.RuleValidationError{
				RuleName: rule.Name, Field: "condition", Reason: err.Error(), Err: err,
			}
		}
	}
	return rule, nil
}

// ToJSON converts a rule back to its JSON shape.
func (f *RuleFactory) ToJSON(rule pricing.Rule) RuleJSON {
	rj := RuleJSON{
		ID:                 int64(rule.ID),
		Name:               rule.Name,
		Type:               string(rule.Type),
		Status:             string(rule.Status),
		Priority:           rule.Priority,
		ScheduleFrom:       rule.ScheduleFrom,
		ScheduleTo:         rule.ScheduleTo,
		DiscountType:       string(rule.DiscountType),
		DiscountValue:      rule.DiscountValue,
		Exclusive:          rule.Exclusive,
		ProductIDs:         rule.Targeting.ProductIDs,
		CategoryIDs:        rule.Targeting.CategoryIDs,
		ExcludedProductIDs: rule.Targeting.ExcludedProductIDs,
		Condition:          rule.Condition,
	}
	for _, qr := range rule.QuantityRanges {
		rj.QuantityRanges = append(rj.QuantityRanges, QuantityRangeJSON{
			MinQuantity:   qr.MinQuantity,
			MaxQuantity:   qr.MaxQuantity,
			DiscountType:  string(qr.DiscountType),
			DiscountValue: qr.DiscountValue,
		})
	}
	for _, g := range rule.GiftProducts {
		rj.GiftProducts = append(rj.GiftProducts, GiftProductJSON{ProductID: g.ProductID, Quantity: g.Quantity})
	}
	return rj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRuleType(s string) pricing.RuleType {
	if s == "" {
		return pricing.RuleTypePrice
	}
	return pricing.RuleType(s)
}

// parseStatus keeps unknown values so Validate can reject them.
func parseStatus(s string) pricing.Status {
	return pricing.Status(s)
}

// initialStatus places a new rule where the hourly check would put it.
func initialStatus(rule pricing.Rule, now time.Time) pricing.Status {
	switch {
	case rule.ScheduleFrom != nil && now.Before(*rule.ScheduleFrom):
		return pricing.StatusScheduled
	case rule.ScheduleTo != nil && now.After(*rule.ScheduleTo):
		return pricing.StatusExpired
	default:
		return pricing.StatusActive
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
