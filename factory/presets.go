/*
presets.go - Pre-built price rule sets

PURPOSE:
  Provides ready-to-use rules for common promotions. They back the demo
  scenarios and are handy starting points for seed files.

AVAILABLE PRESETS:
  FlashSaleRule:    Exclusive percentage off for a short window
  BulkTierRule:     Fixed amount off per unit, growing with quantity
  SeasonalRule:     Percentage off a category between two dates
  MemberOnlyRule:   Percentage off gated by a CEL user group condition
  GiftWithPurchase: Small discount plus a free product above a cart subtotal

EXAMPLE:
  now := time.Now().UTC()
  rules := []pricing.Rule{
      factory.FlashSaleRule("Friday flash", 101, decimal.NewFromInt(30), now, 6*time.Hour),
      factory.BulkTierRule("Coffee bulk", 101),
  }

SEE ALSO:
  - rule.go: JSON-based rule creation
  - pricing/types.go: Rule type definition
*/
package factory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/price-engine/pricing"
)

// =============================================================================
// COMMON PROMOTIONS
// =============================================================================

// FlashSaleRule returns an exclusive percentage discount on one product that
// runs for window starting at from.
func FlashSaleRule(name string, productID int64, percent decimal.Decimal, from time.Time, window time.Duration) pricing.Rule {
	start := from.UTC()
	end := start.Add(window)
	return pricing.Rule{
		Name:          name,
		Type:          pricing.RuleTypePrice,
		Status:        pricing.StatusScheduled,
		Priority:      1,
		ScheduleFrom:  &start,
		ScheduleTo:    &end,
		DiscountType:  pricing.DiscountPercentage,
		DiscountValue: percent,
		Exclusive:     true,
		Targeting:     pricing.Targeting{ProductIDs: []int64{productID}},
	}
}

// BulkTierRule returns a quantity-tiered fixed discount: 5 off for 1-4 units,
// 10 off for 5-9, 15 off from 10 up.
func BulkTierRule(name string, productID int64) pricing.Rule {
	return pricing.Rule{
		Name:          name,
		Type:          pricing.RuleTypePrice,
		Status:        pricing.StatusActive,
		Priority:      10,
		DiscountType:  pricing.DiscountFixed,
		DiscountValue: decimal.Zero,
		Targeting:     pricing.Targeting{ProductIDs: []int64{productID}},
		QuantityRanges: []pricing.QuantityRange{
			{MinQuantity: 1, MaxQuantity: intPtr(4), DiscountType: pricing.DiscountFixed, DiscountValue: decimal.NewFromInt(5)},
			{MinQuantity: 5, MaxQuantity: intPtr(9), DiscountType: pricing.DiscountFixed, DiscountValue: decimal.NewFromInt(10)},
			{MinQuantity: 10, DiscountType: pricing.DiscountFixed, DiscountValue: decimal.NewFromInt(15)},
		},
	}
}

// SeasonalRule returns a percentage discount over a category between from and to.
func SeasonalRule(name string, categoryID int64, percent decimal.Decimal, from, to time.Time) pricing.Rule {
	start, end := from.UTC(), to.UTC()
	return pricing.Rule{
		Name:          name,
		Type:          pricing.RuleTypePrice,
		Status:        pricing.StatusScheduled,
		Priority:      20,
		ScheduleFrom:  &start,
		ScheduleTo:    &end,
		DiscountType:  pricing.DiscountPercentage,
		DiscountValue: percent,
		Targeting:     pricing.Targeting{CategoryIDs: []int64{categoryID}},
	}
}

// MemberOnlyRule returns a store-wide percentage discount for one user group.
func MemberOnlyRule(name, group string, percent decimal.Decimal) pricing.Rule {
	return pricing.Rule{
		Name:          name,
		Type:          pricing.RuleTypePrice,
		Status:        pricing.StatusActive,
		Priority:      30,
		DiscountType:  pricing.DiscountPercentage,
		DiscountValue: percent,
		Condition:     `"` + group + `" in user_groups`,
	}
}

// GiftWithPurchase returns a fixed discount that also grants a free product
// once the cart subtotal reaches minSubtotal.
func GiftWithPurchase(name string, giftProductID int64, minSubtotal decimal.Decimal) pricing.Rule {
	return pricing.Rule{
		Name:          name,
		Type:          pricing.RuleTypePrice,
		Status:        pricing.StatusActive,
		Priority:      40,
		DiscountType:  pricing.DiscountFixed,
		DiscountValue: decimal.NewFromInt(1),
		Condition:     "cart_subtotal >= " + minSubtotal.StringFixed(2),
		GiftProducts:  []pricing.GiftProduct{{ProductID: giftProductID, Quantity: 1}},
	}
}

func intPtr(v int) *int {
	return &v
}
