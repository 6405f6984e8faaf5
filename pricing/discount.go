package pricing

import "github.com/shopspring/decimal"

// =============================================================================
// DISCOUNT MATH - Shared by the resolver and the price table
// =============================================================================

var hundred = decimal.NewFromInt(100)

// CalculateDiscount returns the discount amount for one unit at price.
//
//	percentage: price * value / 100
//	fixed:      value, unclamped (FinalPrice does the clamping)
//	otherwise:  0
func CalculateDiscount(price decimal.Decimal, discountType DiscountType, value decimal.Decimal) decimal.Decimal {
	switch discountType {
	case DiscountPercentage:
		return price.Mul(value).Div(hundred)
	case DiscountFixed:
		return value
	default:
		return decimal.Zero
	}
}

// FinalPrice is price minus amount, never below zero.
func FinalPrice(price, amount decimal.Decimal) decimal.Decimal {
	final := price.Sub(amount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// SavingsPercent is round(amount / original * 100). Zero original yields 0.
func SavingsPercent(amount, original decimal.Decimal) int64 {
	if original.IsZero() {
		return 0
	}
	return amount.Div(original).Mul(hundred).Round(0).IntPart()
}

// NormalizeQuantity treats anything below 1 as 1.
func NormalizeQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// EffectiveDiscount resolves the discount the rule grants at quantity.
// The first tier containing quantity overrides the rule's own discount.
// When no tier matches, the base discount stands: tiers narrow, never disable.
func (r Rule) EffectiveDiscount(quantity int) (DiscountType, decimal.Decimal) {
	for _, tier := range r.QuantityRanges {
		if tier.Contains(quantity) {
			return tier.DiscountType, tier.DiscountValue
		}
	}
	return r.DiscountType, r.DiscountValue
}
