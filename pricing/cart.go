package pricing

import "github.com/shopspring/decimal"

// =============================================================================
// CART - Read-only snapshot handed in by the cart owner
// =============================================================================

// LineItem is one cart line. OriginalPrice is set when a discount was applied.
type LineItem struct {
	ProductID     int64
	Quantity      int
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	IsGift        bool
	RuleID        RuleID // rule that priced this line, zero if none
}

// Fee is a cart-level charge. Negative amounts are discounts.
type Fee struct {
	Name   string
	Amount decimal.Decimal
}

type Cart struct {
	Items []LineItem
	Fees  []Fee
}

// Subtotal is the sum of price * quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount is the total quantity across lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CartSummary aggregates how much the shopper saves.
type CartSummary struct {
	ProductDiscounts decimal.Decimal
	CartDiscounts    decimal.Decimal
	GiftSavings      decimal.Decimal
	TotalSavings     decimal.Decimal
	RulesApplied     []RuleID
}

// CartDiscountSummary derives savings from the cart snapshot. Nothing is cached.
//
// Product discounts are floored at zero per line. Gift savings are not: a gift
// priced above its recorded original subtracts.
func CartDiscountSummary(cart *Cart) CartSummary {
	summary := CartSummary{
		ProductDiscounts: decimal.Zero,
		CartDiscounts:    decimal.Zero,
		GiftSavings:      decimal.Zero,
		TotalSavings:     decimal.Zero,
	}
	if cart == nil {
		return summary
	}

	seen := make(map[RuleID]bool)
	for _, item := range cart.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))

		if item.IsGift {
			original := decimal.Zero
			if item.OriginalPrice != nil {
				original = *item.OriginalPrice
			}
			summary.GiftSavings = summary.GiftSavings.Add(original.Sub(item.Price).Mul(qty))
		}

		if item.OriginalPrice != nil {
			saved := item.OriginalPrice.Sub(item.Price).Mul(qty)
			if saved.IsPositive() {
				summary.ProductDiscounts = summary.ProductDiscounts.Add(saved)
			}
		}

		if item.RuleID != 0 && !seen[item.RuleID] {
			seen[item.RuleID] = true
			summary.RulesApplied = append(summary.RulesApplied, item.RuleID)
		}
	}

	for _, fee := range cart.Fees {
		if fee.Amount.IsNegative() {
			summary.CartDiscounts = summary.CartDiscounts.Add(fee.Amount.Abs())
		}
	}

	summary.TotalSavings = summary.ProductDiscounts.Add(summary.CartDiscounts).Add(summary.GiftSavings)
	return summary
}
