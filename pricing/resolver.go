/*
resolver.go - Discount resolution

PURPOSE:
  Picks discounts for a product out of an ordered rule list. The list order
  is the caller's priority order and is preserved everywhere.

ELIGIBILITY:
  A rule is eligible for a product when all of these hold:
  1. Type is price_rule
  2. Status is active
  3. Targeting matches the product
  4. The ConditionEvaluator says its conditions are met

BEST DISCOUNT:
  Full scan tracking the largest amount seen so far. Ties keep the earlier
  rule. If the rule holding the best amount is exclusive, the scan stops
  there, even if a later rule would have granted more.

PRICE TABLE:
  Uses only the FIRST eligible rule that has quantity ranges. This is a
  display shortcut and intentionally differs from the best-discount scan.

SEE ALSO:
  - discount.go: CalculateDiscount, EffectiveDiscount
  - cart.go: CartDiscountSummary
*/
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver computes discount decisions. It holds no rule state.
type Resolver struct {
	Conditions ConditionEvaluator
}

// NewResolver creates a resolver. A nil evaluator treats every condition as met.
func NewResolver(conditions ConditionEvaluator) *Resolver {
	return &Resolver{Conditions: conditions}
}

func (r *Resolver) eligible(rule Rule, product Product, env Environment) bool {
	if rule.Type != RuleTypePrice || rule.Status != StatusActive {
		return false
	}
	if !rule.Targets(product) {
		return false
	}
	if r.Conditions == nil {
		return true
	}
	return r.Conditions.ConditionsMet(rule, env)
}

// NoDiscount is the decision when no rule qualifies.
func NoDiscount(price decimal.Decimal) Decision {
	return Decision{
		Value:      decimal.Zero,
		Amount:     decimal.Zero,
		FinalPrice: price,
	}
}

// BestDiscountForProduct returns the best decision for quantity units of product.
func (r *Resolver) BestDiscountForProduct(rules []Rule, product Product, quantity int, env Environment) Decision {
	quantity = NormalizeQuantity(quantity)
	best := NoDiscount(product.Price)
	var bestExclusive bool

	for _, rule := range rules {
		if !r.eligible(rule, product, env) {
			continue
		}

		discountType, value := rule.EffectiveDiscount(quantity)
		amount := CalculateDiscount(product.Price, discountType, value)

		if amount.GreaterThan(best.Amount) {
			best = Decision{
				Type:       discountType,
				Value:      value,
				Amount:     amount,
				FinalPrice: FinalPrice(product.Price, amount),
				RuleID:     rule.ID,
				RuleName:   rule.Name,
			}
			bestExclusive = rule.Exclusive
		}

		if bestExclusive {
			break
		}
	}

	return best
}

// AllDiscountsForProduct lists every eligible rule in caller order.
func (r *Resolver) AllDiscountsForProduct(rules []Rule, product Product, env Environment) []DiscountDescriptor {
	var out []DiscountDescriptor
	for _, rule := range rules {
		if !r.eligible(rule, product, env) {
			continue
		}
		out = append(out, DiscountDescriptor{
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			DiscountType:   rule.DiscountType,
			DiscountValue:  rule.DiscountValue,
			QuantityRanges: rule.QuantityRanges,
			Exclusive:      rule.Exclusive,
		})
	}
	return out
}

// PriceForQuantity is the final unit price at quantity.
func (r *Resolver) PriceForQuantity(rules []Rule, product Product, quantity int, env Environment) decimal.Decimal {
	return r.BestDiscountForProduct(rules, product, quantity, env).FinalPrice
}

// QuantityPriceTable builds one row per tier of the first eligible tiered rule.
func (r *Resolver) QuantityPriceTable(rules []Rule, product Product, env Environment) []TierRow {
	for _, rule := range rules {
		if !rule.HasTiers() || !r.eligible(rule, product, env) {
			continue
		}

		rows := make([]TierRow, 0, len(rule.QuantityRanges))
		for _, tier := range rule.QuantityRanges {
			amount := CalculateDiscount(product.Price, tier.DiscountType, tier.DiscountValue)
			rows = append(rows, TierRow{
				MinQuantity:     tier.MinQuantity,
				MaxQuantity:     tier.MaxQuantity,
				DiscountType:    tier.DiscountType,
				DiscountValue:   tier.DiscountValue,
				OriginalPrice:   product.Price,
				DiscountAmount:  amount,
				DiscountedPrice: FinalPrice(product.Price, amount),
				SavingsPercent:  SavingsPercent(amount, product.Price),
			})
		}
		return rows
	}
	return nil
}

// CartDiscountSummary is exposed on the resolver for symmetry with the
// other four operations.
func (r *Resolver) CartDiscountSummary(cart *Cart) CartSummary {
	return CartDiscountSummary(cart)
}

// =============================================================================
// QUOTER - Resolver bound to a rule source
// =============================================================================

// Quoter loads active price rules and hands them to the resolver.
// Store failures are returned before any resolution runs.
type Quoter struct {
	Rules    RuleSource
	Resolver *Resolver
}

func (q *Quoter) rules(ctx context.Context) ([]Rule, error) {
	return q.Rules.GetActiveRules(ctx, RuleTypePrice)
}

// BestDiscount loads rules and resolves the best decision.
func (q *Quoter) BestDiscount(ctx context.Context, product Product, quantity int, env Environment) (Decision, error) {
	rules, err := q.rules(ctx)
	if err != nil {
		return Decision{}, err
	}
	return q.Resolver.BestDiscountForProduct(rules, product, quantity, env), nil
}

// AllDiscounts loads rules and lists every eligible discount.
func (q *Quoter) AllDiscounts(ctx context.Context, product Product, env Environment) ([]DiscountDescriptor, error) {
	rules, err := q.rules(ctx)
	if err != nil {
		return nil, err
	}
	return q.Resolver.AllDiscountsForProduct(rules, product, env), nil
}

// PriceTable loads rules and builds the quantity price table.
func (q *Quoter) PriceTable(ctx context.Context, product Product, env Environment) ([]TierRow, error) {
	rules, err := q.rules(ctx)
	if err != nil {
		return nil, err
	}
	return q.Resolver.QuantityPriceTable(rules, product, env), nil
}

// PriceFor loads rules and returns the final unit price at quantity.
func (q *Quoter) PriceFor(ctx context.Context, product Product, quantity int, env Environment) (decimal.Decimal, error) {
	rules, err := q.rules(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Resolver.PriceForQuantity(rules, product, quantity, env), nil
}
