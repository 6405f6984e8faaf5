package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/price-engine/pricing"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int { return &v }

func product(id int64, price string, categories ...int64) pricing.Product {
	return pricing.Product{ID: id, Name: "test product", Price: dec(price), CategoryIDs: categories}
}

func activeRule(id pricing.RuleID, dt pricing.DiscountType, value string) pricing.Rule {
	return pricing.Rule{
		ID:            id,
		Name:          "rule",
		Type:          pricing.RuleTypePrice,
		Status:        pricing.StatusActive,
		DiscountType:  dt,
		DiscountValue: dec(value),
	}
}

var testEnv = pricing.Environment{Now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}

// =============================================================================
// BEST DISCOUNT
// =============================================================================

func TestBestDiscount_NoRules_ZeroDecision(t *testing.T) {
	// GIVEN: No rules at all
	// WHEN: Resolving a product
	// THEN: Amount is 0 and the final price is the original price

	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct(nil, product(1, "42.50"), 1, testEnv)

	assert.False(t, d.Applied())
	assert.True(t, d.Amount.IsZero())
	assert.True(t, d.FinalPrice.Equal(dec("42.50")))
	assert.Equal(t, pricing.RuleID(0), d.RuleID)
	assert.Equal(t, pricing.DiscountType(""), d.Type)
}

func TestBestDiscount_NoEligibleRules_ZeroDecision(t *testing.T) {
	// GIVEN: Rules that are inactive, of another type, or target other products
	inactive := activeRule(1, pricing.DiscountFixed, "5")
	inactive.Status = pricing.StatusInactive

	otherType := activeRule(2, pricing.DiscountFixed, "5")
	otherType.Type = "cart_rule"

	otherProduct := activeRule(3, pricing.DiscountFixed, "5")
	otherProduct.Targeting.ProductIDs = []int64{99}

	excluded := activeRule(4, pricing.DiscountFixed, "5")
	excluded.Targeting.ExcludedProductIDs = []int64{1}

	// WHEN: Resolving product 1
	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct([]pricing.Rule{inactive, otherType, otherProduct, excluded}, product(1, "20"), 1, testEnv)

	// THEN: Nothing applies
	assert.False(t, d.Applied())
	assert.True(t, d.FinalPrice.Equal(dec("20")))
}

func TestBestDiscount_Percentage(t *testing.T) {
	// GIVEN: Price 100, 20% off
	// THEN: Amount 20, final price 80

	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct([]pricing.Rule{activeRule(7, pricing.DiscountPercentage, "20")}, product(1, "100"), 1, testEnv)

	assert.True(t, d.Amount.Equal(dec("20")))
	assert.True(t, d.FinalPrice.Equal(dec("80")))
	assert.Equal(t, pricing.RuleID(7), d.RuleID)
	assert.Equal(t, pricing.DiscountPercentage, d.Type)
	assert.True(t, d.Value.Equal(dec("20")))
}

func TestBestDiscount_FixedAbovePrice_ClampsFinalPrice(t *testing.T) {
	// GIVEN: Price 50, fixed 70 off
	// THEN: Amount stays 70, final price clamps to 0

	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct([]pricing.Rule{activeRule(1, pricing.DiscountFixed, "70")}, product(1, "50"), 1, testEnv)

	assert.True(t, d.Amount.Equal(dec("70")))
	assert.True(t, d.FinalPrice.IsZero())
	assert.False(t, d.FinalPrice.IsNegative())
}

func TestBestDiscount_LargestAmountWins(t *testing.T) {
	// GIVEN: Three non-exclusive rules; the middle one is largest
	rules := []pricing.Rule{
		activeRule(1, pricing.DiscountFixed, "5"),
		activeRule(2, pricing.DiscountPercentage, "25"),
		activeRule(3, pricing.DiscountFixed, "10"),
	}

	// WHEN: Price 100
	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct(rules, product(1, "100"), 1, testEnv)

	// THEN: The full scan picks rule 2
	assert.Equal(t, pricing.RuleID(2), d.RuleID)
	assert.True(t, d.FinalPrice.Equal(dec("75")))
}

func TestBestDiscount_TieKeepsFirstSeen(t *testing.T) {
	// GIVEN: Two rules granting the same amount
	rules := []pricing.Rule{
		activeRule(1, pricing.DiscountFixed, "10"),
		activeRule(2, pricing.DiscountPercentage, "10"),
	}

	// WHEN: Price 100 (both yield 10)
	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct(rules, product(1, "100"), 1, testEnv)

	// THEN: The earlier rule keeps the lead
	assert.Equal(t, pricing.RuleID(1), d.RuleID)
}

func TestBestDiscount_ExclusiveStopsScan(t *testing.T) {
	// GIVEN: Rule A exclusive 10 before rule B non-exclusive 50
	a := activeRule(1, pricing.DiscountFixed, "10")
	a.Exclusive = true
	b := activeRule(2, pricing.DiscountFixed, "50")

	// WHEN: Resolving
	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct([]pricing.Rule{a, b}, product(1, "100"), 1, testEnv)

	// THEN: A wins even though B is larger
	assert.Equal(t, pricing.RuleID(1), d.RuleID)
	assert.True(t, d.Amount.Equal(dec("10")))
}

func TestBestDiscount_ExclusiveThatDoesNotLead_DoesNotStop(t *testing.T) {
	// GIVEN: A big non-exclusive rule, then a smaller exclusive one, then the biggest
	big := activeRule(1, pricing.DiscountFixed, "20")
	smallExclusive := activeRule(2, pricing.DiscountFixed, "5")
	smallExclusive.Exclusive = true
	biggest := activeRule(3, pricing.DiscountFixed, "30")

	// WHEN: Resolving
	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct([]pricing.Rule{big, smallExclusive, biggest}, product(1, "100"), 1, testEnv)

	// THEN: The exclusive rule never led, so the scan continued to rule 3
	assert.Equal(t, pricing.RuleID(3), d.RuleID)
}

func TestBestDiscount_UnknownDiscountType_YieldsZero(t *testing.T) {
	r := pricing.NewResolver(nil)
	d := r.BestDiscountForProduct([]pricing.Rule{activeRule(1, "bogo", "10")}, product(1, "100"), 1, testEnv)

	assert.False(t, d.Applied())
	assert.True(t, d.FinalPrice.Equal(dec("100")))
}

func TestBestDiscount_QuantityTiers(t *testing.T) {
	rule := activeRule(1, pricing.DiscountFixed, "1")
	rule.QuantityRanges = []pricing.QuantityRange{
		{MinQuantity: 1, MaxQuantity: intPtr(4), DiscountType: pricing.DiscountFixed, DiscountValue: dec("5")},
		{MinQuantity: 5, DiscountType: pricing.DiscountFixed, DiscountValue: dec("10")},
	}

	tests := []struct {
		name     string
		quantity int
		want     string
	}{
		{"first tier", 3, "5"},
		{"open-ended tier", 7, "10"},
		{"tier boundary", 5, "10"},
		{"below every tier normalizes to 1", 0, "5"},
	}

	r := pricing.NewResolver(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.BestDiscountForProduct([]pricing.Rule{rule}, product(1, "100"), tt.quantity, testEnv)
			assert.True(t, d.Amount.Equal(dec(tt.want)), "got %s", d.Amount)
			assert.Equal(t, pricing.DiscountFixed, d.Type)
		})
	}
}

func TestBestDiscount_NoMatchingTier_FallsBackToBase(t *testing.T) {
	// GIVEN: Tiers only for 10..20, base discount 15%
	rule := activeRule(1, pricing.DiscountPercentage, "15")
	rule.QuantityRanges = []pricing.QuantityRange{
		{MinQuantity: 10, MaxQuantity: intPtr(20), DiscountType: pricing.DiscountFixed, DiscountValue: dec("40")},
	}

	r := pricing.NewResolver(nil)

	// WHEN: Quantity below and above the tier
	below := r.BestDiscountForProduct([]pricing.Rule{rule}, product(1, "100"), 2, testEnv)
	above := r.BestDiscountForProduct([]pricing.Rule{rule}, product(1, "100"), 21, testEnv)

	// THEN: The rule's own discount applies
	assert.Equal(t, pricing.DiscountPercentage, below.Type)
	assert.True(t, below.Amount.Equal(dec("15")))
	assert.True(t, above.Amount.Equal(dec("15")))
}

func TestBestDiscount_ConditionEvaluatorFilters(t *testing.T) {
	// GIVEN: Two rules; the evaluator rejects the bigger one
	small := activeRule(1, pricing.DiscountFixed, "5")
	big := activeRule(2, pricing.DiscountFixed, "50")
	big.Condition = "never"

	r := pricing.NewResolver(pricing.ConditionFunc(func(rule pricing.Rule, env pricing.Environment) bool {
		return rule.Condition != "never"
	}))

	// WHEN: Resolving
	d := r.BestDiscountForProduct([]pricing.Rule{small, big}, product(1, "100"), 1, testEnv)

	// THEN: Only the small rule was eligible
	assert.Equal(t, pricing.RuleID(1), d.RuleID)
}

func TestBestDiscount_CategoryTargeting(t *testing.T) {
	rule := activeRule(1, pricing.DiscountFixed, "3")
	rule.Targeting.CategoryIDs = []int64{10, 11}

	r := pricing.NewResolver(nil)

	inCategory := r.BestDiscountForProduct([]pricing.Rule{rule}, product(1, "10", 11), 1, testEnv)
	outOfCategory := r.BestDiscountForProduct([]pricing.Rule{rule}, product(2, "10", 12), 1, testEnv)

	assert.True(t, inCategory.Applied())
	assert.False(t, outOfCategory.Applied())
}

func TestPriceForQuantity_MatchesBestDiscount(t *testing.T) {
	rules := []pricing.Rule{activeRule(1, pricing.DiscountPercentage, "10")}
	r := pricing.NewResolver(nil)

	price := r.PriceForQuantity(rules, product(1, "59.90"), 2, testEnv)
	assert.True(t, price.Equal(dec("53.91")), "got %s", price)
}

// =============================================================================
// ALL DISCOUNTS
// =============================================================================

func TestAllDiscounts_ReturnsEligibleInCallerOrder(t *testing.T) {
	// GIVEN: Eligible, ineligible, eligible
	first := activeRule(5, pricing.DiscountFixed, "1")
	skipped := activeRule(3, pricing.DiscountFixed, "2")
	skipped.Status = pricing.StatusScheduled
	last := activeRule(1, pricing.DiscountPercentage, "3")
	last.Exclusive = true

	r := pricing.NewResolver(nil)
	got := r.AllDiscountsForProduct([]pricing.Rule{first, skipped, last}, product(1, "10"), testEnv)

	// THEN: Two descriptors, order unchanged, exclusive flag carried
	require.Len(t, got, 2)
	assert.Equal(t, pricing.RuleID(5), got[0].RuleID)
	assert.Equal(t, pricing.RuleID(1), got[1].RuleID)
	assert.True(t, got[1].Exclusive)
	assert.Equal(t, pricing.DiscountPercentage, got[1].DiscountType)
}

func TestAllDiscounts_NoneEligible(t *testing.T) {
	r := pricing.NewResolver(nil)
	assert.Empty(t, r.AllDiscountsForProduct(nil, product(1, "10"), testEnv))
}

// =============================================================================
// QUANTITY PRICE TABLE
// =============================================================================

func TestQuantityPriceTable_FirstTieredRuleOnly(t *testing.T) {
	// GIVEN: A rule without tiers, then R1 and R2 both tiered
	plain := activeRule(1, pricing.DiscountFixed, "99")

	r1 := activeRule(2, pricing.DiscountFixed, "0")
	r1.QuantityRanges = []pricing.QuantityRange{
		{MinQuantity: 1, MaxQuantity: intPtr(4), DiscountType: pricing.DiscountFixed, DiscountValue: dec("5")},
		{MinQuantity: 5, DiscountType: pricing.DiscountPercentage, DiscountValue: dec("25")},
	}

	r2 := activeRule(3, pricing.DiscountFixed, "0")
	r2.QuantityRanges = []pricing.QuantityRange{
		{MinQuantity: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("50")},
	}

	// WHEN: Building the table for price 40
	r := pricing.NewResolver(nil)
	rows := r.QuantityPriceTable([]pricing.Rule{plain, r1, r2}, product(1, "40"), testEnv)

	// THEN: Rows come only from R1, in tier order
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].MinQuantity)
	assert.Equal(t, 4, *rows[0].MaxQuantity)
	assert.True(t, rows[0].DiscountAmount.Equal(dec("5")))
	assert.True(t, rows[0].DiscountedPrice.Equal(dec("35")))
	assert.Equal(t, int64(13), rows[0].SavingsPercent) // 12.5 rounds half away from zero
	assert.True(t, rows[0].OriginalPrice.Equal(dec("40")))

	assert.Equal(t, 5, rows[1].MinQuantity)
	assert.Nil(t, rows[1].MaxQuantity)
	assert.True(t, rows[1].DiscountAmount.Equal(dec("10")))
	assert.True(t, rows[1].DiscountedPrice.Equal(dec("30")))
	assert.Equal(t, int64(25), rows[1].SavingsPercent)
}

func TestQuantityPriceTable_SkipsIneligibleTieredRule(t *testing.T) {
	// GIVEN: The first tiered rule is expired
	expired := activeRule(1, pricing.DiscountFixed, "0")
	expired.Status = pricing.StatusExpired
	expired.QuantityRanges = []pricing.QuantityRange{{MinQuantity: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("1")}}

	live := activeRule(2, pricing.DiscountFixed, "0")
	live.QuantityRanges = []pricing.QuantityRange{{MinQuantity: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("2")}}

	r := pricing.NewResolver(nil)
	rows := r.QuantityPriceTable([]pricing.Rule{expired, live}, product(1, "10"), testEnv)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].DiscountAmount.Equal(dec("2")))
}

func TestQuantityPriceTable_ZeroPrice(t *testing.T) {
	// GIVEN: A free product
	rule := activeRule(1, pricing.DiscountFixed, "0")
	rule.QuantityRanges = []pricing.QuantityRange{{MinQuantity: 1, DiscountType: pricing.DiscountFixed, DiscountValue: dec("3")}}

	r := pricing.NewResolver(nil)
	rows := r.QuantityPriceTable([]pricing.Rule{rule}, product(1, "0"), testEnv)

	// THEN: Savings percent is 0, discounted price clamps to 0
	require.Len(t, rows, 1)
	assert.Equal(t, int64(0), rows[0].SavingsPercent)
	assert.True(t, rows[0].DiscountedPrice.IsZero())
}

func TestQuantityPriceTable_NoTieredRule(t *testing.T) {
	r := pricing.NewResolver(nil)
	rows := r.QuantityPriceTable([]pricing.Rule{activeRule(1, pricing.DiscountFixed, "3")}, product(1, "10"), testEnv)
	assert.Empty(t, rows)
}
