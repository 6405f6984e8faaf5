/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the pricing model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Rules:
    RuleDTO (wraps factory.RuleJSON with schedule info)

  Quotes:
    QuoteRequest, DecisionDTO, DiscountDTO, TierRowDTO

  Cart:
    CartDTO, LineItemDTO, FeeDTO, CartSummaryDTO

  Lifecycle:
    StatusCheckDTO, CleanupDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rule.go: RuleJSON type
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/price-engine/factory"
	"github.com/warp/price-engine/pricing"
)

// =============================================================================
// RULES
// =============================================================================

// RuleDTO represents a rule along with its schedule state at request time.
type RuleDTO struct {
	factory.RuleJSON
	IsScheduledActive bool   `json:"is_scheduled_active"`
	SecondsUntilStart *int64 `json:"seconds_until_start"`
	SecondsUntilEnd   *int64 `json:"seconds_until_end"`
	CreatedAt         string `json:"created_at,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

// =============================================================================
// QUOTES
// =============================================================================

// ProductDTO is the product being priced.
type ProductDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryIDs []int64         `json:"category_ids,omitempty"`
}

// QuoteRequest is the body shared by the quote, discounts and price-table
// endpoints. Quantity is ignored where it does not apply.
type QuoteRequest struct {
	Product    ProductDTO `json:"product"`
	Quantity   int        `json:"quantity"`
	UserID     string     `json:"user_id,omitempty"`
	UserGroups []string   `json:"user_groups,omitempty"`
	Cart       *CartDTO   `json:"cart,omitempty"`
}

// DecisionDTO is the best discount for a product and quantity.
type DecisionDTO struct {
	Applied        bool            `json:"applied"`
	DiscountType   string          `json:"discount_type,omitempty"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	RuleID         int64           `json:"rule_id,omitempty"`
	RuleName       string          `json:"rule_name,omitempty"`
}

// PriceDTO is the final unit price and line total at a quantity.
type PriceDTO struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// DiscountDTO describes one eligible rule.
type DiscountDTO struct {
	RuleID         int64                       `json:"rule_id"`
	RuleName       string                      `json:"rule_name"`
	DiscountType   string                      `json:"discount_type"`
	DiscountValue  decimal.Decimal             `json:"discount_value"`
	QuantityRanges []factory.QuantityRangeJSON `json:"quantity_ranges,omitempty"`
	Exclusive      bool                        `json:"exclusive"`
}

// TierRowDTO is one row of a quantity price table.
type TierRowDTO struct {
	MinQuantity     int             `json:"min_quantity"`
	MaxQuantity     *int            `json:"max_quantity"`
	DiscountType    string          `json:"discount_type"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	SavingsPercent  int64           `json:"savings_percent"`
}

// =============================================================================
// CART
// =============================================================================

// CartDTO is a priced cart.
type CartDTO struct {
	Items []LineItemDTO `json:"items"`
	Fees  []FeeDTO      `json:"fees,omitempty"`
}

// LineItemDTO is one priced cart line.
type LineItemDTO struct {
	ProductID     int64            `json:"product_id"`
	Quantity      int              `json:"quantity"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	IsGift        bool             `json:"is_gift,omitempty"`
	RuleID        int64            `json:"rule_id,omitempty"`
}

// FeeDTO is a cart-level fee; negative amounts are discounts.
type FeeDTO struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// CartSummaryDTO reports what a cart saved.
type CartSummaryDTO struct {
	ProductDiscounts decimal.Decimal `json:"product_discounts"`
	CartDiscounts    decimal.Decimal `json:"cart_discounts"`
	GiftSavings      decimal.Decimal `json:"gift_savings"`
	TotalSavings     decimal.Decimal `json:"total_savings"`
	RulesApplied     []int64         `json:"rules_applied"`
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// StatusCheckDTO reports one status check run.
type StatusCheckDTO struct {
	Activated int64 `json:"activated"`
	Expired   int64 `json:"expired"`
}

// CleanupDTO reports one maintenance run.
type CleanupDTO struct {
	Expired        int64 `json:"expired"`
	QuantityRanges int64 `json:"quantity_ranges_deleted"`
	RuleItems      int64 `json:"rule_items_deleted"`
	Exclusions     int64 `json:"exclusions_deleted"`
	GiftProducts   int64 `json:"gift_products_deleted"`
	Truncated      bool  `json:"truncated"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// LoadScenarioResponse reports what a scenario load created.
type LoadScenarioResponse struct {
	Status     string  `json:"status"`
	ScenarioID string  `json:"scenario_id"`
	RuleIDs    []int64 `json:"rule_ids"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func (p ProductDTO) toProduct() pricing.Product {
	return pricing.Product{ID: p.ID, Name: p.Name, Price: p.Price, CategoryIDs: p.CategoryIDs}
}

func (c *CartDTO) toCart() *pricing.Cart {
	if c == nil {
		return nil
	}
	cart := &pricing.Cart{}
	for _, it := range c.Items {
		cart.Items = append(cart.Items, pricing.LineItem{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			Price:         it.Price,
			OriginalPrice: it.OriginalPrice,
			IsGift:        it.IsGift,
			RuleID:        pricing.RuleID(it.RuleID),
		})
	}
	for _, f := range c.Fees {
		cart.Fees = append(cart.Fees, pricing.Fee{Name: f.Name, Amount: f.Amount})
	}
	return cart
}

func toDecisionDTO(d pricing.Decision) DecisionDTO {
	return DecisionDTO{
		Applied:        d.Applied(),
		DiscountType:   string(d.Type),
		DiscountValue:  d.Value,
		DiscountAmount: d.Amount,
		FinalPrice:     d.FinalPrice,
		RuleID:         int64(d.RuleID),
		RuleName:       d.RuleName,
	}
}

func toDiscountDTOs(ds []pricing.DiscountDescriptor) []DiscountDTO {
	out := make([]DiscountDTO, 0, len(ds))
	for _, d := range ds {
		dto := DiscountDTO{
			RuleID:        int64(d.RuleID),
			RuleName:      d.RuleName,
			DiscountType:  string(d.DiscountType),
			DiscountValue: d.DiscountValue,
			Exclusive:     d.Exclusive,
		}
		for _, qr := range d.QuantityRanges {
			dto.QuantityRanges = append(dto.QuantityRanges, factory.QuantityRangeJSON{
				MinQuantity:   qr.MinQuantity,
				MaxQuantity:   qr.MaxQuantity,
				DiscountType:  string(qr.DiscountType),
				DiscountValue: qr.DiscountValue,
			})
		}
		out = append(out, dto)
	}
	return out
}

func toTierRowDTOs(rows []pricing.TierRow) []TierRowDTO {
	out := make([]TierRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, TierRowDTO{
			MinQuantity:     r.MinQuantity,
			MaxQuantity:     r.MaxQuantity,
			DiscountType:    string(r.DiscountType),
			DiscountValue:   r.DiscountValue,
			OriginalPrice:   r.OriginalPrice,
			DiscountAmount:  r.DiscountAmount,
			DiscountedPrice: r.DiscountedPrice,
			SavingsPercent:  r.SavingsPercent,
		})
	}
	return out
}

func toCartSummaryDTO(s pricing.CartSummary) CartSummaryDTO {
	ids := make([]int64, 0, len(s.RulesApplied))
	for _, id := range s.RulesApplied {
		ids = append(ids, int64(id))
	}
	return CartSummaryDTO{
		ProductDiscounts: s.ProductDiscounts,
		CartDiscounts:    s.CartDiscounts,
		GiftSavings:      s.GiftSavings,
		TotalSavings:     s.TotalSavings,
		RulesApplied:     ids,
	}
}
