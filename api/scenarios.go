/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built rule sets that populate the store with realistic
	promotions. Each scenario demonstrates one resolver or lifecycle feature.

AVAILABLE SCENARIOS:

	flash-sale:     Exclusive flash sale ahead of a bigger bulk discount
	bulk-tiers:     Quantity tiers plus a store-wide fallback
	seasonal:       Upcoming, expiring and overdue rules for the scheduler
	member-pricing: CEL-gated member discount and a gift with purchase
	orphans:        A deleted rule whose child records wait for cleanup

HOW SCENARIOS WORK:
 1. Reset store (clear all rules and child records)
 2. Build rules from factory presets, relative to the handler clock
 3. Save rules in priority order
 4. Run one status check so windows that already opened are active

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "flash-sale"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Quote endpoints to try against a loaded scenario
  - factory/presets.go: Rule presets
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/price-engine/factory"
	"github.com/warp/price-engine/pricing"
)

// Demo catalog identifiers used by the scenarios.
const (
	DemoProductCoffee  int64 = 101
	DemoProductMug     int64 = 102
	DemoProductGift    int64 = 900
	DemoCategoryBrewed int64 = 10
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "flash-sale",
		Name:        "Flash Sale",
		Description: "Exclusive 30% flash sale listed before a 50 off bulk deal; the flash sale wins",
	},
	{
		ID:          "bulk-tiers",
		Name:        "Bulk Tiers",
		Description: "Fixed discount growing with quantity plus a 5% store-wide rule",
	},
	{
		ID:          "seasonal",
		Name:        "Seasonal Calendar",
		Description: "Rules starting soon, ending soon and already overdue",
	},
	{
		ID:          "member-pricing",
		Name:        "Member Pricing",
		Description: "Discount for the members group and a free gift above a cart subtotal",
	},
	{
		ID:          "orphans",
		Name:        "Orphaned Records",
		Description: "A deleted rule leaves quantity ranges and targeting rows for cleanup",
	},
}

// ListScenarios returns available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.RLock()
	current := h.currentScenario
	h.scenarioMu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, map[string]any{"scenario": nil})
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, map[string]any{"scenario": s})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenario": nil})
}

// LoadScenario resets the store and loads a scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ids, err := h.loadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	writeJSON(w, http.StatusOK, LoadScenarioResponse{Status: "loaded", ScenarioID: req.ScenarioID, RuleIDs: out})
}

// ResetDatabase clears every rule and child record.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

var errUnknownScenario = errors.New("unknown scenario")

func (h *Handler) loadScenario(ctx context.Context, id string) ([]pricing.RuleID, error) {
	var build func(now time.Time) []pricing.Rule
	switch id {
	case "flash-sale":
		build = flashSaleRules
	case "bulk-tiers":
		build = bulkTierRules
	case "seasonal":
		build = seasonalRules
	case "member-pricing":
		build = memberPricingRules
	case "orphans":
		build = orphanRules
	default:
		return nil, errUnknownScenario
	}

	// Held for the whole load so the current scenario matches the store.
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset: %w", err)
	}

	now := h.Now()
	ids, err := h.saveRules(ctx, build(now))
	if err != nil {
		return nil, err
	}

	if id == "orphans" && len(ids) > 0 {
		// Drop the tiered rule; its children stay until cleanup runs.
		if err := h.Store.DeleteRule(ctx, ids[0]); err != nil {
			return nil, fmt.Errorf("failed to delete rule: %w", err)
		}
		ids = ids[1:]
	} else if _, err := h.Lifecycle.RunStatusCheck(ctx, now); err != nil {
		return nil, err
	}

	h.currentScenario = id
	h.Logger.Info("scenario loaded", zap.String("scenario", id), zap.Int("rules", len(ids)))
	return ids, nil
}

// =============================================================================
// SCENARIO RULE SETS
// =============================================================================

func flashSaleRules(now time.Time) []pricing.Rule {
	flash := factory.FlashSaleRule("Coffee flash sale", DemoProductCoffee, decimal.NewFromInt(30), now.Add(-time.Hour), 6*time.Hour)

	bulk := factory.BulkTierRule("Coffee bulk", DemoProductCoffee)
	bulk.Priority = 2
	bulk.DiscountValue = decimal.NewFromInt(50)
	bulk.QuantityRanges = nil

	return []pricing.Rule{flash, bulk}
}

func bulkTierRules(now time.Time) []pricing.Rule {
	storeWide := pricing.Rule{
		Name:          "Store-wide 5%",
		Type:          pricing.RuleTypePrice,
		Status:        pricing.StatusActive,
		Priority:      50,
		DiscountType:  pricing.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(5),
		Targeting:     pricing.Targeting{ExcludedProductIDs: []int64{DemoProductGift}},
	}
	return []pricing.Rule{factory.BulkTierRule("Coffee bulk", DemoProductCoffee), storeWide}
}

func seasonalRules(now time.Time) []pricing.Rule {
	upcoming := factory.SeasonalRule("Holiday brew", DemoCategoryBrewed, decimal.NewFromInt(20), now.AddDate(0, 0, 3), now.AddDate(0, 0, 10))
	endingSoon := factory.SeasonalRule("Autumn mugs", DemoCategoryBrewed, decimal.NewFromInt(10), now.AddDate(0, 0, -7), now.AddDate(0, 0, 2))

	overdue := factory.SeasonalRule("Summer clearance", DemoCategoryBrewed, decimal.NewFromInt(40), now.AddDate(0, -2, 0), now.AddDate(0, 0, -1))
	overdue.Status = pricing.StatusActive

	return []pricing.Rule{upcoming, endingSoon, overdue}
}

func memberPricingRules(now time.Time) []pricing.Rule {
	return []pricing.Rule{
		factory.MemberOnlyRule("Members 15%", "members", decimal.NewFromInt(15)),
		factory.GiftWithPurchase("Free sample over 40", DemoProductGift, decimal.NewFromInt(40)),
	}
}

func orphanRules(now time.Time) []pricing.Rule {
	tiered := factory.BulkTierRule("Retired mug bulk", DemoProductMug)
	tiered.Targeting.ExcludedProductIDs = []int64{DemoProductGift}
	tiered.GiftProducts = []pricing.GiftProduct{{ProductID: DemoProductGift, Quantity: 1}}

	return []pricing.Rule{tiered, factory.BulkTierRule("Coffee bulk", DemoProductCoffee)}
}
