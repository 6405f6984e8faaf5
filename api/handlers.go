/*
handlers.go - HTTP API handlers for the price rule engine

PURPOSE:
  Exposes discount resolution and the rule lifecycle via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to pricing.

ENDPOINTS:
  Rules:
    GET    /api/rules                  List rules with schedule state
    GET    /api/rules/{id}             One rule with schedule state

  Quotes:
    POST   /api/quote                  Best discount for product + quantity
    POST   /api/price                  Final unit price and total at quantity
    POST   /api/discounts              All eligible discounts for a product
    POST   /api/price-table            Quantity price table for a product
    POST   /api/cart/summary           Savings summary for a priced cart

  Schedule:
    GET    /api/schedule/upcoming      Rules starting later (?limit=10)
    GET    /api/schedule/expiring      Active rules ending soon (?days=7)

  Admin:
    POST   /api/admin/status-check     Run the hourly status check now
    POST   /api/admin/cleanup          Run the daily maintenance now

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Rule persistence and lifecycle updates
  - Quoter: Active rules + resolver
  - Scheduler: Lifecycle jobs (shared with the background trigger)
  - RuleFactory: JSON to Rule conversion

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Rule not found
  - 500: Internal errors

  A quote never fails because no rule applies; that is a zero decision.

SECURITY NOTE:
  No authentication or authorization. Rule authoring goes through seed
  files and scenarios, not the API.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/price-engine/conditions"
	"github.com/warp/price-engine/factory"
	"github.com/warp/price-engine/pricing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is what the API needs from persistence.
type Store interface {
	pricing.RuleStore
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       Store
	Quoter      *pricing.Quoter
	Lifecycle   *pricing.Lifecycle
	Scheduler   *LifecycleScheduler
	RuleFactory *factory.RuleFactory
	Logger      *zap.Logger

	// Now is the clock used for quotes and schedule queries.
	Now func() time.Time

	scenarioMu      sync.RWMutex
	currentScenario string
}

// NewHandler creates a handler over store. evaluator may be nil, in which
// case rule conditions are neither validated nor evaluated.
func NewHandler(store Store, evaluator *conditions.CELEvaluator, metrics *LifecycleMetrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		cond pricing.ConditionEvaluator
		val  factory.ConditionValidator
	)
	if evaluator != nil {
		cond, val = evaluator, evaluator
	}

	lifecycle := pricing.NewLifecycle(store, logger)
	return &Handler{
		Store:       store,
		Quoter:      &pricing.Quoter{Rules: store, Resolver: pricing.NewResolver(cond)},
		Lifecycle:   lifecycle,
		Scheduler:   NewLifecycleScheduler(lifecycle, metrics, logger),
		RuleFactory: factory.NewRuleFactory(val),
		Logger:      logger,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// SeedRules parses a JSON rule set and saves it, returning the new IDs.
func (h *Handler) SeedRules(ctx context.Context, data []byte) ([]pricing.RuleID, error) {
	rules, err := h.RuleFactory.ParseRuleSet(data, h.Now())
	if err != nil {
		return nil, err
	}
	return h.saveRules(ctx, rules)
}

func (h *Handler) saveRules(ctx context.Context, rules []pricing.Rule) ([]pricing.RuleID, error) {
	ids := make([]pricing.RuleID, 0, len(rules))
	for _, rule := range rules {
		id, err := h.Store.SaveRule(ctx, rule)
		if err != nil {
			return ids, fmt.Errorf("failed to save rule %q: %w", rule.Name, err)
		}
		h.Logger.Debug("rule saved", zap.Int64("rule_id", int64(id)), zap.String("name", rule.Name))
		ids = append(ids, id)
	}
	return ids, nil
}

// =============================================================================
// RULE ENDPOINTS
// =============================================================================

// ListRules returns every rule in priority order.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.ListRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRuleDTOs(rules))
}

// GetRule returns one rule.
// GET /api/rules/{id}
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rule id", err)
		return
	}

	rule, err := h.Store.GetRule(r.Context(), pricing.RuleID(id))
	if err != nil {
		writeStoreError(w, "Failed to get rule", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRuleDTO(*rule))
}

func (h *Handler) toRuleDTOs(rules []pricing.Rule) []RuleDTO {
	dtos := make([]RuleDTO, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, h.toRuleDTO(rule))
	}
	return dtos
}

func (h *Handler) toRuleDTO(rule pricing.Rule) RuleDTO {
	now := h.Now()
	dto := RuleDTO{
		RuleJSON:          h.RuleFactory.ToJSON(rule),
		IsScheduledActive: pricing.IsScheduledActive(rule, now),
	}
	if d, ok := pricing.TimeUntilStart(rule, now); ok {
		secs := ceilSeconds(d)
		dto.SecondsUntilStart = &secs
	}
	if d, ok := pricing.TimeUntilEnd(rule, now); ok {
		secs := ceilSeconds(d)
		dto.SecondsUntilEnd = &secs
	}
	if !rule.CreatedAt.IsZero() {
		dto.CreatedAt = rule.CreatedAt.Format(time.RFC3339)
	}
	if !rule.UpdatedAt.IsZero() {
		dto.UpdatedAt = rule.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// ceilSeconds rounds up so a pending boundary never reads as zero seconds.
func ceilSeconds(d time.Duration) int64 {
	return int64((d + time.Second - 1) / time.Second)
}

// =============================================================================
// QUOTE ENDPOINTS
// =============================================================================

// Quote returns the best discount for a product and quantity.
// POST /api/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuote(w, r)
	if !ok {
		return
	}

	decision, err := h.Quoter.BestDiscount(r.Context(), req.Product.toProduct(), req.Quantity, h.environment(req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rules", err)
		return
	}
	writeJSON(w, http.StatusOK, toDecisionDTO(decision))
}

// Price returns the final unit price and line total for a product and quantity.
// POST /api/price
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuote(w, r)
	if !ok {
		return
	}

	quantity := pricing.NormalizeQuantity(req.Quantity)
	unit, err := h.Quoter.PriceFor(r.Context(), req.Product.toProduct(), quantity, h.environment(req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rules", err)
		return
	}
	writeJSON(w, http.StatusOK, PriceDTO{
		Quantity:  quantity,
		UnitPrice: unit,
		Total:     unit.Mul(decimal.NewFromInt(int64(quantity))),
	})
}

// ListDiscounts returns every discount that applies to a product.
// POST /api/discounts
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuote(w, r)
	if !ok {
		return
	}

	discounts, err := h.Quoter.AllDiscounts(r.Context(), req.Product.toProduct(), h.environment(req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rules", err)
		return
	}
	writeJSON(w, http.StatusOK, toDiscountDTOs(discounts))
}

// PriceTable returns the quantity price table for a product.
// POST /api/price-table
func (h *Handler) PriceTable(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuote(w, r)
	if !ok {
		return
	}

	rows, err := h.Quoter.PriceTable(r.Context(), req.Product.toProduct(), h.environment(req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rules", err)
		return
	}
	writeJSON(w, http.StatusOK, toTierRowDTOs(rows))
}

// CartSummary returns what a priced cart saved.
// POST /api/cart/summary
func (h *Handler) CartSummary(w http.ResponseWriter, r *http.Request) {
	var cart CartDTO
	if err := json.NewDecoder(r.Body).Decode(&cart); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartSummaryDTO(h.Quoter.Resolver.CartDiscountSummary(cart.toCart())))
}

func decodeQuote(w http.ResponseWriter, r *http.Request) (QuoteRequest, bool) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if req.Product.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "Product price must not be negative", nil)
		return req, false
	}
	return req, true
}

func (h *Handler) environment(req QuoteRequest) pricing.Environment {
	return pricing.Environment{
		Now:        h.Now(),
		UserID:     req.UserID,
		UserGroups: req.UserGroups,
		Cart:       req.Cart.toCart(),
	}
}

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

// UpcomingRules lists rules that start in the future, soonest first.
// GET /api/schedule/upcoming?limit=10
func (h *Handler) UpcomingRules(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	rules, err := h.Lifecycle.UpcomingRules(r.Context(), h.Now(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list upcoming rules", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRuleDTOs(rules))
}

// ExpiringRules lists active rules that end within the next days.
// GET /api/schedule/expiring?days=7
func (h *Handler) ExpiringRules(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", 7)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid days", err)
		return
	}

	rules, err := h.Lifecycle.ExpiringRules(r.Context(), h.Now(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expiring rules", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRuleDTOs(rules))
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return v, nil
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// TriggerStatusCheck runs the status check immediately.
// POST /api/admin/status-check
func (h *Handler) TriggerStatusCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.Scheduler.RunStatusCheck(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Status check failed", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusCheckDTO{Activated: report.Activated, Expired: report.Expired})
}

// TriggerCleanup runs daily maintenance immediately.
// POST /api/admin/cleanup
func (h *Handler) TriggerCleanup(w http.ResponseWriter, r *http.Request) {
	report, err := h.Scheduler.RunCleanup(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Cleanup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, CleanupDTO{
		Expired:        report.Expired,
		QuantityRanges: report.Orphans.QuantityRanges,
		RuleItems:      report.Orphans.RuleItems,
		Exclusions:     report.Orphans.Exclusions,
		GiftProducts:   report.Orphans.GiftProducts,
		Truncated:      report.Orphans.Truncated,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps store errors to a status code.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case pricing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case pricing.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
