/*
errors.go - Error types for the price rule engine

PURPOSE:
  The resolution path never fails: no eligible rule, unknown discount types
  and zero prices all produce well-defined zero results. Errors exist only
  around the edges, where rules are loaded, validated and persisted.

SEE ALSO:
  - store.go: Store interfaces returning these errors
  - factory/rule.go: Wraps validation failures
*/
package pricing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRuleNotFound is returned when a referenced rule doesn't exist.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrInvalidRule is returned when a rule definition is malformed.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrInvalidSchedule is returned when schedule_to is before schedule_from.
	ErrInvalidSchedule = errors.New("invalid schedule: end before start")

	// ErrUnknownStatus is returned for a status outside the lifecycle.
	ErrUnknownStatus = errors.New("unknown rule status")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RuleValidationError names the offending field of a rule definition.
type RuleValidationError struct {
	RuleName string
	Field    string
	Reason   string
	Err      error
}

func (e *RuleValidationError) Error() string {
	return fmt.Sprintf("rule %q: %s: %s", e.RuleName, e.Field, e.Reason)
}

func (e *RuleValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidRule
}

// Validate checks the structural invariants a store will rely on.
// It does not check tier overlap; tier order is the author's business.
func (r Rule) Validate() error {
	if r.Name == "" {
		return &RuleValidationError{RuleName: r.Name, Field: "name", Reason: "required"}
	}
	if !r.Status.Valid() {
		return &RuleValidationError{RuleName: r.Name, Field: "status", Reason: string(r.Status), Err: ErrUnknownStatus}
	}
	if r.DiscountValue.IsNegative() {
		return &RuleValidationError{RuleName: r.Name, Field: "discount_value", Reason: "must not be negative"}
	}
	if r.ScheduleFrom != nil && r.ScheduleTo != nil && r.ScheduleTo.Before(*r.ScheduleFrom) {
		return &RuleValidationError{RuleName: r.Name, Field: "schedule_to", Reason: "before schedule_from", Err: ErrInvalidSchedule}
	}
	for i, tier := range r.QuantityRanges {
		if tier.MinQuantity < 0 {
			return &RuleValidationError{RuleName: r.Name, Field: fmt.Sprintf("quantity_ranges[%d].min_quantity", i), Reason: "must not be negative"}
		}
		if tier.MaxQuantity != nil && *tier.MaxQuantity < tier.MinQuantity {
			return &RuleValidationError{RuleName: r.Name, Field: fmt.Sprintf("quantity_ranges[%d].max_quantity", i), Reason: "below min_quantity"}
		}
		if tier.DiscountValue.IsNegative() {
			return &RuleValidationError{RuleName: r.Name, Field: fmt.Sprintf("quantity_ranges[%d].discount_value", i), Reason: "must not be negative"}
		}
	}
	return nil
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing rule.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

// IsClientError returns true if the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRule) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrUnknownStatus)
}
