/*
schedule.go - Activation window queries and lifecycle transitions

STATES:
  scheduled -> active -> expired
  inactive is a manual disable and is never touched by time.

TRANSITIONS (evaluated against now):
  scheduled -> active: schedule_from set, now >= schedule_from,
                       and schedule_to unset or now <= schedule_to
  active -> expired:   schedule_to set and now > schedule_to

QUERIES:
  IsScheduledActive looks at the window only, never at status. A rule can be
  inside its window and still be inactive. Callers check both.

SEE ALSO:
  - lifecycle.go: Batch application against a LifecycleStore
*/
package pricing

import "time"

// =============================================================================
// WINDOW QUERIES
// =============================================================================

// IsScheduledActive reports whether now lies inside the rule's window.
// Unset bounds are open.
func IsScheduledActive(rule Rule, now time.Time) bool {
	if rule.ScheduleFrom != nil && now.Before(*rule.ScheduleFrom) {
		return false
	}
	if rule.ScheduleTo != nil && now.After(*rule.ScheduleTo) {
		return false
	}
	return true
}

// TimeUntilStart returns how long until the window opens.
// ok is false when there is no start or it has already passed.
func TimeUntilStart(rule Rule, now time.Time) (d time.Duration, ok bool) {
	if rule.ScheduleFrom == nil || !rule.ScheduleFrom.After(now) {
		return 0, false
	}
	return rule.ScheduleFrom.Sub(now), true
}

// TimeUntilEnd returns how long until the window closes.
// ok is false when there is no end. An end already reached yields (0, true).
func TimeUntilEnd(rule Rule, now time.Time) (d time.Duration, ok bool) {
	if rule.ScheduleTo == nil {
		return 0, false
	}
	if !rule.ScheduleTo.After(now) {
		return 0, true
	}
	return rule.ScheduleTo.Sub(now), true
}

// =============================================================================
// TRANSITION PREDICATES
// =============================================================================

// ShouldActivate is the scheduled -> active predicate.
func ShouldActivate(rule Rule, now time.Time) bool {
	if rule.Status != StatusScheduled || rule.ScheduleFrom == nil {
		return false
	}
	if now.Before(*rule.ScheduleFrom) {
		return false
	}
	return rule.ScheduleTo == nil || !now.After(*rule.ScheduleTo)
}

// ShouldExpire is the active -> expired predicate.
func ShouldExpire(rule Rule, now time.Time) bool {
	return rule.Status == StatusActive && rule.ScheduleTo != nil && now.After(*rule.ScheduleTo)
}

// IsUpcoming is the upcoming-rules selection predicate.
func IsUpcoming(rule Rule, now time.Time) bool {
	return rule.ScheduleFrom != nil && rule.ScheduleFrom.After(now)
}

// IsExpiringWithin is the expiring-rules selection predicate:
// active and schedule_to between now and now+within, inclusive.
func IsExpiringWithin(rule Rule, now time.Time, within time.Duration) bool {
	if rule.Status != StatusActive || rule.ScheduleTo == nil {
		return false
	}
	end := *rule.ScheduleTo
	return !end.Before(now) && !end.After(now.Add(within))
}

// Days converts a day count to a duration for ExpiringRules.
func Days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// =============================================================================
// SET APPLICATION
// =============================================================================

// TransitionReport counts rules moved by one status check.
type TransitionReport struct {
	Activated int64
	Expired   int64
}

// ActivateDue sets every rule ShouldActivate selects to active, in place,
// and returns the indexes it changed.
func ActivateDue(rules []Rule, now time.Time) []int {
	return applyWhere(rules, StatusActive, func(r Rule) bool { return ShouldActivate(r, now) })
}

// ExpireOverdue sets every rule ShouldExpire selects to expired, in place,
// and returns the indexes it changed.
func ExpireOverdue(rules []Rule, now time.Time) []int {
	return applyWhere(rules, StatusExpired, func(r Rule) bool { return ShouldExpire(r, now) })
}

func applyWhere(rules []Rule, to Status, match func(Rule) bool) []int {
	var changed []int
	for i := range rules {
		if match(rules[i]) {
			rules[i].Status = to
			changed = append(changed, i)
		}
	}
	return changed
}
