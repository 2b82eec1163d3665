// Package calendar gates an AlertPolicy's active weekdays/hours/timezone
// against a wall-clock instant. It is the generalized form of a
// single-market trading-hours check: rather than one hardcoded exchange
// calendar, it evaluates whatever weekday/hour subsets a policy
// specifies, in whatever timezone that policy names — forex and crypto
// monitors can specify all 7 days and all 24 hours, while an equities
// monitor can narrow to its exchange's session.
package calendar

import (
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// WithinActiveWindow reports whether now falls inside policy's active
// weekdays and hours, evaluated in policy's timezone. An unparseable or
// empty timezone falls back to UTC.
func WithinActiveWindow(policy model.AlertPolicy, now time.Time) bool {
	loc, err := time.LoadLocation(policy.Timezone)
	if err != nil || policy.Timezone == "" {
		loc = time.UTC
	}
	local := now.In(loc)

	if len(policy.ActiveWeekdays) > 0 && !containsInt(policy.ActiveWeekdays, int(local.Weekday())) {
		return false
	}
	if len(policy.ActiveHours) > 0 && !containsInt(policy.ActiveHours, local.Hour()) {
		return false
	}
	return true
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
