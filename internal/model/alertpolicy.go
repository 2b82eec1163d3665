package model

import (
	"fmt"
	"sort"
	"strings"
)

// AlertCondition enumerates the diff rules the Scheduler can evaluate.
type AlertCondition string

const (
	ConditionSentimentFlip   AlertCondition = "sentiment_flip"
	ConditionConfidenceDrift AlertCondition = "confidence_drift"
	ConditionATRBandShift    AlertCondition = "atr_band_shift"
	ConditionValidityLoss    AlertCondition = "validity_loss"
	ConditionNewCrossover    AlertCondition = "new_crossover"
)

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// AlertPolicy controls whether and how often a monitor is evaluated, and
// which diff rules can produce an event.
type AlertPolicy struct {
	Enabled             bool
	CadenceMinutes      int
	ActiveWeekdays      []int // subset of 0..6, 0=Sunday
	ActiveHours         []int // subset of 0..23, local to Timezone
	Timezone            string
	Conditions          []AlertCondition
	MinConfidenceDrift  float64
	MinBandShiftUnits   float64
}

// HasCondition reports whether cond is enabled on this policy.
func (p AlertPolicy) HasCondition(cond AlertCondition) bool {
	for _, c := range p.Conditions {
		if c == cond {
			return true
		}
	}
	return false
}

// Describe renders a human-readable summary of the active schedule
// window, for CLI/log display. It has no effect on resolution or
// gating logic.
func (p AlertPolicy) Describe() string {
	if !p.Enabled {
		return "disabled"
	}
	days := make([]int, len(p.ActiveWeekdays))
	copy(days, p.ActiveWeekdays)
	sort.Ints(days)
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < 7 {
			names = append(names, weekdayNames[d])
		}
	}
	hours := make([]int, len(p.ActiveHours))
	copy(hours, p.ActiveHours)
	sort.Ints(hours)
	return fmt.Sprintf("every %dmin on [%s] during hours %v (%s)",
		p.CadenceMinutes, strings.Join(names, ","), hours, p.Timezone)
}

// DefaultAlertPolicy returns the built-in defaults applied when neither
// the group nor the symbol specifies a policy.
func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{
		Enabled:            true,
		CadenceMinutes:     15,
		ActiveWeekdays:     []int{1, 2, 3, 4, 5},
		ActiveHours:        rangeInts(0, 23),
		Timezone:           "UTC",
		Conditions: []AlertCondition{
			ConditionSentimentFlip, ConditionConfidenceDrift, ConditionATRBandShift,
			ConditionValidityLoss, ConditionNewCrossover,
		},
		MinConfidenceDrift: 0.15,
		MinBandShiftUnits:  1.0,
	}
}

func rangeInts(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
