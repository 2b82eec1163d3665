package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// diffResult is one triggered condition, pending dedup and delivery.
type diffResult struct {
	condition model.AlertCondition
	severity  model.Severity
	payload   map[string]any
}

// evaluateDiffRules runs every condition enabled on policy against the
// (last, current) verdict pair, independently — a tick can produce
// events for more than one condition at once. hasLast must be false on
// a monitor's first successful run; every rule needs a prior verdict to
// diff against except validity_loss, which only needs an entry snapshot.
func evaluateDiffRules(policy model.AlertPolicy, hasLast bool, last, current model.Verdict, entry *model.EntrySnapshot) []diffResult {
	var out []diffResult

	if hasLast {
		if policy.HasCondition(model.ConditionSentimentFlip) {
			if d, ok := sentimentFlip(last, current); ok {
				out = append(out, d)
			}
		}
		if policy.HasCondition(model.ConditionConfidenceDrift) {
			if d, ok := confidenceDrift(last, current, policy.MinConfidenceDrift); ok {
				out = append(out, d)
			}
		}
		if policy.HasCondition(model.ConditionATRBandShift) {
			if d, ok := atrBandShift(last, current, policy.MinBandShiftUnits); ok {
				out = append(out, d)
			}
		}
		if policy.HasCondition(model.ConditionNewCrossover) {
			out = append(out, newCrossovers(last, current)...)
		}
	}

	if policy.HasCondition(model.ConditionValidityLoss) {
		if d, ok := validityLoss(entry, current); ok {
			out = append(out, d)
		}
	}

	return out
}

func sentimentFlip(last, current model.Verdict) (diffResult, bool) {
	if last.Sentiment == current.Sentiment {
		return diffResult{}, false
	}
	involvesNeutral := last.Sentiment == model.SentimentNeutral || current.Sentiment == model.SentimentNeutral
	if involvesNeutral && current.Confidence < 0.5 {
		return diffResult{}, false
	}
	return diffResult{
		condition: model.ConditionSentimentFlip,
		severity:  model.SeverityWarn,
		payload: map[string]any{
			"old_sentiment": string(last.Sentiment),
			"new_sentiment": string(current.Sentiment),
			"confidence":    current.Confidence,
		},
	}, true
}

func confidenceDrift(last, current model.Verdict, minDrift float64) (diffResult, bool) {
	delta := math.Abs(current.Confidence - last.Confidence)
	if delta < minDrift {
		return diffResult{}, false
	}
	return diffResult{
		condition: model.ConditionConfidenceDrift,
		severity:  model.SeverityInfo,
		payload: map[string]any{
			"old_confidence": last.Confidence,
			"new_confidence": current.Confidence,
			"delta":          delta,
		},
	}, true
}

// atrBandShift compares the risk-level bands carried on each verdict —
// the ATR-derived stop/target prices — and fires if either the long or
// short pair moved by at least minUnits price units.
func atrBandShift(last, current model.Verdict, minUnits float64) (diffResult, bool) {
	longShift := math.Abs(current.RiskLevels.StopLong-last.RiskLevels.StopLong) >= minUnits ||
		math.Abs(current.RiskLevels.TargetLong-last.RiskLevels.TargetLong) >= minUnits
	shortShift := math.Abs(current.RiskLevels.StopShort-last.RiskLevels.StopShort) >= minUnits ||
		math.Abs(current.RiskLevels.TargetShort-last.RiskLevels.TargetShort) >= minUnits
	if !longShift && !shortShift {
		return diffResult{}, false
	}
	return diffResult{
		condition: model.ConditionATRBandShift,
		severity:  model.SeverityInfo,
		payload: map[string]any{
			"old_bands":          last.RiskLevels,
			"new_bands":          current.RiskLevels,
			"suggested_trailing": current.RiskLevels.StopLong,
		},
	}, true
}

// validityLoss fires when an open entry's thesis breaks: the current
// sentiment has swung against the entry direction, or confidence has
// collapsed more than 0.2 below the entry's confidence.
func validityLoss(entry *model.EntrySnapshot, current model.Verdict) (diffResult, bool) {
	if entry == nil {
		return diffResult{}, false
	}
	disagrees := current.Sentiment != model.SentimentNeutral && current.Sentiment != entry.Sentiment
	confidenceCollapsed := current.Confidence < entry.Confidence-0.2
	if !disagrees && !confidenceCollapsed {
		return diffResult{}, false
	}
	return diffResult{
		condition: model.ConditionValidityLoss,
		severity:  model.SeverityWarn,
		payload: map[string]any{
			"entry_sentiment":    string(entry.Sentiment),
			"entry_confidence":   entry.Confidence,
			"entry_captured_at":  entry.CapturedAt,
			"current_sentiment":  string(current.Sentiment),
			"current_confidence": current.Confidence,
		},
	}, true
}

// newCrossovers reports every crossover in current not already present
// (by kind/lines/bar) in last — a crossover the previous tick had not
// yet seen.
func newCrossovers(last, current model.Verdict) []diffResult {
	seen := make(map[string]bool, len(last.CrossoverEvents))
	for _, e := range last.CrossoverEvents {
		seen[crossoverKey(e)] = true
	}
	var out []diffResult
	for _, e := range current.CrossoverEvents {
		if seen[crossoverKey(e)] {
			continue
		}
		out = append(out, diffResult{
			condition: model.ConditionNewCrossover,
			severity:  model.SeverityInfo,
			payload: map[string]any{
				"kind":         string(e.Kind),
				"fast_line":    e.FastLine,
				"slow_line":    e.SlowLine,
				"bar_index":    e.BarIndex,
				"adx_at_cross": e.ADXAtCross,
			},
		})
	}
	return out
}

func crossoverKey(e model.CrossoverEvent) string {
	return fmt.Sprintf("%s|%s|%s|%d", e.Kind, e.FastLine, e.SlowLine, e.BarIndex)
}

// updateEntrySnapshot advances the entry snapshot after a tick: a swing
// to neutral closes the position (no entry to defend); a swing to a new
// non-neutral sentiment opens a fresh one; anything else leaves the
// existing entry in place so validity_loss keeps comparing against the
// original entry rather than resetting on every tick.
func updateEntrySnapshot(existing *model.EntrySnapshot, current model.Verdict, now time.Time) *model.EntrySnapshot {
	if current.Sentiment == model.SentimentNeutral {
		return nil
	}
	if existing == nil || existing.Sentiment != current.Sentiment {
		return &model.EntrySnapshot{
			Sentiment:  current.Sentiment,
			Confidence: current.Confidence,
			CapturedAt: now,
		}
	}
	return existing
}
