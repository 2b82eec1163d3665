package scheduler

import (
	"testing"
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

func TestSentimentFlipFiresOnDirectionalSwing(t *testing.T) {
	last := model.Verdict{Sentiment: model.SentimentBullish, Confidence: 0.8}
	current := model.Verdict{Sentiment: model.SentimentBearish, Confidence: 0.8}

	d, ok := sentimentFlip(last, current)
	if !ok {
		t.Fatal("expected sentiment flip to fire")
	}
	if d.condition != model.ConditionSentimentFlip {
		t.Errorf("condition = %v", d.condition)
	}
}

func TestSentimentFlipSuppressedByLowConfidenceNeutralSwing(t *testing.T) {
	last := model.Verdict{Sentiment: model.SentimentBullish, Confidence: 0.8}
	current := model.Verdict{Sentiment: model.SentimentNeutral, Confidence: 0.2}

	if _, ok := sentimentFlip(last, current); ok {
		t.Fatal("low-confidence neutral swing should not fire")
	}
}

func TestSentimentFlipNoChangeDoesNotFire(t *testing.T) {
	v := model.Verdict{Sentiment: model.SentimentBullish, Confidence: 0.9}
	if _, ok := sentimentFlip(v, v); ok {
		t.Fatal("identical sentiment should not fire")
	}
}

func TestConfidenceDriftThreshold(t *testing.T) {
	last := model.Verdict{Confidence: 0.5}
	current := model.Verdict{Confidence: 0.7}

	if _, ok := confidenceDrift(last, current, 0.25); ok {
		t.Fatal("delta below threshold should not fire")
	}
	if _, ok := confidenceDrift(last, current, 0.15); !ok {
		t.Fatal("delta above threshold should fire")
	}
}

func TestATRBandShiftFiresOnLongOrShortMove(t *testing.T) {
	last := model.Verdict{RiskLevels: model.RiskLevels{StopLong: 100, TargetLong: 110}}
	current := model.Verdict{RiskLevels: model.RiskLevels{StopLong: 105, TargetLong: 110}}

	if _, ok := atrBandShift(last, current, 1.0); !ok {
		t.Fatal("5-unit stop move should fire with a 1-unit threshold")
	}
	if _, ok := atrBandShift(last, current, 10.0); ok {
		t.Fatal("5-unit stop move should not fire with a 10-unit threshold")
	}
}

func TestValidityLossOnDisagreement(t *testing.T) {
	entry := &model.EntrySnapshot{Sentiment: model.SentimentBullish, Confidence: 0.7, CapturedAt: time.Now()}
	current := model.Verdict{Sentiment: model.SentimentBearish, Confidence: 0.7}

	if _, ok := validityLoss(entry, current); !ok {
		t.Fatal("directional disagreement should fire validity_loss")
	}
}

func TestValidityLossOnConfidenceCollapse(t *testing.T) {
	entry := &model.EntrySnapshot{Sentiment: model.SentimentBullish, Confidence: 0.8, CapturedAt: time.Now()}
	current := model.Verdict{Sentiment: model.SentimentBullish, Confidence: 0.5}

	if _, ok := validityLoss(entry, current); !ok {
		t.Fatal("confidence collapse past 0.2 should fire validity_loss")
	}
}

func TestValidityLossNilEntryNeverFires(t *testing.T) {
	current := model.Verdict{Sentiment: model.SentimentBearish, Confidence: 0.1}
	if _, ok := validityLoss(nil, current); ok {
		t.Fatal("nil entry snapshot should never fire validity_loss")
	}
}

func TestNewCrossoversOnlyReportsUnseen(t *testing.T) {
	shared := model.CrossoverEvent{Kind: model.CrossoverBullish, FastLine: "%K", SlowLine: "%D", BarIndex: 10}
	fresh := model.CrossoverEvent{Kind: model.CrossoverBearish, FastLine: "%K", SlowLine: "%D", BarIndex: 12}

	last := model.Verdict{CrossoverEvents: []model.CrossoverEvent{shared}}
	current := model.Verdict{CrossoverEvents: []model.CrossoverEvent{shared, fresh}}

	out := newCrossovers(last, current)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].condition != model.ConditionNewCrossover {
		t.Errorf("condition = %v", out[0].condition)
	}
}

func TestUpdateEntrySnapshotClearsOnNeutral(t *testing.T) {
	existing := &model.EntrySnapshot{Sentiment: model.SentimentBullish}
	got := updateEntrySnapshot(existing, model.Verdict{Sentiment: model.SentimentNeutral}, time.Now())
	if got != nil {
		t.Fatal("swing to neutral should clear the entry snapshot")
	}
}

func TestUpdateEntrySnapshotCapturesOnNewDirection(t *testing.T) {
	now := time.Now()
	got := updateEntrySnapshot(nil, model.Verdict{Sentiment: model.SentimentBullish, Confidence: 0.6}, now)
	if got == nil || got.Sentiment != model.SentimentBullish || got.Confidence != 0.6 {
		t.Fatalf("got = %+v, want captured bullish snapshot", got)
	}
}

func TestUpdateEntrySnapshotHoldsAcrossSameDirection(t *testing.T) {
	existing := &model.EntrySnapshot{Sentiment: model.SentimentBullish, Confidence: 0.9}
	got := updateEntrySnapshot(existing, model.Verdict{Sentiment: model.SentimentBullish, Confidence: 0.4}, time.Now())
	if got != existing {
		t.Fatal("same-direction swing should leave the original entry snapshot untouched")
	}
}

func TestEvaluateDiffRulesSkipsDisabledConditions(t *testing.T) {
	policy := model.AlertPolicy{Conditions: []model.AlertCondition{model.ConditionSentimentFlip}}
	last := model.Verdict{Sentiment: model.SentimentBullish, Confidence: 0.9}
	current := model.Verdict{Sentiment: model.SentimentBearish, Confidence: 0.9}

	out := evaluateDiffRules(policy, true, last, current, nil)
	for _, d := range out {
		if d.condition != model.ConditionSentimentFlip {
			t.Errorf("unexpected condition %v fired with only sentiment_flip enabled", d.condition)
		}
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (only sentiment_flip enabled)", len(out))
	}
}

func TestEvaluateDiffRulesSkipsAllOnFirstRun(t *testing.T) {
	policy := model.DefaultAlertPolicy()
	current := model.Verdict{Sentiment: model.SentimentBullish, Confidence: 0.9}

	out := evaluateDiffRules(policy, false, model.Verdict{}, current, nil)
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0 on first run with no entry snapshot", len(out))
	}
}
