package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/aliyansayz/marketwatch/internal/indicator"
	"github.com/aliyansayz/marketwatch/internal/model"
)

func syntheticFrame(n int, trendUp bool) model.Frame {
	bars := make([]model.Bar, n)
	price := 100.0
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		drift := 0.15
		if !trendUp {
			drift = -0.15
		}
		price += drift + math.Sin(float64(i)/7.0)*0.5
		bars[i] = model.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price - 0.2,
			High:      price + 0.8,
			Low:       price - 0.8,
			Close:     price,
			Volume:    1000,
		}
	}
	return model.Frame{Symbol: "TEST", Interval: model.Interval1Hour, Bars: bars}
}

// flatFrame builds a genuinely flat market: identical open/high/low/close
// on every bar, so every indicator's range-based measures (ATR foremost)
// come out at exactly zero.
func flatFrame(n int) model.Frame {
	bars := make([]model.Bar, n)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		bars[i] = model.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      100,
			High:      100,
			Low:       100,
			Close:     100,
			Volume:    1000,
		}
	}
	return model.Frame{Symbol: "TEST", Interval: model.Interval1Hour, Bars: bars}
}

func defaultRecipe() indicator.Recipe {
	return indicator.Recipe{Specs: []indicator.Spec{
		{Family: indicator.FamilyRSI},
		{Family: indicator.FamilyStochastic},
		{Family: indicator.FamilyWilliamsR},
		{Family: indicator.FamilyCCI},
		{Family: indicator.FamilyMACD},
		{Family: indicator.FamilyADX},
		{Family: indicator.FamilyATR},
	}}
}

func TestRegistryUnknownStrategyErrors(t *testing.T) {
	r := NewDefaultRegistry()
	_, err := r.Get("does-not-exist")
	if !model.IsKind(err, model.KindUnknownStrategy) {
		t.Fatalf("expected UnknownStrategy, got %v", err)
	}
}

func TestRegistryLegacyAlias(t *testing.T) {
	r := NewDefaultRegistry()
	s, err := r.Get("single-check")
	if err != nil {
		t.Fatalf("alias lookup failed: %v", err)
	}
	if s.Name() != DefaultName {
		t.Fatalf("expected alias to resolve to %s, got %s", DefaultName, s.Name())
	}
}

func TestDefaultStrategyValidateDefaults(t *testing.T) {
	s := NewDefaultStrategy()
	if _, err := s.Validate(nil); err != nil {
		t.Fatalf("validate(nil) should succeed on an empty template: %v", err)
	}
}

func TestDualSupertrendValidateDefaultsSucceeds(t *testing.T) {
	s := NewDualSupertrendStrategy()
	tmpl := s.ParameterTemplate()
	if _, err := s.Validate(tmpl.Defaults()); err != nil {
		t.Fatalf("validate(defaults) should succeed: %v", err)
	}
}

func TestDualSupertrendValidateOutOfRangeFails(t *testing.T) {
	s := NewDualSupertrendStrategy()
	params := s.ParameterTemplate().Defaults()
	params["supertrend_a_period"] = model.IntValue(999)
	_, err := s.Validate(params)
	if err == nil {
		t.Fatal("expected validation error for out-of-range supertrend_a_period")
	}
	pve, ok := err.(*model.ParameterValidationError)
	if !ok {
		t.Fatalf("expected *ParameterValidationError, got %T", err)
	}
	found := false
	for _, f := range pve.Fields {
		if contains(f, "supertrend_a_period") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected offending field named in error, got %v", pve.Fields)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestDefaultStrategyInsufficientHistoryIsNeutral(t *testing.T) {
	frame := syntheticFrame(5, true)
	s := NewDefaultStrategy()
	verdict := s.Analyze(frame, nil, nil, nil)
	if verdict.Sentiment != model.SentimentNeutral || verdict.Confidence != 0 {
		t.Fatalf("expected neutral zero-confidence verdict, got %+v", verdict)
	}
	if verdict.Reasons[0] != model.ReasonInsufficientHistory {
		t.Fatalf("expected insufficient_history reason, got %v", verdict.Reasons)
	}
}

func TestDefaultStrategyBullishTrendLeansBullish(t *testing.T) {
	// 94 bars end on a rising stretch of the fixture's sine wiggle (the last
	// seven closes all climb); a longer frame can end in a pullback instead.
	frame := syntheticFrame(94, true)
	results, err := indicator.Compute(frame, defaultRecipe())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	s := NewDefaultStrategy()
	verdict := s.Analyze(frame, nil, results, nil)
	if verdict.ConfirmationsBuy < verdict.ConfirmationsSell {
		t.Fatalf("expected an uptrend to lean bullish, got buy=%d sell=%d", verdict.ConfirmationsBuy, verdict.ConfirmationsSell)
	}
}

func TestDualSupertrendFlatMarketNeverPanics(t *testing.T) {
	frame := flatFrame(60)
	s := NewDualSupertrendStrategy()
	params := s.ParameterTemplate().Defaults()
	recipe := indicator.Recipe{Specs: []indicator.Spec{
		{Family: indicator.FamilySupertrend, Name: "supertrend_a", Params: map[string]float64{"period": 15, "multiplier": 3.142}},
		{Family: indicator.FamilySupertrend, Name: "supertrend_b", Params: map[string]float64{"period": 6, "multiplier": 0.66}},
		{Family: indicator.FamilyRSI},
		{Family: indicator.FamilyMACD},
		{Family: indicator.FamilyADX},
		{Family: indicator.FamilyATR},
	}}
	results, err := indicator.Compute(frame, recipe)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	verdict := s.Analyze(frame, params, results, nil)
	if verdict.Sentiment == "" {
		t.Fatal("expected a populated sentiment")
	}
}

func TestDualSupertrendFlatMarketReportsInsufficientVolatility(t *testing.T) {
	frame := flatFrame(60)
	s := NewDualSupertrendStrategy()
	params := s.ParameterTemplate().Defaults()
	recipe := indicator.Recipe{Specs: []indicator.Spec{
		{Family: indicator.FamilySupertrend, Name: "supertrend_a", Params: map[string]float64{"period": 15, "multiplier": 3.142}},
		{Family: indicator.FamilySupertrend, Name: "supertrend_b", Params: map[string]float64{"period": 6, "multiplier": 0.66}},
		{Family: indicator.FamilyRSI},
		{Family: indicator.FamilyMACD},
		{Family: indicator.FamilyADX},
		{Family: indicator.FamilyATR},
	}}
	results, err := indicator.Compute(frame, recipe)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	verdict := s.Analyze(frame, params, results, nil)
	if verdict.Sentiment != model.SentimentNeutral {
		t.Fatalf("expected neutral sentiment on a flat market, got %v", verdict.Sentiment)
	}
	if len(verdict.Reasons) != 1 || verdict.Reasons[0] != model.ReasonInsufficientVolatility {
		t.Fatalf("expected insufficient_volatility reason, got %v", verdict.Reasons)
	}
}

func TestDefaultStrategyFlatMarketReportsInsufficientVolatility(t *testing.T) {
	frame := flatFrame(60)
	results, err := indicator.Compute(frame, defaultRecipe())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	s := NewDefaultStrategy()
	verdict := s.Analyze(frame, nil, results, nil)
	if verdict.Sentiment != model.SentimentNeutral {
		t.Fatalf("expected neutral sentiment on a flat market, got %v", verdict.Sentiment)
	}
	if len(verdict.Reasons) != 1 || verdict.Reasons[0] != model.ReasonInsufficientVolatility {
		t.Fatalf("expected insufficient_volatility reason, got %v", verdict.Reasons)
	}
}

func TestConfirmationConfidenceMatchesMaxOverN(t *testing.T) {
	cases := []struct {
		bull, bear int
		want       float64
	}{
		{bull: 4, bear: 1, want: 4.0 / 6.0},
		{bull: 1, bear: 4, want: 4.0 / 6.0},
		{bull: 3, bear: 3, want: 3.0 / 6.0}, // a genuine tie still reports count/N, not 0
		{bull: 0, bear: 0, want: 0},
	}
	for _, c := range cases {
		got := confirmationConfidence(c.bull, c.bear, defaultConfirmationCount)
		if got != c.want {
			t.Errorf("confirmationConfidence(%d, %d, %d) = %v, want %v", c.bull, c.bear, defaultConfirmationCount, got, c.want)
		}
	}
}
