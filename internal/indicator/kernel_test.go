package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

func syntheticFrame(n int) model.Frame {
	bars := make([]model.Bar, n)
	price := 100.0
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price += math.Sin(float64(i)/5.0) * 1.5
		bars[i] = model.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price - 0.3,
			High:      price + 1.0,
			Low:       price - 1.0,
			Close:     price,
			Volume:    1000,
		}
	}
	return model.Frame{Symbol: "TEST", Interval: model.Interval1Hour, Bars: bars}
}

func TestComputeIsDeterministic(t *testing.T) {
	frame := syntheticFrame(120)
	recipe := Recipe{Specs: []Spec{
		{Family: FamilyRSI, Params: map[string]float64{"period": 14}},
		{Family: FamilyMACD},
		{Family: FamilySupertrend, Params: map[string]float64{"period": 10, "multiplier": 3}},
	}}

	r1, err := Compute(frame, recipe)
	if err != nil {
		t.Fatalf("compute 1: %v", err)
	}
	r2, err := Compute(frame, recipe)
	if err != nil {
		t.Fatalf("compute 2: %v", err)
	}

	for i := range r1 {
		for line, series := range r1[i].Series {
			other := r2[i].Series[line]
			for j := range series {
				a, b := series[j], other[j]
				if isNaN(a) && isNaN(b) {
					continue
				}
				if a != b {
					t.Fatalf("non-deterministic output at spec %d line %s idx %d: %v != %v", i, line, j, a, b)
				}
			}
		}
	}
}

func TestComputeRejectsDuplicateTimestamps(t *testing.T) {
	frame := syntheticFrame(20)
	frame.Bars[5].Timestamp = frame.Bars[4].Timestamp

	_, err := Compute(frame, Recipe{Specs: []Spec{{Family: FamilyRSI}}})
	if !model.IsKind(err, model.KindInvalidFrame) {
		t.Fatalf("expected InvalidFrame, got %v", err)
	}
}

func TestComputeUnknownFamily(t *testing.T) {
	frame := syntheticFrame(20)
	_, err := Compute(frame, Recipe{Specs: []Spec{{Family: "not_a_family"}}})
	if !model.IsKind(err, model.KindUnknownIndicator) {
		t.Fatalf("expected UnknownIndicator, got %v", err)
	}
}

func TestRSIInsufficientHistoryYieldsNaNNotShortCircuit(t *testing.T) {
	closes := []float64{100, 101, 99, 102}
	rsi := RSI(closes, 14)
	if len(rsi) != len(closes) {
		t.Fatalf("expected series length %d, got %d", len(closes), len(rsi))
	}
	for i, v := range rsi {
		if !isNaN(v) {
			t.Fatalf("expected NaN at %d with insufficient history, got %v", i, v)
		}
	}
}

func TestSupertrendDirectionInvariant(t *testing.T) {
	frame := syntheticFrame(200)
	st, dir := Supertrend(frame.Highs(), frame.Lows(), frame.Closes(), 10, 3)

	if dir[0] != 1 {
		t.Fatalf("direction[0] must be +1, got %v", dir[0])
	}
	for i, d := range dir {
		if d != 1 && d != -1 {
			t.Fatalf("direction[%d] = %v, want +1 or -1", i, d)
		}
	}

	highs, lows, closes := frame.Highs(), frame.Lows(), frame.Closes()
	tr := trueRange(highs, lows, closes)
	atr := simpleMovingAverage(tr, 10, 1)
	for i := 1; i < len(dir); i++ {
		hl2 := (highs[i] + lows[i]) / 2
		upperband := hl2 + 3*atr[i]
		lowerband := hl2 - 3*atr[i]
		if dir[i] == 1 && st[i] != lowerband {
			t.Fatalf("st[%d] should equal lowerband when direction=+1", i)
		}
		if dir[i] == -1 && st[i] != upperband {
			t.Fatalf("st[%d] should equal upperband when direction=-1", i)
		}
	}
}

func TestSupertrendFlatMarketKeepsInitialDirection(t *testing.T) {
	n := 50
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range closes {
		highs[i], lows[i], closes[i] = 100, 100, 100
	}

	_, dir := Supertrend(highs, lows, closes, 14, 3)
	for i, d := range dir {
		if d != 1 {
			t.Fatalf("flat market: direction[%d] = %v, want +1 (no close ever exceeds a zero-width band)", i, d)
		}
	}
}

func TestATRNeverNegativeOnFlatMarket(t *testing.T) {
	n := 50
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range closes {
		highs[i], lows[i], closes[i] = 100, 100, 100
	}
	atr := ATR(highs, lows, closes, 14)
	for i, v := range atr {
		if v < 0 {
			t.Fatalf("atr[%d] = %v, want >= 0", i, v)
		}
		if v != 0 {
			t.Fatalf("atr[%d] = %v, want 0 on a fully flat market", i, v)
		}
	}
}
