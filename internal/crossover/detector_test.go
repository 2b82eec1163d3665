package crossover

import (
	"testing"

	"github.com/aliyansayz/marketwatch/internal/model"
)

func tsSeq(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(1700000000 + i*3600)
	}
	return out
}

func TestDetectBullishLineCross(t *testing.T) {
	a := []float64{10, 11, 12, 15, 16}
	b := []float64{12, 12, 12, 12, 12}
	in := Input{Source: SourceLine, A: a, B: b, Timestamps: tsSeq(5), ADX: []float64{20, 20, 20, 20, 20}}

	events := Detect(in, DefaultSettings())
	if len(events) != 1 {
		t.Fatalf("expected 1 bullish cross, got %d: %+v", len(events), events)
	}
	if events[0].Kind != model.CrossoverBullish {
		t.Fatalf("expected bullish, got %v", events[0].Kind)
	}
	if events[0].BarIndex != 3 {
		t.Fatalf("expected cross at bar 3, got %d", events[0].BarIndex)
	}
}

func TestDetectADXGateSuppressesCrossover(t *testing.T) {
	a := []float64{10, 11, 12, 15, 16}
	b := []float64{12, 12, 12, 12, 12}
	in := Input{Source: SourceLine, A: a, B: b, Timestamps: tsSeq(5), ADX: []float64{12, 12, 12, 12, 12}}

	events := Detect(in, DefaultSettings())
	if len(events) != 0 {
		t.Fatalf("expected adx gate to suppress all events, got %d", len(events))
	}
}

func TestDetectStateFlip(t *testing.T) {
	dir := []float64{1, 1, 1, -1, -1}
	in := Input{Source: SourceStateFlip, A: dir, Timestamps: tsSeq(5), ADX: []float64{20, 20, 20, 20, 20}}

	events := Detect(in, DefaultSettings())
	if len(events) != 1 {
		t.Fatalf("expected 1 state flip, got %d", len(events))
	}
	if events[0].BarIndex != 3 {
		t.Fatalf("expected flip at bar 3, got %d", events[0].BarIndex)
	}
}

func TestDetectDisabledReturnsNothing(t *testing.T) {
	a := []float64{10, 11, 12, 15, 16}
	b := []float64{12, 12, 12, 12, 12}
	in := Input{Source: SourceLine, A: a, B: b, Timestamps: tsSeq(5)}

	s := DefaultSettings()
	s.Enabled = false
	if events := Detect(in, s); events != nil {
		t.Fatalf("expected nil when disabled, got %v", events)
	}
}

func TestDetectOnlyScansLookbackWindow(t *testing.T) {
	a := make([]float64, 20)
	b := make([]float64, 20)
	adx := make([]float64, 20)
	for i := range a {
		a[i] = 10
		b[i] = 12
		adx[i] = 25 // above the ADX gate, so only the lookback can hide bar 2
	}
	a[2] = 15 // bullish cross far outside the lookback window

	s := DefaultSettings()
	s.Lookback = 3
	events := Detect(Input{Source: SourceLine, A: a, B: b, Timestamps: tsSeq(20), ADX: adx}, s)
	for _, e := range events {
		if e.BarIndex == 2 {
			t.Fatalf("cross outside lookback window should not be reported")
		}
	}
}
