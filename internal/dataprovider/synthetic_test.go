package dataprovider

import (
	"context"
	"testing"

	"github.com/aliyansayz/marketwatch/internal/model"
)

func TestFetchIsDeterministic(t *testing.T) {
	s := NewSynthetic()
	ctx := context.Background()

	f1, err := s.Fetch(ctx, "NSE:RELIANCE", model.AssetStocks, model.Interval5Min, model.Period1Month)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	f2, err := s.Fetch(ctx, "NSE:RELIANCE", model.AssetStocks, model.Interval5Min, model.Period1Month)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(f1.Bars) != len(f2.Bars) {
		t.Fatalf("bar count differs across calls: %d vs %d", len(f1.Bars), len(f2.Bars))
	}
	for i := range f1.Bars {
		if f1.Bars[i].Close != f2.Bars[i].Close {
			t.Fatalf("bar %d close differs across calls: %f vs %f", i, f1.Bars[i].Close, f2.Bars[i].Close)
		}
	}

	if err := f1.Validate(); err != nil {
		t.Fatalf("generated frame invalid: %v", err)
	}
}

func TestFetchDifferentSymbolsDiffer(t *testing.T) {
	s := NewSynthetic()
	ctx := context.Background()

	f1, _ := s.Fetch(ctx, "NSE:RELIANCE", model.AssetStocks, model.Interval5Min, model.Period1Month)
	f2, _ := s.Fetch(ctx, "NSE:TCS", model.AssetStocks, model.Interval5Min, model.Period1Month)

	if f1.Bars[0].Close == f2.Bars[0].Close {
		t.Fatal("expected different symbols to produce different series")
	}
}

func TestFetchFailSymbolReturnsDataUnavailable(t *testing.T) {
	s := NewSynthetic()
	s.FailSymbols = map[string]bool{"NSE:DOWN": true}

	_, err := s.Fetch(context.Background(), "NSE:DOWN", model.AssetStocks, model.Interval5Min, model.Period1Month)
	if err == nil {
		t.Fatal("expected error for failing symbol")
	}
	if !model.IsKind(err, model.KindDataUnavailable) {
		t.Fatalf("expected KindDataUnavailable, got %v", err)
	}
}

func TestFetchRespectsMaxBars(t *testing.T) {
	s := NewSynthetic()
	f, err := s.Fetch(context.Background(), "NSE:RELIANCE", model.AssetStocks, model.Interval1Min, model.PeriodMax)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(f.Bars) > maxBars {
		t.Fatalf("bar count %d exceeds cap %d", len(f.Bars), maxBars)
	}
}
