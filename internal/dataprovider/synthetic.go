// Package dataprovider offers a deterministic synthetic implementation
// of model.DataProvider for tests and the cmd/analyze demo path. It is
// not a real market-data vendor integration — that stays out of scope —
// but it lets the engine run end to end without one.
package dataprovider

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// Synthetic generates deterministic OHLCV frames: the same
// (symbol, assetClass, interval, period) always produces the same price
// series, seeded off a hash of those fields rather than wall-clock time,
// so tests stay reproducible across runs. Bar timestamps end at the
// current time truncated to the interval.
type Synthetic struct {
	// BasePrice seeds the random walk's starting level for every symbol.
	// Defaults to 100 if zero or negative.
	BasePrice float64

	// FailSymbols, if set, makes Fetch return a KindDataUnavailable
	// error for the listed symbols — used to exercise the scheduler's
	// failure/backoff path deterministically in tests.
	FailSymbols map[string]bool
}

// NewSynthetic returns a Synthetic provider with default settings.
func NewSynthetic() *Synthetic {
	return &Synthetic{BasePrice: 100}
}

func intervalDuration(iv model.Interval) time.Duration {
	switch iv {
	case model.Interval1Min:
		return time.Minute
	case model.Interval5Min:
		return 5 * time.Minute
	case model.Interval15Min:
		return 15 * time.Minute
	case model.Interval1Hour:
		return time.Hour
	case model.Interval4Hour:
		return 4 * time.Hour
	case model.Interval1Day:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

func periodDuration(p model.Period) time.Duration {
	day := 24 * time.Hour
	switch p {
	case model.Period1Day:
		return day
	case model.Period5Day:
		return 5 * day
	case model.Period7Day:
		return 7 * day
	case model.Period1Week:
		return 7 * day
	case model.Period1Month:
		return 30 * day
	case model.Period3Month:
		return 90 * day
	case model.Period6Month:
		return 180 * day
	case model.Period1Year:
		return 365 * day
	case model.Period2Year:
		return 2 * 365 * day
	case model.Period5Year:
		return 5 * 365 * day
	case model.PeriodMax:
		return 10 * 365 * day
	default:
		return 30 * day
	}
}

// maxBars caps generated frame length so a "max" period request doesn't
// allocate millions of 1-minute bars.
const maxBars = 2000

func seedFor(symbol string, assetClass model.AssetClass, interval model.Interval, period model.Period) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	h.Write([]byte(assetClass))
	h.Write([]byte(interval))
	h.Write([]byte(period))
	return int64(h.Sum64())
}

// Fetch implements model.DataProvider with a deterministic random walk.
func (s *Synthetic) Fetch(ctx context.Context, symbol string, assetClass model.AssetClass, interval model.Interval, period model.Period) (model.Frame, error) {
	if s.FailSymbols[symbol] {
		return model.Frame{}, model.Errorf(model.KindDataUnavailable, "synthetic provider: %s marked unavailable", symbol)
	}
	select {
	case <-ctx.Done():
		return model.Frame{}, ctx.Err()
	default:
	}

	step := intervalDuration(interval)
	span := periodDuration(period)
	n := int(span / step)
	if n < 2 {
		n = 2
	}
	if n > maxBars {
		n = maxBars
	}

	rng := rand.New(rand.NewSource(seedFor(symbol, assetClass, interval, period)))
	base := s.BasePrice
	if base <= 0 {
		base = 100
	}

	end := time.Now().UTC().Truncate(step)
	start := end.Add(-time.Duration(n) * step)

	bars := make([]model.Bar, n)
	price := base
	for i := 0; i < n; i++ {
		drift := rng.NormFloat64() * base * 0.004
		price = math.Max(price+drift, base*0.1)

		open := price
		high := open + math.Abs(rng.NormFloat64())*base*0.002
		low := open - math.Abs(rng.NormFloat64())*base*0.002
		close := low + rng.Float64()*(high-low)
		if close > high {
			high = close
		}
		if close < low {
			low = close
		}
		volume := 1000 + rng.Float64()*9000

		bars[i] = model.Bar{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		}
		price = close
	}

	return model.Frame{
		Symbol:   symbol,
		Interval: interval,
		Bars:     bars,
	}, nil
}
