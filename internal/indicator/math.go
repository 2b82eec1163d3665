package indicator

import "math"

// nanSeries returns a slice of length n filled with NaN, the kernel's
// standard "not enough history yet" placeholder.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// trueRange computes the True Range series: max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close, so its true range is simply high-low.
func trueRange(highs, lows, closes []float64) []float64 {
	n := len(closes)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
			continue
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// wilderSmooth applies Wilder's smoothing (an EMA variant with alpha =
// 1/period) to src, seeding the first non-NaN value with a simple
// average of the first `period` values.
func wilderSmooth(src []float64, period int) []float64 {
	n := len(src)
	out := nanSeries(n)
	if period <= 0 || n < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += src[i]
	}
	out[period-1] = sum / float64(period)
	for i := period; i < n; i++ {
		out[i] = (out[i-1]*float64(period-1) + src[i]) / float64(period)
	}
	return out
}

// simpleMovingAverage computes an SMA with the given period, NaN-padded
// for indices before the window fills, honoring minPeriods as the
// minimum count needed to emit a value (used by ATR's min_periods=1).
func simpleMovingAverage(src []float64, period, minPeriods int) []float64 {
	n := len(src)
	out := nanSeries(n)
	if period <= 0 {
		return out
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += src[i]
		if i >= period {
			sum -= src[i-period]
		}
		count := i + 1
		if count > period {
			count = period
		}
		if count >= minPeriods {
			out[i] = sum / float64(count)
		}
	}
	return out
}

// exponentialMovingAverage computes a standard EMA with smoothing factor
// 2/(period+1), seeded with an SMA of the first `period` values.
func exponentialMovingAverage(src []float64, period int) []float64 {
	n := len(src)
	out := nanSeries(n)
	if period <= 0 || n < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += src[i]
	}
	out[period-1] = sum / float64(period)
	k := 2.0 / float64(period+1)
	for i := period; i < n; i++ {
		out[i] = src[i]*k + out[i-1]*(1-k)
	}
	return out
}

func isNaN(f float64) bool { return f != f }
