package indicator

import "math"

// CCI computes the Commodity Channel Index: (typicalPrice - SMA) /
// (0.015 * meanDeviation). Unbounded output.
func CCI(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSeries(n)
	if period <= 0 || n < period {
		return out
	}

	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3.0
	}
	smaTP := simpleMovingAverage(tp, period, period)

	for i := period - 1; i < n; i++ {
		mean := smaTP[i]
		devSum := 0.0
		for j := i - period + 1; j <= i; j++ {
			devSum += math.Abs(tp[j] - mean)
		}
		meanDev := devSum / float64(period)
		if meanDev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - mean) / (0.015 * meanDev)
	}
	return out
}
