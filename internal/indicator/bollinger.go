package indicator

import "math"

// BollingerBands computes the middle band (SMA), upper/lower bands at
// +/- stddev standard deviations, and width (upper-lower).
func BollingerBands(closes []float64, period int, stddev float64) (upper, middle, lower, width []float64) {
	n := len(closes)
	upper = nanSeries(n)
	middle = nanSeries(n)
	lower = nanSeries(n)
	width = nanSeries(n)
	if period <= 0 || n < period {
		return
	}

	middle = simpleMovingAverage(closes, period, period)
	for i := period - 1; i < n; i++ {
		mean := middle[i]
		sumSq := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			sumSq += d * d
		}
		sd := math.Sqrt(sumSq / float64(period))
		upper[i] = mean + stddev*sd
		lower[i] = mean - stddev*sd
		width[i] = upper[i] - lower[i]
	}
	return
}
