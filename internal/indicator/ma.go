package indicator

// SMA computes a simple moving average over period bars, NaN-padded
// until the window fills.
func SMA(closes []float64, period int) []float64 {
	return simpleMovingAverage(closes, period, period)
}

// EMA computes an exponential moving average over period bars, seeded
// by an SMA of the first `period` values.
func EMA(closes []float64, period int) []float64 {
	return exponentialMovingAverage(closes, period)
}
