package indicator

// ATR computes the Average True Range: a simple moving average of True
// Range with min_periods=1, so it is always non-negative and defined
// from the very first bar — flat markets (true range = 0) yield ATR=0,
// never NaN or negative.
func ATR(highs, lows, closes []float64, period int) []float64 {
	tr := trueRange(highs, lows, closes)
	return simpleMovingAverage(tr, period, 1)
}
