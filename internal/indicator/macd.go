package indicator

// MACD computes the MACD line (fastEMA - slowEMA), its signal line (an
// EMA of the MACD line), and the histogram (macd - signal).
func MACD(closes []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	n := len(closes)
	fastEMA := exponentialMovingAverage(closes, fast)
	slowEMA := exponentialMovingAverage(closes, slow)

	macdLine := nanSeries(n)
	for i := 0; i < n; i++ {
		if isNaN(fastEMA[i]) || isNaN(slowEMA[i]) {
			continue
		}
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := emaSkippingNaN(macdLine, signal)

	histLine := nanSeries(n)
	for i := 0; i < n; i++ {
		if isNaN(macdLine[i]) || isNaN(signalLine[i]) {
			continue
		}
		histLine[i] = macdLine[i] - signalLine[i]
	}
	return macdLine, signalLine, histLine
}

// emaSkippingNaN computes an EMA over a series that starts with a run of
// NaNs (as macdLine does, since it isn't valid until the slow EMA warms
// up), seeding from the first `period` non-NaN values.
func emaSkippingNaN(src []float64, period int) []float64 {
	n := len(src)
	out := nanSeries(n)
	start := -1
	for i, v := range src {
		if !isNaN(v) {
			start = i
			break
		}
	}
	if start == -1 || start+period > n {
		return out
	}
	sum := 0.0
	for i := start; i < start+period; i++ {
		sum += src[i]
	}
	seedIdx := start + period - 1
	out[seedIdx] = sum / float64(period)
	k := 2.0 / float64(period+1)
	for i := seedIdx + 1; i < n; i++ {
		out[i] = src[i]*k + out[i-1]*(1-k)
	}
	return out
}
