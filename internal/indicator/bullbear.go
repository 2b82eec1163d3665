package indicator

// BullBearPower computes Elder's Bull/Bear Power oscillators against an
// EMA of closes. Not used by either mandated strategy's confirmation
// tally, but exposed in the kernel's registry so a recipe may request it
// — the original system's oscillator surface included it alongside RSI,
// Stochastic and CCI.
func BullBearPower(highs, lows, closes []float64, emaPeriod int) (bull, bear []float64) {
	n := len(closes)
	ema := exponentialMovingAverage(closes, emaPeriod)
	bull = nanSeries(n)
	bear = nanSeries(n)
	for i := 0; i < n; i++ {
		if isNaN(ema[i]) {
			continue
		}
		bull[i] = highs[i] - ema[i]
		bear[i] = lows[i] - ema[i]
	}
	return
}
