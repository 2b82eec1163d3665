package indicator

// Supertrend reproduces the exact recurrence the dual-Supertrend strategy
// depends on bit-for-bit:
//
//	tr         = True Range
//	atr        = SMA(tr, period, min_periods=1)
//	hl2        = (high+low)/2
//	upperband  = hl2 + multiplier*atr
//	lowerband  = hl2 - multiplier*atr
//	direction[0] = +1, st[0] = 0
//	for i >= 1:
//	  if close[i] > upperband[i-1]:      direction[i] = +1
//	  else if close[i] < lowerband[i-1]: direction[i] = -1
//	  else:                              direction[i] = direction[i-1]
//	  st[i] = lowerband[i] if direction[i] == +1 else upperband[i]
//
// This loop is strictly sequential: each bar's direction depends on the
// previous bar's direction, so it must never be parallelized across
// bars. Parallelism in this system is coarse-grained, across symbols,
// not fine-grained across bars of one series.
func Supertrend(highs, lows, closes []float64, period int, multiplier float64) (stValue, direction []float64) {
	n := len(closes)
	stValue = make([]float64, n)
	direction = make([]float64, n)
	if n == 0 {
		return
	}

	tr := trueRange(highs, lows, closes)
	atr := simpleMovingAverage(tr, period, 1)

	upperband := make([]float64, n)
	lowerband := make([]float64, n)
	for i := 0; i < n; i++ {
		hl2 := (highs[i] + lows[i]) / 2
		upperband[i] = hl2 + multiplier*atr[i]
		lowerband[i] = hl2 - multiplier*atr[i]
	}

	direction[0] = 1
	stValue[0] = 0

	for i := 1; i < n; i++ {
		switch {
		case closes[i] > upperband[i-1]:
			direction[i] = 1
		case closes[i] < lowerband[i-1]:
			direction[i] = -1
		default:
			direction[i] = direction[i-1]
		}

		if direction[i] == 1 {
			stValue[i] = lowerband[i]
		} else {
			stValue[i] = upperband[i]
		}
	}
	return
}
