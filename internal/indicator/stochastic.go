package indicator

// Stochastic computes %K (the raw stochastic, optionally smoothed by
// smoothK) and %D (an SMA of smoothed %K over dPeriod). Both outputs are
// in [0,100].
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod, smoothK int) (k, d []float64) {
	n := len(closes)
	rawK := nanSeries(n)
	if kPeriod <= 0 {
		return rawK, nanSeries(n)
	}
	for i := 0; i < n; i++ {
		if i+1 < kPeriod {
			continue
		}
		hh, ll := highestLowest(highs, lows, i, kPeriod)
		denom := hh - ll
		if denom == 0 {
			rawK[i] = 50
			continue
		}
		rawK[i] = (closes[i] - ll) / denom * 100
	}

	// Each SMA starts after its input's NaN warm-up, so the leading NaNs
	// never enter the running sum.
	smoothed := rawK
	firstK := kPeriod - 1
	if smoothK > 1 {
		smoothed = nanSeries(n)
		if firstK < n {
			copy(smoothed[firstK:], simpleMovingAverage(rawK[firstK:], smoothK, smoothK))
		}
		firstK += smoothK - 1
	}
	dLine := nanSeries(n)
	if firstK < n {
		copy(dLine[firstK:], simpleMovingAverage(smoothed[firstK:], dPeriod, dPeriod))
	}
	return smoothed, dLine
}

func highestLowest(highs, lows []float64, end, period int) (highest, lowest float64) {
	highest = highs[end]
	lowest = lows[end]
	for j := end - period + 1; j <= end; j++ {
		if highs[j] > highest {
			highest = highs[j]
		}
		if lows[j] < lowest {
			lowest = lows[j]
		}
	}
	return highest, lowest
}
