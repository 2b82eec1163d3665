package indicator

// WilliamsR computes Williams %R, in [-100, 0]. Values near 0 indicate
// overbought; near -100 indicate oversold.
func WilliamsR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSeries(n)
	if period <= 0 {
		return out
	}
	for i := 0; i < n; i++ {
		if i+1 < period {
			continue
		}
		hh, ll := highestLowest(highs, lows, i, period)
		denom := hh - ll
		if denom == 0 {
			out[i] = -50
			continue
		}
		out[i] = (hh - closes[i]) / denom * -100
	}
	return out
}
