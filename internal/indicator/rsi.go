package indicator

// RSI computes the Relative Strength Index using Wilder's smoothing of
// average gains and losses over `period` bars. Output is in [0,100],
// NaN for bars before the window has filled.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSeries(n)
	if period <= 0 || n <= period {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := wilderSmooth(gains[1:], period)
	avgLoss := wilderSmooth(losses[1:], period)

	for i := 0; i < len(avgGain); i++ {
		if isNaN(avgGain[i]) {
			continue
		}
		ag := avgGain[i]
		al := avgLoss[i]
		idx := i + 1 // shift back since gains/losses[1:] dropped index 0
		if al == 0 {
			if ag == 0 {
				out[idx] = 50
			} else {
				out[idx] = 100
			}
			continue
		}
		rs := ag / al
		out[idx] = 100 - (100 / (1 + rs))
	}
	return out
}

// RSI default interpretation levels, used by strategies for bull/bear
// confirmation tallies.
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
)
