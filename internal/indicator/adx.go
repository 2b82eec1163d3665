package indicator

import "math"

// ADX computes the Average Directional Index and its two directional
// components, +DI and -DI, all in [0,100].
func ADX(highs, lows, closes []float64, period int) (adx, plusDI, minusDI []float64) {
	n := len(closes)
	adx = nanSeries(n)
	plusDI = nanSeries(n)
	minusDI = nanSeries(n)
	if period <= 0 || n <= period {
		return
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	tr := trueRange(highs, lows, closes)
	smoothTR := wilderSmooth(tr[1:], period)
	smoothPlusDM := wilderSmooth(plusDM[1:], period)
	smoothMinusDM := wilderSmooth(minusDM[1:], period)

	dx := nanSeries(n)
	for i := 0; i < len(smoothTR); i++ {
		idx := i + 1
		if isNaN(smoothTR[i]) || smoothTR[i] == 0 {
			continue
		}
		pdi := 100 * smoothPlusDM[i] / smoothTR[i]
		mdi := 100 * smoothMinusDM[i] / smoothTR[i]
		plusDI[idx] = pdi
		minusDI[idx] = mdi
		sum := pdi + mdi
		if sum == 0 {
			dx[idx] = 0
			continue
		}
		dx[idx] = 100 * math.Abs(pdi-mdi) / sum
	}

	firstDX := -1
	for i, v := range dx {
		if !isNaN(v) {
			firstDX = i
			break
		}
	}
	if firstDX == -1 {
		return
	}
	adxSmoothed := wilderSmooth(dx[firstDX:], period)
	for i, v := range adxSmoothed {
		if !isNaN(v) {
			adx[firstDX+i] = v
		}
	}
	return
}

// ADX default volatility gate used by the crossover detector.
const DefaultADXThreshold = 18.0
