// Package indicator computes deterministic technical-indicator families
// over an OHLCV frame. Every function here is pure: no I/O, no wall
// clock, no mutable package state. A recipe names the families to
// compute and their parameters; Compute runs each spec independently and
// returns one model.IndicatorResult per spec.
package indicator

import "github.com/aliyansayz/marketwatch/internal/model"

// Family identifies one computable indicator family.
type Family string

const (
	FamilyRSI         Family = "rsi"
	FamilyStochastic  Family = "stochastic"
	FamilyWilliamsR   Family = "williams_r"
	FamilyCCI         Family = "cci"
	FamilyMACD        Family = "macd"
	FamilyADX         Family = "adx"
	FamilyBollinger   Family = "bollinger"
	FamilyATR         Family = "atr"
	FamilySMA         Family = "sma"
	FamilyEMA         Family = "ema"
	FamilySupertrend  Family = "supertrend"
	FamilyBullBearPow Family = "bull_bear_power"
)

// Spec names one indicator family plus the parameters to compute it
// with. Params keys are family-specific; see DefaultParams for the
// built-in constants each family falls back to when a key is absent.
type Spec struct {
	Family Family
	Params map[string]float64
	// Name overrides the result's Name field (defaults to string(Family)).
	// Needed when a recipe computes the same family twice with different
	// parameters, e.g. the dual-Supertrend strategy's "supertrend_a" and
	// "supertrend_b".
	Name string
}

// Recipe is an ordered list of Specs; order is preserved in the returned
// result slice so callers needing a specific family can index
// positionally or scan by Name.
type Recipe struct {
	Specs []Spec
}

// Compute runs every spec in the recipe against frame and returns one
// IndicatorResult per spec, in order. It never short-circuits: a family
// that can't be computed due to insufficient history returns a result
// whose series are NaN-padded rather than being omitted, per the
// kernel's edge-case contract.
func Compute(frame model.Frame, recipe Recipe) ([]model.IndicatorResult, error) {
	if err := frame.Validate(); err != nil {
		return nil, model.Errorf(model.KindInvalidFrame, "%w", err)
	}
	if hasDuplicateTimestamps(frame) {
		return nil, model.Errorf(model.KindInvalidFrame, "frame %s/%s has duplicate timestamps", frame.Symbol, frame.Interval)
	}

	results := make([]model.IndicatorResult, 0, len(recipe.Specs))
	for _, spec := range recipe.Specs {
		res, err := computeOne(frame, spec)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func hasDuplicateTimestamps(frame model.Frame) bool {
	seen := make(map[int64]bool, len(frame.Bars))
	for _, b := range frame.Bars {
		ts := b.Timestamp.UnixNano()
		if seen[ts] {
			return true
		}
		seen[ts] = true
	}
	return false
}

func computeOne(frame model.Frame, spec Spec) (model.IndicatorResult, error) {
	name := spec.Name
	if name == "" {
		name = string(spec.Family)
	}
	base := model.IndicatorResult{
		Name:      name,
		Symbol:    frame.Symbol,
		Interval:  frame.Interval,
		Params:    spec.Params,
		Series:    map[string][]float64{},
		Timestamp: frame.Bars[len(frame.Bars)-1].Timestamp,
	}

	switch spec.Family {
	case FamilyRSI:
		period := paramInt(spec.Params, "period", 14)
		base.Series["rsi"] = RSI(frame.Closes(), period)
	case FamilyStochastic:
		kPeriod := paramInt(spec.Params, "k_period", 14)
		dPeriod := paramInt(spec.Params, "d_period", 3)
		smoothK := paramInt(spec.Params, "smooth_k", 3)
		k, d := Stochastic(frame.Highs(), frame.Lows(), frame.Closes(), kPeriod, dPeriod, smoothK)
		base.Series["%K"] = k
		base.Series["%D"] = d
	case FamilyWilliamsR:
		period := paramInt(spec.Params, "period", 14)
		base.Series["williams_r"] = WilliamsR(frame.Highs(), frame.Lows(), frame.Closes(), period)
	case FamilyCCI:
		period := paramInt(spec.Params, "period", 20)
		base.Series["cci"] = CCI(frame.Highs(), frame.Lows(), frame.Closes(), period)
	case FamilyMACD:
		fast := paramInt(spec.Params, "fast", 12)
		slow := paramInt(spec.Params, "slow", 26)
		signal := paramInt(spec.Params, "signal", 9)
		macd, sig, hist := MACD(frame.Closes(), fast, slow, signal)
		base.Series["macd"] = macd
		base.Series["signal"] = sig
		base.Series["hist"] = hist
	case FamilyADX:
		period := paramInt(spec.Params, "period", 14)
		adx, plusDI, minusDI := ADX(frame.Highs(), frame.Lows(), frame.Closes(), period)
		base.Series["adx"] = adx
		base.Series["+di"] = plusDI
		base.Series["-di"] = minusDI
	case FamilyBollinger:
		period := paramInt(spec.Params, "period", 20)
		stddev := paramFloat(spec.Params, "stddev", 2.0)
		upper, middle, lower, width := BollingerBands(frame.Closes(), period, stddev)
		base.Series["upper"] = upper
		base.Series["middle"] = middle
		base.Series["lower"] = lower
		base.Series["width"] = width
	case FamilyATR:
		period := paramInt(spec.Params, "period", 14)
		base.Series["atr"] = ATR(frame.Highs(), frame.Lows(), frame.Closes(), period)
	case FamilySMA:
		period := paramInt(spec.Params, "period", 20)
		base.Series["sma"] = SMA(frame.Closes(), period)
	case FamilyEMA:
		period := paramInt(spec.Params, "period", 20)
		base.Series["ema"] = EMA(frame.Closes(), period)
	case FamilySupertrend:
		period := paramInt(spec.Params, "period", 10)
		multiplier := paramFloat(spec.Params, "multiplier", 3.0)
		st, dir := Supertrend(frame.Highs(), frame.Lows(), frame.Closes(), period, multiplier)
		base.Series["st_value"] = st
		base.Series["direction"] = dir
	case FamilyBullBearPow:
		period := paramInt(spec.Params, "ema_period", 13)
		bull, bear := BullBearPower(frame.Highs(), frame.Lows(), frame.Closes(), period)
		base.Series["bull_power"] = bull
		base.Series["bear_power"] = bear
	default:
		return model.IndicatorResult{}, model.Errorf(model.KindUnknownIndicator, "unknown indicator family %q", spec.Family)
	}

	return base, nil
}

func paramInt(params map[string]float64, key string, def int) int {
	if v, ok := params[key]; ok {
		return int(v)
	}
	return def
}

func paramFloat(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
