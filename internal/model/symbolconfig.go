package model

// AssetClass enumerates the instrument classes the engine understands.
type AssetClass string

const (
	AssetForex   AssetClass = "forex"
	AssetStocks  AssetClass = "stocks"
	AssetCrypto  AssetClass = "crypto"
	AssetIndices AssetClass = "indices"
	AssetFutures AssetClass = "futures"
)

// Period is a provider-facing lookback window string, as accepted by
// DataProvider.Fetch.
type Period string

const (
	Period1Day   Period = "1d"
	Period5Day   Period = "5d"
	Period7Day   Period = "7d"
	Period1Week  Period = "1wk"
	Period1Month Period = "1mo"
	Period3Month Period = "3mo"
	Period6Month Period = "6mo"
	Period1Year  Period = "1y"
	Period2Year  Period = "2y"
	Period5Year  Period = "5y"
	PeriodMax    Period = "max"
)

// IndicatorOverrides is a sparse map of indicator family name to a sparse
// map of parameter name to value. Only the keys present override the
// built-in defaults; everything else falls through.
type IndicatorOverrides map[string]map[string]float64

// StrategyOverrides is a sparse map of parameter name to ParamValue,
// applied on top of the chosen strategy's template defaults.
type StrategyOverrides map[string]ParamValue

// SymbolConfig is one tradable instrument's configuration within a Group.
type SymbolConfig struct {
	Symbol             string
	AssetClass         AssetClass
	Interval           Interval
	Period             Period
	Enabled            bool
	IndicatorOverrides IndicatorOverrides
	StrategyOverrides  StrategyOverrides
	AlertPolicy        *AlertPolicy // sparse; nil means "inherit group default entirely"
}

// SymbolKey returns the canonical key a SymbolConfig is addressed by
// within a group's Members map.
func (c SymbolConfig) SymbolKey() string {
	return string(c.AssetClass) + ":" + c.Symbol
}
