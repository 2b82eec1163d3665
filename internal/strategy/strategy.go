// Package strategy holds the pluggable analyzers that turn an indicator
// result plus a crossover detector output into a Verdict, and the
// process-wide registry that looks them up by name.
package strategy

import "github.com/aliyansayz/marketwatch/internal/model"

// Strategy is the capability set every pluggable analyzer implements.
type Strategy interface {
	// Name returns the strategy's stable registry identifier.
	Name() string

	// ParameterTemplate returns this strategy's Parameter Template.
	// Strategies with no configurable knobs return an empty template.
	ParameterTemplate() model.ParameterTemplate

	// Validate normalizes and checks params against the template,
	// returning every offending field in one error.
	Validate(params map[string]model.ParamValue) (map[string]model.ParamValue, error)

	// Analyze produces a Verdict from the given frame, validated
	// params, indicator result set, and crossover events already
	// detected for this run. Analyze never panics for routine data
	// shortfalls; it returns a neutral, zero-confidence Verdict with an
	// explanatory reason instead.
	Analyze(frame model.Frame, params map[string]model.ParamValue, indicators []model.IndicatorResult, events []model.CrossoverEvent) model.Verdict
}

// indicatorByName finds the first IndicatorResult with the given Name.
func indicatorByName(indicators []model.IndicatorResult, name string) (model.IndicatorResult, bool) {
	for _, r := range indicators {
		if r.Name == name {
			return r, true
		}
	}
	return model.IndicatorResult{}, false
}

func neutralInsufficientHistory(strategyName, symbol string, iv model.Interval) model.Verdict {
	return model.Verdict{
		Sentiment:    model.SentimentNeutral,
		Strength:     model.StrengthNeutral,
		Confidence:   0,
		Reasons:      []string{model.ReasonInsufficientHistory},
		StrategyName: strategyName,
		Symbol:       symbol,
		Interval:     iv,
	}
}

// flatMarketATREpsilon is the threshold below which ATR is treated as
// zero: a flat market with no high/low range to trade against.
const flatMarketATREpsilon = 1e-9

func neutralInsufficientVolatility(strategyName, symbol string, iv model.Interval) model.Verdict {
	return model.Verdict{
		Sentiment:    model.SentimentNeutral,
		Strength:     model.StrengthNeutral,
		Confidence:   0,
		Reasons:      []string{model.ReasonInsufficientVolatility},
		StrategyName: strategyName,
		Symbol:       symbol,
		Interval:     iv,
	}
}
