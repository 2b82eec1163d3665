// Package orchestrator wires the kernel, detector, and strategy
// together into the single end-to-end operation the Scheduler drives:
// fetch a frame, validate it, compute indicators, detect crossovers,
// run the resolved strategy, and attach run metadata to the Verdict.
package orchestrator

import (
	"context"
	"time"

	"github.com/aliyansayz/marketwatch/internal/crossover"
	"github.com/aliyansayz/marketwatch/internal/groupmodel"
	"github.com/aliyansayz/marketwatch/internal/indicator"
	"github.com/aliyansayz/marketwatch/internal/model"
	"github.com/aliyansayz/marketwatch/internal/strategy"
)

// Orchestrator performs one analysis run for a resolved symbol config.
type Orchestrator struct {
	provider model.DataProvider
	registry *strategy.Registry
	timeout  time.Duration
}

// New constructs an Orchestrator. timeout bounds each DataProvider.Fetch
// call; zero selects the default of 30s per the concurrency model.
func New(provider model.DataProvider, registry *strategy.Registry, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{provider: provider, registry: registry, timeout: timeout}
}

// Analyze runs the full fetch → validate → indicator → detector →
// strategy → verdict pipeline for one resolved symbol config. All steps
// are synchronous; concurrency across symbols lives in the Scheduler.
func (o *Orchestrator) Analyze(ctx context.Context, cfg groupmodel.ResolvedConfig) (model.Verdict, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	frame, err := o.provider.Fetch(fetchCtx, cfg.Symbol, cfg.AssetClass, cfg.Interval, cfg.Period)
	if err != nil {
		return model.Verdict{}, model.Errorf(model.KindDataUnavailable, "fetch %s: %w", cfg.Symbol, err)
	}

	if err := frame.Validate(); err != nil {
		return model.Verdict{}, model.Errorf(model.KindInvalidFrame, "%w", err)
	}

	recipe := buildRecipe(cfg)
	results, err := indicator.Compute(frame, recipe)
	if err != nil {
		return model.Verdict{}, err
	}

	events := detectCrossovers(frame, cfg, results)

	strat, err := o.registry.Get(cfg.StrategyName)
	if err != nil {
		return model.Verdict{}, err
	}

	params, err := strat.Validate(toParamValueMap(cfg.StrategyParams))
	if err != nil {
		return model.Verdict{}, model.Errorf(model.KindParameterValidation, "%w", err)
	}

	verdict := safeAnalyze(strat, frame, params, results, events)
	verdict.RunTimestamp = time.Now().UTC().Unix()
	verdict.CrossoverEvents = events
	return verdict, nil
}

// safeAnalyze recovers from a panicking strategy implementation and
// converts it into a neutral verdict with reason internal_error, per the
// StrategyInternal error-handling policy: logged (by the caller, which
// sees the reason code), never crashes the monitor.
func safeAnalyze(strat strategy.Strategy, frame model.Frame, params map[string]model.ParamValue, results []model.IndicatorResult, events []model.CrossoverEvent) (verdict model.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = model.Verdict{
				Sentiment:    model.SentimentNeutral,
				Strength:     model.StrengthNeutral,
				Confidence:   0,
				Reasons:      []string{model.ReasonInternalError},
				StrategyName: strat.Name(),
				Symbol:       frame.Symbol,
				Interval:     frame.Interval,
			}
		}
	}()
	return strat.Analyze(frame, params, results, events)
}

func toParamValueMap(overrides model.StrategyOverrides) map[string]model.ParamValue {
	if overrides == nil {
		return nil
	}
	out := make(map[string]model.ParamValue, len(overrides))
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// buildRecipe translates a resolved config's strategy choice and
// indicator overrides into the kernel recipe the strategy needs.
// Families required by each mandated strategy are fixed; overrides only
// adjust their parameters.
func buildRecipe(cfg groupmodel.ResolvedConfig) indicator.Recipe {
	override := func(family string, key string, def float64) float64 {
		if params, ok := cfg.IndicatorOverrides[family]; ok {
			if v, ok := params[key]; ok {
				return v
			}
		}
		return def
	}

	switch cfg.StrategyName {
	case "dual-supertrend-check-single-timeframe":
		aPeriod := override("supertrend_a", "period", paramOr(cfg.StrategyParams, "supertrend_a_period", 15))
		aMult := override("supertrend_a", "multiplier", paramOr(cfg.StrategyParams, "supertrend_a_multiplier", 3.142))
		bPeriod := override("supertrend_b", "period", paramOr(cfg.StrategyParams, "supertrend_b_period", 6))
		bMult := override("supertrend_b", "multiplier", paramOr(cfg.StrategyParams, "supertrend_b_multiplier", 0.66))
		return indicator.Recipe{Specs: []indicator.Spec{
			{Family: indicator.FamilySupertrend, Name: "supertrend_a", Params: map[string]float64{"period": aPeriod, "multiplier": aMult}},
			{Family: indicator.FamilySupertrend, Name: "supertrend_b", Params: map[string]float64{"period": bPeriod, "multiplier": bMult}},
			{Family: indicator.FamilyRSI, Params: map[string]float64{"period": override("rsi", "period", 14)}},
			{Family: indicator.FamilyMACD, Params: map[string]float64{
				"fast": override("macd", "fast", 12), "slow": override("macd", "slow", 26), "signal": override("macd", "signal", 9),
			}},
			{Family: indicator.FamilyADX, Params: map[string]float64{"period": override("adx", "period", 14)}},
			{Family: indicator.FamilyATR, Params: map[string]float64{"period": override("atr", "period", 14)}},
		}}
	default:
		return indicator.Recipe{Specs: []indicator.Spec{
			{Family: indicator.FamilyRSI, Params: map[string]float64{"period": override("rsi", "period", 14)}},
			{Family: indicator.FamilyStochastic, Params: map[string]float64{
				"k_period": override("stochastic", "k_period", 14), "d_period": override("stochastic", "d_period", 3), "smooth_k": override("stochastic", "smooth_k", 3),
			}},
			{Family: indicator.FamilyWilliamsR, Params: map[string]float64{"period": override("williams_r", "period", 14)}},
			{Family: indicator.FamilyCCI, Params: map[string]float64{"period": override("cci", "period", 20)}},
			{Family: indicator.FamilyMACD, Params: map[string]float64{
				"fast": override("macd", "fast", 12), "slow": override("macd", "slow", 26), "signal": override("macd", "signal", 9),
			}},
			{Family: indicator.FamilyADX, Params: map[string]float64{"period": override("adx", "period", 14)}},
			{Family: indicator.FamilyATR, Params: map[string]float64{"period": override("atr", "period", 14)}},
		}}
	}
}

func paramOr(overrides model.StrategyOverrides, key string, def float64) float64 {
	if overrides == nil {
		return def
	}
	if v, ok := overrides[key]; ok {
		return v.AsFloat()
	}
	return def
}

// detectCrossovers runs the detector over the indicator families most
// relevant to the resolved strategy: Stochastic %K/%D for the default
// strategy, and the Supertrend direction lines for the dual-Supertrend
// strategy, both ADX-gated.
func detectCrossovers(frame model.Frame, cfg groupmodel.ResolvedConfig, results []model.IndicatorResult) []model.CrossoverEvent {
	adxResult, hasADX := findResult(results, "adx")
	var adxSeries []float64
	if hasADX {
		adxSeries = adxResult.Series["adx"]
	}

	ts := timestampsOf(frame)
	settings := crossover.DefaultSettings()

	var events []model.CrossoverEvent
	switch cfg.StrategyName {
	case "dual-supertrend-check-single-timeframe":
		if stA, ok := findResult(results, "supertrend_a"); ok {
			events = append(events, crossover.Detect(crossover.Input{
				Source: crossover.SourceStateFlip, FastName: "supertrend_a_direction",
				A: stA.Series["direction"], ADX: adxSeries, Symbol: frame.Symbol, Interval: frame.Interval, Timestamps: ts,
			}, settings)...)
		}
		if stB, ok := findResult(results, "supertrend_b"); ok {
			events = append(events, crossover.Detect(crossover.Input{
				Source: crossover.SourceStateFlip, FastName: "supertrend_b_direction",
				A: stB.Series["direction"], ADX: adxSeries, Symbol: frame.Symbol, Interval: frame.Interval, Timestamps: ts,
			}, settings)...)
		}
	default:
		if stoch, ok := findResult(results, "stochastic"); ok {
			events = append(events, crossover.Detect(crossover.Input{
				Source: crossover.SourceLine, FastName: "%K", SlowName: "%D",
				A: stoch.Series["%K"], B: stoch.Series["%D"], ADX: adxSeries,
				Symbol: frame.Symbol, Interval: frame.Interval, Timestamps: ts,
			}, settings)...)
		}
	}
	return events
}

func findResult(results []model.IndicatorResult, name string) (model.IndicatorResult, bool) {
	for _, r := range results {
		if r.Name == name {
			return r, true
		}
	}
	return model.IndicatorResult{}, false
}

func timestampsOf(frame model.Frame) []int64 {
	out := make([]int64, len(frame.Bars))
	for i, b := range frame.Bars {
		out[i] = b.Timestamp.Unix()
	}
	return out
}
