// Package groupmodel implements the hierarchical Group/SymbolConfig
// store: CRUD over Groups, and the pure override-resolution function
// that merges built-in defaults, group defaults, and symbol overrides
// into the concrete config an analysis run uses.
package groupmodel

import "github.com/aliyansayz/marketwatch/internal/model"

// ResolvedConfig is the merged, run-ready configuration for one symbol:
// the output of Resolve.
type ResolvedConfig struct {
	Symbol             string
	AssetClass         model.AssetClass
	Interval           model.Interval
	Period             model.Period
	IndicatorOverrides model.IndicatorOverrides
	StrategyName       string
	StrategyParams     model.StrategyOverrides
	AlertPolicy        model.AlertPolicy
}

// BuiltinDefaults returns the hard-coded, documented defaults every
// resolution starts from (§4.B/D of the component design: RSI period
// 14, MACD 12/26/9, Supertrend A/B per the dual-Supertrend template,
// etc.) Indicator-level defaults live in the indicator package itself;
// here we only need the strategy selection and alert policy default,
// since resolve's only job is layering sparse overrides on top of them.
func BuiltinDefaults() ResolvedConfig {
	return ResolvedConfig{
		StrategyName: "default-check-single-timeframe",
		AlertPolicy:  model.DefaultAlertPolicy(),
	}
}

// Resolve is a pure function: given a Group and one of its members, it
// returns the merged configuration with no side effects and no global
// state. Calling Resolve twice on the same (group, symbol) value
// produces byte-identical results — the invariant the persistence
// round-trip law depends on.
func Resolve(group *model.Group, symbolKey string) (ResolvedConfig, bool) {
	symbol, ok := group.Members[symbolKey]
	if !ok {
		return ResolvedConfig{}, false
	}

	resolved := BuiltinDefaults()
	resolved.Symbol = symbol.Symbol
	resolved.AssetClass = symbol.AssetClass
	resolved.Interval = symbol.Interval
	resolved.Period = symbol.Period

	// Layer 2: group defaults.
	if group.Defaults.StrategyName != "" {
		resolved.StrategyName = group.Defaults.StrategyName
	}
	resolved.IndicatorOverrides = mergeIndicatorOverrides(resolved.IndicatorOverrides, group.Defaults.Indicators)
	resolved.StrategyParams = mergeStrategyOverrides(resolved.StrategyParams, group.Defaults.StrategyParams)
	resolved.AlertPolicy = mergeAlertPolicy(resolved.AlertPolicy, &group.Defaults.AlertPolicy)

	// Layer 3: symbol-level overrides.
	resolved.IndicatorOverrides = mergeIndicatorOverrides(resolved.IndicatorOverrides, symbol.IndicatorOverrides)
	resolved.StrategyParams = mergeStrategyOverrides(resolved.StrategyParams, symbol.StrategyOverrides)
	resolved.AlertPolicy = mergeAlertPolicy(resolved.AlertPolicy, symbol.AlertPolicy)

	return resolved, true
}

// mergeIndicatorOverrides layers overlay on top of base: only the
// (family, param) pairs present in overlay are touched; everything else
// in base falls through unchanged.
func mergeIndicatorOverrides(base, overlay model.IndicatorOverrides) model.IndicatorOverrides {
	if len(overlay) == 0 {
		return base
	}
	merged := make(model.IndicatorOverrides, len(base)+len(overlay))
	for family, params := range base {
		merged[family] = cloneFloatMap(params)
	}
	for family, params := range overlay {
		existing, ok := merged[family]
		if !ok {
			existing = make(map[string]float64, len(params))
		}
		for k, v := range params {
			existing[k] = v
		}
		merged[family] = existing
	}
	return merged
}

func mergeStrategyOverrides(base, overlay model.StrategyOverrides) model.StrategyOverrides {
	if len(overlay) == 0 {
		return base
	}
	merged := make(model.StrategyOverrides, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

// mergeAlertPolicy overlays a sparse policy onto base. A nil overlay
// leaves base untouched. Because AlertPolicy fields are not individually
// sparse-tagged in the data model, a non-nil overlay is treated as a
// whole-policy replacement at that layer — matching how the Python
// original's settings dataclasses are layered (whole-object override,
// not field-level merge, once a layer chooses to specify a policy).
func mergeAlertPolicy(base model.AlertPolicy, overlay *model.AlertPolicy) model.AlertPolicy {
	if overlay == nil {
		return base
	}
	return *overlay
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
