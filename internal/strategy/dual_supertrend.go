package strategy

import "github.com/aliyansayz/marketwatch/internal/model"

// DualSupertrendName is the registry identifier for the two-timeframe
// Supertrend alignment strategy.
const DualSupertrendName = "dual-supertrend-check-single-timeframe"

// dualSupertrendStrategy aligns a long-period Supertrend (A) with a
// short-period Supertrend (B); entries require both to agree, and the
// strength tally is confirmed by RSI, MACD and ADX.
type dualSupertrendStrategy struct {
	template model.ParameterTemplate
}

// NewDualSupertrendStrategy constructs the mandated dual-Supertrend
// strategy with its 11-entry parameter template.
func NewDualSupertrendStrategy() Strategy {
	return &dualSupertrendStrategy{template: dualSupertrendTemplate()}
}

func dualSupertrendTemplate() model.ParameterTemplate {
	return model.ParameterTemplate{Specs: []model.ParamSpec{
		{Name: "supertrend_a_period", Default: model.IntValue(15), Kind: model.ParamInt, Min: 10, Max: 30, Description: "Long trend period"},
		{Name: "supertrend_a_multiplier", Default: model.FloatValue(3.142), Kind: model.ParamFloat, Min: 1.0, Max: 5.0, Description: "Long trend ATR mult"},
		{Name: "supertrend_b_period", Default: model.IntValue(6), Kind: model.ParamInt, Min: 3, Max: 15, Description: "Short trend period"},
		{Name: "supertrend_b_multiplier", Default: model.FloatValue(0.66), Kind: model.ParamFloat, Min: 0.5, Max: 3.0, Description: "Short trend ATR mult"},
		{Name: "confirmation_threshold", Default: model.IntValue(3), Kind: model.ParamInt, Min: 1, Max: 5, Description: "Min confirmations to enter"},
		{Name: "exit_threshold", Default: model.IntValue(2), Kind: model.ParamInt, Min: 1, Max: 5, Description: "Min confirmations to exit"},
		{Name: "atr_stop_multiplier", Default: model.FloatValue(2.0), Kind: model.ParamFloat, Min: 1.0, Max: 5.0, Description: "Stop distance in ATR"},
		{Name: "atr_target_multiplier", Default: model.FloatValue(3.0), Kind: model.ParamFloat, Min: 1.0, Max: 10.0, Description: "Target distance in ATR"},
		{Name: "rsi_overbought", Default: model.FloatValue(70.0), Kind: model.ParamFloat, Min: 60, Max: 90, Description: "RSI ceiling"},
		{Name: "rsi_oversold", Default: model.FloatValue(30.0), Kind: model.ParamFloat, Min: 10, Max: 40, Description: "RSI floor"},
		{Name: "trend_strength_threshold", Default: model.FloatValue(25.0), Kind: model.ParamFloat, Min: 15, Max: 35, Description: "ADX gate"},
	}}
}

func (s *dualSupertrendStrategy) Name() string { return DualSupertrendName }

func (s *dualSupertrendStrategy) ParameterTemplate() model.ParameterTemplate { return s.template }

func (s *dualSupertrendStrategy) Validate(params map[string]model.ParamValue) (map[string]model.ParamValue, error) {
	return s.template.Validate(params)
}

func (s *dualSupertrendStrategy) Analyze(frame model.Frame, params map[string]model.ParamValue, indicators []model.IndicatorResult, _ []model.CrossoverEvent) model.Verdict {
	if frame.Len() < 20 {
		return neutralInsufficientHistory(s.Name(), frame.Symbol, frame.Interval)
	}

	confirmationThreshold := int(params["confirmation_threshold"].AsFloat())
	exitThreshold := int(params["exit_threshold"].AsFloat())
	atrStopMult := params["atr_stop_multiplier"].AsFloat()
	atrTargetMult := params["atr_target_multiplier"].AsFloat()
	rsiOverbought := params["rsi_overbought"].AsFloat()
	rsiOversold := params["rsi_oversold"].AsFloat()
	trendStrengthThreshold := params["trend_strength_threshold"].AsFloat()

	stA, okA := indicatorByName(indicators, "supertrend_a")
	stB, okB := indicatorByName(indicators, "supertrend_b")
	rsi, _ := indicatorByName(indicators, "rsi")
	macd, _ := indicatorByName(indicators, "macd")
	adx, _ := indicatorByName(indicators, "adx")
	atr, _ := indicatorByName(indicators, "atr")

	if !okA || !okB {
		return neutralInsufficientHistory(s.Name(), frame.Symbol, frame.Interval)
	}

	atrVal, atrOK := atr.Latest("atr")
	if atrOK && atrVal <= flatMarketATREpsilon {
		return neutralInsufficientVolatility(s.Name(), frame.Symbol, frame.Interval)
	}

	dirA, okDirA := stA.Latest("direction")
	dirB, okDirB := stB.Latest("direction")
	if !okDirA || !okDirB {
		return neutralInsufficientHistory(s.Name(), frame.Symbol, frame.Interval)
	}

	entryLong := dirA == 1 && dirB == 1
	exitLong := dirA == -1 || dirB == -1

	rsiVal, _ := rsi.Latest("rsi")
	macdVal, _ := macd.Latest("macd")
	adxVal, _ := adx.Latest("adx")

	bull := 0
	bear := 0
	if entryLong {
		bull++
	}
	if rsiVal < rsiOverbought {
		bull++
	}
	if macdVal > 0 {
		bull++
	}
	if adxVal > trendStrengthThreshold {
		bull++
	}

	if exitLong {
		bear++
	}
	if rsiVal > rsiOversold {
		bear++
	}
	if macdVal < 0 {
		bear++
	}
	if adxVal > trendStrengthThreshold {
		bear++
	}

	strength := model.StrengthNeutral
	switch {
	case bull >= 4:
		strength = model.StrengthStrongBuy
	case bull >= confirmationThreshold:
		strength = model.StrengthBuy
	case bear >= 4:
		strength = model.StrengthStrongSell
	case bear >= exitThreshold:
		strength = model.StrengthSell
	}

	sentiment := model.SentimentNeutral
	switch strength {
	case model.StrengthBuy, model.StrengthStrongBuy:
		sentiment = model.SentimentBullish
	case model.StrengthSell, model.StrengthStrongSell:
		sentiment = model.SentimentBearish
	}

	confidence := 0.0
	if bull >= bear {
		confidence = float64(bull) / 4.0
	} else {
		confidence = float64(bear) / 4.0
	}
	if confidence > 1 {
		confidence = 1
	}

	close := frame.LatestClose()
	risk := model.RiskLevels{
		StopLong:    close - atrVal*atrStopMult,
		TargetLong:  close + atrVal*atrTargetMult,
		StopShort:   close + atrVal*atrStopMult,
		TargetShort: close - atrVal*atrTargetMult,
	}

	reasons := []string{}
	if sentiment == model.SentimentNeutral {
		reasons = append(reasons, "no_majority_confirmation")
	}

	return model.Verdict{
		Sentiment: sentiment,
		Strength:  strength,
		Confidence: confidence,
		ConfirmationsBuy:  bull,
		ConfirmationsSell: bear,
		RiskLevels:        risk,
		IndicatorSnapshot: map[string]float64{
			"direction_a": dirA,
			"direction_b": dirB,
			"rsi":         rsiVal,
			"macd":        macdVal,
			"adx":         adxVal,
		},
		Reasons:      reasons,
		StrategyName: s.Name(),
		Symbol:       frame.Symbol,
		Interval:     frame.Interval,
		ParamsUsed:   params,
		DataComplete: true,
	}
}
