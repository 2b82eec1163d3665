package strategy

import (
	"math"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// DefaultName is the registry identifier for the mandated
// multi-indicator confirmation strategy.
const DefaultName = "default-check-single-timeframe"

// defaultStrategy tallies bullish/bearish confirmations across RSI,
// Stochastic, Williams %R, CCI, MACD and DMI using their standard
// textbook interpretations. It has no configurable parameters — its
// thresholds are frozen constants.
type defaultStrategy struct{}

// NewDefaultStrategy constructs the mandated default strategy.
func NewDefaultStrategy() Strategy { return &defaultStrategy{} }

func (s *defaultStrategy) Name() string { return DefaultName }

func (s *defaultStrategy) ParameterTemplate() model.ParameterTemplate {
	return model.ParameterTemplate{}
}

func (s *defaultStrategy) Validate(params map[string]model.ParamValue) (map[string]model.ParamValue, error) {
	return model.ParameterTemplate{}.Validate(params)
}

const defaultConfirmationCount = 6

// confirmationConfidence implements "confidence = max(bull, bear) / N"
// literally, including the tie case: when bull and bear are equal and
// non-zero, confidence is still count/N rather than 0.
func confirmationConfidence(bull, bear, n int) float64 {
	count := bull
	if bear > count {
		count = bear
	}
	if count == 0 {
		return 0
	}
	return float64(count) / float64(n)
}

func (s *defaultStrategy) Analyze(frame model.Frame, _ map[string]model.ParamValue, indicators []model.IndicatorResult, _ []model.CrossoverEvent) model.Verdict {
	if frame.Len() < 20 {
		return neutralInsufficientHistory(s.Name(), frame.Symbol, frame.Interval)
	}

	rsi, _ := indicatorByName(indicators, "rsi")
	stoch, _ := indicatorByName(indicators, "stochastic")
	williams, _ := indicatorByName(indicators, "williams_r")
	cci, _ := indicatorByName(indicators, "cci")
	macd, _ := indicatorByName(indicators, "macd")
	adx, _ := indicatorByName(indicators, "adx")
	atr, _ := indicatorByName(indicators, "atr")

	atrVal, atrOK := atr.Latest("atr")
	if atrOK && atrVal <= flatMarketATREpsilon {
		return neutralInsufficientVolatility(s.Name(), frame.Symbol, frame.Interval)
	}

	snapshot := map[string]float64{}
	bull, bear := 0, 0

	if v, ok := rsi.Latest("rsi"); ok {
		snapshot["rsi"] = v
		switch {
		case v < 30:
			bull++
		case v > 70:
			bear++
		}
	}
	if k, ok1 := stoch.Latest("%K"); ok1 {
		if d, ok2 := stoch.Latest("%D"); ok2 {
			snapshot["stoch_k"] = k
			snapshot["stoch_d"] = d
			if k > d {
				bull++
			} else if k < d {
				bear++
			}
		}
	}
	if v, ok := williams.Latest("williams_r"); ok {
		snapshot["williams_r"] = v
		switch {
		case v <= -80:
			bull++
		case v >= -20:
			bear++
		}
	}
	if v, ok := cci.Latest("cci"); ok {
		snapshot["cci"] = v
		switch {
		case v < -100:
			bull++
		case v > 100:
			bear++
		}
	}
	if m, ok1 := macd.Latest("macd"); ok1 {
		if sig, ok2 := macd.Latest("signal"); ok2 {
			snapshot["macd"] = m
			snapshot["macd_signal"] = sig
			if m > sig {
				bull++
			} else if m < sig {
				bear++
			}
		}
	}
	if plusDI, ok1 := adx.Latest("+di"); ok1 {
		if minusDI, ok2 := adx.Latest("-di"); ok2 {
			snapshot["+di"] = plusDI
			snapshot["-di"] = minusDI
			if plusDI > minusDI {
				bull++
			} else if plusDI < minusDI {
				bear++
			}
		}
	}
	if v, ok := adx.Latest("adx"); ok {
		snapshot["adx"] = v
	}

	strength := model.StrengthNeutral
	strongThreshold := int(math.Ceil(0.7 * float64(defaultConfirmationCount)))
	switch {
	case bull >= strongThreshold:
		strength = model.StrengthStrongBuy
	case bull > bear:
		strength = model.StrengthBuy
	case bear >= strongThreshold:
		strength = model.StrengthStrongSell
	case bear > bull:
		strength = model.StrengthSell
	}

	sentiment := model.SentimentNeutral
	switch strength {
	case model.StrengthBuy, model.StrengthStrongBuy:
		sentiment = model.SentimentBullish
	case model.StrengthSell, model.StrengthStrongSell:
		sentiment = model.SentimentBearish
	}

	confidence := confirmationConfidence(bull, bear, defaultConfirmationCount)

	close := frame.LatestClose()
	risk := model.RiskLevels{
		StopLong:    close - 2*atrVal,
		TargetLong:  close + 3*atrVal,
		StopShort:   close + 2*atrVal,
		TargetShort: close - 3*atrVal,
	}

	reasons := []string{}
	if sentiment == model.SentimentNeutral {
		reasons = append(reasons, "no_majority_confirmation")
	}

	return model.Verdict{
		Sentiment:         sentiment,
		Strength:          strength,
		Confidence:        confidence,
		ConfirmationsBuy:  bull,
		ConfirmationsSell: bear,
		RiskLevels:        risk,
		IndicatorSnapshot: snapshot,
		Reasons:           reasons,
		StrategyName:      s.Name(),
		Symbol:            frame.Symbol,
		Interval:          frame.Interval,
		DataComplete:      true,
	}
}
