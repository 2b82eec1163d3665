package model

// Sentiment is the coarse directional read of a Verdict.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Strength is the fine-grained directional read of a Verdict.
type Strength string

const (
	StrengthStrongBuy  Strength = "strong_buy"
	StrengthBuy        Strength = "buy"
	StrengthNeutral    Strength = "neutral"
	StrengthSell       Strength = "sell"
	StrengthStrongSell Strength = "strong_sell"
)

// RiskLevels brackets a Verdict with suggested stop/target prices for
// both trade directions. Only the direction matching Sentiment is
// normally actionable; both are always populated for symmetry.
type RiskLevels struct {
	StopLong    float64
	TargetLong  float64
	StopShort   float64
	TargetShort float64
}

// Verdict is the structured output of one strategy invocation.
type Verdict struct {
	Sentiment          Sentiment
	Strength           Strength
	Confidence         float64
	ConfirmationsBuy   int
	ConfirmationsSell  int
	RiskLevels         RiskLevels
	IndicatorSnapshot  map[string]float64
	Reasons            []string
	StrategyName       string
	Symbol             string
	Interval           Interval
	RunTimestamp       int64 // unix seconds, set by the orchestrator
	DataComplete       bool
	ParamsUsed         map[string]ParamValue
	CrossoverEvents    []CrossoverEvent
}

// Common reason codes emitted by strategies and the orchestrator.
const (
	ReasonInsufficientHistory   = "insufficient_history"
	ReasonInsufficientVolatility = "insufficient_volatility"
	ReasonInternalError         = "internal_error"
)
