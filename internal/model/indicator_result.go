package model

import "time"

// IndicatorResult is the output of one indicator family computed over a
// Frame. Series holds one aligned value per bar (NaN where the indicator
// is not yet warmed up); Latest is the convenience accessor for the most
// recent value. Some families (MACD, Bollinger, ADX/DMI, Stochastic)
// produce more than one named line, hence the map rather than a single
// slice.
type IndicatorResult struct {
	Name      string
	Symbol    string
	Interval  Interval
	Params    map[string]float64
	Series    map[string][]float64
	Timestamp time.Time
}

// Latest returns the most recent value of the named line. ok is false if
// the line doesn't exist or the series is empty.
func (r IndicatorResult) Latest(line string) (float64, bool) {
	s, found := r.Series[line]
	if !found || len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

// LatestAt returns the value of the named line n bars back from the most
// recent bar (0 = latest). ok is false if out of range.
func (r IndicatorResult) LatestAt(line string, n int) (float64, bool) {
	s, found := r.Series[line]
	if !found {
		return 0, false
	}
	idx := len(s) - 1 - n
	if idx < 0 || idx >= len(s) {
		return 0, false
	}
	return s[idx], true
}

// Ready reports whether the named line has at least one non-NaN value at
// its latest position.
func (r IndicatorResult) Ready(line string) bool {
	v, ok := r.Latest(line)
	return ok && v == v // NaN != NaN
}
