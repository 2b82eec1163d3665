// Package crossover detects line/level/state-flip crossings between
// aligned indicator series, gated by an optional ADX volatility filter.
// The detector is stateless: callers feed it the current frame's series
// on every call, it never retains anything between calls.
package crossover

import (
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// KindSource names what kind of comparison produced a CrossoverEvent.
type KindSource string

const (
	SourceLine      KindSource = "line"
	SourceLevel     KindSource = "level"
	SourceStateFlip KindSource = "state_flip"
)

// Settings controls the detector's behavior for one invocation.
type Settings struct {
	Enabled                 bool
	VolatilityFilterEnabled bool
	ADXThreshold            float64 // default 18
	Lookback                int     // default 5
}

// DefaultSettings returns the built-in defaults from the component spec.
func DefaultSettings() Settings {
	return Settings{
		Enabled:                 true,
		VolatilityFilterEnabled: true,
		ADXThreshold:            18,
		Lookback:                5,
	}
}

// Input bundles the series a single Detect call compares. Exactly one of
// (B, Level) should be set depending on Source: Line crossings compare A
// against B; Level crossings compare A against the constant Level.
// StateFlip crossings only use A, interpreted as a +1/-1 direction
// series (e.g. Supertrend's direction line).
type Input struct {
	Source     KindSource
	FastName   string
	SlowName   string // or the literal threshold's label, for Level
	A          []float64
	B          []float64
	Level      float64
	ADX        []float64
	Symbol     string
	Interval   model.Interval
	Timestamps []int64 // unix seconds per bar, same length as A
}

// Detect scans the last Settings.Lookback completed bars of in and
// returns every crossing found, oldest first; crossings suppressed by the
// ADX volatility filter are left out. If Settings.Enabled is
// false, it returns nil without inspecting the series.
func Detect(in Input, settings Settings) []model.CrossoverEvent {
	if !settings.Enabled {
		return nil
	}
	n := len(in.A)
	if n < 2 {
		return nil
	}

	lookback := settings.Lookback
	if lookback <= 0 {
		lookback = 5
	}
	start := n - lookback
	if start < 1 {
		start = 1
	}

	var events []model.CrossoverEvent
	for i := start; i < n; i++ {
		ev, ok := detectAt(in, i)
		if !ok {
			continue
		}
		if settings.VolatilityFilterEnabled {
			if i >= len(in.ADX) || isNaN(in.ADX[i]) || in.ADX[i] < settings.ADXThreshold {
				ev.Suppressed = true
			}
		}
		if i < len(in.ADX) && !isNaN(in.ADX[i]) {
			ev.ADXAtCross = in.ADX[i]
		}
		if !ev.Suppressed {
			events = append(events, ev)
		}
	}
	return events
}

func detectAt(in Input, i int) (model.CrossoverEvent, bool) {
	base := model.CrossoverEvent{
		FastLine: in.FastName,
		SlowLine: in.SlowName,
		Symbol:   in.Symbol,
		Interval: in.Interval,
		BarIndex: i,
	}
	if i < len(in.Timestamps) {
		base.Timestamp = unixToTime(in.Timestamps[i])
	}

	switch in.Source {
	case SourceStateFlip:
		if i >= len(in.A) {
			return base, false
		}
		if in.A[i] != in.A[i-1] {
			base.Kind = model.CrossoverStateFlip
			base.FastValue = in.A[i]
			base.SlowValue = in.A[i-1]
			return base, true
		}
		return base, false

	case SourceLevel:
		a0, a1 := in.A[i-1], in.A[i]
		if isNaN(a0) || isNaN(a1) {
			return base, false
		}
		base.FastValue = a1
		base.SlowValue = in.Level
		if a0 <= in.Level && a1 > in.Level {
			base.Kind = model.CrossoverBullish
			return base, true
		}
		if a0 >= in.Level && a1 < in.Level {
			base.Kind = model.CrossoverBearish
			return base, true
		}
		return base, false

	default: // SourceLine
		if i >= len(in.B) {
			return base, false
		}
		a0, a1 := in.A[i-1], in.A[i]
		b0, b1 := in.B[i-1], in.B[i]
		if isNaN(a0) || isNaN(a1) || isNaN(b0) || isNaN(b1) {
			return base, false
		}
		base.FastValue = a1
		base.SlowValue = b1
		if a0 <= b0 && a1 > b1 {
			base.Kind = model.CrossoverBullish
			return base, true
		}
		if a0 >= b0 && a1 < b1 {
			base.Kind = model.CrossoverBearish
			return base, true
		}
		return base, false
	}
}

// Latest returns the most recent event in events, or (zero, false) if
// events is empty. events is assumed ordered oldest-first, as returned
// by Detect.
func Latest(events []model.CrossoverEvent) (model.CrossoverEvent, bool) {
	if len(events) == 0 {
		return model.CrossoverEvent{}, false
	}
	return events[len(events)-1], true
}

func isNaN(f float64) bool { return f != f }

func unixToTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }
