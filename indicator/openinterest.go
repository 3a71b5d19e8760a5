package indicator

import (
	"math"
	"sort"
)

// oiAt returns the index of the latest open-interest sample at or before
// bar's timestamp, or -1 when none exists yet.
func (e *Engine) oiAt(bar int) int {
	if len(e.openInterest) == 0 {
		return -1
	}
	t := e.candles[bar].Time
	idx := sort.Search(len(e.openInterest), func(i int) bool {
		return e.openInterest[i].Time.After(t)
	})
	return idx - 1
}

// openInterestLevel is the raw open-interest value as of each bar.
func (e *Engine) openInterestLevel() []float64 {
	out := make([]float64, len(e.candles))
	for i := range e.candles {
		idx := e.oiAt(i)
		if idx < 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.openInterest[idx].Value
	}
	return out
}

// openInterestChange is the bar-over-bar delta of the open-interest
// level.
func (e *Engine) openInterestChange() []float64 {
	level := e.openInterestLevel()
	out := make([]float64, len(level))
	out[0] = math.NaN()
	for i := 1; i < len(level); i++ {
		if isNaN(level[i]) || isNaN(level[i-1]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = level[i] - level[i-1]
	}
	return out
}

// openInterestDelta is the n-bar change of the open-interest level.
func (e *Engine) openInterestDelta(period int) []float64 {
	level := e.openInterestLevel()
	out := make([]float64, len(level))
	for i := range level {
		if i < period || isNaN(level[i]) || isNaN(level[i-period]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = level[i] - level[i-period]
	}
	return out
}
