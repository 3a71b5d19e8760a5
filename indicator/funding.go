package indicator

import (
	"math"
	"sort"
	"time"
)

// fundingAt returns the index of the latest funding-rate settlement at
// or before bar's timestamp, or -1 when none exists yet.
func (e *Engine) fundingAt(bar int) int {
	if len(e.fundingRates) == 0 {
		return -1
	}
	t := e.candles[bar].Time
	idx := sort.Search(len(e.fundingRates), func(i int) bool {
		return e.fundingRates[i].Time.After(t)
	})
	return idx - 1
}

// funding returns the most recent funding-rate settlement known as of
// each bar.
func (e *Engine) funding() []float64 {
	out := make([]float64, len(e.candles))
	for i := range e.candles {
		idx := e.fundingAt(i)
		if idx < 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.fundingRates[idx].Rate
	}
	return out
}

// funding8h is the trailing average of settlements observed in the 8
// hours up to and including each bar.
func (e *Engine) funding8h() []float64 {
	out := make([]float64, len(e.candles))
	for i, c := range e.candles {
		cutoff := c.Time.Add(-8 * time.Hour)
		var sum float64
		var count int
		for _, f := range e.fundingRates {
			if f.Time.After(cutoff) && !f.Time.After(c.Time) {
				sum += f.Rate
				count++
			}
		}
		if count == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(count)
	}
	return out
}
