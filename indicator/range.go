package indicator

import "math"

// highOf returns, for each bar, the highest high over the trailing n
// bars (current bar included). No TA-Lib equivalent exists for this
// family; it's hand-rolled over a sliding window.
func highOf(high []float64, period int) []float64 {
	out := make([]float64, len(high))
	for i := range high {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		max := high[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if high[j] > max {
				max = high[j]
			}
		}
		out[i] = max
	}
	return out
}

// lowOf returns, for each bar, the lowest low over the trailing n bars
// (current bar included).
func lowOf(low []float64, period int) []float64 {
	out := make([]float64, len(low))
	for i := range low {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		min := low[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if low[j] < min {
				min = low[j]
			}
		}
		out[i] = min
	}
	return out
}

// rangePosition locates the current close within the [low,high] range
// of the trailing n bars, as a 0-100 percentage, optionally skipping the
// most recent skip bars (so the window ends skip bars back from the
// current one, avoiding same-bar lookahead against the window it's
// measured against).
func rangePosition(high, low, close []float64, period, skip int) []float64 {
	out := make([]float64, len(close))
	for i := range close {
		end := i - skip
		start := end - period + 1
		if start < 0 || end < 0 {
			out[i] = math.NaN()
			continue
		}
		hi := high[start]
		lo := low[start]
		for j := start + 1; j <= end; j++ {
			if high[j] > hi {
				hi = high[j]
			}
			if low[j] < lo {
				lo = low[j]
			}
		}
		if hi == lo {
			out[i] = 50
			continue
		}
		out[i] = (close[i] - lo) / (hi - lo) * 100
	}
	return out
}

// avgVolume returns the trailing n-bar simple average of volume.
func avgVolume(volume []float64, period int) []float64 {
	out := make([]float64, len(volume))
	var sum float64
	for i := range volume {
		sum += volume[i]
		if i >= period {
			sum -= volume[i-period]
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}
