package indicator

import (
	"math"
	"sort"

	"github.com/raykavin/backtestkernel/core"
)

// buildBarTrades buckets aggTrades into one slice per bar, each bar
// owning the trades whose timestamp falls in [barTime, barTime+resolution).
// Built lazily once per engine load and reused by every orderflow family.
func (e *Engine) buildBarTrades() [][]core.AggTrade {
	if e.barTradesBuilt {
		return e.barTrades
	}
	e.barTradesBuilt = true

	n := len(e.candles)
	buckets := make([][]core.AggTrade, n)
	if len(e.aggTrades) == 0 || n == 0 {
		e.barTrades = buckets
		return buckets
	}

	step := core.TimeframeDuration(e.resolution)
	trades := make([]core.AggTrade, len(e.aggTrades))
	copy(trades, e.aggTrades)
	sort.Slice(trades, func(i, j int) bool { return trades[i].Time.Before(trades[j].Time) })

	bar := 0
	for _, t := range trades {
		for bar < n-1 && !t.Time.Before(e.candles[bar].Time.Add(step)) {
			bar++
		}
		if t.Time.Before(e.candles[bar].Time) {
			continue
		}
		buckets[bar] = append(buckets[bar], t)
	}
	e.barTrades = buckets
	return buckets
}

func (e *Engine) vwap() []float64 {
	buckets := e.buildBarTrades()
	out := make([]float64, len(e.candles))
	for i, trades := range buckets {
		if len(trades) == 0 {
			out[i] = math.NaN()
			continue
		}
		var pv, v float64
		for _, t := range trades {
			pv += t.Price * t.Quantity
			v += t.Quantity
		}
		if v == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = pv / v
	}
	return out
}

// valueArea computes a trailing-n-bar volume profile and returns one of
// poc (point of control: price bucket with the most volume), vah (value
// area high) or val (value area low), using a 70%-of-volume value area.
func (e *Engine) valueArea(period int, field string) []float64 {
	buckets := e.buildBarTrades()
	out := make([]float64, len(e.candles))
	for i := range e.candles {
		start := i - period + 1
		if start < 0 {
			out[i] = math.NaN()
			continue
		}
		profile := map[float64]float64{}
		for b := start; b <= i; b++ {
			for _, t := range buckets[b] {
				price := math.Round(t.Price*100) / 100
				profile[price] += t.Quantity
			}
		}
		if len(profile) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = valueAreaField(profile, field)
	}
	return out
}

func valueAreaField(profile map[float64]float64, field string) float64 {
	prices := make([]float64, 0, len(profile))
	var total float64
	for p, v := range profile {
		prices = append(prices, p)
		total += v
	}
	sort.Float64s(prices)

	poc := prices[0]
	for _, p := range prices {
		if profile[p] > profile[poc] {
			poc = p
		}
	}
	if field == "poc" {
		return poc
	}

	pocIdx := sort.SearchFloat64s(prices, poc)
	lo, hi := pocIdx, pocIdx
	covered := profile[poc]
	target := total * 0.70
	for covered < target && (lo > 0 || hi < len(prices)-1) {
		belowVol, aboveVol := -1.0, -1.0
		if lo > 0 {
			belowVol = profile[prices[lo-1]]
		}
		if hi < len(prices)-1 {
			aboveVol = profile[prices[hi+1]]
		}
		if aboveVol >= belowVol {
			hi++
			covered += profile[prices[hi]]
		} else {
			lo--
			covered += profile[prices[lo]]
		}
	}
	if field == "vah" {
		return prices[hi]
	}
	return prices[lo]
}

func (e *Engine) delta() []float64 {
	buckets := e.buildBarTrades()
	out := make([]float64, len(e.candles))
	for i, trades := range buckets {
		var d float64
		for _, t := range trades {
			if t.IsBuyerMaker {
				d -= t.Quantity
			} else {
				d += t.Quantity
			}
		}
		out[i] = d
	}
	return out
}

func (e *Engine) cumDelta() []float64 {
	d := e.delta()
	out := make([]float64, len(d))
	var running float64
	for i, v := range d {
		running += v
		out[i] = running
	}
	return out
}

func (e *Engine) whaleCount(threshold float64, buySide bool) []float64 {
	buckets := e.buildBarTrades()
	out := make([]float64, len(e.candles))
	for i, trades := range buckets {
		var count float64
		for _, t := range trades {
			notional := t.Price * t.Quantity
			if notional < threshold {
				continue
			}
			isBuy := !t.IsBuyerMaker
			if isBuy == buySide {
				count++
			}
		}
		out[i] = count
	}
	return out
}

func (e *Engine) largeTradeCount(threshold float64) []float64 {
	buckets := e.buildBarTrades()
	out := make([]float64, len(e.candles))
	for i, trades := range buckets {
		var count float64
		for _, t := range trades {
			if t.Price*t.Quantity >= threshold {
				count++
			}
		}
		out[i] = count
	}
	return out
}

// sessionValueArea computes the value-area field over the current (or
// previous, per prevDay) UTC calendar-day session.
func (e *Engine) sessionValueArea(field string, prevDay bool) []float64 {
	buckets := e.buildBarTrades()
	out := make([]float64, len(e.candles))
	for i, c := range e.candles {
		day := c.Time.UTC().Format("2006-01-02")
		start := i
		for start > 0 && e.candles[start-1].Time.UTC().Format("2006-01-02") == day {
			start--
		}
		sessionStart, sessionEnd := start, i
		if prevDay {
			if start == 0 {
				out[i] = math.NaN()
				continue
			}
			prevEndIdx := start - 1
			prevDayStr := e.candles[prevEndIdx].Time.UTC().Format("2006-01-02")
			prevStart := prevEndIdx
			for prevStart > 0 && e.candles[prevStart-1].Time.UTC().Format("2006-01-02") == prevDayStr {
				prevStart--
			}
			sessionStart, sessionEnd = prevStart, prevEndIdx
		}

		profile := map[float64]float64{}
		for b := sessionStart; b <= sessionEnd; b++ {
			for _, t := range buckets[b] {
				price := math.Round(t.Price*100) / 100
				profile[price] += t.Quantity
			}
		}
		if len(profile) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = valueAreaField(profile, field)
	}
	return out
}
