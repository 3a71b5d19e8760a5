// Package indicator provides the O(1)-lookup indicator engine (C1). A
// plain struct holds contiguous per-bar arrays; every requested series is
// computed once against the full candle range on first access and then
// cached, keyed by a canonical string built from the indicator family and
// its parameters. No dynamic dispatch sits in the hot evaluation loop —
// Lookup is a map read, and a cache miss goes through one switch on the
// key's family prefix (compute).
package indicator

import (
	"strings"

	"github.com/raykavin/backtestkernel/core"
)

// Engine exposes pure, memoized indicator lookups at any bar index.
// A computed value never changes, but Lookup fills the cache on the
// first access of each key (and the orderflow families bucket the trade
// tape lazily), so an Engine is not safe for concurrent use; each
// parallel backtest instance owns its own Engine (see sim.RunMany).
type Engine struct {
	candles    []core.Candle
	resolution string

	aggTrades    []core.AggTrade
	fundingRates []core.FundingRate
	openInterest []core.OpenInterestPoint

	cache map[string]core.Series[float64]

	open, high, low, close, volume []float64

	barTrades      [][]core.AggTrade // lazily bucketed aggTrades per bar
	barTradesBuilt bool
}

// NewEngine constructs an Engine ready to receive SetCandles.
func NewEngine() *Engine {
	return &Engine{cache: make(map[string]core.Series[float64])}
}

// SetCandles installs the candle series the engine computes indicators
// over. It must be called before any Lookup.
func (e *Engine) SetCandles(candles []core.Candle, resolution string) {
	e.candles = candles
	e.resolution = resolution
	e.cache = make(map[string]core.Series[float64])

	n := len(candles)
	e.open = make([]float64, n)
	e.high = make([]float64, n)
	e.low = make([]float64, n)
	e.close = make([]float64, n)
	e.volume = make([]float64, n)
	for i, c := range candles {
		e.open[i] = c.Open
		e.high[i] = c.High
		e.low[i] = c.Low
		e.close[i] = c.Close
		e.volume[i] = c.Volume
	}
}

// SetAggTrades installs the optional aggregated-trade tape backing the
// orderflow indicator family.
func (e *Engine) SetAggTrades(trades []core.AggTrade) {
	e.aggTrades = trades
	e.barTradesBuilt = false
	e.invalidateFamily("VWAP", "POC", "VAH", "VAL", "DELTA", "CUM_DELTA",
		"WHALE_BUY", "WHALE_SELL", "LARGE_TRADE_COUNT",
		"PREV_DAY_POC", "PREV_DAY_VAH", "PREV_DAY_VAL",
		"TODAY_POC", "TODAY_VAH", "TODAY_VAL")
}

// SetFundingRates installs the optional funding-rate tape.
func (e *Engine) SetFundingRates(rates []core.FundingRate) {
	e.fundingRates = rates
	e.invalidateFamily("FUNDING", "FUNDING_8H")
}

// SetOpenInterest installs the optional open-interest tape.
func (e *Engine) SetOpenInterest(points []core.OpenInterestPoint) {
	e.openInterest = points
	e.invalidateFamily("OI", "OI_CHANGE", "OI_DELTA")
}

func (e *Engine) invalidateFamily(families ...string) {
	for key := range e.cache {
		prefix, _, _ := strings.Cut(key, ":")
		for _, f := range families {
			if prefix == f {
				delete(e.cache, key)
				break
			}
		}
	}
}

// Len returns the number of candles loaded.
func (e *Engine) Len() int { return len(e.candles) }

// Candle returns the bar at index i. The zero value is returned for an
// out-of-range index; callers must bounds-check via Len when that
// matters.
func (e *Engine) Candle(i int) core.Candle {
	if i < 0 || i >= len(e.candles) {
		return core.Candle{}
	}
	return e.candles[i]
}

// Lookup resolves a canonical indicator key (e.g. "SMA:20",
// "STOCHASTIC:14:3:k", "PRICE:close") at the given bar index, computing
// and caching the backing series on first access. Unknown keys and
// indices before an indicator's warmup resolve to NaN.
func (e *Engine) Lookup(key string, bar int) float64 {
	series, ok := e.cache[key]
	if !ok {
		series = e.compute(key)
		e.cache[key] = series
	}
	v, ok := series.At(bar)
	if !ok {
		return nan()
	}
	return v
}
