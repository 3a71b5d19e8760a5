// Package sim implements the simulation driver (C7): the per-bar loop
// that composes the indicator engine, DSL evaluator, exit-zone
// selector, position manager, and pending-order machine into a
// deterministic trade log and performance report.
package sim

import (
	"time"

	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/metric"
	"github.com/raykavin/backtestkernel/strategy"
	"github.com/raykavin/backtestkernel/trade"
)

// BacktestConfig configures one simulation run. It is immutable input,
// paired with a Strategy and a BacktestContext.
type BacktestConfig struct {
	Symbol     string
	Resolution string
	StartDate  time.Time
	EndDate    time.Time

	InitialCapital float64
	Commission     float64

	PositionSizingType  strategy.PositionSizingType
	PositionSizingValue float64

	MarketType           strategy.MarketType
	MarginInterestHourly float64
}

// BacktestContext carries the candle series and every optional input
// collaborator feeds in: phase/hoop-pattern boolean states (one entry
// per candle, indices aligned) and orderflow/funding/open-interest
// tapes consumed by the indicator engine.
type BacktestContext struct {
	Candles []core.Candle

	// PhaseStates / HoopPatternStates map an opaque id to a per-bar
	// boolean activation array. Each array must have exactly
	// len(Candles) entries; an out-of-range bar index is treated as
	// false (phase inactive / pattern unmatched), never an error.
	PhaseStates       map[string][]bool
	HoopPatternStates map[string][]bool

	AggTrades    []core.AggTrade
	FundingRates []core.FundingRate
	OpenInterest []core.OpenInterestPoint
	PremiumIndex []core.PremiumIndexPoint
}

// Progress is emitted through the optional onProgress callback at most
// once every 500 bars, plus at phase boundaries.
type Progress struct {
	Current    int
	Total      int
	Percentage float64
	Message    string
}

// ProgressFunc receives synchronous progress notifications. It must not
// block or attempt to drive the simulation; the default is a no-op.
type ProgressFunc func(Progress)

// BacktestResult is the complete output of one Run call.
type BacktestResult struct {
	RunID      string
	ConfigHash string

	StrategyID   string
	StrategyName string
	Strategy     strategy.Strategy
	Config       BacktestConfig

	Trades  []trade.Trade
	Metrics metric.PerformanceMetrics

	StartEpochMs int64
	EndEpochMs   int64

	BarsEvaluated int
	DurationMs    int64

	Errors   []string
	Warnings []string
}

// maxErrorEntries truncates BacktestResult.Errors per spec's "errors
// list is truncated to the first 100 entries" rule.
const maxErrorEntries = 100

// progressBarInterval is how often onProgress fires mid-phase.
const progressBarInterval = 500
