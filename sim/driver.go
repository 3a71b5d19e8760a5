package sim

import (
	"time"

	"github.com/google/uuid"

	"github.com/raykavin/backtestkernel/dsl"
	"github.com/raykavin/backtestkernel/indicator"
	"github.com/raykavin/backtestkernel/metric"
	"github.com/raykavin/backtestkernel/position"
	"github.com/raykavin/backtestkernel/strategy"
)

// atr14Key is the canonical cache key for ATR(14), the fixed period the
// sizer, the pending-order offset, and the exit-zone distance
// conventions all reference.
const atr14Key = "ATR:14"

// Driver composes C1-C6 into the per-bar simulation loop (C7).
type Driver struct {
	strat      strategy.Strategy
	cfg        BacktestConfig
	ctx        BacktestContext
	onProgress ProgressFunc
}

// NewDriver builds a Driver for one simulation run. onProgress may be
// nil, in which case progress notifications are discarded.
func NewDriver(strat strategy.Strategy, cfg BacktestConfig, ctx BacktestContext, onProgress ProgressFunc) *Driver {
	if onProgress == nil {
		onProgress = func(Progress) {}
	}
	return &Driver{strat: strat, cfg: cfg, ctx: ctx, onProgress: onProgress}
}

// Run executes the full simulation and returns its result. It never
// returns a Go error: a precondition failure (invalid strategy, no
// candles) is reported as an error-result per spec, with zero trades
// and empty metrics.
func (d *Driver) Run() BacktestResult {
	started := time.Now()

	result := BacktestResult{
		RunID:        uuid.New().String(),
		ConfigHash:   ConfigHash(d.strat, d.cfg),
		StrategyID:   d.strat.ID,
		StrategyName: d.strat.Name,
		Strategy:     d.strat,
		Config:       d.cfg,
	}

	d.onProgress(Progress{Message: "Parsing strategy"})
	if err := d.strat.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Metrics = metric.Compute(nil, d.cfg.InitialCapital)
		return result
	}

	candles := d.ctx.Candles
	if len(candles) == 0 {
		result.Errors = append(result.Errors, "sim: no candles supplied")
		result.Metrics = metric.Compute(nil, d.cfg.InitialCapital)
		return result
	}

	d.onProgress(Progress{Message: "Calculating indicators"})
	engine := indicator.NewEngine()
	engine.SetCandles(candles, d.cfg.Resolution)
	if len(d.ctx.AggTrades) > 0 {
		engine.SetAggTrades(d.ctx.AggTrades)
	}
	if len(d.ctx.FundingRates) > 0 {
		engine.SetFundingRates(d.ctx.FundingRates)
	}
	if len(d.ctx.OpenInterest) > 0 {
		engine.SetOpenInterest(d.ctx.OpenInterest)
	}

	warmup := d.warmupBars()
	result.StartEpochMs = candles[0].Time.UnixMilli()
	result.EndEpochMs = candles[len(candles)-1].Time.UnixMilli()

	if warmup >= len(candles) {
		result.Metrics = metric.Compute(nil, d.cfg.InitialCapital)
		result.DurationMs = time.Since(started).Milliseconds()
		return result
	}

	mgr := position.NewManager(position.Strategy{
		DcaEnabled:              d.strat.DcaEnabled,
		DcaMaxEntries:           d.strat.DcaMaxEntries,
		DcaBarsBetween:          d.strat.DcaBarsBetween,
		DcaMode:                 d.strat.DcaMode,
		MaxOpenTrades:           d.strat.MaxOpenTrades,
		MinCandlesBetweenTrades: d.strat.MinCandlesBetweenTrades,
	})

	run := &runState{
		driver:       d,
		engine:       engine,
		mgr:          mgr,
		capital:      d.cfg.InitialCapital,
		lastEntryBar: -1 - d.strat.MinCandlesBetweenTrades,
	}

	d.onProgress(Progress{Total: len(candles), Message: "Running backtest"})
	for i := warmup; i < len(candles); i++ {
		run.processBar(i)
		if i%progressBarInterval == 0 {
			d.onProgress(Progress{
				Current:    i,
				Total:      len(candles),
				Percentage: float64(i) / float64(len(candles)) * 100,
				Message:    "Running backtest",
			})
		}
	}
	run.closeAllAtEndOfData(len(candles) - 1)

	d.onProgress(Progress{Message: "Calculating metrics"})
	result.Trades = run.trades
	result.Errors = append(result.Errors, run.errorsList...)
	if len(result.Errors) > maxErrorEntries {
		result.Errors = result.Errors[:maxErrorEntries]
	}
	result.Warnings = run.warningsList
	result.Metrics = metric.Compute(run.trades, d.cfg.InitialCapital)
	result.BarsEvaluated = len(candles) - warmup
	result.DurationMs = time.Since(started).Milliseconds()

	d.onProgress(Progress{Current: len(candles), Total: len(candles), Percentage: 100, Message: "Running backtest"})
	recordRunMetrics(result)
	return result
}

// warmupBars is the largest AST-derived warmup across the entry
// condition and every zone's exit condition.
func (d *Driver) warmupBars() int {
	max := dsl.WarmupBarsFromAST(d.strat.EntryAst)
	for _, z := range d.strat.ExitZones {
		if z.ExitConditionAst == nil {
			continue
		}
		if w := dsl.WarmupBarsFromAST(z.ExitConditionAst); w > max {
			max = w
		}
	}
	return max
}
