package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/dsl"
	"github.com/raykavin/backtestkernel/indicator"
	"github.com/raykavin/backtestkernel/position"
	"github.com/raykavin/backtestkernel/strategy"
	"github.com/raykavin/backtestkernel/trade"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func candlesFromCloses(closes []float64) []core.Candle {
	out := make([]core.Candle, len(closes))
	for i, c := range closes {
		out[i] = core.Candle{
			Time:  testEpoch.Add(time.Duration(i) * time.Hour),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return out
}

func zeroZone() strategy.ExitZone {
	return strategy.ExitZone{
		Name:  "zero",
		PnlLo: -100, PnlHi: 100,
	}
}

func baseConfig() BacktestConfig {
	return BacktestConfig{
		Symbol:              "TEST",
		Resolution:          "1h",
		StartDate:           testEpoch,
		InitialCapital:      10000,
		Commission:          0,
		PositionSizingType:  strategy.SizeFixedPercent,
		PositionSizingValue: 100,
		MarketType:          strategy.MarketSpot,
	}
}

func gtClose(v float64) dsl.Node {
	return dsl.Comparison{
		Left:  dsl.PriceReference{Field: dsl.FieldClose},
		Op:    dsl.OpGT,
		Right: dsl.NumberLiteral{Value: v},
	}
}

// runScenario drives the per-bar loop directly over every supplied
// candle, bypassing Driver.Run's warmup floor (min 50 bars, per spec
// section 4.1) so the section-8 worked scenarios' small candle counts
// exercise the same ordering guarantee (extrema -> exit scans -> close
// -> pending order -> abort check -> new entry) the full driver runs
// from warmupBars onward.
func runScenario(strat strategy.Strategy, cfg BacktestConfig, candles []core.Candle) *runState {
	engine := indicator.NewEngine()
	engine.SetCandles(candles, cfg.Resolution)

	mgr := position.NewManager(position.Strategy{
		DcaEnabled:              strat.DcaEnabled,
		DcaMaxEntries:           strat.DcaMaxEntries,
		DcaBarsBetween:          strat.DcaBarsBetween,
		DcaMode:                 strat.DcaMode,
		MaxOpenTrades:           strat.MaxOpenTrades,
		MinCandlesBetweenTrades: strat.MinCandlesBetweenTrades,
	})

	d := &Driver{strat: strat, cfg: cfg, ctx: BacktestContext{Candles: candles}, onProgress: func(Progress) {}}
	r := &runState{
		driver:       d,
		engine:       engine,
		mgr:          mgr,
		capital:      cfg.InitialCapital,
		lastEntryBar: -1 - strat.MinCandlesBetweenTrades,
	}

	for i := range candles {
		r.processBar(i)
	}
	r.closeAllAtEndOfData(len(candles) - 1)
	return r
}

// 1. Trivial long: entry fires the first bar close exceeds 100, position
// rides to the end of data with no stop/target configured.
func TestScenarioTrivialLong(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}
	strat := strategy.Strategy{
		ID:            "trivial-long",
		Direction:     strategy.Long,
		EntryAst:      gtClose(100),
		ExitZones:     []strategy.ExitZone{zeroZone()},
		EntrySettings: strategy.EntrySettings{OrderType: strategy.OrderMarket},
		MaxOpenTrades: 1,
	}
	r := runScenario(strat, baseConfig(), candlesFromCloses(closes))

	require.Empty(t, r.errorsList)
	require.Len(t, r.trades, 1)
	tr := r.trades[0]
	require.Equal(t, 1, tr.EntryBar)
	require.Equal(t, 101.0, tr.EntryPrice)
	require.Equal(t, 9, tr.ExitBar)
	require.Equal(t, 109.0, tr.ExitPrice)
	require.Equal(t, trade.ExitEndOfData, tr.ExitReason)

	// FIXED_PERCENT 100 is capped at 95% of equity by the sizer, so the
	// opened notional is 9500 at the fill price of 101.
	expectedQty := 9500.0 / 101.0
	require.InDelta(t, expectedQty, tr.Quantity, 1e-9)
	expectedPnL := (109.0 - 101.0) * expectedQty
	require.InDelta(t, expectedPnL, tr.PnL, 1e-6)
}

// 2. Fixed stop-loss on long: a sudden drop to low=95 at bar 3 triggers
// the 5% fixed stop seeded off the bar-0 entry price of 100.
func TestScenarioFixedStopLoss(t *testing.T) {
	candles := candlesFromCloses([]float64{100, 100, 100, 96})
	candles[0].Low, candles[0].High = 99, 101
	candles[1].Low, candles[1].High = 99, 101
	candles[2].Low, candles[2].High = 99, 101
	candles[3].Low, candles[3].High = 95, 96

	strat := strategy.Strategy{
		ID:        "fixed-stop",
		Direction: strategy.Long,
		EntryAst:  gtClose(99),
		ExitZones: []strategy.ExitZone{{
			Name: "zero", PnlLo: -100, PnlHi: 100,
			StopLossType: strategy.SLFixedPercent, StopLossValue: 5,
		}},
		EntrySettings: strategy.EntrySettings{OrderType: strategy.OrderMarket},
		MaxOpenTrades: 1,
	}
	r := runScenario(strat, baseConfig(), candles)

	require.Empty(t, r.errorsList)
	require.Len(t, r.trades, 1)
	tr := r.trades[0]
	require.Equal(t, 0, tr.EntryBar)
	require.Equal(t, 100.0, tr.EntryPrice)
	require.Equal(t, 3, tr.ExitBar)
	require.Equal(t, 95.0, tr.ExitPrice)
	require.Equal(t, trade.ExitStopLoss, tr.ExitReason)
}

// 3. Trailing stop: the trail tightens to 2% below the running high of
// 110 (107.8) and a subsequent dip to low=107 crosses it.
func TestScenarioTrailingStop(t *testing.T) {
	closes := []float64{100, 102, 104, 106, 108, 110, 108}
	candles := candlesFromCloses(closes)
	for i := range candles {
		candles[i].High = closes[i]
		candles[i].Low = closes[i]
	}
	candles[6].Low = 107

	strat := strategy.Strategy{
		ID:        "trailing-stop",
		Direction: strategy.Long,
		EntryAst:  gtClose(99),
		ExitZones: []strategy.ExitZone{{
			Name: "zero", PnlLo: -100, PnlHi: 100,
			StopLossType: strategy.SLTrailingPercent, StopLossValue: 2,
		}},
		EntrySettings: strategy.EntrySettings{OrderType: strategy.OrderMarket},
		MaxOpenTrades: 1,
	}
	r := runScenario(strat, baseConfig(), candles)

	require.Empty(t, r.errorsList)
	// The entry condition still holds on the exit bar (close 108 > 99),
	// so a second entry opens at bar 6 and is closed at end of data.
	require.Len(t, r.trades, 2)
	require.Equal(t, 6, r.trades[1].EntryBar)
	tr := r.trades[0]
	require.Equal(t, 0, tr.EntryBar)
	require.Equal(t, 6, tr.ExitBar)
	require.InDelta(t, 107.8, tr.ExitPrice, 1e-9)
	require.Equal(t, trade.ExitTrailingStop, tr.ExitReason)
}

// 4. Two-entry DCA in PAUSE mode: the signal fires at bars 0 and 5,
// sharing one groupId; a third firing at bar 6 adds nothing because the
// group is already at dcaMaxEntries and no new position can start
// alongside it.
func TestScenarioDcaPauseMode(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 100, 100, 100}
	strat := strategy.Strategy{
		ID:        "dca-pause",
		Direction: strategy.Long,
		EntryAst: dsl.Comparison{
			Left: dsl.PriceReference{Field: dsl.FieldClose}, Op: dsl.OpEQ, Right: dsl.NumberLiteral{Value: 100},
		},
		ExitZones:      []strategy.ExitZone{zeroZone()},
		EntrySettings:  strategy.EntrySettings{OrderType: strategy.OrderMarket},
		DcaEnabled:     true,
		DcaMaxEntries:  2,
		DcaBarsBetween: 3,
		DcaMode:        strategy.DcaPause,
		MaxOpenTrades:  1,
	}
	r := runScenario(strat, baseConfig(), candlesFromCloses(closes))

	require.Empty(t, r.errorsList)
	require.Len(t, r.trades, 2)
	require.Equal(t, 0, r.trades[0].EntryBar)
	require.Equal(t, 5, r.trades[1].EntryBar)
	require.Equal(t, r.trades[0].GroupID, r.trades[1].GroupID)
	require.NotEmpty(t, r.trades[0].GroupID)
	for _, tr := range r.trades {
		require.Equal(t, trade.ExitEndOfData, tr.ExitReason)
		require.Equal(t, 7, tr.ExitBar)
	}
}

// 5. Emergency zone: an exitImmediately zone covering [-100,-5] fires at
// bar 4 the instant P&L% reaches -6, bypassing the normal zone's
// minBarsBeforeExit gate entirely.
func TestScenarioEmergencyZone(t *testing.T) {
	closes := []float64{100, 98, 97, 95.5, 94}
	strat := strategy.Strategy{
		ID:        "emergency-zone",
		Direction: strategy.Long,
		EntryAst:  gtClose(99),
		ExitZones: []strategy.ExitZone{
			{Name: "emergency", PnlLo: -100, PnlHi: -5, ExitImmediately: true},
			{Name: "normal", PnlLo: -5, PnlHi: 100, MinBarsBeforeExit: 1000},
		},
		EntrySettings: strategy.EntrySettings{OrderType: strategy.OrderMarket},
		MaxOpenTrades: 1,
	}
	r := runScenario(strat, baseConfig(), candlesFromCloses(closes))

	require.Empty(t, r.errorsList)
	require.Len(t, r.trades, 1)
	tr := r.trades[0]
	require.Equal(t, 4, tr.ExitBar)
	require.Equal(t, 94.0, tr.ExitPrice)
	require.Equal(t, trade.ExitZoneExit, tr.ExitReason)
	require.Equal(t, "emergency", tr.ExitZone)
}

// 6. LIMIT entry with offset: a signal at bar 2 (close=100) opens a LIMIT
// order 1% below at 99.0; bar 3's low of 98.9 fills it at the order
// price, not the bar's own low, and the fill suppresses any same-bar
// MARKET entry.
func TestScenarioLimitEntryOffset(t *testing.T) {
	candles := candlesFromCloses([]float64{90, 95, 100, 99.5})
	candles[3].Low = 98.9

	strat := strategy.Strategy{
		ID:        "limit-offset",
		Direction: strategy.Long,
		EntryAst:  gtClose(99),
		ExitZones: []strategy.ExitZone{zeroZone()},
		EntrySettings: strategy.EntrySettings{
			OrderType:   strategy.OrderLimit,
			OffsetUnit:  strategy.OffsetPercent,
			OffsetValue: -1,
		},
		MaxOpenTrades: 1,
	}
	r := runScenario(strat, baseConfig(), candles)

	require.Empty(t, r.errorsList)
	require.Len(t, r.trades, 1)
	tr := r.trades[0]
	require.Equal(t, 3, tr.EntryBar)
	require.Equal(t, 99.0, tr.EntryPrice)
}

// No candles: the driver reports the precondition failure as an
// error-result rather than panicking, with zero trades and empty metrics.
func TestDriverNoCandles(t *testing.T) {
	strat := strategy.Strategy{
		ID:            "empty",
		Direction:     strategy.Long,
		EntryAst:      gtClose(100),
		ExitZones:     []strategy.ExitZone{zeroZone()},
		EntrySettings: strategy.EntrySettings{OrderType: strategy.OrderMarket},
		MaxOpenTrades: 1,
	}
	result := NewDriver(strat, baseConfig(), BacktestContext{}, nil).Run()

	require.NotEmpty(t, result.Errors)
	require.Empty(t, result.Trades)
	require.Equal(t, 0, result.Metrics.TotalTrades)
}

// An invalid strategy (no exit zones) likewise reports a precondition
// error rather than running.
func TestDriverInvalidStrategy(t *testing.T) {
	strat := strategy.Strategy{
		ID:            "invalid",
		Direction:     strategy.Long,
		EntryAst:      gtClose(100),
		EntrySettings: strategy.EntrySettings{OrderType: strategy.OrderMarket},
		MaxOpenTrades: 1,
	}
	ctx := BacktestContext{Candles: candlesFromCloses([]float64{100, 101})}
	result := NewDriver(strat, baseConfig(), ctx, nil).Run()

	require.NotEmpty(t, result.Errors)
	require.Empty(t, result.Trades)
}

// A strategy whose only candles fall short of its warmup requirement
// (entry AST with no indicators defaults to the 50-bar floor) reports
// zero trades and no errors, per the data-shape error policy.
func TestDriverShortOfWarmup(t *testing.T) {
	strat := strategy.Strategy{
		ID:            "short",
		Direction:     strategy.Long,
		EntryAst:      gtClose(100),
		ExitZones:     []strategy.ExitZone{zeroZone()},
		EntrySettings: strategy.EntrySettings{OrderType: strategy.OrderMarket},
		MaxOpenTrades: 1,
	}
	ctx := BacktestContext{Candles: candlesFromCloses([]float64{100, 101, 102})}
	result := NewDriver(strat, baseConfig(), ctx, nil).Run()

	require.Empty(t, result.Errors)
	require.Empty(t, result.Trades)
}

// RunMany preserves job order in its result slice regardless of
// completion order, and Successful drops error results.
func TestRunManyOrderAndSuccessful(t *testing.T) {
	good := strategy.Strategy{
		ID:            "good",
		Direction:     strategy.Long,
		EntryAst:      gtClose(100),
		ExitZones:     []strategy.ExitZone{zeroZone()},
		EntrySettings: strategy.EntrySettings{OrderType: strategy.OrderMarket},
		MaxOpenTrades: 1,
	}
	bad := good
	bad.ID = "bad"
	bad.ExitZones = nil // fails Validate: no exit zones at all

	closes := []float64{100, 101, 102}
	cfg := baseConfig()
	ctx := BacktestContext{Candles: candlesFromCloses(closes)}

	jobs := []Job{
		{Strategy: good, Config: cfg, Context: ctx},
		{Strategy: bad, Config: cfg, Context: ctx},
	}
	results := RunMany(jobs, 2)
	require.Len(t, results, 2)
	require.Equal(t, "good", results[0].StrategyID)
	require.Equal(t, "bad", results[1].StrategyID)
	require.Empty(t, results[0].Errors)
	require.NotEmpty(t, results[1].Errors)

	ok := Successful(results)
	require.Len(t, ok, 1)
	require.Equal(t, "good", ok[0].StrategyID)
}
