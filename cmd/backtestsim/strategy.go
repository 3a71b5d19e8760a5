package main

import (
	"fmt"

	"github.com/raykavin/backtestkernel/dsl"
	"github.com/raykavin/backtestkernel/strategy"
)

// strategyFlags collects the run command's strategy-shaping flags. The
// DSL's text parser is out of scope for this kernel (see dsl/ast.go's
// package doc), so the CLI builds the AST for its built-in templates
// directly rather than accepting a free-text strategy description.
type strategyFlags struct {
	template string

	fastPeriod int
	slowPeriod int

	direction string

	stopLossPercent   float64
	takeProfitPercent float64
	trailingPercent   float64

	sizingType  string
	sizingValue float64

	maxOpenTrades           int
	minCandlesBetweenTrades int
}

// buildStrategy resolves a template name into a complete strategy.Strategy.
func buildStrategy(f strategyFlags) (strategy.Strategy, error) {
	switch f.template {
	case "sma-cross":
		return smaCrossStrategy(f)
	case "rsi-reversion":
		return rsiReversionStrategy(f)
	default:
		return strategy.Strategy{}, fmt.Errorf("backtestsim: unknown strategy template %q (want sma-cross or rsi-reversion)", f.template)
	}
}

func direction(f strategyFlags) strategy.Direction {
	if f.direction == "short" {
		return strategy.Short
	}
	return strategy.Long
}

// exitZonesFrom builds the single exit zone every built-in template
// shares: one zone spanning P&L% -100 to 1e9 (so it is also the zero
// zone Strategy.Validate requires) carrying the configured stop loss
// (trailing when --trailing-stop is set, fixed otherwise) and take
// profit.
func exitZonesFrom(f strategyFlags) []strategy.ExitZone {
	slType := strategy.SLFixedPercent
	if f.trailingPercent > 0 {
		slType = strategy.SLTrailingPercent
	}
	slValue := f.stopLossPercent
	if f.trailingPercent > 0 {
		slValue = f.trailingPercent
	}
	return []strategy.ExitZone{
		{
			Name:            "core",
			PnlLo:           -100,
			PnlHi:           1e9,
			StopLossType:    slType,
			StopLossValue:   slValue,
			TakeProfitType:  strategy.TPFixedPercent,
			TakeProfitValue: f.takeProfitPercent,
			ExitPercent:     100,
			ExitBasis:       strategy.ExitBasisRemaining,
		},
	}
}

// smaCrossStrategy enters on a fast/slow SMA crossover in the
// configured direction and exits on the stop/take-profit ladder.
func smaCrossStrategy(f strategyFlags) (strategy.Strategy, error) {
	fast := dsl.IndicatorCall{Name: "SMA", Params: []float64{float64(f.fastPeriod)}}
	slow := dsl.IndicatorCall{Name: "SMA", Params: []float64{float64(f.slowPeriod)}}

	op := dsl.OpCrossesAbove
	if direction(f) == strategy.Short {
		op = dsl.OpCrossesBelow
	}

	return strategy.Strategy{
		ID:        "sma-cross",
		Name:      fmt.Sprintf("SMA(%d)/SMA(%d) crossover", f.fastPeriod, f.slowPeriod),
		Direction: direction(f),
		EntryAst:  dsl.CrossComparison{Left: fast, Right: slow, Op: op},
		ExitZones: exitZonesFrom(f),
		EntrySettings: strategy.EntrySettings{
			OrderType: strategy.OrderMarket,
		},
		MaxOpenTrades:           f.maxOpenTrades,
		MinCandlesBetweenTrades: f.minCandlesBetweenTrades,
	}, nil
}

// rsiReversionStrategy enters long when RSI(14) dips under 30 (or short
// when it pops over 70), betting on mean reversion.
func rsiReversionStrategy(f strategyFlags) (strategy.Strategy, error) {
	rsi := dsl.IndicatorCall{Name: "RSI", Params: []float64{14}}

	threshold := 30.0
	op := dsl.OpLT
	if direction(f) == strategy.Short {
		threshold, op = 70.0, dsl.OpGT
	}

	return strategy.Strategy{
		ID:        "rsi-reversion",
		Name:      "RSI(14) mean reversion",
		Direction: direction(f),
		EntryAst: dsl.Comparison{
			Left:  rsi,
			Op:    op,
			Right: dsl.NumberLiteral{Value: threshold},
		},
		ExitZones: exitZonesFrom(f),
		EntrySettings: strategy.EntrySettings{
			OrderType: strategy.OrderMarket,
		},
		MaxOpenTrades:           f.maxOpenTrades,
		MinCandlesBetweenTrades: f.minCandlesBetweenTrades,
	}, nil
}

// sizingTypeFrom maps the --sizing flag value to strategy's enum.
func sizingTypeFrom(raw string) (strategy.PositionSizingType, error) {
	switch raw {
	case "fixed-percent":
		return strategy.SizeFixedPercent, nil
	case "fixed-dollar", "fixed-amount":
		return strategy.SizeFixedDollar, nil
	case "risk-percent":
		return strategy.SizeRiskPercent, nil
	case "kelly":
		return strategy.SizeKelly, nil
	case "volatility":
		return strategy.SizeVolatility, nil
	case "all-in":
		return strategy.SizeAllIn, nil
	default:
		return "", fmt.Errorf("backtestsim: unknown sizing type %q", raw)
	}
}
