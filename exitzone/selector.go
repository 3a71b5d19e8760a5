// Package exitzone implements the P&L%-zone selector and per-zone
// exit-condition trigger (C5): mapping an open trade's current
// unrealized P&L% to an active zone and deriving an exit reason and
// price from it.
package exitzone

import (
	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/strategy"
	"github.com/raykavin/backtestkernel/trade"
)

// PhaseGate reports whether a zone's required/excluded phase filters
// pass at the current bar. The driver supplies this from
// BacktestContext.phaseStates.
type PhaseGate func(zone strategy.ExitZone) bool

// SelectEmergency scans zones in declared order and returns the first
// whose range covers pnlPercent, is exitImmediately, and passes phase
// filters. This always runs before the normal-exit scan, giving
// emergency exits strict precedence.
func SelectEmergency(zones []strategy.ExitZone, pnlPercent float64, gate PhaseGate) (strategy.ExitZone, bool) {
	for _, z := range zones {
		if z.ExitImmediately && z.Matches(pnlPercent) && gate(z) {
			return z, true
		}
	}
	return strategy.ExitZone{}, false
}

// SelectZone picks the zone governing the normal-exit path: the first
// matching, phase-gated zone, or (when none matches) the first declared
// zone as a fallback. A fallback selection disables exitImmediately /
// market_exit semantics for that zone, per spec's retained
// "fallback to first zone" rule.
func SelectZone(zones []strategy.ExitZone, pnlPercent float64, gate PhaseGate) (zone strategy.ExitZone, isFallback bool) {
	for _, z := range zones {
		if z.Matches(pnlPercent) && gate(z) {
			return z, false
		}
	}
	if len(zones) > 0 {
		return zones[0], true
	}
	return strategy.ExitZone{}, true
}

// stopDistance implements the "Distance conventions" of section 4.5:
// percent of entry price, or ATR(14) * value.
func stopDistance(value float64, isATR bool, entryPrice, atr14 float64) float64 {
	if isATR {
		return atr14 * value
	}
	return entryPrice * value / 100
}

// Trigger is the outcome of evaluating one open trade's normal exit
// path for the current bar.
type Trigger struct {
	Fired  bool
	Reason trade.ExitReason
	Price  float64
}

// EvaluateNormal runs the normal (non-emergency) exit path for a single
// open trade against the selected zone, honoring the
// market_exit/regular-zone split and the trailing>fixed-stop>take-profit
// >signal precedence within a regular zone.
//
// entryPrice is the trade's (or DCA group's weighted-average) entry
// price; atr14 is ATR(14) evaluated at the current bar; signalTrue is
// the zone's exitConditionAst already evaluated (nil-safe — false when
// the zone has no condition) AND the hoop exit-pattern gate already
// applied by the caller.
func EvaluateNormal(
	zone strategy.ExitZone,
	isFallback bool,
	state *trade.OpenTradeState,
	candle core.Candle,
	entryPrice float64,
	atr14 float64,
	signalTrue bool,
) Trigger {
	isLong := state.Trade.Side == strategy.Long
	marketExit := zone.ExitImmediately && !isFallback

	if marketExit {
		if signalTrue {
			return Trigger{Fired: true, Reason: trade.ExitMarketExit, Price: candle.Close}
		}
		return Trigger{}
	}

	// a. CLEAR resets trailing state and falls through to evaluate the
	// rest of the zone with a fresh baseline.
	if zone.StopLossType == strategy.SLClear {
		state.TrailingStopPrice = 0
		if isLong {
			state.HighestSinceEntry = candle.Close
		} else {
			state.LowestSinceEntry = candle.Close
		}
	}

	// b. trailing stop
	if zone.StopLossType.IsTrailing() && zone.StopLossValue > 0 {
		if t := evaluateTrailingStop(zone, state, candle, isLong, entryPrice, atr14); t.Fired {
			return t
		}
	}

	// c. fixed stop
	if zone.StopLossType.IsFixed() {
		dist := stopDistance(zone.StopLossValue, zone.StopLossType == strategy.SLFixedATR, entryPrice, atr14)
		stopPrice := entryPrice - dist
		if !isLong {
			stopPrice = entryPrice + dist
		}
		if crossed(isLong, candle, stopPrice, true) {
			return Trigger{Fired: true, Reason: trade.ExitStopLoss, Price: stopPrice}
		}
	}

	// d. take profit (an unset type counts as NONE)
	if zone.TakeProfitType != strategy.TPNone && zone.TakeProfitType != "" {
		isATR := zone.TakeProfitType == strategy.TPFixedATR || zone.TakeProfitType == strategy.TPTrailingATR
		dist := stopDistance(zone.TakeProfitValue, isATR, entryPrice, atr14)
		tpPrice := entryPrice + dist
		if !isLong {
			tpPrice = entryPrice - dist
		}
		if crossed(isLong, candle, tpPrice, false) {
			return Trigger{Fired: true, Reason: trade.ExitTakeProfit, Price: tpPrice}
		}
	}

	// e. signal
	if zone.ExitConditionAst != nil && signalTrue {
		return Trigger{Fired: true, Reason: trade.ExitSignal, Price: candle.Close}
	}

	return Trigger{}
}

// evaluateTrailingStop updates the live trailing-stop price per
// direction and reports whether the bar crossed it. Percent-based
// trailing distance tracks the current extreme (highest since entry for
// a long, lowest for a short), not the entry price — e.g. a 2% trail
// off a peak of 110 sits at 107.8, matching the worked trailing-stop
// scenario.
func evaluateTrailingStop(zone strategy.ExitZone, state *trade.OpenTradeState, candle core.Candle, isLong bool, entryPrice, atr14 float64) Trigger {
	isATR := zone.StopLossType == strategy.SLTrailingATR
	var dist float64
	if isATR {
		dist = atr14 * zone.StopLossValue
	} else if isLong {
		dist = state.HighestSinceEntry * zone.StopLossValue / 100
	} else {
		dist = state.LowestSinceEntry * zone.StopLossValue / 100
	}

	if isLong {
		candidate := state.HighestSinceEntry - dist
		if candidate > state.TrailingStopPrice {
			state.TrailingStopPrice = candidate
		}
		if state.TrailingStopPrice > 0 && candle.Low <= state.TrailingStopPrice {
			return Trigger{Fired: true, Reason: trade.ExitTrailingStop, Price: state.TrailingStopPrice}
		}
		return Trigger{}
	}

	candidate := state.LowestSinceEntry + dist
	if state.TrailingStopPrice == 0 || candidate < state.TrailingStopPrice {
		state.TrailingStopPrice = candidate
	}
	if state.TrailingStopPrice > 0 && candle.High >= state.TrailingStopPrice {
		return Trigger{Fired: true, Reason: trade.ExitTrailingStop, Price: state.TrailingStopPrice}
	}
	return Trigger{}
}

// crossed reports whether the bar's range crosses a stop/target price:
// for a long stop (isStop=true, a stop below entry), the bar's low
// reaching down to price triggers; for a long take-profit
// (isStop=false), the bar's high reaching up to it triggers. Short is
// the mirror image.
func crossed(isLong bool, candle core.Candle, price float64, isStop bool) bool {
	belowTriggers := isLong == isStop
	if belowTriggers {
		return candle.Low <= price
	}
	return candle.High >= price
}
