package trade

import "github.com/raykavin/backtestkernel/core"

// ContextBars is the lookback/lookahead window used by the better-entry
// and better-exit analyses.
const ContextBars = 20

// BetterEntryAnalysis scans up to ContextBars candles before entryBar
// for the best counterfactual entry price: the lowest low for a long,
// the highest high for a short. Returns nil when no bar in the window
// would have improved on the actual fill.
func BetterEntryAnalysis(candles []core.Candle, entryBar int, actualPrice float64, side float64) *BetterPrice {
	start := entryBar - ContextBars
	if start < 0 {
		start = 0
	}
	if entryBar <= 0 || start >= entryBar {
		return nil
	}

	bestBar := -1
	bestPrice := actualPrice
	for i := start; i < entryBar; i++ {
		c := candles[i]
		candidate := c.Low
		if side < 0 {
			candidate = c.High
		}
		isBetter := candidate < bestPrice
		if side < 0 {
			isBetter = candidate > bestPrice
		}
		if isBetter {
			bestPrice = candidate
			bestBar = i
		}
	}
	if bestBar < 0 {
		return nil
	}
	improvement := (actualPrice - bestPrice) / actualPrice * 100 * side
	return &BetterPrice{Bar: bestBar, Price: bestPrice, Improvement: improvement}
}

// BetterExitAnalysis scans up to ContextBars candles after exitBar for
// the best counterfactual exit price: the highest high for a long, the
// lowest low for a short. Returns nil when the forward window is empty
// (e.g. the trade closed with end_of_data) or no bar improves on the
// actual fill.
func BetterExitAnalysis(candles []core.Candle, exitBar int, actualPrice float64, side float64) *BetterPrice {
	end := exitBar + ContextBars
	if end >= len(candles) {
		end = len(candles) - 1
	}
	if exitBar >= len(candles)-1 || exitBar+1 > end {
		return nil
	}

	bestBar := -1
	bestPrice := actualPrice
	for i := exitBar + 1; i <= end; i++ {
		c := candles[i]
		candidate := c.High
		if side < 0 {
			candidate = c.Low
		}
		isBetter := candidate > bestPrice
		if side < 0 {
			isBetter = candidate < bestPrice
		}
		if isBetter {
			bestPrice = candidate
			bestBar = i
		}
	}
	if bestBar < 0 {
		return nil
	}
	improvement := (bestPrice - actualPrice) / actualPrice * 100 * side
	return &BetterPrice{Bar: bestBar, Price: bestPrice, Improvement: improvement}
}
