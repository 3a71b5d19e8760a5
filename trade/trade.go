// Package trade models closed-trade records and the open-trade analytics
// (C4) the simulation driver mutates bar by bar: extrema tracking,
// MFE/MAE, holding-cost accrual, and partial-exit bookkeeping.
package trade

import (
	"time"

	"github.com/raykavin/backtestkernel/strategy"
)

// ExitReason enumerates why a trade or partial exit closed.
type ExitReason string

const (
	ExitStopLoss     ExitReason = "stop_loss"
	ExitTakeProfit   ExitReason = "take_profit"
	ExitTrailingStop ExitReason = "trailing_stop"
	ExitSignal       ExitReason = "signal"
	ExitZoneExit     ExitReason = "zone_exit"
	ExitMarketExit   ExitReason = "market_exit"
	ExitSignalLost   ExitReason = "signal_lost"
	ExitEndOfData    ExitReason = "end_of_data"
	ExitRejected     ExitReason = "rejected"
	ExitExpired      ExitReason = "expired"
)

// BetterPrice records a counterfactual entry or exit the driver found
// while scanning a context window around the actual event.
type BetterPrice struct {
	Bar         int
	Price       float64
	Improvement float64 // percent improvement over the actual fill
}

// Trade is one immutable record appended to the result's trade log.
// Every exit, full or partial, appends a new record whose Quantity is
// the quantity exited; the live remaining quantity is kept on
// OpenTradeState, never on a Trade.
type Trade struct {
	StrategyID string
	Side       strategy.Direction

	EntryBar   int
	EntryTime  time.Time
	EntryPrice float64
	Quantity   float64
	Commission float64
	GroupID    string

	ExitBar    int
	ExitTime   time.Time
	ExitPrice  float64
	ExitReason ExitReason
	ExitZone   string

	PnL        float64
	PnLPercent float64

	MFEPercent float64
	MAEPercent float64
	MFEBar     int
	MAEBar     int

	EntryPhases     []string
	EntryIndicators map[string]float64
	ExitPhases      []string
	ExitIndicators  map[string]float64

	HoldingCosts float64

	BetterEntry *BetterPrice
	BetterExit  *BetterPrice
}

// HasExited reports whether this record represents a closed (or
// partially closed) trade rather than one still open.
func (t Trade) HasExited() bool {
	return t.ExitReason != ""
}
