package trade

import (
	"math"
	"time"

	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/strategy"
)

// OpenTradeState is the driver's live working state for one open trade.
// It lives only inside the driver; closing a trade produces an
// immutable Trade record and discards this struct.
type OpenTradeState struct {
	Trade Trade

	HighestSinceEntry float64
	LowestSinceEntry  float64
	TrailingStopPrice float64

	OriginalQty  float64
	RemainingQty float64

	ZoneExitCount map[string]int
	LastZoneName  string
	LastExitBar   int

	MFEPercent float64
	MAEPercent float64
	MFEBar     int
	MAEBar     int

	AccumulatedHoldingCosts float64
	LastFundingTime         time.Time
	LastInterestTime        time.Time

	BetterEntry *BetterPrice

	// Scratch fields populated by the C5 exit-zone scan and consumed by
	// the driver's close step within the same bar.
	ExitReason  ExitReason
	ExitPrice   float64
	ExitZoneName string
	MatchedZone *strategy.ExitZone
}

// NewOpenTradeState seeds live state from a freshly opened Trade.
func NewOpenTradeState(t Trade) *OpenTradeState {
	return &OpenTradeState{
		Trade:             t,
		HighestSinceEntry: t.EntryPrice,
		LowestSinceEntry:  t.EntryPrice,
		OriginalQty:       t.Quantity,
		RemainingQty:      t.Quantity,
		ZoneExitCount:     make(map[string]int),
		LastExitBar:       t.EntryBar,
		MFEBar:            t.EntryBar,
		MAEBar:            t.EntryBar,
		LastFundingTime:   t.EntryTime,
		LastInterestTime:  t.EntryTime,
	}
}

// IsFullyClosed reports whether the remaining quantity has decayed below
// the epsilon the spec treats as "fully closed".
func (s *OpenTradeState) IsFullyClosed() bool {
	return s.RemainingQty < 1e-4
}

// pnlPercentAt computes unrealized P&L% at a given price against
// entryPrice, honoring direction.
func pnlPercentAt(entryPrice, price float64, side strategy.Direction) float64 {
	return (price - entryPrice) / entryPrice * 100 * side.Sign()
}

// UpdateExtrema applies the start-of-bar extrema and MFE/MAE update for
// a single bar, given entryPrice (the group's weighted-average entry
// price for DCA positions, or the trade's own entry price otherwise).
func (s *OpenTradeState) UpdateExtrema(bar int, candle core.Candle, entryPrice float64) {
	side := s.Trade.Side

	if candle.High > s.HighestSinceEntry {
		s.HighestSinceEntry = candle.High
	}
	if candle.Low < s.LowestSinceEntry || s.LowestSinceEntry == 0 {
		s.LowestSinceEntry = candle.Low
	}

	pnlAtHigh := pnlPercentAt(entryPrice, candle.High, side)
	pnlAtLow := pnlPercentAt(entryPrice, candle.Low, side)

	favorable, adverse := pnlAtHigh, pnlAtLow
	if side == strategy.Short {
		favorable, adverse = pnlAtLow, pnlAtHigh
	}

	if favorable > s.MFEPercent {
		s.MFEPercent = favorable
		s.MFEBar = bar
	}
	if adverse < s.MAEPercent {
		s.MAEPercent = adverse
		s.MAEBar = bar
	}
}

// AccrueHoldingCosts applies funding (FUTURES) or margin interest
// (MARGIN) cost accrual for the current bar, per spec section 4.4.
func (s *OpenTradeState) AccrueHoldingCosts(
	marketType strategy.MarketType,
	marginInterestHourly float64,
	candleTime time.Time,
	markPrice float64,
	fundingRates []core.FundingRate,
) {
	side := s.Trade.Side
	qty := s.RemainingQty

	switch marketType {
	case strategy.MarketFutures:
		sign := 1.0
		if side == strategy.Short {
			sign = -1
		}
		for _, f := range fundingRates {
			if f.Time.After(s.LastFundingTime) && !f.Time.After(candleTime) {
				s.AccumulatedHoldingCosts += sign * qty * markPrice * f.Rate
				s.LastFundingTime = f.Time
			}
		}
	case strategy.MarketMargin:
		notional := qty * markPrice
		elapsedHours := candleTime.Sub(s.LastInterestTime).Hours()
		if elapsedHours > 0 {
			s.AccumulatedHoldingCosts += notional * (marginInterestHourly / 100) * elapsedHours
			s.LastInterestTime = candleTime
		}
	}
}

// clip bounds v to [lo, hi].
func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
