package sim

import (
	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/pending"
	"github.com/raykavin/backtestkernel/position"
	"github.com/raykavin/backtestkernel/strategy"
	"github.com/raykavin/backtestkernel/trade"
)

// closeQuantity emits one trade record for an exit of qty units of st,
// allocating entry commission and accumulated holding costs
// proportionally to the quantity exited, and updates running equity.
// st's scratch ExitReason/ExitPrice/ExitZoneName fields (set by
// exitzone.Cascade or the caller) supply the record's exit details.
func (r *runState) closeQuantity(st *trade.OpenTradeState, qty float64, zone strategy.ExitZone, bar int, candle core.Candle) {
	entryPrice := st.Trade.EntryPrice
	side := st.Trade.Side
	price := st.ExitPrice

	exitCommission := price * qty * r.driver.cfg.Commission

	var entryCommissionShare float64
	if st.OriginalQty > 0 {
		entryCommissionShare = st.Trade.Commission / st.OriginalQty * qty
	}

	var holdingShare float64
	if st.RemainingQty > 0 {
		holdingShare = st.AccumulatedHoldingCosts * (qty / st.RemainingQty)
	}
	st.AccumulatedHoldingCosts -= holdingShare

	grossPnL := (price - entryPrice) * qty * side.Sign()
	pnl := grossPnL - entryCommissionShare - exitCommission - holdingShare

	st.RecordPartialExit(zone, qty, bar)

	var betterExit *trade.BetterPrice
	if st.IsFullyClosed() {
		betterExit = trade.BetterExitAnalysis(r.driver.ctx.Candles, bar, price, side.Sign())
	}

	r.trades = append(r.trades, trade.Trade{
		StrategyID: st.Trade.StrategyID,
		Side:       side,
		EntryBar:   st.Trade.EntryBar,
		EntryTime:  st.Trade.EntryTime,
		EntryPrice: entryPrice,
		Quantity:   qty,
		Commission: entryCommissionShare + exitCommission,
		GroupID:    st.Trade.GroupID,
		ExitBar:    bar,
		ExitTime:   candle.Time,
		ExitPrice:  price,
		ExitReason: st.ExitReason,
		ExitZone:   st.ExitZoneName,
		PnL:        pnl,
		PnLPercent: pnlPercent(entryPrice, price, side),
		MFEPercent: st.MFEPercent,
		MAEPercent: st.MAEPercent,
		MFEBar:     st.MFEBar,
		MAEBar:     st.MAEBar,
		HoldingCosts: holdingShare,
		BetterEntry:  st.BetterEntry,
		BetterExit:   betterExit,
	})
	// The entry commission share was already debited from capital when
	// the position opened.
	r.capital += pnl + entryCommissionShare
}

// expiredTrade builds the zero-position trade record for a pending
// order that expired without filling.
func (r *runState) expiredTrade(o pending.Order, bar int, candle core.Candle) trade.Trade {
	return trade.Trade{
		StrategyID: r.driver.strat.ID,
		Side:       r.driver.strat.Direction,
		EntryBar:   o.SignalBar,
		EntryTime:  r.engine.Candle(o.SignalBar).Time,
		EntryPrice: o.SignalPrice,
		ExitBar:    bar,
		ExitTime:   candle.Time,
		ExitReason: trade.ExitExpired,
	}
}

// openEntry sizes and opens a new position (or DCA addition) at
// fillPrice, or emits a rejected trade when the sizer declines it.
func (r *runState) openEntry(fillPrice float64, bar int, candle core.Candle, isLong bool, atr14 float64) {
	strat := r.driver.strat
	direction := strategy.Short
	if isLong {
		direction = strategy.Long
	}

	var stopDist float64
	if zero, ok := strat.ZeroZone(); ok && zero.StopLossType.IsFixed() {
		if zero.StopLossType == strategy.SLFixedATR {
			stopDist = atr14 * zero.StopLossValue
		} else {
			stopDist = fillPrice * zero.StopLossValue / 100
		}
	}

	qty, rejected := position.Size(r.driver.cfg.PositionSizingType, position.SizingInputs{
		Equity:           r.capital,
		Price:            fillPrice,
		SizingValue:      r.driver.cfg.PositionSizingValue,
		StopDistance:     stopDist,
		ATR14:            atr14,
		DcaMaxEntries:    strat.DcaMaxEntries,
		DcaEnabled:       strat.DcaEnabled,
		AllocatedCapital: r.allocatedCapital(),
	})
	if rejected || qty <= 0 {
		r.trades = append(r.trades, trade.Trade{
			StrategyID: strat.ID,
			Side:       direction,
			EntryBar:   bar,
			EntryTime:  candle.Time,
			EntryPrice: fillPrice,
			ExitBar:    bar,
			ExitTime:   candle.Time,
			ExitReason: trade.ExitRejected,
		})
		return
	}

	entryCommission := fillPrice * qty * r.driver.cfg.Commission
	r.capital -= entryCommission

	st := trade.NewOpenTradeState(trade.Trade{
		StrategyID: strat.ID,
		Side:       direction,
		EntryBar:   bar,
		EntryTime:  candle.Time,
		EntryPrice: fillPrice,
		Quantity:   qty,
		Commission: entryCommission,
	})
	st.BetterEntry = trade.BetterEntryAnalysis(r.driver.ctx.Candles, bar, fillPrice, direction.Sign())

	if r.mgr.IsDcaEntry() {
		r.mgr.AddToGroup(st)
	} else {
		groupID := r.mgr.OpenGroup(st, strat.DcaEnabled)
		r.groupOrder = append(r.groupOrder, groupID)
	}
	r.openStates = append(r.openStates, st)
	r.lastEntryBar = bar
}
