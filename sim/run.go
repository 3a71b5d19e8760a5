package sim

import (
	"github.com/StudioSol/set"

	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/dsl"
	"github.com/raykavin/backtestkernel/exitzone"
	"github.com/raykavin/backtestkernel/indicator"
	"github.com/raykavin/backtestkernel/pending"
	"github.com/raykavin/backtestkernel/position"
	"github.com/raykavin/backtestkernel/strategy"
	"github.com/raykavin/backtestkernel/trade"
)

// runState is the driver's live, single-threaded working state for one
// run. Nothing here is shared across RunMany's parallel instances.
type runState struct {
	driver *Driver
	engine *indicator.Engine
	mgr    *position.Manager

	capital      float64
	openStates   []*trade.OpenTradeState
	groupOrder   []string
	pendingOrder *pending.Order
	lastEntryBar int

	trades       []trade.Trade
	errorsList   []string
	warningsList []string
}

// pendingExit is the outcome of the exit-zone scan for one open trade,
// carrying the zone needed by CalculateExitQuantity/RecordPartialExit
// alongside the quantity already computed against it.
type pendingExit struct {
	qty  float64
	zone strategy.ExitZone
}

func pnlPercent(entryPrice, price float64, side strategy.Direction) float64 {
	return (price - entryPrice) / entryPrice * 100 * side.Sign()
}

func (r *runState) entryPriceForGroup(groupID string) float64 {
	return position.WeightedAverageEntryPrice(r.mgr.Group(groupID))
}

func (r *runState) allocatedCapital() float64 {
	var total float64
	for _, st := range r.openStates {
		total += st.Trade.EntryPrice * st.RemainingQty
	}
	return total
}

// processBar runs one iteration of the ordering guarantee in spec
// section 5: extrema -> emergency scan -> normal scan -> close ->
// reset group -> pending order -> abort check -> new entry.
func (r *runState) processBar(i int) {
	strat := r.driver.strat
	ctx := r.driver.ctx
	candle := r.engine.Candle(i)

	activePhases := activePhaseSet(ctx.PhaseStates, i)
	activeHoop := activePhaseSet(ctx.HoopPatternStates, i)
	atr14 := r.engine.Lookup(atr14Key, i)

	// 1. extrema + holding costs.
	for _, st := range r.openStates {
		ep := r.entryPriceForGroup(st.Trade.GroupID)
		st.UpdateExtrema(i, candle, ep)
		st.AccrueHoldingCosts(r.driver.cfg.MarketType, r.driver.cfg.MarginInterestHourly, candle.Time, candle.Close, ctx.FundingRates)
	}

	// 2. emergency + normal exit scans, group by group.
	exits := make(map[*trade.OpenTradeState]pendingExit)
	phaseGate := func(z strategy.ExitZone) bool {
		return idsSatisfied(activePhases, z.RequiredPhaseIds, z.ExcludedPhaseIds)
	}

	for _, groupID := range r.groupOrder {
		members := r.mgr.Group(groupID)
		if len(members) == 0 {
			continue
		}
		ep := r.entryPriceForGroup(groupID)
		pnl := pnlPercent(ep, candle.Close, members[0].Trade.Side)

		if zone, ok := exitzone.SelectEmergency(strat.ExitZones, pnl, phaseGate); ok {
			exitzone.Cascade(members, trade.ExitZoneExit, zone.Name, candle.Close)
			for _, st := range members {
				exits[st] = pendingExit{qty: st.RemainingQty, zone: zone}
			}
			continue
		}

		dcaComplete := !strat.DcaEnabled || len(members) >= strat.DcaMaxEntries
		if !dcaComplete {
			continue
		}

		zone, isFallback := exitzone.SelectZone(strat.ExitZones, pnl, phaseGate)

		var triggered *exitzone.Trigger
		for _, st := range members {
			if i-st.Trade.EntryBar < zone.MinBarsBeforeExit {
				continue
			}
			signalTrue := false
			if zone.ExitConditionAst != nil {
				ok, err := dsl.EvalBool(zone.ExitConditionAst, r.engine, i)
				if err != nil {
					r.errorsList = append(r.errorsList, barError(i, err))
				} else {
					hoopOK := idsSatisfied(activeHoop, strat.HoopPatternSettings.RequiredExitPatternIds, strat.HoopPatternSettings.ExcludedExitPatternIds)
					signalTrue = ok && hoopOK
				}
			}
			t := exitzone.EvaluateNormal(zone, isFallback, st, candle, ep, atr14, signalTrue)
			if t.Fired {
				triggered = &t
				break
			}
		}
		if triggered == nil {
			continue
		}
		exitzone.Cascade(members, triggered.Reason, zone.Name, triggered.Price)
		for _, st := range members {
			if i-st.LastExitBar < zone.MinBarsBetweenExits {
				continue
			}
			qty := st.CalculateExitQuantity(zone)
			if qty <= 0 {
				continue
			}
			exits[st] = pendingExit{qty: qty, zone: zone}
		}
	}

	// 3. close trades, in a deterministic order (the open-trade
	// insertion order), and 4. reset groups left empty.
	touchedGroups := set.NewLinkedHashSetString()
	stillOpen := r.openStates[:0:0]
	for _, st := range r.openStates {
		pe, marked := exits[st]
		if !marked || pe.qty <= 0 {
			stillOpen = append(stillOpen, st)
			continue
		}
		touchedGroups.Add(st.Trade.GroupID)
		r.closeQuantity(st, pe.qty, pe.zone, i, candle)
		if st.IsFullyClosed() {
			r.mgr.RemoveFromGroup(st.Trade.GroupID, st)
		} else {
			stillOpen = append(stillOpen, st)
		}
	}
	r.openStates = stillOpen
	for groupID := range touchedGroups.Iter() {
		r.mgr.ResetGroupIfEmpty(groupID)
		if len(r.mgr.Group(groupID)) == 0 {
			r.dropGroupOrder(groupID)
		}
	}

	// 5. advance the pending order.
	filledThisBar := false
	if r.pendingOrder != nil {
		switch {
		case r.pendingOrder.Expired(i):
			r.trades = append(r.trades, r.expiredTrade(*r.pendingOrder, i, candle))
			r.pendingOrder = nil
		default:
			res := r.pendingOrder.Evaluate(candle)
			if res.Filled {
				r.openEntry(res.FillPrice, i, candle, r.pendingOrder.IsLong, atr14)
				r.pendingOrder = nil
				filledThisBar = true
			}
		}
	}

	// 6. DCA abort check.
	if strat.DcaEnabled && strat.DcaMode == strategy.DcaAbort && r.mgr.CurrentGroupID() != "" {
		entries := r.mgr.EntriesInCurrentPosition()
		if entries > 0 && entries < strat.DcaMaxEntries {
			ok, err := dsl.EvalBool(strat.EntryAst, r.engine, i)
			if err != nil {
				r.errorsList = append(r.errorsList, barError(i, err))
			} else if !ok {
				r.abortCurrentGroup(i, candle)
			}
		}
	}

	// 7. new entry.
	if filledThisBar {
		return
	}
	isDca := r.mgr.IsDcaEntry()
	eligible := isDca || r.mgr.CanStartNewPosition()
	if !eligible {
		return
	}
	if i-r.lastEntryBar < r.mgr.RequiredDistance() {
		return
	}

	dslOK, err := dsl.EvalBool(strat.EntryAst, r.engine, i)
	if err != nil {
		r.errorsList = append(r.errorsList, barError(i, err))
		return
	}
	hoopOK := idsSatisfied(activeHoop, strat.HoopPatternSettings.RequiredEntryPatternIds, strat.HoopPatternSettings.ExcludedEntryPatternIds)
	phasesOK := idsSatisfied(activePhases, strat.RequiredPhaseIds, strat.ExcludedPhaseIds)
	signalPresent := dslOK && hoopOK
	bypassContinue := isDca && strat.DcaMode == strategy.DcaContinue
	if !phasesOK || !(signalPresent || bypassContinue) {
		return
	}

	if strat.EntrySettings.OrderType == strategy.OrderMarket {
		r.openEntry(candle.Close, i, candle, strat.Direction == strategy.Long, atr14)
		return
	}
	order := pending.New(strat.EntrySettings, i, candle.Close, strat.Direction == strategy.Long, atr14)
	r.pendingOrder = &order
}

func (r *runState) dropGroupOrder(groupID string) {
	for idx, id := range r.groupOrder {
		if id == groupID {
			r.groupOrder = append(r.groupOrder[:idx], r.groupOrder[idx+1:]...)
			return
		}
	}
}

func (r *runState) closeAllAtEndOfData(lastBar int) {
	if len(r.openStates) == 0 {
		return
	}
	candle := r.engine.Candle(lastBar)
	for _, st := range r.openStates {
		st.ExitReason = trade.ExitEndOfData
		st.ExitPrice = candle.Close
		st.ExitZoneName = ""
		r.closeQuantity(st, st.RemainingQty, strategy.ExitZone{}, lastBar, candle)
	}
	r.openStates = nil
}

func (r *runState) abortCurrentGroup(bar int, candle core.Candle) {
	groupID := r.mgr.CurrentGroupID()
	members := append([]*trade.OpenTradeState(nil), r.mgr.Group(groupID)...)
	exitzone.Cascade(members, trade.ExitSignalLost, "", candle.Close)
	for _, st := range members {
		r.closeQuantity(st, st.RemainingQty, strategy.ExitZone{}, bar, candle)
		r.mgr.RemoveFromGroup(groupID, st)
	}
	stillOpen := r.openStates[:0:0]
	for _, st := range r.openStates {
		if st.Trade.GroupID != groupID {
			stillOpen = append(stillOpen, st)
		}
	}
	r.openStates = stillOpen
	r.mgr.ResetGroupIfEmpty(groupID)
	r.dropGroupOrder(groupID)
}
