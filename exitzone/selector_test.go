package exitzone

import (
	"testing"

	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/strategy"
	"github.com/raykavin/backtestkernel/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowAll(strategy.ExitZone) bool { return true }

func TestSelectEmergencyPrecedesNormal(t *testing.T) {
	zones := []strategy.ExitZone{
		{Name: "emergency", PnlLo: -100, PnlHi: -5, ExitImmediately: true},
		{Name: "normal", PnlLo: -5, PnlHi: 100},
	}
	z, ok := SelectEmergency(zones, -6, allowAll)
	require.True(t, ok)
	assert.Equal(t, "emergency", z.Name)
}

func TestSelectZoneFallsBackToFirst(t *testing.T) {
	zones := []strategy.ExitZone{
		{Name: "a", PnlLo: 10, PnlHi: 100},
		{Name: "b", PnlLo: -100, PnlHi: -10},
	}
	z, fallback := SelectZone(zones, 0, allowAll)
	assert.True(t, fallback)
	assert.Equal(t, "a", z.Name)
}

func TestFixedStopLossTriggersOnCross(t *testing.T) {
	state := trade.NewOpenTradeState(trade.Trade{Side: strategy.Long, EntryPrice: 100, Quantity: 1})
	zone := strategy.ExitZone{StopLossType: strategy.SLFixedPercent, StopLossValue: 5}

	trig := EvaluateNormal(zone, false, state, core.Candle{Low: 94, High: 101, Close: 100}, 100, 0, false)
	require.True(t, trig.Fired)
	assert.Equal(t, trade.ExitStopLoss, trig.Reason)
	assert.InDelta(t, 95.0, trig.Price, 1e-9)
}

func TestTrailingStopNeverLoosens(t *testing.T) {
	state := trade.NewOpenTradeState(trade.Trade{Side: strategy.Long, EntryPrice: 100, Quantity: 1})
	state.HighestSinceEntry = 110
	zone := strategy.ExitZone{StopLossType: strategy.SLTrailingPercent, StopLossValue: 2}

	trig := EvaluateNormal(zone, false, state, core.Candle{Low: 109, High: 110, Close: 109.5}, 100, 0, false)
	assert.False(t, trig.Fired)
	assert.InDelta(t, 107.8, state.TrailingStopPrice, 1e-9)

	state.HighestSinceEntry = 105 // price retreats; trailing stop must not loosen
	trig = EvaluateNormal(zone, false, state, core.Candle{Low: 103, High: 106, Close: 104}, 100, 0, false)
	assert.InDelta(t, 107.8, state.TrailingStopPrice, 1e-9)
	assert.True(t, trig.Fired)
}

func TestMarketExitOnlyChecksSignal(t *testing.T) {
	state := trade.NewOpenTradeState(trade.Trade{Side: strategy.Long, EntryPrice: 100, Quantity: 1})
	zone := strategy.ExitZone{
		StopLossType:    strategy.SLFixedPercent,
		StopLossValue:   1, // would otherwise fire on this bar
		ExitImmediately: true,
	}
	trig := EvaluateNormal(zone, false, state, core.Candle{Low: 50, High: 101, Close: 100}, 100, 0, false)
	assert.False(t, trig.Fired, "market_exit zones skip SL/TP entirely")

	trig = EvaluateNormal(zone, false, state, core.Candle{Low: 50, High: 101, Close: 100}, 100, 0, true)
	assert.True(t, trig.Fired)
	assert.Equal(t, trade.ExitMarketExit, trig.Reason)
}
