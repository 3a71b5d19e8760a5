package position

import (
	"testing"

	"github.com/raykavin/backtestkernel/strategy"
	"github.com/raykavin/backtestkernel/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenGroupAssignsIdAndTracksCount(t *testing.T) {
	m := NewManager(Strategy{DcaEnabled: true, DcaMaxEntries: 2, MaxOpenTrades: 3})
	s1 := trade.NewOpenTradeState(trade.Trade{EntryPrice: 100, Quantity: 1})
	id := m.OpenGroup(s1, true)

	assert.Equal(t, "dca-1", id)
	assert.Equal(t, 1, m.OpenPositions())
	assert.Equal(t, 1, m.EntriesInCurrentPosition())
	assert.True(t, m.CanAddToCurrentPosition(), "1 of 2 dca entries used, so a second is still allowed")
}

func TestDcaAdditionAndCap(t *testing.T) {
	m := NewManager(Strategy{DcaEnabled: true, DcaMaxEntries: 2, MaxOpenTrades: 3})
	s1 := trade.NewOpenTradeState(trade.Trade{EntryPrice: 100, Quantity: 1})
	m.OpenGroup(s1, true)
	require.True(t, m.CanAddToCurrentPosition())

	s2 := trade.NewOpenTradeState(trade.Trade{EntryPrice: 101, Quantity: 1})
	m.AddToGroup(s2)
	assert.Equal(t, 2, m.EntriesInCurrentPosition())
	assert.False(t, m.CanAddToCurrentPosition(), "at dcaMaxEntries, no further additions")
}

func TestResetGroupWhenEmpty(t *testing.T) {
	m := NewManager(Strategy{MaxOpenTrades: 1})
	s1 := trade.NewOpenTradeState(trade.Trade{EntryPrice: 100, Quantity: 1})
	id := m.OpenGroup(s1, false)

	m.RemoveFromGroup(id, s1)
	m.ResetGroupIfEmpty(id)
	assert.Equal(t, 0, m.OpenPositions())
	assert.Equal(t, 0, m.EntriesInCurrentPosition())
}

func TestWeightedAverageEntryPrice(t *testing.T) {
	group := []*trade.OpenTradeState{
		trade.NewOpenTradeState(trade.Trade{EntryPrice: 100, Quantity: 1}),
		trade.NewOpenTradeState(trade.Trade{EntryPrice: 110, Quantity: 1}),
	}
	assert.InDelta(t, 105.0, WeightedAverageEntryPrice(group), 1e-9)
}

func TestSizeFixedPercent(t *testing.T) {
	qty, rejected := Size(strategy.SizeFixedPercent, SizingInputs{Equity: 10000, Price: 100, SizingValue: 100})
	require.False(t, rejected)
	assert.InDelta(t, 95.0, qty, 1e-9) // capped at 95% of equity
}

func TestSizeRejectsWhenOverCapital(t *testing.T) {
	// 5000 is capped to 95% of equity (95), which exceeds the 50 of
	// equity not already committed to open trades.
	_, rejected := Size(strategy.SizeFixedDollar, SizingInputs{Equity: 100, Price: 10, SizingValue: 5000, AllocatedCapital: 50})
	assert.True(t, rejected)
}

func TestSizeVolatilityFallsBackWithZeroATR(t *testing.T) {
	qty, rejected := Size(strategy.SizeVolatility, SizingInputs{Equity: 10000, Price: 100, ATR14: 0})
	require.False(t, rejected)
	assert.InDelta(t, 10.0, qty, 1e-9) // 10000*0.10/100
}

func TestSizeDividesAcrossDcaEntries(t *testing.T) {
	qty, _ := Size(strategy.SizeFixedPercent, SizingInputs{
		Equity: 10000, Price: 100, SizingValue: 100, DcaEnabled: true, DcaMaxEntries: 2,
	})
	assert.InDelta(t, 47.5, qty, 1e-9) // 95/2
}
