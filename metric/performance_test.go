package metric

import (
	"testing"

	"github.com/raykavin/backtestkernel/trade"
	"github.com/stretchr/testify/assert"
)

func closedTrade(pnl, pnlPercent float64, entryBar, exitBar int) trade.Trade {
	return trade.Trade{
		PnL: pnl, PnLPercent: pnlPercent,
		EntryBar: entryBar, ExitBar: exitBar,
		ExitReason: trade.ExitEndOfData,
	}
}

func TestComputeBasicAggregates(t *testing.T) {
	trades := []trade.Trade{
		closedTrade(100, 1, 0, 5),
		closedTrade(-50, -0.5, 5, 8),
	}
	m := Compute(trades, 10000)

	assert.Equal(t, 2, m.TotalTrades)
	assert.Equal(t, 1, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 0.5, m.WinRate, 1e-9)
	assert.InDelta(t, 50.0, m.TotalPnL, 1e-9)
	assert.InDelta(t, 10050.0, m.FinalEquity, 1e-9)
	assert.InDelta(t, 2.0, m.ProfitFactor, 1e-9) // 100/50
}

func TestComputeExcludesRejectedAndExpired(t *testing.T) {
	trades := []trade.Trade{
		closedTrade(100, 1, 0, 5),
		{ExitReason: trade.ExitRejected},
		{ExitReason: trade.ExitExpired},
	}
	m := Compute(trades, 10000)
	assert.Equal(t, 1, m.TotalTrades)
}

func TestProfitFactorDefaultsTo10WithNoLosses(t *testing.T) {
	trades := []trade.Trade{closedTrade(100, 1, 0, 1)}
	m := Compute(trades, 1000)
	assert.Equal(t, 10.0, m.ProfitFactor)
	assert.Equal(t, 10.0, m.Payoff)
}

func TestMaxDrawdown(t *testing.T) {
	trades := []trade.Trade{
		closedTrade(100, 1, 0, 1),  // equity 1100, peak 1100
		closedTrade(-300, -3, 1, 2), // equity 800, dd = 300
		closedTrade(50, 0.5, 2, 3),  // equity 850
	}
	m := Compute(trades, 1000)
	assert.InDelta(t, 300.0, m.MaxDrawdown, 1e-9)
}

func TestEmptyTradeLogReturnsZeroValue(t *testing.T) {
	m := Compute(nil, 1000)
	assert.Equal(t, 0, m.TotalTrades)
	assert.Equal(t, 1000.0, m.FinalEquity)
}
