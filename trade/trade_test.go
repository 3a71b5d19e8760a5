package trade

import (
	"testing"
	"time"

	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/strategy"
	"github.com/stretchr/testify/assert"
)

func newLongState(entryPrice float64) *OpenTradeState {
	return NewOpenTradeState(Trade{
		Side:       strategy.Long,
		EntryBar:   0,
		EntryPrice: entryPrice,
		Quantity:   10,
	})
}

func TestUpdateExtremaTracksMFEMAE(t *testing.T) {
	s := newLongState(100)
	s.UpdateExtrema(1, core.Candle{High: 110, Low: 95}, 100)
	assert.InDelta(t, 10.0, s.MFEPercent, 1e-9)
	assert.InDelta(t, -5.0, s.MAEPercent, 1e-9)
	assert.Equal(t, 1, s.MFEBar)
	assert.Equal(t, 1, s.MAEBar)

	// a less extreme bar does not overwrite the recorded extrema
	s.UpdateExtrema(2, core.Candle{High: 105, Low: 98}, 100)
	assert.InDelta(t, 10.0, s.MFEPercent, 1e-9)
	assert.Equal(t, 1, s.MFEBar)
}

func TestCalculateExitQuantityOriginalBasis(t *testing.T) {
	s := newLongState(100)
	zone := strategy.ExitZone{Name: "z1", ExitPercent: 50, ExitBasis: strategy.ExitBasisOriginal, MaxExits: 2}

	qty := s.CalculateExitQuantity(zone)
	assert.InDelta(t, 5.0, qty, 1e-9)

	s.RecordPartialExit(zone, qty, 1)
	assert.InDelta(t, 5.0, s.RemainingQty, 1e-9)
	assert.Equal(t, 1, s.ZoneExitCount["z1"])

	qty2 := s.CalculateExitQuantity(zone)
	assert.InDelta(t, 5.0, qty2, 1e-9) // basis is still original qty (10), clipped to remaining
}

func TestCalculateExitQuantityRespectsMaxExits(t *testing.T) {
	s := newLongState(100)
	zone := strategy.ExitZone{Name: "z1", ExitPercent: 100, ExitBasis: strategy.ExitBasisRemaining, MaxExits: 1}

	qty := s.CalculateExitQuantity(zone)
	assert.InDelta(t, 10.0, qty, 1e-9)
	s.RecordPartialExit(zone, qty, 1)

	qty2 := s.CalculateExitQuantity(zone)
	assert.Equal(t, 0.0, qty2)
}

func TestZoneReentryResetClearsCount(t *testing.T) {
	s := newLongState(100)
	zoneA := strategy.ExitZone{Name: "a", ExitPercent: 50, MaxExits: 1, ExitReentry: strategy.ExitReentryReset}
	qty := s.CalculateExitQuantity(zoneA)
	s.RecordPartialExit(zoneA, qty, 1)
	assert.Equal(t, 1, s.ZoneExitCount["a"])

	zoneB := strategy.ExitZone{Name: "b", ExitPercent: 50, MaxExits: 1, ExitReentry: strategy.ExitReentryReset}
	s.CalculateExitQuantity(zoneB)

	// switching zones cleared the map entirely
	assert.Equal(t, 0, s.ZoneExitCount["a"])
}

func TestAccrueHoldingCostsFutures(t *testing.T) {
	s := newLongState(100)
	s.RemainingQty = 10
	entryTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.LastFundingTime = entryTime

	rates := []core.FundingRate{{Time: entryTime.Add(time.Hour), Rate: 0.0001}}
	s.AccrueHoldingCosts(strategy.MarketFutures, 0, entryTime.Add(2*time.Hour), 100, rates)

	assert.InDelta(t, 0.1, s.AccumulatedHoldingCosts, 1e-9) // 10 * 100 * 0.0001
	assert.Equal(t, rates[0].Time, s.LastFundingTime)
}

func TestBetterEntryAnalysisFindsLowerLow(t *testing.T) {
	candles := make([]core.Candle, 25)
	for i := range candles {
		candles[i] = core.Candle{High: 105, Low: 100}
	}
	candles[18].Low = 90 // a better entry within the window

	got := BetterEntryAnalysis(candles, 20, 100, 1)
	if assert.NotNil(t, got) {
		assert.Equal(t, 18, got.Bar)
		assert.InDelta(t, 90.0, got.Price, 1e-9)
	}
}

func TestBetterExitAnalysisNilAtEndOfData(t *testing.T) {
	candles := make([]core.Candle, 5)
	got := BetterExitAnalysis(candles, 4, 100, 1)
	assert.Nil(t, got)
}
