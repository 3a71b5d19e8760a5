package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/raykavin/backtestkernel/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCandles(closes []float64) []core.Candle {
	out := make([]core.Candle, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = core.Candle{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 10,
		}
	}
	return out
}

func TestSMAWarmupIsNaN(t *testing.T) {
	e := NewEngine()
	e.SetCandles(makeCandles([]float64{1, 2, 3, 4, 5}), "1h")

	v := e.Lookup("SMA:3", 0)
	assert.True(t, math.IsNaN(v))

	v = e.Lookup("SMA:3", 2)
	require.False(t, math.IsNaN(v))
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestLookupIsMemoized(t *testing.T) {
	e := NewEngine()
	e.SetCandles(makeCandles([]float64{1, 2, 3, 4, 5, 6, 7, 8}), "1h")

	first := e.Lookup("EMA:3", 5)
	_, cached := e.cache["EMA:3"]
	require.True(t, cached)
	second := e.Lookup("EMA:3", 5)
	assert.Equal(t, first, second)
}

func TestHighOfAndRangePosition(t *testing.T) {
	e := NewEngine()
	e.SetCandles(makeCandles([]float64{10, 11, 12, 13, 9}), "1h")

	assert.InDelta(t, 14, e.Lookup("HIGH_OF:3", 3), 1e-9) // highs: 11,12,13,14 -> window idx1..3 -> 12,13,14
	pos := e.Lookup("RANGE_POSITION:3:0", 3)
	assert.False(t, math.IsNaN(pos))
	assert.True(t, pos >= 0 && pos <= 100)
}

func TestUnknownKeyReturnsNaN(t *testing.T) {
	e := NewEngine()
	e.SetCandles(makeCandles([]float64{1, 2, 3}), "1h")
	assert.True(t, math.IsNaN(e.Lookup("NOT_A_FAMILY", 1)))
}

func TestOrderflowGracefullyDegradesWithoutTrades(t *testing.T) {
	e := NewEngine()
	e.SetCandles(makeCandles([]float64{1, 2, 3}), "1h")
	assert.True(t, math.IsNaN(e.Lookup("VWAP", 1)))
	assert.True(t, math.IsNaN(e.Lookup("POC:2", 1)))
}

func TestVWAPWithTrades(t *testing.T) {
	e := NewEngine()
	candles := makeCandles([]float64{100, 101})
	e.SetCandles(candles, "1h")
	e.SetAggTrades([]core.AggTrade{
		{Time: candles[0].Time.Add(time.Minute), Price: 100, Quantity: 1},
		{Time: candles[0].Time.Add(2 * time.Minute), Price: 102, Quantity: 1},
	})

	v := e.Lookup("VWAP", 0)
	assert.InDelta(t, 101, v, 1e-9)
	assert.True(t, math.IsNaN(e.Lookup("VWAP", 1)))
}

func TestDayOfWeekAndCalendar(t *testing.T) {
	e := NewEngine()
	candles := []core.Candle{{Time: time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC), Close: 1}}
	e.SetCandles(candles, "1h")
	assert.Equal(t, float64(time.Thursday), e.Lookup("DAYOFWEEK", 0))
	assert.Equal(t, float64(1), e.Lookup("IS_US_HOLIDAY", 0))
}
