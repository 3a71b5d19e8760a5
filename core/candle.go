// Package core holds the data types shared across the backtest kernel:
// the candle model, the generic time series helper, the logging
// interface and the resolution/timeframe lookup table.
package core

import "time"

// Candle represents a single OHLCV bar. Candles are ordered strictly
// ascending by Time within a run.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	// Metadata carries optional auxiliary columns (e.g. pre-computed
	// orderflow fields from a CSV) that the kernel never reads itself.
	Metadata map[string]float64
}

// TimestampMs returns the candle's timestamp in Unix milliseconds.
func (c Candle) TimestampMs() int64 {
	return c.Time.UnixMilli()
}
