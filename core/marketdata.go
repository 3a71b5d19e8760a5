package core

import "time"

// AggTrade is a single aggregated trade tick, feeding the orderflow
// indicator family (VWAP, POC/VAH/VAL, DELTA, WHALE_*, ...).
type AggTrade struct {
	Time         time.Time
	Price        float64
	Quantity     float64
	IsBuyerMaker bool // true when the aggressor was the seller
}

// FundingRate is one funding-rate settlement for a perpetual future.
type FundingRate struct {
	Time time.Time
	Rate float64 // e.g. 0.0001 for 0.01%
}

// OpenInterestPoint is one open-interest sample.
type OpenInterestPoint struct {
	Time  time.Time
	Value float64
}

// PremiumIndexPoint is one premium-index sample. No indicator family in
// this module's DSL consumes it; it is accepted and threaded through
// BacktestContext purely so a host computing its own custom indicators
// from it (outside the kernel's indicator family list) has somewhere to
// attach it.
type PremiumIndexPoint struct {
	Time  time.Time
	Value float64
}
