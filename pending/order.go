// Package pending implements the LIMIT/STOP/TRAILING entry order state
// machine (C3): at most one pending order exists at a time; each bar it
// either expires, fills, or remains outstanding.
package pending

import (
	"github.com/raykavin/backtestkernel/core"
	"github.com/raykavin/backtestkernel/strategy"
)

// Order is a non-MARKET entry intent awaiting a fill condition or
// expiration.
type Order struct {
	SignalBar   int
	SignalPrice float64

	OrderType strategy.EntryOrderType
	OrderPrice float64 // LIMIT/STOP target

	TrailPrice             float64 // live-updated for TRAILING
	TrailingReversePercent float64

	ExpirationBar int // 0 with HasExpiration=false means "never"
	HasExpiration bool

	IsLong bool
}

// Offset computes Δ = orderPrice - signalPrice per spec section 4.3:
// signalPrice*offsetValue/100 for PERCENT, or offsetValue*atr14 for ATR.
// The sign of offsetValue is the caller's (strategy author's) intent.
func Offset(unit strategy.OffsetUnit, offsetValue, signalPrice, atr14 float64) float64 {
	if unit == strategy.OffsetATR {
		return offsetValue * atr14
	}
	return signalPrice * offsetValue / 100
}

// New builds a pending order from an entry signal fired at signalBar,
// using atr14 (the ATR(14) value at signalBar) to resolve an ATR-unit
// offset.
func New(settings strategy.EntrySettings, signalBar int, signalPrice float64, isLong bool, atr14 float64) Order {
	delta := Offset(settings.OffsetUnit, settings.OffsetValue, signalPrice, atr14)
	o := Order{
		SignalBar:              signalBar,
		SignalPrice:            signalPrice,
		OrderType:              settings.OrderType,
		OrderPrice:             signalPrice + delta,
		TrailPrice:             signalPrice,
		TrailingReversePercent: settings.TrailingReversePercent,
		IsLong:                 isLong,
	}
	if settings.ExpirationBars > 0 {
		o.HasExpiration = true
		o.ExpirationBar = signalBar + settings.ExpirationBars
	}
	return o
}

// Expired reports whether the order should be expired as of bar.
func (o Order) Expired(bar int) bool {
	return o.HasExpiration && bar > o.ExpirationBar
}

// FillResult describes the outcome of evaluating one bar against a
// pending order.
type FillResult struct {
	Filled    bool
	FillPrice float64
}

// Evaluate advances the order against the current bar's candle,
// updating trailing state in place, and reports whether it fills. The
// caller must check Expired before calling Evaluate (expiration takes
// priority per spec's per-bar processing order).
func (o *Order) Evaluate(candle core.Candle) FillResult {
	switch o.OrderType {
	case strategy.OrderLimit:
		if o.IsLong {
			if candle.Low <= o.OrderPrice {
				return FillResult{Filled: true, FillPrice: o.OrderPrice}
			}
		} else if candle.High >= o.OrderPrice {
			return FillResult{Filled: true, FillPrice: o.OrderPrice}
		}
	case strategy.OrderStop:
		if o.IsLong {
			if candle.High >= o.OrderPrice {
				return FillResult{Filled: true, FillPrice: o.OrderPrice}
			}
		} else if candle.Low <= o.OrderPrice {
			return FillResult{Filled: true, FillPrice: o.OrderPrice}
		}
	case strategy.OrderTrailing:
		return o.evaluateTrailing(candle)
	}
	return FillResult{}
}

func (o *Order) evaluateTrailing(candle core.Candle) FillResult {
	reverse := o.TrailingReversePercent / 100
	if o.IsLong {
		if candle.Low < o.TrailPrice {
			o.TrailPrice = candle.Low
		}
		threshold := o.TrailPrice * (1 + reverse)
		if candle.Close >= threshold {
			return FillResult{Filled: true, FillPrice: candle.Close}
		}
		return FillResult{}
	}

	if candle.High > o.TrailPrice {
		o.TrailPrice = candle.High
	}
	threshold := o.TrailPrice * (1 - reverse)
	if candle.Close <= threshold {
		return FillResult{Filled: true, FillPrice: candle.Close}
	}
	return FillResult{}
}
