package position

import (
	"math"

	"github.com/raykavin/backtestkernel/strategy"
)

// defaultKellyWinRate/defaultKellyWinLossRatio are the Kelly inputs used
// when a strategy doesn't supply its own trade-history-derived
// estimates, per spec section 4.6.
const (
	defaultKellyWinRate      = 0.55
	defaultKellyWinLossRatio = 1.5
)

// SizingInputs bundles everything a sizer algorithm may need. Only the
// fields relevant to the selected PositionSizingType are read.
type SizingInputs struct {
	Equity         float64
	Price          float64
	SizingValue    float64 // the strategy's configured pct/amount
	StopDistance   float64 // 0 when no SL is defined
	ATR14          float64
	DcaMaxEntries  int
	DcaEnabled     bool
	AllocatedCapital float64 // sum of entry*remainingQty already committed
}

// Size computes a position's notional value and quantity per spec
// section 4.6's sizing rules, returning (quantity, rejected).
// A rejection means value exceeded available capital; the caller emits
// a "rejected" trade rather than opening a position.
func Size(sizingType strategy.PositionSizingType, in SizingInputs) (quantity float64, rejected bool) {
	value := sizeValue(sizingType, in)

	capFrac := 0.95
	if sizingType == strategy.SizeAllIn {
		capFrac = 1.0
	}
	value = math.Min(value, in.Equity*capFrac)

	if in.DcaEnabled && in.DcaMaxEntries > 1 {
		value /= float64(in.DcaMaxEntries)
	}

	available := in.Equity - in.AllocatedCapital
	if value > available {
		return 0, true
	}
	if in.Price <= 0 {
		return 0, true
	}
	return value / in.Price, false
}

func sizeValue(sizingType strategy.PositionSizingType, in SizingInputs) float64 {
	switch sizingType {
	case strategy.SizeFixedPercent:
		return in.Equity * in.SizingValue / 100
	case strategy.SizeFixedDollar, strategy.SizeFixedAmount:
		return in.SizingValue
	case strategy.SizeRiskPercent:
		if in.StopDistance <= 0 {
			return in.Equity * in.SizingValue / 100
		}
		return (in.Equity * in.SizingValue / 100) / in.StopDistance * in.Price
	case strategy.SizeKelly:
		kelly := defaultKellyWinRate - (1-defaultKellyWinRate)/defaultKellyWinLossRatio
		halfKelly := kelly / 2
		frac := math.Max(0, math.Min(halfKelly, 0.25))
		return in.Equity * frac
	case strategy.SizeVolatility:
		if in.ATR14 == 0 {
			return in.Equity * 0.10
		}
		return (in.Equity * 0.02) / (in.ATR14 * 2) * in.Price
	case strategy.SizeAllIn:
		return in.Equity
	default:
		return in.Equity * in.SizingValue / 100
	}
}
