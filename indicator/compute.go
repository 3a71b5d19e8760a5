package indicator

import (
	"strconv"
	"strings"

	"github.com/raykavin/backtestkernel/core"
)

// compute resolves a canonical key into its full-range series. Keys are
// colon-separated: family, then positional numeric params, then an
// optional trailing property name for multi-valued families
// ("BBANDS:20:2:upper", "STOCHASTIC:14:3:k", "MACD:12:26:9:histogram").
func (e *Engine) compute(key string) core.Series[float64] {
	parts := strings.Split(key, ":")
	family := parts[0]
	n := len(e.candles)

	switch family {
	case "SMA":
		return core.Series[float64](talibSMA(e.close, intArg(parts, 1, 20)))
	case "EMA":
		return core.Series[float64](talibEMA(e.close, intArg(parts, 1, 20)))
	case "RSI":
		return core.Series[float64](talibRSI(e.close, intArg(parts, 1, 14)))
	case "ATR":
		return core.Series[float64](talibATR(e.high, e.low, e.close, intArg(parts, 1, 14)))
	case "ADX":
		return core.Series[float64](talibADX(e.high, e.low, e.close, intArg(parts, 1, 14)))
	case "PLUS_DI":
		return core.Series[float64](talibPlusDI(e.high, e.low, e.close, intArg(parts, 1, 14)))
	case "MINUS_DI":
		return core.Series[float64](talibMinusDI(e.high, e.low, e.close, intArg(parts, 1, 14)))
	case "BBANDS":
		period := intArg(parts, 1, 20)
		stddev := floatArg(parts, 2, 2)
		upper, middle, lower := talibBBands(e.close, period, stddev)
		return core.Series[float64](pickProperty(parts, upper, middle, lower))
	case "STOCHASTIC":
		kPeriod := intArg(parts, 1, 14)
		dPeriod := intArg(parts, 2, 3)
		k, d := talibStochastic(e.high, e.low, e.close, kPeriod, dPeriod)
		prop := lastPart(parts)
		if prop == "d" {
			return core.Series[float64](d)
		}
		return core.Series[float64](k)
	case "MACD":
		fast := intArg(parts, 1, 12)
		slow := intArg(parts, 2, 26)
		signal := intArg(parts, 3, 9)
		line, sig, hist := talibMACD(e.close, fast, slow, signal)
		switch lastPart(parts) {
		case "signal":
			return core.Series[float64](sig)
		case "histogram":
			return core.Series[float64](hist)
		default:
			return core.Series[float64](line)
		}
	case "HIGH_OF":
		return core.Series[float64](highOf(e.high, intArg(parts, 1, 20)))
	case "LOW_OF":
		return core.Series[float64](lowOf(e.low, intArg(parts, 1, 20)))
	case "RANGE_POSITION":
		return core.Series[float64](rangePosition(e.high, e.low, e.close, intArg(parts, 1, 20), intArg(parts, 2, 0)))
	case "AVG_VOLUME":
		return core.Series[float64](avgVolume(e.volume, intArg(parts, 1, 20)))
	case "PRICE":
		return core.Series[float64](e.priceField(lastPart(parts)))

	case "DAYOFWEEK":
		return core.Series[float64](dayOfWeek(e.candles))
	case "HOUR":
		return core.Series[float64](hourOfDay(e.candles))
	case "DAY":
		return core.Series[float64](dayOfMonth(e.candles))
	case "MONTH":
		return core.Series[float64](monthOfYear(e.candles))
	case "MOON_PHASE":
		return core.Series[float64](moonPhase(e.candles))
	case "IS_US_HOLIDAY":
		return core.Series[float64](isUSHoliday(e.candles))
	case "IS_FOMC_MEETING":
		return core.Series[float64](isFOMCMeeting(e.candles))

	case "VWAP":
		return core.Series[float64](e.vwap())
	case "POC":
		return core.Series[float64](e.valueArea(intArg(parts, 1, 20), "poc"))
	case "VAH":
		return core.Series[float64](e.valueArea(intArg(parts, 1, 20), "vah"))
	case "VAL":
		return core.Series[float64](e.valueArea(intArg(parts, 1, 20), "val"))
	case "DELTA":
		return core.Series[float64](e.delta())
	case "CUM_DELTA":
		return core.Series[float64](e.cumDelta())
	case "WHALE_BUY":
		return core.Series[float64](e.whaleCount(floatArg(parts, 1, 0), true))
	case "WHALE_SELL":
		return core.Series[float64](e.whaleCount(floatArg(parts, 1, 0), false))
	case "LARGE_TRADE_COUNT":
		return core.Series[float64](e.largeTradeCount(floatArg(parts, 1, 0)))
	case "PREV_DAY_POC":
		return core.Series[float64](e.sessionValueArea("poc", true))
	case "PREV_DAY_VAH":
		return core.Series[float64](e.sessionValueArea("vah", true))
	case "PREV_DAY_VAL":
		return core.Series[float64](e.sessionValueArea("val", true))
	case "TODAY_POC":
		return core.Series[float64](e.sessionValueArea("poc", false))
	case "TODAY_VAH":
		return core.Series[float64](e.sessionValueArea("vah", false))
	case "TODAY_VAL":
		return core.Series[float64](e.sessionValueArea("val", false))

	case "FUNDING":
		return core.Series[float64](e.funding())
	case "FUNDING_8H":
		return core.Series[float64](e.funding8h())

	case "OI":
		return core.Series[float64](e.openInterestLevel())
	case "OI_CHANGE":
		return core.Series[float64](e.openInterestChange())
	case "OI_DELTA":
		return core.Series[float64](e.openInterestDelta(intArg(parts, 1, 20)))
	}

	return core.Series[float64](fillNaN(n))
}

func intArg(parts []string, i, def int) int {
	if i >= len(parts) {
		return def
	}
	v, err := strconv.Atoi(parts[i])
	if err != nil {
		return def
	}
	return v
}

func floatArg(parts []string, i int, def float64) float64 {
	if i >= len(parts) {
		return def
	}
	v, err := strconv.ParseFloat(parts[i], 64)
	if err != nil {
		return def
	}
	return v
}

// lastPart returns the trailing property selector of a multi-valued key,
// or "" when the key carries only numeric params.
func lastPart(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	last := parts[len(parts)-1]
	if _, err := strconv.ParseFloat(last, 64); err == nil {
		return ""
	}
	return last
}

func pickProperty(parts []string, upper, middle, lower []float64) []float64 {
	switch lastPart(parts) {
	case "upper":
		return upper
	case "lower":
		return lower
	default:
		return middle
	}
}

func (e *Engine) priceField(field string) []float64 {
	switch field {
	case "open":
		return e.open
	case "high":
		return e.high
	case "low":
		return e.low
	case "volume":
		return e.volume
	default:
		return e.close
	}
}
