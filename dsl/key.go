package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// indicatorKey builds the canonical cache key for a bare IndicatorCall.
func indicatorKey(n IndicatorCall) string {
	return fmt.Sprintf("%s%s", n.Name, paramsSuffix(n.Params))
}

// propertyKey builds the canonical cache key for a multi-valued
// indicator result, appending the selected property as the final
// segment.
func propertyKey(n PropertyAccess) string {
	return fmt.Sprintf("%s%s:%s", n.Call.Name, paramsSuffix(n.Call.Params), n.Property)
}

func paramsSuffix(params []float64) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatParam(p)
	}
	return ":" + strings.Join(parts, ":")
}

func formatParam(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// rangeKey builds the canonical cache key for HIGH_OF/LOW_OF/RANGE_POSITION.
func rangeKey(n RangeFunctionCall) string {
	if n.Func == "RANGE_POSITION" {
		return fmt.Sprintf("%s:%d:%d", n.Func, n.Period, n.Skip)
	}
	return fmt.Sprintf("%s:%d", n.Func, n.Period)
}

// orderflowKey builds the canonical cache key for VWAP/POC/VAH/VAL/DELTA/
// CUM_DELTA/WHALE_*/LARGE_TRADE_COUNT.
func orderflowKey(n OrderflowFunctionCall) string {
	switch n.Func {
	case "VWAP", "DELTA", "CUM_DELTA":
		return n.Func
	case "WHALE_BUY", "WHALE_SELL", "LARGE_TRADE_COUNT":
		return fmt.Sprintf("%s:%s", n.Func, formatParam(n.Period))
	default: // POC, VAH, VAL
		return fmt.Sprintf("%s:%d", n.Func, int(n.Period))
	}
}

// oiKey builds the canonical cache key for OI/OI_CHANGE/OI_DELTA(n).
func oiKey(n OIFunctionCall) string {
	if n.Func == "OI_DELTA" {
		return fmt.Sprintf("%s:%d", n.Func, n.Period)
	}
	return n.Func
}
