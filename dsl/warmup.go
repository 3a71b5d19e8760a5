package dsl

import (
	"regexp"
	"strconv"
	"strings"
)

// warmupPattern matches the indicator families whose integer period
// arguments bound how many leading bars must elapse before their output
// is meaningful.
var warmupPattern = regexp.MustCompile(`(SMA|EMA|RSI|MACD|BBANDS|HIGH_OF|LOW_OF|AVG_VOLUME|ATR|RANGE_POSITION)\((\d+(,\s*\d+)*)\)`)

// defaultWarmupBars is used when an expression contains none of the
// warmup-bearing indicator families.
const defaultWarmupBars = 50

// WarmupBars scans raw expression text for indicator calls and returns
// the number of leading bars to skip before evaluating it: the largest
// integer argument found, plus 10, or defaultWarmupBars if none are
// found. Operating on text rather than the parsed AST matches the
// documented extraction method exactly — a caller may run this over the
// strategy's entry/exit expression source before or independently of
// parsing it.
func WarmupBars(expr string) int {
	matches := warmupPattern.FindAllStringSubmatch(expr, -1)
	max := -1
	for _, m := range matches {
		for _, numStr := range strings.Split(m[2], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(numStr))
			if err != nil {
				continue
			}
			if n > max {
				max = n
			}
		}
	}
	if max < 0 {
		return defaultWarmupBars
	}
	return max + 10
}

// warmupFamilies are the indicator families whose period argument bounds
// warmup, per the regex's alternation.
var warmupFamilies = map[string]bool{
	"SMA": true, "EMA": true, "RSI": true, "MACD": true, "BBANDS": true,
	"HIGH_OF": true, "LOW_OF": true, "AVG_VOLUME": true, "ATR": true,
	"RANGE_POSITION": true,
}

// WarmupBarsFromAST walks a parsed node collecting the same periods the
// text-based regex would, returning the identical max+10 (or
// defaultWarmupBars) result. Preferred over WarmupBars when the caller
// already holds the parsed AST rather than its source text.
func WarmupBarsFromAST(node Node) int {
	max := -1
	walkWarmup(node, &max)
	if max < 0 {
		return defaultWarmupBars
	}
	return max + 10
}

func walkWarmup(node Node, max *int) {
	consider := func(period int) {
		if period > *max {
			*max = period
		}
	}
	switch n := node.(type) {
	case IndicatorCall:
		if warmupFamilies[n.Name] {
			for _, p := range n.Params {
				consider(int(p))
			}
		}
	case PropertyAccess:
		walkWarmup(n.Call, max)
	case RangeFunctionCall:
		if warmupFamilies[n.Func] {
			consider(n.Period)
		}
	case VolumeFunctionCall:
		if warmupFamilies[n.Func] {
			consider(n.Period)
		}
	case Comparison:
		walkWarmup(n.Left, max)
		walkWarmup(n.Right, max)
	case CrossComparison:
		walkWarmup(n.Left, max)
		walkWarmup(n.Right, max)
	case LogicalExpression:
		walkWarmup(n.Left, max)
		walkWarmup(n.Right, max)
	case ArithmeticExpression:
		walkWarmup(n.Left, max)
		walkWarmup(n.Right, max)
	}
}
