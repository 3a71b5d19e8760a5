// Package dsl interprets the strategy expression language's AST against a
// bar index. The parser that produces this AST is an external
// collaborator (out of scope); this package only folds over the tree.
package dsl

import "fmt"

// Node is the sealed interface every AST variant implements. Evaluation is
// a fold over the variant (a type switch in eval.go), not virtual
// dispatch; the per-variant cache-key helpers (indicatorKey,
// propertyKey, ...) live in key.go.
type Node interface {
	isNode()
}

// CompareOp enumerates the Comparison operators.
type CompareOp string

const (
	OpLT CompareOp = "<"
	OpGT CompareOp = ">"
	OpLE CompareOp = "<="
	OpGE CompareOp = ">="
	OpEQ CompareOp = "=="
)

// CrossOp enumerates the CrossComparison operators.
type CrossOp string

const (
	OpCrossesAbove CrossOp = "crosses_above"
	OpCrossesBelow CrossOp = "crosses_below"
)

// LogicalOp enumerates the LogicalExpression operators.
type LogicalOp string

const (
	OpAnd LogicalOp = "AND"
	OpOr  LogicalOp = "OR"
)

// ArithOp enumerates the ArithmeticExpression operators.
type ArithOp string

const (
	OpAdd ArithOp = "+"
	OpSub ArithOp = "-"
	OpMul ArithOp = "*"
	OpDiv ArithOp = "/"
)

// Comparison compares two numeric-valued nodes and yields a bool.
type Comparison struct {
	Left, Right Node
	Op          CompareOp
}

func (Comparison) isNode() {}

// CrossComparison detects a crossover/crossunder between two numeric
// series at the current and previous bar.
type CrossComparison struct {
	Left, Right Node
	Op          CrossOp
}

func (CrossComparison) isNode() {}

// LogicalExpression combines two boolean-valued nodes with short-circuit
// AND/OR.
type LogicalExpression struct {
	Left, Right Node
	Op          LogicalOp
}

func (LogicalExpression) isNode() {}

// ArithmeticExpression combines two numeric-valued nodes.
type ArithmeticExpression struct {
	Left, Right Node
	Op          ArithOp
}

func (ArithmeticExpression) isNode() {}

// IndicatorCall invokes a named indicator family with positional
// parameters, e.g. SMA(20), STOCHASTIC(14, 3), MACD(12, 26, 9).
type IndicatorCall struct {
	Name   string
	Params []float64
}

func (IndicatorCall) isNode() {}

// PropertyAccess selects one field of a multi-valued indicator result,
// e.g. STOCHASTIC(14,3).k, MACD(12,26,9).histogram, BBANDS(20,2).upper.
type PropertyAccess struct {
	Call     IndicatorCall
	Property string
}

func (PropertyAccess) isNode() {}

// RangeFunctionCall covers HIGH_OF, LOW_OF and RANGE_POSITION.
type RangeFunctionCall struct {
	Func   string
	Period int
	Skip   int // only meaningful for RANGE_POSITION
}

func (RangeFunctionCall) isNode() {}

// VolumeFunctionCall covers AVG_VOLUME.
type VolumeFunctionCall struct {
	Func   string
	Period int
}

func (VolumeFunctionCall) isNode() {}

// TimeFunctionCall covers DAYOFWEEK, HOUR, DAY, MONTH.
type TimeFunctionCall struct {
	Func string
}

func (TimeFunctionCall) isNode() {}

// MoonFunctionCall covers MOON_PHASE.
type MoonFunctionCall struct{}

func (MoonFunctionCall) isNode() {}

// HolidayFunctionCall covers IS_US_HOLIDAY. It is numerically 0/1 and
// also directly usable as a boolean condition.
type HolidayFunctionCall struct{}

func (HolidayFunctionCall) isNode() {}

// FomcFunctionCall covers IS_FOMC_MEETING. Numeric 0/1, also boolean.
type FomcFunctionCall struct{}

func (FomcFunctionCall) isNode() {}

// OrderflowFunctionCall covers VWAP, POC, VAH, VAL, DELTA, CUM_DELTA,
// WHALE_*, LARGE_TRADE_COUNT. Period is 0 when the family has none
// (VWAP, DELTA, CUM_DELTA); for WHALE_*/LARGE_TRADE_COUNT, Period carries
// the threshold argument.
type OrderflowFunctionCall struct {
	Func   string
	Period float64
}

func (OrderflowFunctionCall) isNode() {}

// FundingFunctionCall covers FUNDING, FUNDING_8H.
type FundingFunctionCall struct {
	Func string
}

func (FundingFunctionCall) isNode() {}

// SessionOrderflowFunctionCall covers PREV_DAY_POC/VAH/VAL and
// TODAY_POC/VAH/VAL.
type SessionOrderflowFunctionCall struct {
	Func string
}

func (SessionOrderflowFunctionCall) isNode() {}

// OIFunctionCall covers OI, OI_CHANGE, OI_DELTA(n).
type OIFunctionCall struct {
	Func   string
	Period int
}

func (OIFunctionCall) isNode() {}

// PriceField enumerates the direct price/volume references.
type PriceField string

const (
	FieldOpen   PriceField = "open"
	FieldHigh   PriceField = "high"
	FieldLow    PriceField = "low"
	FieldClose  PriceField = "close"
	FieldPrice  PriceField = "price" // alias for close
	FieldVolume PriceField = "volume"
)

// PriceReference reads a raw OHLCV field of the current bar.
type PriceReference struct {
	Field PriceField
}

func (PriceReference) isNode() {}

// NumberLiteral is a constant numeric value.
type NumberLiteral struct {
	Value float64
}

func (NumberLiteral) isNode() {}

// BooleanLiteral is a constant boolean value.
type BooleanLiteral struct {
	Value bool
}

func (BooleanLiteral) isNode() {}

// ErrTypeMismatch is returned by EvalBool when a numeric-only node is asked
// to evaluate as a top-level boolean condition.
type ErrTypeMismatch struct {
	NodeType string
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("dsl: node of type %s is not boolean-valued", e.NodeType)
}
