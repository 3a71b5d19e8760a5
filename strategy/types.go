// Package strategy defines the immutable per-run inputs to the
// simulation kernel: a Strategy and its ordered ExitZones. Every
// enumerated field the source modeled as a string is a tagged Go type
// here, matched exhaustively rather than string-contains checks.
package strategy

import "github.com/raykavin/backtestkernel/dsl"

// Direction is long or short.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Sign returns +1 for Long, -1 for Short.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

// StopLossType / TakeProfitType variants.
type StopLossType string

const (
	SLNone            StopLossType = "NONE"
	SLFixedPercent    StopLossType = "FIXED_PERCENT"
	SLFixedATR        StopLossType = "FIXED_ATR"
	SLTrailingPercent StopLossType = "TRAILING_PERCENT"
	SLTrailingATR     StopLossType = "TRAILING_ATR"
	SLClear           StopLossType = "CLEAR"
)

func (t StopLossType) IsTrailing() bool {
	return t == SLTrailingPercent || t == SLTrailingATR
}

// IsFixed reports a fixed-distance stop. The unset zero value counts as
// NONE.
func (t StopLossType) IsFixed() bool {
	return t != "" && t != SLNone && t != SLClear && !t.IsTrailing()
}

type TakeProfitType string

const (
	TPNone            TakeProfitType = "NONE"
	TPFixedPercent    TakeProfitType = "FIXED_PERCENT"
	TPFixedATR        TakeProfitType = "FIXED_ATR"
	TPTrailingPercent TakeProfitType = "TRAILING_PERCENT"
	TPTrailingATR     TakeProfitType = "TRAILING_ATR"
)

// EntryOrderType selects how a signal translates into an order.
type EntryOrderType string

const (
	OrderMarket   EntryOrderType = "MARKET"
	OrderLimit    EntryOrderType = "LIMIT"
	OrderStop     EntryOrderType = "STOP"
	OrderTrailing EntryOrderType = "TRAILING"
)

// OffsetUnit is the unit an entry-order offset is expressed in.
type OffsetUnit string

const (
	OffsetPercent OffsetUnit = "PERCENT"
	OffsetATR     OffsetUnit = "ATR"
)

// DcaMode governs behavior of subsequent DCA entries.
type DcaMode string

const (
	DcaPause    DcaMode = "PAUSE"
	DcaContinue DcaMode = "CONTINUE"
	DcaAbort    DcaMode = "ABORT"
)

// ExitBasis selects the quantity a zone's exitPercent is computed against.
type ExitBasis string

const (
	ExitBasisOriginal  ExitBasis = "ORIGINAL"
	ExitBasisRemaining ExitBasis = "REMAINING"
)

// ExitReentry governs whether a zone's exit counter resets when revisited.
type ExitReentry string

const (
	ExitReentryPersist ExitReentry = "PERSIST"
	ExitReentryReset   ExitReentry = "RESET"
)

// PositionSizingType selects the sizer algorithm.
type PositionSizingType string

const (
	SizeFixedPercent PositionSizingType = "FIXED_PERCENT"
	SizeFixedDollar  PositionSizingType = "FIXED_DOLLAR"
	// SizeFixedAmount is a synonym of SizeFixedDollar (spec §4.6: "FIXED_DOLLAR / FIXED_AMOUNT: value = absolute").
	SizeFixedAmount PositionSizingType = "FIXED_AMOUNT"
	SizeRiskPercent PositionSizingType = "RISK_PERCENT"
	SizeKelly       PositionSizingType = "KELLY"
	SizeVolatility  PositionSizingType = "VOLATILITY"
	SizeAllIn       PositionSizingType = "ALL_IN"
)

// MarketType determines holding-cost accrual (funding vs. margin interest).
type MarketType string

const (
	MarketSpot    MarketType = "SPOT"
	MarketFutures MarketType = "FUTURES"
	MarketMargin  MarketType = "MARGIN"
)

// EntrySettings configures how an entry signal becomes an order.
type EntrySettings struct {
	OrderType              EntryOrderType
	OffsetUnit             OffsetUnit
	OffsetValue            float64
	TrailingReversePercent float64
	ExpirationBars         int // 0 means no expiration
}

// HoopPatternSettings names the required/excluded hoop-pattern ids
// gating entry or exit. Hoop patterns are evaluated externally; the
// kernel only consumes their per-bar boolean outputs (see
// BacktestContext.HoopPatternStates).
type HoopPatternSettings struct {
	RequiredEntryPatternIds []string
	ExcludedEntryPatternIds []string
	RequiredExitPatternIds  []string
	ExcludedExitPatternIds  []string
}

// ExitZone is a P&L%-indexed bundle of exit behavior.
type ExitZone struct {
	Name string

	PnlLo, PnlHi float64

	StopLossType  StopLossType
	StopLossValue float64

	TakeProfitType  TakeProfitType
	TakeProfitValue float64

	ExitConditionAst dsl.Node // nil when the zone has no signal exit

	ExitImmediately bool

	MinBarsBeforeExit  int
	MinBarsBetweenExits int

	// ExitPercent is in [0,100]; treat an unset (zero) value as 100 per
	// spec's "null means 100" rule — callers that need an explicit 0%
	// must not rely on the zero value and should set a Strategy-level
	// sentinel upstream of this struct.
	ExitPercent float64

	ExitBasis   ExitBasis
	ExitReentry ExitReentry
	MaxExits    int

	RequiredPhaseIds []string
	ExcludedPhaseIds []string
}

// Matches reports whether pnlPercent falls within the zone's closed
// range [lo, hi].
func (z ExitZone) Matches(pnlPercent float64) bool {
	return pnlPercent >= z.PnlLo && pnlPercent <= z.PnlHi
}

// EffectiveExitPercent returns ExitPercent, defaulting to 100 when unset.
func (z ExitZone) EffectiveExitPercent() float64 {
	if z.ExitPercent <= 0 {
		return 100
	}
	return z.ExitPercent
}

// Strategy is the complete, immutable description of one backtest's
// trading rules.
type Strategy struct {
	ID        string
	Name      string
	Direction Direction

	EntryAst  dsl.Node
	ExitZones []ExitZone

	EntrySettings EntrySettings

	DcaEnabled     bool
	DcaMaxEntries  int
	DcaBarsBetween int
	DcaMode        DcaMode

	MaxOpenTrades           int
	MinCandlesBetweenTrades int

	RequiredPhaseIds []string
	ExcludedPhaseIds []string

	HoopPatternSettings HoopPatternSettings

	// Tags is host bookkeeping only; the kernel never reads it.
	Tags map[string]string
}

// ZeroZone returns the zone matching P&L% = 0, and whether one exists.
// Every valid Strategy must have one (spec invariant); callers that
// construct a Strategy by hand should validate this with
// ErrNoZeroZone before running a simulation.
func (s Strategy) ZeroZone() (ExitZone, bool) {
	for _, z := range s.ExitZones {
		if z.Matches(0) {
			return z, true
		}
	}
	return ExitZone{}, false
}
