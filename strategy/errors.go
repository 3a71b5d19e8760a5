package strategy

import "errors"

var (
	// ErrNoZeroZone is returned when a Strategy's ExitZones do not cover
	// a P&L% of zero, violating the zero-zone invariant.
	ErrNoZeroZone = errors.New("strategy: exit zones do not cover pnl=0")

	// ErrInvalidZoneRange is returned when an ExitZone's PnlLo exceeds
	// its PnlHi.
	ErrInvalidZoneRange = errors.New("strategy: exit zone pnlLo exceeds pnlHi")

	// ErrNoExitZones is returned when a Strategy has no exit zones at all.
	ErrNoExitZones = errors.New("strategy: at least one exit zone is required")
)

// Validate checks the structural invariants spec.md places on a
// Strategy before it can be simulated.
func (s Strategy) Validate() error {
	if len(s.ExitZones) == 0 {
		return ErrNoExitZones
	}
	for _, z := range s.ExitZones {
		if z.PnlLo > z.PnlHi {
			return ErrInvalidZoneRange
		}
	}
	if _, ok := s.ZeroZone(); !ok {
		return ErrNoZeroZone
	}
	return nil
}
