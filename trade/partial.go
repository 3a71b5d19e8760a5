package trade

import "github.com/raykavin/backtestkernel/strategy"

// CalculateExitQuantity implements the partial-exit sizing rule from
// spec section 4.4. It must be called before RecordPartialExit so the
// zone-reentry bookkeeping happens exactly once per evaluation.
func (s *OpenTradeState) CalculateExitQuantity(zone strategy.ExitZone) float64 {
	if s.LastZoneName != zone.Name && zone.ExitReentry == strategy.ExitReentryReset {
		s.ZoneExitCount = make(map[string]int)
	}
	s.LastZoneName = zone.Name

	maxExits := zone.MaxExits
	if maxExits < 1 {
		maxExits = 1
	}
	if s.ZoneExitCount[zone.Name] >= maxExits {
		return 0
	}

	basis := s.OriginalQty
	if zone.ExitBasis == strategy.ExitBasisRemaining {
		basis = s.RemainingQty
	}
	target := basis * zone.EffectiveExitPercent() / 100
	return clip(target, 0, s.RemainingQty)
}

// RecordPartialExit applies the bookkeeping side-effects of an emitted
// partial (or full) exit: the zone's exit counter, remaining quantity,
// and last-exit bar.
func (s *OpenTradeState) RecordPartialExit(zone strategy.ExitZone, qty float64, bar int) {
	s.ZoneExitCount[zone.Name]++
	s.RemainingQty -= qty
	if s.RemainingQty < 0 {
		s.RemainingQty = 0
	}
	s.LastExitBar = bar
}
