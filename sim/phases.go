package sim

import "github.com/StudioSol/set"

// activePhaseSet builds the set of ids whose per-bar boolean array is
// true at bar, from a BacktestContext phase/pattern map. A
// LinkedHashSetString gives O(1) membership checks against the
// potentially large required/excluded id lists a zone or strategy
// carries, in the same style the teacher uses for feed-name membership.
func activePhaseSet(states map[string][]bool, bar int) *set.LinkedHashSetString {
	s := set.NewLinkedHashSetString()
	for id, arr := range states {
		if bar >= 0 && bar < len(arr) && arr[bar] {
			s.Add(id)
		}
	}
	return s
}

// idsSatisfied reports allPhasesActive/patternsMatch: every required id
// present in active, no excluded id present.
func idsSatisfied(active *set.LinkedHashSetString, required, excluded []string) bool {
	for _, id := range required {
		if !active.Has(id) {
			return false
		}
	}
	for _, id := range excluded {
		if active.Has(id) {
			return false
		}
	}
	return true
}
