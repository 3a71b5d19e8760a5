// Package position implements the position/DCA manager (C6): grouping
// entries into logical positions, enforcing concurrency/distance
// constraints, and assigning group ids.
package position

import (
	"fmt"

	"github.com/raykavin/backtestkernel/strategy"
	"github.com/raykavin/backtestkernel/trade"
)

// Manager tracks open groups and hands out group ids. One Manager
// belongs to exactly one simulation instance.
type Manager struct {
	strat Strategy

	nextGroupSeq    int
	currentGroupID  string
	groups          map[string][]*trade.OpenTradeState
}

// Strategy is the subset of strategy.Strategy the manager consults.
type Strategy struct {
	DcaEnabled     bool
	DcaMaxEntries  int
	DcaBarsBetween int
	DcaMode        strategy.DcaMode

	MaxOpenTrades           int
	MinCandlesBetweenTrades int
}

// NewManager builds an empty Manager for one simulation run.
func NewManager(s Strategy) *Manager {
	return &Manager{strat: s, groups: make(map[string][]*trade.OpenTradeState)}
}

// OpenPositions returns the number of distinct open groups.
func (m *Manager) OpenPositions() int {
	return len(m.groups)
}

// EntriesInCurrentPosition returns how many open trades share the
// manager's current group id (0 if there is none).
func (m *Manager) EntriesInCurrentPosition() int {
	if m.currentGroupID == "" {
		return 0
	}
	return len(m.groups[m.currentGroupID])
}

// CanAddToCurrentPosition reports the spec's canAddToCurrentPosition
// predicate.
func (m *Manager) CanAddToCurrentPosition() bool {
	if !m.strat.DcaEnabled || m.currentGroupID == "" {
		return false
	}
	n := m.EntriesInCurrentPosition()
	return n > 0 && n < m.strat.DcaMaxEntries
}

// CanStartNewPosition reports the spec's canStartNewPosition predicate.
func (m *Manager) CanStartNewPosition() bool {
	return m.OpenPositions() < m.strat.MaxOpenTrades
}

// IsDcaEntry reports whether the next entry should be treated as a DCA
// addition to the current group (preference to continue DCA over
// starting a new position).
func (m *Manager) IsDcaEntry() bool {
	return m.CanAddToCurrentPosition()
}

// RequiredDistance returns the bar-distance gate applicable to the next
// entry, depending on whether it would be a DCA addition.
func (m *Manager) RequiredDistance() int {
	if m.IsDcaEntry() {
		return m.strat.DcaBarsBetween
	}
	return m.strat.MinCandlesBetweenTrades
}

// OpenGroup registers t as the first entry of a new position (non-DCA
// continuation), allocating a fresh group id.
func (m *Manager) OpenGroup(t *trade.OpenTradeState, isDca bool) string {
	m.nextGroupSeq++
	prefix := "pos-"
	if isDca {
		prefix = "dca-"
	}
	id := fmt.Sprintf("%s%d", prefix, m.nextGroupSeq)
	t.Trade.GroupID = id
	m.groups[id] = []*trade.OpenTradeState{t}
	m.currentGroupID = id
	return id
}

// AddToGroup appends a DCA addition to the current group.
func (m *Manager) AddToGroup(t *trade.OpenTradeState) {
	t.Trade.GroupID = m.currentGroupID
	m.groups[m.currentGroupID] = append(m.groups[m.currentGroupID], t)
}

// Group returns the open trades sharing groupID.
func (m *Manager) Group(groupID string) []*trade.OpenTradeState {
	return m.groups[groupID]
}

// CurrentGroup returns the open trades in the manager's current group.
func (m *Manager) CurrentGroup() []*trade.OpenTradeState {
	return m.groups[m.currentGroupID]
}

// CurrentGroupID returns the manager's current group id, or "" if none.
func (m *Manager) CurrentGroupID() string {
	return m.currentGroupID
}

// RemoveFromGroup drops a fully closed trade from its group's live
// slice. When the group becomes empty, ResetGroupIfEmpty will clear
// currentGroupID on the next call.
func (m *Manager) RemoveFromGroup(groupID string, closed *trade.OpenTradeState) {
	trades := m.groups[groupID]
	for i, s := range trades {
		if s == closed {
			m.groups[groupID] = append(trades[:i], trades[i+1:]...)
			break
		}
	}
}

// ResetGroupIfEmpty clears currentGroupID once its group has no open
// trades left, and drops the group's bookkeeping entry entirely.
func (m *Manager) ResetGroupIfEmpty(groupID string) {
	if len(m.groups[groupID]) == 0 {
		delete(m.groups, groupID)
		if m.currentGroupID == groupID {
			m.currentGroupID = ""
		}
	}
}

// WeightedAverageEntryPrice computes the quantity-weighted average
// entry price across every entry in a group, used by C5 in place of a
// single trade's own entry price for a DCA position.
func WeightedAverageEntryPrice(group []*trade.OpenTradeState) float64 {
	var pv, v float64
	for _, s := range group {
		pv += s.Trade.EntryPrice * s.OriginalQty
		v += s.OriginalQty
	}
	if v == 0 {
		return 0
	}
	return pv / v
}
