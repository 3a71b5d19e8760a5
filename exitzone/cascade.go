package exitzone

import "github.com/raykavin/backtestkernel/trade"

// Cascade broadcasts one triggering trade's (reason, price) to every
// open trade in its DCA group, per spec's "choose one triggering trade,
// then broadcast to the whole group" design note. It never re-evaluates
// triggers per trade.
func Cascade(group []*trade.OpenTradeState, reason trade.ExitReason, zoneName string, price float64) {
	for _, s := range group {
		s.ExitReason = reason
		s.ExitPrice = price
		s.ExitZoneName = zoneName
	}
}
