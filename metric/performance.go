// Package metric computes aggregate performance statistics from a
// closed trade log, in the teacher's gonum/stat style.
package metric

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/raykavin/backtestkernel/trade"
)

// PerformanceMetrics aggregates a completed run's closed trade log.
type PerformanceMetrics struct {
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64
	TotalPnL       float64
	TotalPnLPercent float64
	GrossProfit    float64
	GrossLoss      float64
	ProfitFactor   float64
	Payoff         float64
	AverageWin     float64
	AverageLoss    float64
	LargestWin     float64
	LargestLoss    float64
	MaxDrawdown        float64
	MaxDrawdownPercent float64
	SharpeRatio    float64
	SQN            float64
	AverageHoldingBars float64
	FinalEquity    float64
}

// Compute builds a PerformanceMetrics from a run's closed trades
// (trades carrying ExitReason set) and starting capital.
func Compute(trades []trade.Trade, initialCapital float64) PerformanceMetrics {
	m := PerformanceMetrics{FinalEquity: initialCapital}

	closed := make([]trade.Trade, 0, len(trades))
	for _, t := range trades {
		if t.HasExited() && t.ExitReason != trade.ExitRejected && t.ExitReason != trade.ExitExpired {
			closed = append(closed, t)
		}
	}
	m.TotalTrades = len(closed)
	if m.TotalTrades == 0 {
		return m
	}

	pnls := make([]float64, len(closed))
	pnlPercents := make([]float64, len(closed))
	var holdingBarsSum float64

	for i, t := range closed {
		pnls[i] = t.PnL
		pnlPercents[i] = t.PnLPercent
		holdingBarsSum += float64(t.ExitBar - t.EntryBar)

		m.TotalPnL += t.PnL
		m.FinalEquity += t.PnL

		if t.PnL >= 0 {
			m.WinningTrades++
			m.GrossProfit += t.PnL
			if t.PnL > m.LargestWin {
				m.LargestWin = t.PnL
			}
		} else {
			m.LosingTrades++
			m.GrossLoss += t.PnL
			if t.PnL < m.LargestLoss {
				m.LargestLoss = t.PnL
			}
		}
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	m.AverageHoldingBars = holdingBarsSum / float64(m.TotalTrades)
	if initialCapital != 0 {
		m.TotalPnLPercent = m.TotalPnL / initialCapital * 100
	}

	m.ProfitFactor = profitFactor(pnls)
	m.Payoff = payoff(pnls)

	if m.WinningTrades > 0 {
		m.AverageWin = m.GrossProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = m.GrossLoss / float64(m.LosingTrades)
	}

	m.MaxDrawdown, m.MaxDrawdownPercent = maxDrawdown(pnls, initialCapital)
	m.SharpeRatio = sharpeRatio(pnlPercents)
	m.SQN = sqn(pnlPercents)

	return m
}

// profitFactor is grossProfit / |grossLoss|, 10 when there are no
// losses (teacher convention).
func profitFactor(pnls []float64) float64 {
	var wins, losses float64
	for _, v := range pnls {
		if v >= 0 {
			wins += v
		} else {
			losses += v
		}
	}
	if losses == 0 {
		return 10
	}
	return math.Abs(wins / losses)
}

// payoff is avgWin / |avgLoss|, 10 when there are no losses.
func payoff(pnls []float64) float64 {
	wins, losses := partitionTradeResults(pnls)
	if len(losses) == 0 {
		return 10
	}
	avgWin := stat.Mean(wins, nil)
	avgLoss := stat.Mean(losses, nil)
	if avgLoss == 0 {
		return 10
	}
	return math.Abs(avgWin / avgLoss)
}

func partitionTradeResults(values []float64) (wins, losses []float64) {
	for _, v := range values {
		if v >= 0 {
			wins = append(wins, v)
		} else {
			losses = append(losses, math.Abs(v))
		}
	}
	return wins, losses
}

// maxDrawdown walks the equity curve built by applying each closed
// trade's pnl in emission order.
func maxDrawdown(pnls []float64, initialCapital float64) (absolute, percent float64) {
	equity := initialCapital
	peak := initialCapital
	var maxDD float64
	for _, pnl := range pnls {
		equity += pnl
		if equity > peak {
			peak = equity
		}
		dd := peak - equity
		if dd > maxDD {
			maxDD = dd
		}
	}
	if peak != 0 {
		percent = maxDD / peak * 100
	}
	return maxDD, percent
}

// sharpeRatio is the mean/stddev of per-trade pnlPercent, guarding the
// zero-stddev and zero-trade cases.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	stddev := stat.StdDev(returns, nil)
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}

// sqn is the System Quality Number: sqrt(N) * mean(R) / stddev(R).
func sqn(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	stddev := stat.StdDev(returns, nil)
	if stddev == 0 {
		return 0
	}
	return math.Sqrt(float64(len(returns))) * mean / stddev
}
