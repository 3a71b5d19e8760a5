package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/raykavin/backtestkernel/sim"
)

// printSummary renders a run's result as a text table, in the same
// AppendBulk/SetColumnAlignment/Render style the teacher's trade
// summary uses.
func printSummary(result sim.BacktestResult) {
	table := tablewriter.NewWriter(os.Stdout)

	m := result.Metrics
	data := [][]string{
		{"Strategy", result.StrategyName},
		{"Run ID", result.RunID},
		{"Bars evaluated", fmt.Sprintf("%d", result.BarsEvaluated)},
		{"Trades", fmt.Sprintf("%d", m.TotalTrades)},
		{"Win / Loss", fmt.Sprintf("%d / %d", m.WinningTrades, m.LosingTrades)},
		{"Win rate", fmt.Sprintf("%.1f%%", m.WinRate*100)},
		{"Payoff", fmt.Sprintf("%.2f", m.Payoff)},
		{"Profit factor", fmt.Sprintf("%.2f", m.ProfitFactor)},
		{"Total PnL", fmt.Sprintf("%.2f (%.2f%%)", m.TotalPnL, m.TotalPnLPercent)},
		{"Max drawdown", fmt.Sprintf("%.2f (%.2f%%)", m.MaxDrawdown, m.MaxDrawdownPercent)},
		{"Sharpe", fmt.Sprintf("%.2f", m.SharpeRatio)},
		{"SQN", fmt.Sprintf("%.2f", m.SQN)},
		{"Final equity", fmt.Sprintf("%.2f", m.FinalEquity)},
		{"Duration", fmt.Sprintf("%dms", result.DurationMs)},
	}

	table.AppendBulk(data)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d run error(s), e.g. %q\n", len(result.Errors), result.Errors[0])
	}
}
