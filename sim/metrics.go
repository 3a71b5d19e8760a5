package sim

import "github.com/prometheus/client_golang/prometheus"

// Prometheus counters/gauges a host process embedding the kernel as a
// long-running service can scrape, in the same package-level
// register-in-init style the pack's bot processes use for their own
// operational metrics.
var (
	runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backtestkernel_runs_total",
		Help: "Total number of Driver.Run invocations completed.",
	})

	barsEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backtestkernel_bars_evaluated_total",
		Help: "Total candles processed across all runs, past warmup.",
	})

	tradesEmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backtestkernel_trades_emitted_total",
		Help: "Total trade records emitted, by exit reason.",
	}, []string{"exit_reason"})

	lastRunFinalEquity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backtestkernel_last_run_final_equity",
		Help: "Final equity of the most recently completed run.",
	})
)

func init() {
	prometheus.MustRegister(runsTotal, barsEvaluatedTotal, tradesEmittedTotal, lastRunFinalEquity)
}

// recordRunMetrics updates the package's Prometheus series from a
// completed run's result. Called once at the end of Driver.Run.
func recordRunMetrics(result BacktestResult) {
	runsTotal.Inc()
	barsEvaluatedTotal.Add(float64(result.BarsEvaluated))
	lastRunFinalEquity.Set(result.Metrics.FinalEquity)
	for _, tr := range result.Trades {
		tradesEmittedTotal.WithLabelValues(string(tr.ExitReason)).Inc()
	}
}
