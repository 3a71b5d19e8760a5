package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	zerologadapter "github.com/raykavin/backtestkernel/logger/zerolog"
	"github.com/raykavin/backtestkernel/sim"
	"github.com/raykavin/backtestkernel/strategy"
)

var runFlags struct {
	candlesPath string
	symbol      string
	resolution  string

	initialCapital float64
	commission     float64
	marketType     string

	strategy strategyFlags

	metricsAddr string
}

func buildRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest over a CSV candle file",
		RunE:  runRun,
	}

	f := cmd.Flags()
	f.StringVarP(&runFlags.candlesPath, "candles", "c", "", "Path to a CSV candle file (time,open,high,low,close,volume)")
	f.StringVarP(&runFlags.symbol, "symbol", "s", "SYMBOL", "Instrument symbol, for labeling only")
	f.StringVarP(&runFlags.resolution, "resolution", "r", "1h", "Candle resolution (e.g. 1h, 1d)")
	f.Float64Var(&runFlags.initialCapital, "capital", 10000, "Initial capital")
	f.Float64Var(&runFlags.commission, "commission", 0, "Commission rate per fill, as a fraction (0.001 = 0.1%)")
	f.StringVar(&runFlags.marketType, "market", "SPOT", "Market type: SPOT, FUTURES or MARGIN")

	f.StringVar(&runFlags.strategy.template, "strategy", "sma-cross", "Strategy template: sma-cross or rsi-reversion")
	f.IntVar(&runFlags.strategy.fastPeriod, "fast-period", 10, "Fast SMA period (sma-cross template)")
	f.IntVar(&runFlags.strategy.slowPeriod, "slow-period", 30, "Slow SMA period (sma-cross template)")
	f.StringVar(&runFlags.strategy.direction, "direction", "long", "Trade direction: long or short")
	f.Float64Var(&runFlags.strategy.stopLossPercent, "stop-loss", 5, "Fixed stop loss, percent")
	f.Float64Var(&runFlags.strategy.trailingPercent, "trailing-stop", 0, "Trailing stop, percent (overrides --stop-loss when set)")
	f.Float64Var(&runFlags.strategy.takeProfitPercent, "take-profit", 10, "Fixed take profit, percent")
	f.StringVar(&runFlags.strategy.sizingType, "sizing", "fixed-percent", "Position sizing: fixed-percent, fixed-dollar, risk-percent, kelly, volatility, all-in")
	f.Float64Var(&runFlags.strategy.sizingValue, "sizing-value", 100, "Position sizing value (percent, dollars, or risk percent depending on --sizing)")
	f.IntVar(&runFlags.strategy.maxOpenTrades, "max-open-trades", 1, "Maximum concurrent open trades")
	f.IntVar(&runFlags.strategy.minCandlesBetweenTrades, "min-bars-between-trades", 0, "Minimum candles between entries")

	f.StringVar(&runFlags.metricsAddr, "metrics-addr", "", "If set, serve Prometheus metrics on this address (e.g. :9090) until the run completes")

	cmd.MarkFlagRequired("candles")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	zl := newLogger()
	log := zerologadapter.NewAdapter(&zl)

	if runFlags.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: runFlags.metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warnf("metrics server stopped: %v", err)
			}
		}()
		log.Infof("serving prometheus metrics on %s/metrics", runFlags.metricsAddr)
	}

	candles, err := loadCandles(runFlags.candlesPath)
	if err != nil {
		return err
	}
	log.Infof("loaded %d candles for %s", len(candles), runFlags.symbol)

	strat, err := buildStrategy(runFlags.strategy)
	if err != nil {
		return err
	}
	sizingType, err := sizingTypeFrom(runFlags.strategy.sizingType)
	if err != nil {
		return err
	}

	marketType := strategy.MarketType(runFlags.marketType)

	cfg := sim.BacktestConfig{
		Symbol:              runFlags.symbol,
		Resolution:          runFlags.resolution,
		StartDate:           candles[0].Time,
		EndDate:             candles[len(candles)-1].Time,
		InitialCapital:      runFlags.initialCapital,
		Commission:          runFlags.commission,
		PositionSizingType:  sizingType,
		PositionSizingValue: runFlags.strategy.sizingValue,
		MarketType:          marketType,
	}

	bar := progressbar.Default(int64(len(candles)))
	onProgress := func(p sim.Progress) {
		if p.Total == 0 {
			return
		}
		if err := bar.Set(p.Current); err != nil {
			log.Warnf("update progressbar fail: %v", err)
		}
	}

	driver := sim.NewDriver(strat, cfg, sim.BacktestContext{Candles: candles}, onProgress)
	result := driver.Run()
	bar.Finish()

	if len(result.Errors) > 0 && result.Metrics.TotalTrades == 0 && len(result.Trades) == 0 {
		return fmt.Errorf("backtestsim: run failed: %s", result.Errors[0])
	}

	printSummary(result)
	return nil
}
