package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/raykavin/backtestkernel/core"
)

// loadCandles reads an OHLCV series from a CSV file with header
// "time,open,high,low,close,volume", time as RFC3339 or unix-seconds.
//
// No library in the pack parses candle CSVs (the teacher pulls candles
// from exchange APIs directly, never from a file), so this is the one
// stdlib-only piece of the CLI; encoding/csv is the right tool for a
// flat, header-delimited format like this one.
func loadCandles(path string) ([]core.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backtestsim: open candles file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("backtestsim: read candles header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, want := range []string{"time", "open", "high", "low", "close"} {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("backtestsim: candles file missing required column %q", want)
		}
	}

	var out []core.Candle
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		t, err := parseCandleTime(row[col["time"]])
		if err != nil {
			return nil, fmt.Errorf("backtestsim: parse candle time %q: %w", row[col["time"]], err)
		}
		c := core.Candle{
			Time:  t,
			Open:  mustFloat(row[col["open"]]),
			High:  mustFloat(row[col["high"]]),
			Low:   mustFloat(row[col["low"]]),
			Close: mustFloat(row[col["close"]]),
		}
		if i, ok := col["volume"]; ok {
			c.Volume = mustFloat(row[i])
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("backtestsim: candles file %s contains no data rows", path)
	}
	return out, nil
}

func parseCandleTime(raw string) (time.Time, error) {
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func mustFloat(raw string) float64 {
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}
