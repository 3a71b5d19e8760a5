package core

import (
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// timeframeMillis is the canonical resolution -> milliseconds table used
// for warmup sizing and cross-timeframe mapping.
var timeframeMillis = map[string]int64{
	"1m":  60_000,
	"5m":  300_000,
	"15m": 900_000,
	"30m": 1_800_000,
	"1h":  3_600_000,
	"4h":  14_400_000,
	"1d":  86_400_000,
	"1w":  604_800_000,
}

// defaultTimeframeMillis is returned for any resolution not present in
// the canonical table and not parseable as a duration.
const defaultTimeframeMillis int64 = 3_600_000

// TimeframeMillis maps a resolution string to its duration in
// milliseconds. Canonical resolutions ("1m".."1w") always resolve via the
// static table; anything else is parsed with str2duration (e.g. "2h",
// "45m") so hosts aren't limited to the documented set. An unparseable
// resolution falls back to one hour.
func TimeframeMillis(resolution string) int64 {
	if ms, ok := timeframeMillis[resolution]; ok {
		return ms
	}

	d, err := str2duration.ParseDuration(resolution)
	if err != nil {
		return defaultTimeframeMillis
	}
	return d.Milliseconds()
}

// TimeframeDuration is the time.Duration equivalent of TimeframeMillis.
func TimeframeDuration(resolution string) time.Duration {
	return time.Duration(TimeframeMillis(resolution)) * time.Millisecond
}
