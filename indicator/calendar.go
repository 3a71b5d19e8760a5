package indicator

import (
	"time"

	"github.com/raykavin/backtestkernel/core"
)

func dayOfWeek(candles []core.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = float64(c.Time.UTC().Weekday())
	}
	return out
}

func hourOfDay(candles []core.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = float64(c.Time.UTC().Hour())
	}
	return out
}

func dayOfMonth(candles []core.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = float64(c.Time.UTC().Day())
	}
	return out
}

func monthOfYear(candles []core.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = float64(c.Time.UTC().Month())
	}
	return out
}

// synodicMonthDays is the mean length of a lunar synodic month.
const synodicMonthDays = 29.530588853

// knownNewMoon is a reference new moon used as the epoch for the phase
// calculation (2000-01-06 18:14 UTC).
var knownNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// moonPhase returns the lunar phase fraction in [0,1): 0 is new moon,
// 0.5 is full moon. Pure synodic-month arithmetic, no library involved —
// this isn't a domain any Go ephemeris package in the corpus covers.
func moonPhase(candles []core.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		days := c.Time.UTC().Sub(knownNewMoon).Hours() / 24
		phase := days / synodicMonthDays
		phase -= float64(int(phase))
		if phase < 0 {
			phase++
		}
		out[i] = phase
	}
	return out
}

// usFederalHolidays lists fixed-date and observed US federal holidays for
// the years this kernel is expected to backtest against. Extending the
// range means appending more entries; there's no closed-form rule for
// all of them (Thanksgiving, MLK day, etc. are Nth-weekday rules already
// expanded into concrete dates below).
var usFederalHolidays = buildUSFederalHolidays()

func buildUSFederalHolidays() map[string]bool {
	dates := []string{
		"2018-01-01", "2018-01-15", "2018-02-19", "2018-05-28", "2018-07-04", "2018-09-03", "2018-10-08", "2018-11-12", "2018-11-22", "2018-12-25",
		"2019-01-01", "2019-01-21", "2019-02-18", "2019-05-27", "2019-07-04", "2019-09-02", "2019-10-14", "2019-11-11", "2019-11-28", "2019-12-25",
		"2020-01-01", "2020-01-20", "2020-02-17", "2020-05-25", "2020-07-03", "2020-09-07", "2020-10-12", "2020-11-11", "2020-11-26", "2020-12-25",
		"2021-01-01", "2021-01-18", "2021-02-15", "2021-05-31", "2021-06-18", "2021-07-05", "2021-09-06", "2021-10-11", "2021-11-11", "2021-11-25", "2021-12-24",
		"2022-01-01", "2022-01-17", "2022-02-21", "2022-05-30", "2022-06-20", "2022-07-04", "2022-09-05", "2022-10-10", "2022-11-11", "2022-11-24", "2022-12-26",
		"2023-01-02", "2023-01-16", "2023-02-20", "2023-05-29", "2023-06-19", "2023-07-04", "2023-09-04", "2023-10-09", "2023-11-10", "2023-11-23", "2023-12-25",
		"2024-01-01", "2024-01-15", "2024-02-19", "2024-05-27", "2024-06-19", "2024-07-04", "2024-09-02", "2024-10-14", "2024-11-11", "2024-11-28", "2024-12-25",
		"2025-01-01", "2025-01-20", "2025-02-17", "2025-05-26", "2025-06-19", "2025-07-04", "2025-09-01", "2025-10-13", "2025-11-11", "2025-11-27", "2025-12-25",
		"2026-01-01", "2026-01-19", "2026-02-16", "2026-05-25", "2026-06-19", "2026-07-03", "2026-09-07", "2026-10-12", "2026-11-11", "2026-11-26", "2026-12-25",
	}
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}

func isUSHoliday(candles []core.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		if usFederalHolidays[c.Time.UTC().Format("2006-01-02")] {
			out[i] = 1
		}
	}
	return out
}

// fomcMeetingDays lists the second day (decision day) of each scheduled
// FOMC meeting, the day the market reacts to the statement.
var fomcMeetingDays = buildFOMCMeetingDays()

func buildFOMCMeetingDays() map[string]bool {
	dates := []string{
		"2023-02-01", "2023-03-22", "2023-05-03", "2023-06-14", "2023-07-26", "2023-09-20", "2023-11-01", "2023-12-13",
		"2024-01-31", "2024-03-20", "2024-05-01", "2024-06-12", "2024-07-31", "2024-09-18", "2024-11-07", "2024-12-18",
		"2025-01-29", "2025-03-19", "2025-05-07", "2025-06-18", "2025-07-30", "2025-09-17", "2025-10-29", "2025-12-10",
		"2026-01-28", "2026-03-18", "2026-04-29", "2026-06-17", "2026-07-29", "2026-09-16", "2026-10-28", "2026-12-09",
	}
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}

func isFOMCMeeting(candles []core.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		if fomcMeetingDays[c.Time.UTC().Format("2006-01-02")] {
			out[i] = 1
		}
	}
	return out
}
