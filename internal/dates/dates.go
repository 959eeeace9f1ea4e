// Package dates implements the simplified trading calendar: weekdays only,
// holidays not modeled.
package dates

import "time"

// IsTradingDay reports whether d falls on a weekday.
func IsTradingDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// LastTradingDay returns the most recent trading day on or before ref,
// walking backwards over weekends.
func LastTradingDay(ref time.Time) time.Time {
	d := ref
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// TradingDaysBetween returns the weekdays between start and end, inclusive.
// Returns nil when start is after end.
func TradingDaysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}
