// Package market defines the canonical daily OHLCV row model shared by the
// normalizers, the partition writer, the catalog and the validation engines.
package market

import (
	"sort"
	"time"
)

// Columns is the canonical schema column order for normalized daily OHLCV
// rows. Every normalizer must produce exactly this column set.
var Columns = []string{
	"date",
	"open",
	"high",
	"low",
	"close",
	"adjusted_close",
	"volume",
	"source",
	"ingested_at",
}

// PartitionColumns are reconstructed from the Hive directory path at query
// time and are never stored inside partition files.
var PartitionColumns = []string{"symbol", "source", "year"}

// DefaultDataset is the dataset name daily rows are written under.
const DefaultDataset = "daily_ohlcv"

// Row is one canonical daily bar for a (symbol, source, date).
//
// Date carries no time component: it is always midnight UTC. AdjustedClose
// equals Close for sources without a true adjustment policy. Symbol is a
// partitioning attribute carried alongside the data columns; the partition
// writer drops it from file content.
type Row struct {
	Date          time.Time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	AdjustedClose float64
	Volume        int64
	Source        string
	IngestedAt    time.Time

	Symbol string
}

// Year returns the partition year derived from Date.
func (r Row) Year() int {
	return r.Date.Year()
}

// Date builds a canonical date value: midnight UTC, no time component.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates an arbitrary timestamp to its calendar date, keeping the
// date components as observed in the timestamp's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// SortByDate sorts rows ascending by date, in place.
func SortByDate(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}

// Dates returns the set of dates present in rows, keyed by Unix seconds of
// the midnight-UTC date. Useful for overlap and gap arithmetic.
func Dates(rows []Row) map[int64]struct{} {
	set := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		set[r.Date.Unix()] = struct{}{}
	}
	return set
}

// ByDate indexes rows by their date's Unix seconds. Later rows win on
// duplicate dates.
func ByDate(rows []Row) map[int64]Row {
	m := make(map[int64]Row, len(rows))
	for _, r := range rows {
		m[r.Date.Unix()] = r
	}
	return m
}

// Span returns the minimum and maximum date present. ok is false for an
// empty row set.
func Span(rows []Row) (min, max time.Time, ok bool) {
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = rows[0].Date, rows[0].Date
	for _, r := range rows[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, true
}
