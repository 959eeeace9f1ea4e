package market

import (
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	d := Date(2024, time.January, 2)
	if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 || d.Nanosecond() != 0 {
		t.Errorf("expected midnight, got %v", d)
	}
	if d.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", d.Location())
	}
}

func TestDateOf_KeepsLocalDateComponents(t *testing.T) {
	// 2024-01-02 16:00:00-05:00 is 2024-01-03 in UTC but the calendar date
	// as observed at the source is Jan 2.
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, time.January, 2, 16, 0, 0, 0, loc)

	got := DateOf(ts)
	want := Date(2024, time.January, 2)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRowYear(t *testing.T) {
	r := Row{Date: Date(2023, time.December, 29)}
	if r.Year() != 2023 {
		t.Errorf("expected 2023, got %d", r.Year())
	}
}

func TestSortByDate(t *testing.T) {
	rows := []Row{
		{Date: Date(2024, time.January, 5)},
		{Date: Date(2024, time.January, 2)},
		{Date: Date(2024, time.January, 3)},
	}
	SortByDate(rows)

	for i := 1; i < len(rows); i++ {
		if rows[i].Date.Before(rows[i-1].Date) {
			t.Fatalf("rows not sorted: %v before %v", rows[i].Date, rows[i-1].Date)
		}
	}
}

func TestDatesAndByDate(t *testing.T) {
	rows := []Row{
		{Date: Date(2024, time.January, 2), Close: 1},
		{Date: Date(2024, time.January, 3), Close: 2},
		{Date: Date(2024, time.January, 3), Close: 3}, // duplicate date
	}

	set := Dates(rows)
	if len(set) != 2 {
		t.Errorf("expected 2 distinct dates, got %d", len(set))
	}

	byDate := ByDate(rows)
	if len(byDate) != 2 {
		t.Errorf("expected 2 entries, got %d", len(byDate))
	}
	// Later rows win on duplicates
	if got := byDate[Date(2024, time.January, 3).Unix()].Close; got != 3 {
		t.Errorf("expected duplicate date to keep last row, got close=%g", got)
	}
}

func TestSpan(t *testing.T) {
	if _, _, ok := Span(nil); ok {
		t.Error("empty rows should report ok=false")
	}

	rows := []Row{
		{Date: Date(2024, time.January, 3)},
		{Date: Date(2024, time.January, 2)},
		{Date: Date(2024, time.January, 8)},
	}
	min, max, ok := Span(rows)
	if !ok {
		t.Fatal("expected ok")
	}
	if !min.Equal(Date(2024, time.January, 2)) {
		t.Errorf("expected min 2024-01-02, got %v", min)
	}
	if !max.Equal(Date(2024, time.January, 8)) {
		t.Errorf("expected max 2024-01-08, got %v", max)
	}
}
