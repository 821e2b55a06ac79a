package axis

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	start, end := Normalize(
		time.Date(2024, 1, 1, 13, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC),
	)
	if !start.Equal(date(2024, 1, 1)) {
		t.Errorf("start = %v", start)
	}
	want := time.Date(2024, 1, 3, 23, 59, 59, 999000000, time.UTC)
	if !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}
}

func TestDayCount(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"same instant", date(2024, 1, 1), date(2024, 1, 1), 0},
		{"two days", date(2024, 1, 1), date(2024, 1, 3), 2},
		{"partial day rounds up", date(2024, 1, 1), date(2024, 1, 1).Add(time.Hour), 1},
		{"reversed", date(2024, 1, 3), date(2024, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayCount(tt.start, tt.end); got != tt.want {
				t.Errorf("DayCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDayCountMixedLocations(t *testing.T) {
	hawaii := time.FixedZone("HST", -10*60*60)
	// 20:00 on 3 January in Hawaii is 06:00 on 4 January in UTC.
	end := time.Date(2024, 1, 3, 20, 0, 0, 0, hawaii)
	if got := DayCount(date(2024, 1, 1), end); got != 4 {
		t.Errorf("DayCount = %d, want 4", got)
	}

	_, normEnd := Normalize(date(2024, 1, 1), end)
	want := time.Date(2024, 1, 4, 23, 59, 59, 999000000, time.UTC)
	if !normEnd.Equal(want) || normEnd.Location() != time.UTC {
		t.Errorf("normalized end = %v, want %v", normEnd, want)
	}
	if a := Build(date(2024, 1, 1), end); a.DayCount != 4 || len(a.Columns) != 4 {
		t.Errorf("Build: DayCount = %d, columns = %d", a.DayCount, len(a.Columns))
	}
}

func TestWallKeepsDaysEqual(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	// Clocks spring forward on 10 March 2024, a 23 hour day.
	a := Build(time.Date(2024, 3, 1, 0, 0, 0, 0, loc), time.Date(2024, 3, 14, 0, 0, 0, 0, loc))
	for i := 0; i <= len(a.Columns); i++ {
		got := a.Wall(a.Start.AddDate(0, 0, i)).Sub(a.Wall(a.Start))
		if got != time.Duration(i)*24*time.Hour {
			t.Errorf("day %d is %v after start, want %d days", i, got, i)
		}
	}
	if got := a.Wall(a.GridEnd()).Sub(a.Wall(a.Start)); got != time.Duration(len(a.Columns))*24*time.Hour {
		t.Errorf("grid spans %v for %d columns", got, len(a.Columns))
	}
}

func TestBuildSingleMonth(t *testing.T) {
	a := Build(date(2024, 1, 1), date(2024, 1, 3))

	if a.DayCount != 3 {
		t.Fatalf("DayCount = %d, want 3", a.DayCount)
	}
	if len(a.Columns) != 3 {
		t.Fatalf("len(Columns) = %d, want 3", len(a.Columns))
	}
	if len(a.Months) != 1 {
		t.Fatalf("len(Months) = %d, want 1", len(a.Months))
	}
	m := a.Months[0]
	if m.Label != "January 2024" || m.Start != 0 || m.Count != 3 {
		t.Fatalf("month span = %+v", m)
	}
	if !a.GridEnd().Equal(date(2024, 1, 4)) {
		t.Fatalf("GridEnd = %v", a.GridEnd())
	}
}

func TestBuildCrossesMonths(t *testing.T) {
	a := Build(date(2024, 1, 30), date(2024, 3, 2))

	want := []MonthSpan{
		{Label: "January 2024", Start: 0, Count: 2},
		{Label: "February 2024", Start: 2, Count: 29},
		{Label: "March 2024", Start: 31, Count: 2},
	}
	if len(a.Months) != len(want) {
		t.Fatalf("got %d spans, want %d: %+v", len(a.Months), len(want), a.Months)
	}
	for i, w := range want {
		got := a.Months[i]
		if got.Label != w.Label || got.Start != w.Start || got.Count != w.Count {
			t.Errorf("span %d = %+v, want %+v", i, got, w)
		}
	}
	if !a.Months[1].Month.Equal(date(2024, 2, 1)) {
		t.Errorf("February span month = %v", a.Months[1].Month)
	}
}

func TestBuildMonthSpansCoverColumns(t *testing.T) {
	base := date(2023, 11, 17)
	for offset := 0; offset < 400; offset += 13 {
		for length := 0; length < 120; length += 7 {
			start := base.AddDate(0, 0, offset)
			end := start.AddDate(0, 0, length)
			a := Build(start, end)

			next := 0
			for _, s := range a.Months {
				if s.Start != next {
					t.Fatalf("%v..%v: span starts at %d, want %d", start, end, s.Start, next)
				}
				if s.Count < 1 {
					t.Fatalf("%v..%v: empty span %+v", start, end, s)
				}
				for i := s.Start; i < s.End(); i++ {
					if a.Columns[i].Date.Month() != s.Month.Month() {
						t.Fatalf("column %d (%v) is not in span month %v", i, a.Columns[i].Date, s.Month)
					}
				}
				next = s.End()
			}
			if next != len(a.Columns) {
				t.Fatalf("%v..%v: spans cover %d of %d columns", start, end, next, len(a.Columns))
			}
			if len(a.Columns) != a.DayCount {
				t.Fatalf("%v..%v: %d columns for %d days", start, end, len(a.Columns), a.DayCount)
			}
		}
	}
}

func TestBuildWeekends(t *testing.T) {
	// 1 January 2024 is a Monday.
	a := Build(date(2024, 1, 1), date(2024, 1, 14))
	for _, c := range a.Columns {
		wd := c.Date.Weekday()
		want := wd == time.Saturday || wd == time.Sunday
		if c.Weekend != want {
			t.Errorf("%s (%s): Weekend = %v", c.Date.Format("2006-01-02"), wd, c.Weekend)
		}
		if c.Index != int(c.Date.Sub(a.Start)/(24*time.Hour)) {
			t.Errorf("column %v has index %d", c.Date, c.Index)
		}
	}
	if !a.Columns[5].Weekend || !a.Columns[6].Weekend || a.Columns[7].Weekend {
		t.Error("6 and 7 January should be the only weekend in the first eight days")
	}
}

func TestBuildReversedRangeHasOneColumn(t *testing.T) {
	a := Build(date(2024, 1, 5), date(2024, 1, 1))
	if a.DayCount != 0 {
		t.Fatalf("DayCount = %d, want 0", a.DayCount)
	}
	if len(a.Columns) != 1 || len(a.Months) != 1 || a.Months[0].Count != 1 {
		t.Fatalf("columns=%d months=%+v", len(a.Columns), a.Months)
	}
}

func TestDefaultMonth(t *testing.T) {
	start, end := DefaultMonth(time.Date(2024, 2, 17, 15, 4, 5, 0, time.UTC))
	if !start.Equal(date(2024, 2, 1)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(date(2024, 2, 29)) {
		t.Errorf("end = %v", end)
	}

	a := Build(start, end)
	if a.DayCount != 29 || len(a.Months) != 1 {
		t.Errorf("DayCount = %d, months = %d", a.DayCount, len(a.Months))
	}
}

func TestBuildAcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	// Clocks fall back on 3 November 2024.
	a := Build(time.Date(2024, 11, 1, 9, 0, 0, 0, loc), time.Date(2024, 11, 5, 9, 0, 0, 0, loc))
	if a.DayCount != 5 {
		t.Fatalf("DayCount = %d, want 5", a.DayCount)
	}
	for i, c := range a.Columns {
		if c.Date.Day() != 1+i || c.Date.Hour() != 0 {
			t.Errorf("column %d = %v", i, c.Date)
		}
	}
}
