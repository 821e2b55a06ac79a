// Package axis builds the horizontal time scale of a gantt chart: one column
// per calendar day, grouped into month header spans.
package axis

import (
	"math"
	"time"

	"github.com/jinzhu/now"
)

// LabelFormat is the layout used for MonthSpan labels.
const LabelFormat = "January 2006"

const day = 24 * time.Hour

// Column is one calendar day of the scale.
type Column struct {
	Date    time.Time
	Weekend bool
	Index   int
}

// MonthSpan is a contiguous run of columns that share a calendar month.
type MonthSpan struct {
	Label string
	Month time.Time // first instant of the month
	Start int       // index of the first column
	Count int
}

// End returns the index one past the span's last column.
func (s MonthSpan) End() int { return s.Start + s.Count }

// Axis is the complete scale for one chart.
type Axis struct {
	Start    time.Time // 00:00:00.000 of the first day
	End      time.Time // 23:59:59.999 of the last day
	DayCount int
	Columns  []Column
	Months   []MonthSpan
}

// GridEnd is the instant at the right edge of the last column, i.e. midnight
// after the last day. Bars mapped on the wall clock against [Start, GridEnd)
// land on column boundaries.
func (a Axis) GridEnd() time.Time {
	return a.Start.AddDate(0, 0, len(a.Columns))
}

// Normalize moves start to the beginning of its day and end to the last
// millisecond of its day. Days are taken in start's location.
func Normalize(start, end time.Time) (time.Time, time.Time) {
	start = now.With(start).BeginningOfDay()
	y, m, d := end.In(start.Location()).Date()
	end = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), start.Location())
	return start, end
}

// DayCount returns ceil((end-start) / 1 day) measured on the wall clock of
// start's location, so daylight saving transitions do not add or drop a
// day. Reversed ranges count as zero.
func DayCount(start, end time.Time) int {
	d := wall(end.In(start.Location())).Sub(wall(start))
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// Wall returns t as a wall-clock instant in the axis location, with every
// day exactly 24 hours long. Bars mapped between Wall(Start) and
// Wall(GridEnd()) line up with the fixed-width day columns.
func (a Axis) Wall(t time.Time) time.Time {
	return wall(t.In(a.Start.Location()))
}

func wall(t time.Time) time.Time {
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, m, d, h, mi, s, t.Nanosecond(), time.UTC)
}

// DefaultMonth returns the first and last day of the month containing t. It is
// the span used when a chart has no leaf tasks.
func DefaultMonth(t time.Time) (time.Time, time.Time) {
	n := now.With(t)
	return n.BeginningOfMonth(), now.With(n.EndOfMonth()).BeginningOfDay()
}

// Build normalizes [start, end] and lays out its day columns and month spans
// in chronological order. A range that counts zero days still yields a
// single column.
func Build(start, end time.Time) Axis {
	start, end = Normalize(start, end)
	a := Axis{
		Start:    start,
		End:      end,
		DayCount: DayCount(start, end),
	}

	n := a.DayCount
	if n < 1 {
		n = 1
	}
	a.Columns = make([]Column, 0, n)

	var spans spanBuilder
	date := start
	for i := 0; i < n; i++ {
		wd := date.Weekday()
		a.Columns = append(a.Columns, Column{
			Date:    date,
			Weekend: wd == time.Saturday || wd == time.Sunday,
			Index:   i,
		})
		spans.add(date, i, i == n-1)
		date = date.AddDate(0, 0, 1)
	}
	a.Months = spans.spans
	return a
}

// spanBuilder groups consecutive days into month spans. A span is open
// between the first day it sees and either its month's last day or the last
// day of the axis.
type spanBuilder struct {
	open  bool
	cur   MonthSpan
	spans []MonthSpan
}

func (b *spanBuilder) add(date time.Time, index int, last bool) {
	if !b.open {
		month := now.With(date).BeginningOfMonth()
		b.cur = MonthSpan{Label: month.Format(LabelFormat), Month: month, Start: index}
		b.open = true
	}
	b.cur.Count++
	if last || isMonthEnd(date) {
		b.spans = append(b.spans, b.cur)
		b.open = false
	}
}

func isMonthEnd(t time.Time) bool {
	return now.With(t).EndOfMonth().Day() == t.Day()
}
