package tasktree

import (
	"math"
	"time"

	"github.com/hashicorp/go-hclog"
)

// HoursPerDay converts a task's duration in hours to working days.
const HoursPerDay = 8

// Record is one row of a flattened chart.
type Record struct {
	ID          string
	WBS         string
	Title       string
	Start       time.Time
	End         time.Time
	StatusGlyph string // asset reference, empty when there is none
	Progress    int    // percent in [0, 100]
	ColorIndex  int
	Days        int // working days, at least 1
	Project     bool
	Children    []*Record
}

// Span is a closed time range.
type Span struct {
	Start time.Time
	End   time.Time
}

// Result is the output of Flatten.
type Result struct {
	Roots []*Record
	Count int   // rows visited, project rows included
	Span  *Span // min start and max end over leaf tasks, nil when there are none
}

// Options control how task attributes become row attributes.
type Options struct {
	// StatusIcons are indexed by status code modulo their count.
	StatusIcons []string
	// WorkTypeStyles maps a work type to a palette index.
	WorkTypeStyles map[string]float64
	PaletteSize    int
	// Strict makes a task that names an unseen parent an error instead of
	// a top-level row.
	Strict bool
	Logger hclog.Logger
}

// Flatten walks src once and builds the chart rows.
func Flatten(src Source, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	res := &Result{}
	byID := make(map[string]*Record)
	err := src.Each(func(t Task) error {
		rec := &Record{
			ID:          t.ID,
			WBS:         t.WBS,
			Title:       t.Title,
			Start:       t.Start,
			End:         t.End,
			StatusGlyph: StatusGlyph(opts.StatusIcons, t.Status),
			Progress:    ProgressPercent(t.Progress),
			ColorIndex:  ColorIndex(opts.WorkTypeStyles, t.WorkType, opts.PaletteSize),
			Days:        DurationDays(t.DurationHours),
			Project:     t.Project,
		}

		if rec.Project {
			rec.Children = []*Record{}
		} else {
			res.Span = widen(res.Span, rec.Start, rec.End)
		}

		if t.ParentID != "" {
			if parent, ok := byID[t.ParentID]; ok {
				parent.Children = append(parent.Children, rec)
			} else if opts.Strict {
				return &MalformedHierarchyError{ID: t.ID, ParentID: t.ParentID}
			} else {
				log.Warn("parent not seen before child, placing task at top level", "task", t.ID, "parent", t.ParentID)
				res.Roots = append(res.Roots, rec)
			}
		} else {
			res.Roots = append(res.Roots, rec)
		}
		if _, dup := byID[t.ID]; !dup {
			byID[t.ID] = rec
		}
		res.Count++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Span == nil {
		log.Debug("no leaf tasks", "rows", res.Count)
	} else {
		log.Debug("flattened tasks", "rows", res.Count, "start", res.Span.Start, "end", res.Span.End)
	}
	return res, nil
}

func widen(s *Span, start, end time.Time) *Span {
	if s == nil {
		return &Span{Start: start, End: end}
	}
	if start.Before(s.Start) {
		s.Start = start
	}
	if end.After(s.End) {
		s.End = end
	}
	return s
}

// ProgressPercent converts a progress fraction to a whole percentage,
// rounding up and clamping to [0, 100].
func ProgressPercent(fraction float64) int {
	if math.IsNaN(fraction) || fraction <= 0 {
		return 0
	}
	x := fraction * 100
	// Products like 0.07*100 = 7.000000000000001 stay at 7.
	p := math.Round(x)
	if math.Abs(x-p) > 1e-9 {
		p = math.Ceil(x)
	}
	if p > 100 {
		return 100
	}
	return int(p)
}

// DurationDays converts a duration in hours to working days, rounding up.
// The result is never less than 1.
func DurationDays(hours float64) int {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 1
	}
	d := math.Ceil(hours / HoursPerDay)
	if d < 1 {
		return 1
	}
	return int(d)
}

// ColorIndex looks up a work type's style and reduces it modulo the palette
// size. Missing, non-finite and negative styles map to 0; fractional styles
// are truncated.
func ColorIndex(styles map[string]float64, workType string, paletteSize int) int {
	if paletteSize <= 0 {
		return 0
	}
	v, ok := styles[workType]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v >= math.MaxInt32 {
		return 0
	}
	return int(v) % paletteSize
}

// StatusGlyph picks the icon for a status code, wrapping codes past the end
// of icons. It returns "" when there are no icons.
func StatusGlyph(icons []string, status int) string {
	if len(icons) == 0 {
		return ""
	}
	i := status % len(icons)
	if i < 0 {
		i += len(icons)
	}
	return icons[i]
}

// Walk visits records in pre-order, passing each record's depth below the
// roots. It stops at the first error fn returns.
func Walk(roots []*Record, fn func(rec *Record, depth int) error) error {
	type frame struct {
		rec   *Record
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := fn(f.rec, f.depth); err != nil {
			return err
		}
		for i := len(f.rec.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.rec.Children[i], f.depth + 1})
		}
	}
	return nil
}
