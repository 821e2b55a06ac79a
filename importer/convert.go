package importer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lvillar/ganttpdf/tasktree"
)

// dateLayouts are tried in order. The widget's own default is "%d-%m-%Y %H:%i".
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02-01-2006 15:04",
	"02-01-2006",
}

// ParseDate parses a task date in any of the supported layouts. Dates
// without a zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Convert turns a validated schema into tasks in pre-order, with WBS codes
// filled in where the export has none.
func Convert(schema *Schema) ([]tasktree.Task, error) {
	tasks := make([]tasktree.Task, 0, len(schema.Data))
	for _, t := range schema.Data {
		start, err := ParseDate(t.StartDate)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}

		var end time.Time
		var hours float64
		switch {
		case t.EndDate != "":
			if end, err = ParseDate(t.EndDate); err != nil {
				return nil, fmt.Errorf("task %s: %w", t.ID, err)
			}
			hours = end.Sub(start).Hours()
		case t.Duration != nil:
			end = start.Add(time.Duration(*t.Duration * float64(time.Hour)))
		default:
			return nil, fmt.Errorf("task %s: no end date or duration", t.ID)
		}
		if t.Duration != nil {
			hours = *t.Duration
		}

		parent := ""
		if !t.Parent.IsRoot() {
			parent = string(t.Parent)
		}
		tasks = append(tasks, tasktree.Task{
			ID:            string(t.ID),
			ParentID:      parent,
			WBS:           t.WBS,
			Title:         t.Text,
			Start:         start,
			End:           end,
			Status:        t.Status,
			Progress:      math.Max(0, math.Min(1, t.Progress)),
			WorkType:      t.WorkType,
			DurationHours: hours,
			Project:       t.Type == TypeProject,
		})
	}
	return tasktree.AssignWBS(tasktree.NewSliceSource(tasks).Tasks()), nil
}

// Parse validates and converts a gantt export.
func Parse(data []byte) ([]tasktree.Task, error) {
	schema, err := ParseSchema(data)
	if err != nil {
		return nil, err
	}
	return convertValid(schema)
}

// ReadFile validates and converts a gantt export file.
func ReadFile(path string) ([]tasktree.Task, error) {
	schema, err := LoadSchema(path)
	if err != nil {
		return nil, err
	}
	return convertValid(schema)
}

func convertValid(schema *Schema) ([]tasktree.Task, error) {
	if errs := Validate(schema); len(errs) > 0 {
		return nil, fmt.Errorf("importer: invalid gantt export: %w", errors.Join(errs...))
	}
	return Convert(schema)
}
