package importer

import (
	"fmt"
	"math"
)

// Validate checks the schema before conversion and returns every problem
// found.
func Validate(schema *Schema) []error {
	var errs []error
	seen := make(map[ID]bool, len(schema.Data))
	for i, t := range schema.Data {
		prefix := fmt.Sprintf("data[%d]", i)
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if seen[t.ID] {
			errs = append(errs, fmt.Errorf("%s.id %q is duplicated", prefix, t.ID))
		}
		seen[t.ID] = true

		if t.StartDate == "" {
			errs = append(errs, fmt.Errorf("%s.start_date is required", prefix))
		} else if _, err := ParseDate(t.StartDate); err != nil {
			errs = append(errs, fmt.Errorf("%s.start_date: %w", prefix, err))
		}
		if t.EndDate != "" {
			if _, err := ParseDate(t.EndDate); err != nil {
				errs = append(errs, fmt.Errorf("%s.end_date: %w", prefix, err))
			}
		} else if t.Duration == nil {
			errs = append(errs, fmt.Errorf("%s: one of end_date and duration is required", prefix))
		}
		if t.Duration != nil && (math.IsNaN(*t.Duration) || *t.Duration < 0) {
			errs = append(errs, fmt.Errorf("%s.duration must not be negative", prefix))
		}
		if t.Progress < 0 || t.Progress > 1 {
			errs = append(errs, fmt.Errorf("%s.progress %v is outside [0, 1]", prefix, t.Progress))
		}
		if t.Parent == t.ID && t.ID != "" {
			errs = append(errs, fmt.Errorf("%s is its own parent", prefix))
		}
	}
	for i, t := range schema.Data {
		if !t.Parent.IsRoot() && !seen[t.Parent] {
			errs = append(errs, fmt.Errorf("data[%d].parent %q does not exist", i, t.Parent))
		}
	}
	return errs
}
