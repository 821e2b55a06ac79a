// Package importer reads task lists exported by the gantt widget
// (gantt.serialize() JSON) and converts them into tasktree tasks.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// TypeProject is the task type of summary rows.
const TypeProject = "project"

// Schema is the top-level JSON structure of a gantt export.
type Schema struct {
	Data  []TaskImport `json:"data"`
	Links []LinkImport `json:"links,omitempty"`
}

// TaskImport is one entry of the export's data array.
type TaskImport struct {
	ID        ID       `json:"id"`
	Parent    ID       `json:"parent,omitempty"`
	Text      string   `json:"text"`
	WBS       string   `json:"wbs,omitempty"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date,omitempty"`
	Duration  *float64 `json:"duration,omitempty"` // hours
	Progress  float64  `json:"progress,omitempty"` // 0..1
	Status    int      `json:"status,omitempty"`
	WorkType  string   `json:"workType,omitempty"`
	Type      string   `json:"type,omitempty"`
}

// LinkImport is a dependency arrow. Links are read but not drawn.
type LinkImport struct {
	ID     ID     `json:"id"`
	Source ID     `json:"source"`
	Target ID     `json:"target"`
	Type   string `json:"type"`
}

// ID is a task identifier. The widget emits numbers or strings; both are
// kept as their decimal or literal text. Zero, the empty string and null
// mean "no parent".
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("importer: id %s is neither a string nor a number", b)
		}
		if i, err := n.Int64(); err == nil {
			*id = ID(strconv.FormatInt(i, 10))
		} else {
			*id = ID(n.String())
		}
	}
	return nil
}

// IsRoot reports whether id, used as a parent reference, means no parent.
func (id ID) IsRoot() bool { return id == "" || id == "0" }

// ParseSchema decodes a gantt export.
func ParseSchema(data []byte) (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("importer: parsing gantt export: %w", err)
	}
	return &schema, nil
}

// LoadSchema reads and decodes a gantt export file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchema(data)
}
