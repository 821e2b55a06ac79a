package ganttpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for export failures.
var (
	ErrNoSource  = errors.New("ganttpdf: no task source")
	ErrSerialize = errors.New("ganttpdf: writing document failed")
)

// ExportError is a fatal export failure tagged with the stage it happened in.
type ExportError struct {
	Op  string // "Validate", "Flatten", "Surface", "Serialize" or "Create"
	Err error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ganttpdf.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ganttpdf.%s: unknown error", e.Op)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func newExportError(op string, err error) *ExportError {
	return &ExportError{Op: op, Err: err}
}
