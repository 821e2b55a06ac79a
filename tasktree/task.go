// Package tasktree reads a hierarchical task source and flattens it into the
// row records a gantt chart is drawn from.
package tasktree

import (
	"fmt"
	"time"
)

// Task is one task as yielded by a Source.
type Task struct {
	ID            string
	ParentID      string // empty for top-level tasks
	WBS           string
	Title         string
	Start         time.Time
	End           time.Time
	Status        int
	Progress      float64 // fraction in [0, 1]
	WorkType      string
	DurationHours float64
	Project       bool
}

// Source yields tasks in pre-order: every parent before its children.
// Returning an error from fn stops the traversal and Each returns it.
type Source interface {
	Each(fn func(Task) error) error
}

// SourceFunc adapts a traversal function to a Source.
type SourceFunc func(fn func(Task) error) error

// Each calls f(fn).
func (f SourceFunc) Each(fn func(Task) error) error { return f(fn) }

// MalformedHierarchyError reports a task whose parent was not yielded before
// it.
type MalformedHierarchyError struct {
	ID       string
	ParentID string
}

func (e *MalformedHierarchyError) Error() string {
	return fmt.Sprintf("tasktree: task %q references parent %q before it was seen", e.ID, e.ParentID)
}

// SliceSource is an in-memory Source. It yields its tasks in pre-order
// regardless of the order they were given in; siblings keep their relative
// order.
type SliceSource struct {
	tasks []Task
}

// NewSliceSource returns a Source over tasks. Tasks whose parent is not in
// the slice are yielded as top-level tasks at their original position.
func NewSliceSource(tasks []Task) *SliceSource {
	return &SliceSource{tasks: preOrder(tasks)}
}

// Tasks returns the tasks in traversal order.
func (s *SliceSource) Tasks() []Task {
	return s.tasks
}

// Each implements Source.
func (s *SliceSource) Each(fn func(Task) error) error {
	for _, t := range s.tasks {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

func preOrder(tasks []Task) []Task {
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}

	children := make(map[string][]int)
	var roots []int
	for i, t := range tasks {
		if t.ParentID != "" && t.ParentID != t.ID && known[t.ParentID] {
			children[t.ParentID] = append(children[t.ParentID], i)
		} else {
			roots = append(roots, i)
		}
	}

	out := make([]Task, 0, len(tasks))
	seen := make([]bool, len(tasks))
	var stack []int
	visit := func(root int) {
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, tasks[i])
			kids := children[tasks[i].ID]
			for k := len(kids) - 1; k >= 0; k-- {
				stack = append(stack, kids[k])
			}
		}
	}
	for _, r := range roots {
		visit(r)
	}
	// Tasks caught in a parent cycle are unreachable from any root.
	for i := range tasks {
		if !seen[i] {
			visit(i)
		}
	}
	return out
}

// AssignWBS fills in missing WBS codes from each task's position in the
// tree: "1", "1.1", "1.2", "2" and so on. tasks must be in pre-order.
func AssignWBS(tasks []Task) []Task {
	codes := make(map[string]string, len(tasks))
	counts := make(map[string]int)
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		parent := ""
		if _, ok := codes[t.ParentID]; ok && t.ParentID != "" {
			parent = t.ParentID
		}
		counts[parent]++
		code := fmt.Sprint(counts[parent])
		if parent != "" {
			code = codes[parent] + "." + code
		}
		codes[t.ID] = code
		if t.WBS == "" {
			t.WBS = code
		}
		out[i] = t
	}
	return out
}
