package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lvillar/ganttpdf/tasktree"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("store: not found")

// Project is a named task list.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a SQLite-backed project store.
type Store struct {
	db *sql.DB
}

// Open opens the store at path. See OpenDB.
func Open(path string) (*Store, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateProject adds an empty project.
func (s *Store) CreateProject(ctx context.Context, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("store: project name is required")
	}
	now := time.Now().UTC()
	p := &Project{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("store: creating project %q: %w", name, err)
	}
	return p, nil
}

// Projects lists all projects by name.
func (s *Store) Projects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: listing projects: %w", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindProject looks a project up by id, then by name.
func (s *Store) FindProject(ctx context.Context, idOrName string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM projects WHERE id = ? OR name = ?
		 ORDER BY id = ? DESC LIMIT 1`, idOrName, idOrName, idOrName)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: project %q", ErrNotFound, idOrName)
	}
	return p, err
}

// DeleteProject removes a project and its tasks.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: deleting project %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: project %q", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (*Project, error) {
	var p Project
	var created, updated string
	if err := sc.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &p, nil
}

// SaveTasks replaces the task list of a project. Tasks are stored in
// pre-order so that Source can stream them back without sorting in memory.
func (s *Store) SaveTasks(ctx context.Context, projectID string, tasks []tasktree.Task) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`,
		formatTime(time.Now().UTC()), projectID)
	if err != nil {
		return fmt.Errorf("store: touching project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: project %q", ErrNotFound, projectID)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("store: clearing tasks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks (
		project_id, position, id, parent_id, wbs, title, start_at, end_at,
		status, progress, work_type, duration_hours, is_project
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasktree.NewSliceSource(tasks).Tasks() {
		_, err = stmt.ExecContext(ctx, projectID, i, t.ID, t.ParentID, t.WBS, t.Title,
			formatTime(t.Start), formatTime(t.End), t.Status, t.Progress, t.WorkType,
			t.DurationHours, t.Project)
		if err != nil {
			return fmt.Errorf("store: inserting task %s: %w", t.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Tasks returns the task list of a project in pre-order.
func (s *Store) Tasks(ctx context.Context, projectID string) ([]tasktree.Task, error) {
	var out []tasktree.Task
	err := s.Source(ctx, projectID).Each(func(t tasktree.Task) error {
		out = append(out, t)
		return nil
	})
	return out, err
}

// Source streams the task list of a project in pre-order.
func (s *Store) Source(ctx context.Context, projectID string) tasktree.Source {
	return tasktree.SourceFunc(func(fn func(tasktree.Task) error) error {
		rows, err := s.db.QueryContext(ctx, `SELECT id, parent_id, wbs, title, start_at, end_at,
			status, progress, work_type, duration_hours, is_project
			FROM tasks WHERE project_id = ? ORDER BY position`, projectID)
		if err != nil {
			return fmt.Errorf("store: querying tasks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var t tasktree.Task
			var start, end string
			if err := rows.Scan(&t.ID, &t.ParentID, &t.WBS, &t.Title, &start, &end,
				&t.Status, &t.Progress, &t.WorkType, &t.DurationHours, &t.Project); err != nil {
				return fmt.Errorf("store: scanning task: %w", err)
			}
			if t.Start, err = time.Parse(time.RFC3339Nano, start); err != nil {
				return fmt.Errorf("store: task %s start: %w", t.ID, err)
			}
			if t.End, err = time.Parse(time.RFC3339Nano, end); err != nil {
				return fmt.Errorf("store: task %s end: %w", t.ID, err)
			}
			if err := fn(t); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}

// formatTime keeps the zone offset so that wall-clock dates survive a round
// trip.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
