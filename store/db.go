// Package store persists projects and their task lists in SQLite. A stored
// task list is itself a tasktree.Source, so charts can be exported straight
// from the database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens the SQLite database at path, creating its directory if
// needed, and runs migrations. ":memory:" opens a private in-memory
// database.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// Migrate creates the schema. It is safe to run more than once.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		id             TEXT NOT NULL,
		parent_id      TEXT NOT NULL DEFAULT '',
		wbs            TEXT NOT NULL DEFAULT '',
		title          TEXT NOT NULL DEFAULT '',
		start_at       TEXT NOT NULL,
		end_at         TEXT NOT NULL,
		status         INTEGER NOT NULL DEFAULT 0,
		progress       REAL NOT NULL DEFAULT 0 CHECK(progress >= 0 AND progress <= 1),
		work_type      TEXT NOT NULL DEFAULT '',
		duration_hours REAL NOT NULL DEFAULT 0,
		is_project     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_id, id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_position ON tasks(project_id, position)`,
}
