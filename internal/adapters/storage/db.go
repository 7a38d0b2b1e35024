package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the subset of *sql.DB the stores use. Wrapping it in an interface
// keeps the stores testable against any conforming handle.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InitDB initializes the backend database schema.
// PRE: db is a valid database connection
// POST: All tables exist, WAL mode and foreign keys are enabled
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS athlete (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		grade INTEGER,
		team TEXT,
		events TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meet (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		meet_date TEXT NOT NULL,
		location TEXT,
		season TEXT,
		home_meet INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS result (
		id TEXT PRIMARY KEY,
		athlete_id TEXT NOT NULL,
		meet_id TEXT NOT NULL,
		event TEXT,
		time_seconds INTEGER NOT NULL,
		place_overall INTEGER,
		created_at TEXT NOT NULL,
		FOREIGN KEY (athlete_id) REFERENCES athlete(id),
		FOREIGN KEY (meet_id) REFERENCES meet(id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
