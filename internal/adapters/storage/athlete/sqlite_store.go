package athlete

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"xcsite/internal/adapters/storage"
	domain "xcsite/internal/domain/athlete"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Events are stored as a comma-joined string; event names never contain
// commas (the form splits on them).
const eventsSeparator = ","

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const athleteColumns = `id, first_name, last_name, grade, team, events, created_at, updated_at`

// GetByID retrieves an athlete by ID.
// PRE: id is non-empty
// POST: Returns the record or sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Athlete, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+athleteColumns+` FROM athlete WHERE id = ?`, id)
	return scanAthlete(row)
}

// List returns all athletes in creation order.
// POST: Returns records ordered by created_at, oldest first
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Athlete, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+athleteColumns+` FROM athlete ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	athletes := []domain.Athlete{}
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, err
		}
		athletes = append(athletes, a)
	}
	return athletes, rows.Err()
}

// Save inserts or updates an athlete.
// PRE: record has been validated
// POST: Record is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, a domain.Athlete) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO athlete (id, first_name, last_name, grade, team, events, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   first_name=excluded.first_name, last_name=excluded.last_name, grade=excluded.grade,
		   team=excluded.team, events=excluded.events, updated_at=excluded.updated_at`,
		a.ID, a.FirstName, a.LastName, nullableInt(a.Grade), nullableString(a.Team),
		nullableString(strings.Join(a.Events, eventsSeparator)),
		a.CreatedAt.UTC().Format(timeLayout), a.UpdatedAt.UTC().Format(timeLayout))
	return err
}

// Delete removes an athlete by ID.
// PRE: id is non-empty
// POST: Record with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM athlete WHERE id = ?`, id)
	return err
}

// rowScanner matches *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAthlete(row rowScanner) (domain.Athlete, error) {
	var a domain.Athlete
	var grade sql.NullInt64
	var team, events sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &grade, &team, &events, &createdAt, &updatedAt); err != nil {
		return domain.Athlete{}, err
	}
	if grade.Valid {
		a.Grade = int(grade.Int64)
	}
	a.Team = team.String
	if events.Valid && events.String != "" {
		a.Events = strings.Split(events.String, eventsSeparator)
	}
	a.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	a.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return a, nil
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
