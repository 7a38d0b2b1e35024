package meet

import (
	"context"
	"database/sql"
	"time"

	"xcsite/internal/adapters/storage"
	domain "xcsite/internal/domain/meet"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns all meets ordered by date, earliest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Meet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, meet_date, location, season, home_meet, notes, created_at
		 FROM meet ORDER BY meet_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meets := []domain.Meet{}
	for rows.Next() {
		var m domain.Meet
		var location, season, notes sql.NullString
		var homeMeet int
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Name, &m.Date, &location, &season, &homeMeet, &notes, &createdAt); err != nil {
			return nil, err
		}
		m.Location = location.String
		m.Season = season.String
		m.HomeMeet = homeMeet != 0
		m.Notes = notes.String
		m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		meets = append(meets, m)
	}
	return meets, rows.Err()
}

// Save inserts or updates a meet.
// PRE: meet has been validated
// POST: Meet is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, m domain.Meet) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meet (id, name, meet_date, location, season, home_meet, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, meet_date=excluded.meet_date, location=excluded.location,
		   season=excluded.season, home_meet=excluded.home_meet, notes=excluded.notes`,
		m.ID, m.Name, m.Date, nullableString(m.Location), nullableString(m.Season),
		boolToInt(m.HomeMeet), nullableString(m.Notes), m.CreatedAt.UTC().Format(timeLayout))
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
