package result

import (
	"context"
	"database/sql"
	"time"

	"xcsite/internal/adapters/storage"
	domain "xcsite/internal/domain/result"
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

// List returns all results, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, athlete_id, meet_id, event, time_seconds, place_overall, created_at
		 FROM result ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Result{}
	for rows.Next() {
		var r domain.Result
		var event sql.NullString
		var place sql.NullInt64
		var createdAt string
		if err := rows.Scan(&r.ID, &r.AthleteID, &r.MeetID, &event, &r.TimeSeconds, &place, &createdAt); err != nil {
			return nil, err
		}
		r.Event = event.String
		r.PlaceOverall = int(place.Int64)
		r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Save inserts or updates a result.
// POST: Result is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, r domain.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO result (id, athlete_id, meet_id, event, time_seconds, place_overall, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   athlete_id=excluded.athlete_id, meet_id=excluded.meet_id, event=excluded.event,
		   time_seconds=excluded.time_seconds, place_overall=excluded.place_overall`,
		r.ID, r.AthleteID, r.MeetID, nullableString(r.Event), r.TimeSeconds,
		nullableInt(r.PlaceOverall), r.CreatedAt.UTC().Format(timeLayout))
	return err
}

// DeleteByAthlete removes all results for an athlete. Used when the athlete
// record itself is deleted.
// PRE: athleteID is non-empty
func (s *SQLiteStore) DeleteByAthlete(ctx context.Context, athleteID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM result WHERE athlete_id = ?`, athleteID)
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
