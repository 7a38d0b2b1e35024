package meet

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"xcsite/internal/adapters/storage"
	domain "xcsite/internal/domain/meet"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return db
}

func TestSaveAndListOrderedByDate(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	meets := []domain.Meet{
		{ID: "m1", Name: "Late Meet", Date: "2026-10-03", CreatedAt: now},
		{ID: "m2", Name: "Early Meet", Date: "2026-09-12", Location: "City Park", Season: domain.SeasonXC, HomeMeet: true, Notes: "**Bring spikes**", CreatedAt: now},
	}
	for _, m := range meets {
		if err := store.Save(ctx, m); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d; want 2", len(list))
	}
	if list[0].ID != "m2" || list[1].ID != "m1" {
		t.Fatalf("order = %v %v; want date order m2 m1", list[0].ID, list[1].ID)
	}
	got := list[0]
	if got.Location != "City Park" || got.Season != domain.SeasonXC || !got.HomeMeet || got.Notes != "**Bring spikes**" {
		t.Fatalf("got %+v", got)
	}
}

func TestSaveUpsertsOnConflict(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	m := domain.Meet{ID: "m1", Name: "County Invite", Date: "2026-09-12", CreatedAt: now}
	if err := store.Save(ctx, m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	m.Location = "Fairgrounds"
	if err := store.Save(ctx, m); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("upsert created a second row: %d", len(list))
	}
	if list[0].Location != "Fairgrounds" {
		t.Fatalf("Location = %q; want Fairgrounds", list[0].Location)
	}
}
