package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"xcsite/internal/domain/athlete"
)

// rosterBackend is a minimal in-memory athlete API for roster tests.
type rosterBackend struct {
	athletes []athlete.Athlete
	nextID   int
	failAll  bool
}

func (b *rosterBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.failAll {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		switch {
		case r.URL.Path == "/api/athletes" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(b.athletes)
		case r.URL.Path == "/api/athletes" && r.Method == http.MethodPost:
			var p athlete.Payload
			json.NewDecoder(r.Body).Decode(&p)
			b.nextID++
			created := athlete.Athlete{
				ID:        "a" + string(rune('0'+b.nextID)),
				FirstName: p.FirstName,
				LastName:  p.LastName,
				Grade:     p.Grade,
				Team:      p.Team,
				Events:    p.Events,
			}
			b.athletes = append(b.athletes, created)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(created)
		case strings.HasPrefix(r.URL.Path, "/api/athletes/") && r.Method == http.MethodPut:
			id := strings.TrimPrefix(r.URL.Path, "/api/athletes/")
			var p athlete.Payload
			json.NewDecoder(r.Body).Decode(&p)
			for i := range b.athletes {
				if b.athletes[i].ID == id {
					b.athletes[i].FirstName = p.FirstName
					b.athletes[i].LastName = p.LastName
					b.athletes[i].Grade = p.Grade
					b.athletes[i].Team = p.Team
					b.athletes[i].Events = p.Events
					json.NewEncoder(w).Encode(b.athletes[i])
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/api/athletes/") && r.Method == http.MethodDelete:
			id := strings.TrimPrefix(r.URL.Path, "/api/athletes/")
			for i := range b.athletes {
				if b.athletes[i].ID == id {
					b.athletes = append(b.athletes[:i], b.athletes[i+1:]...)
					w.WriteHeader(http.StatusOK)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestRoster(t *testing.T, backend *rosterBackend) *Roster {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	gw := NewGateway(srv.URL, NewMemTokenStore(), nil)
	return NewRoster(gw)
}

func TestRosterLoadReplacesCollection(t *testing.T) {
	backend := &rosterBackend{athletes: []athlete.Athlete{
		{ID: "a1", FirstName: "Jane", LastName: "Doe"},
		{ID: "a2", FirstName: "Maria", LastName: "Lopez"},
	}}
	roster := newTestRoster(t, backend)

	if roster.Loaded() {
		t.Fatal("fresh roster should not report loaded")
	}

	got, err := roster.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a2" {
		t.Fatalf("Load = %+v; want server order a1, a2", got)
	}
	if !roster.Loaded() {
		t.Fatal("roster should report loaded")
	}

	// A reload replaces, not appends: the collection is record-for-record
	// what the first load produced.
	before := roster.Athletes()
	if _, err := roster.Load(context.Background()); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	after := roster.Athletes()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("reload changed the collection:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestRosterLoadFailureLeavesCollection(t *testing.T) {
	backend := &rosterBackend{athletes: []athlete.Athlete{{ID: "a1", FirstName: "Jane", LastName: "Doe"}}}
	roster := newTestRoster(t, backend)

	if _, err := roster.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	backend.failAll = true
	_, err := roster.Load(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("err = %v; want ErrFetchFailed", err)
	}
	if n := len(roster.Athletes()); n != 1 {
		t.Fatalf("collection has %d records after failed reload; want 1", n)
	}
}

func TestRosterCreateAppendsServerRecord(t *testing.T) {
	backend := &rosterBackend{athletes: []athlete.Athlete{{ID: "a1", FirstName: "Jane", LastName: "Doe"}}}
	roster := newTestRoster(t, backend)
	if _, err := roster.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	backend.nextID = 1

	created, err := roster.Create(context.Background(), athlete.Payload{FirstName: "Tom", LastName: "Reed"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created record should carry the server-assigned id")
	}

	got := roster.Athletes()
	if len(got) != 2 {
		t.Fatalf("collection has %d records; want 2", len(got))
	}
	if got[1].ID != created.ID {
		t.Fatalf("new record should be at the tail, got order %v then %v", got[0].ID, got[1].ID)
	}
}

func TestRosterCreateFailureLeavesCollection(t *testing.T) {
	backend := &rosterBackend{}
	roster := newTestRoster(t, backend)
	if _, err := roster.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	backend.failAll = true
	_, err := roster.Create(context.Background(), athlete.Payload{FirstName: "Tom", LastName: "Reed"})
	if !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("err = %v; want ErrCreateFailed", err)
	}
	if n := len(roster.Athletes()); n != 0 {
		t.Fatalf("collection has %d records; want 0", n)
	}
}

func TestRosterUpdateReplacesInPlace(t *testing.T) {
	backend := &rosterBackend{athletes: []athlete.Athlete{
		{ID: "a1", FirstName: "Jane", LastName: "Doe"},
		{ID: "a2", FirstName: "Maria", LastName: "Lopez"},
		{ID: "a3", FirstName: "Tom", LastName: "Reed"},
	}}
	roster := newTestRoster(t, backend)
	if _, err := roster.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	updated, err := roster.Update(context.Background(), "a2", athlete.Payload{FirstName: "Maria", LastName: "Diaz", Grade: 11})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.LastName != "Diaz" {
		t.Fatalf("updated.LastName = %q; want Diaz", updated.LastName)
	}

	got := roster.Athletes()
	if got[0].ID != "a1" || got[1].ID != "a2" || got[2].ID != "a3" {
		t.Fatalf("order changed: %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[1].LastName != "Diaz" {
		t.Fatalf("record not replaced in place: %+v", got[1])
	}
	if got[0].LastName != "Doe" || got[2].LastName != "Reed" {
		t.Fatal("other records must be untouched")
	}
}

func TestRosterUpdateUnknownIDMakesNoCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	roster := NewRoster(NewGateway(srv.URL, NewMemTokenStore(), nil))
	_, err := roster.Update(context.Background(), "ghost", athlete.Payload{FirstName: "X", LastName: "Y"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
	if called {
		t.Fatal("no request should be made for an id not present locally")
	}
}

func TestRosterDeleteRemovesOnlyMatching(t *testing.T) {
	backend := &rosterBackend{athletes: []athlete.Athlete{
		{ID: "a1", FirstName: "Jane", LastName: "Doe"},
		{ID: "a2", FirstName: "Maria", LastName: "Lopez"},
	}}
	roster := newTestRoster(t, backend)
	if _, err := roster.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := roster.Delete(context.Background(), "a1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got := roster.Athletes()
	if len(got) != 1 || got[0].ID != "a2" {
		t.Fatalf("collection = %+v; want only a2", got)
	}
	if _, ok := roster.Get("a1"); ok {
		t.Fatal("deleted record should not be retrievable")
	}
}

func TestRosterDeleteUnknownIDMakesNoCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	roster := NewRoster(NewGateway(srv.URL, NewMemTokenStore(), nil))
	err := roster.Delete(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
	if called {
		t.Fatal("no request should be made for an id not present locally")
	}
}

func TestRosterDeleteFailureLeavesCollection(t *testing.T) {
	backend := &rosterBackend{athletes: []athlete.Athlete{{ID: "a1", FirstName: "Jane", LastName: "Doe"}}}
	roster := newTestRoster(t, backend)
	if _, err := roster.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	backend.failAll = true
	err := roster.Delete(context.Background(), "a1")
	if !errors.Is(err, ErrDeleteFailed) {
		t.Fatalf("err = %v; want ErrDeleteFailed", err)
	}
	if n := len(roster.Athletes()); n != 1 {
		t.Fatalf("collection has %d records after failed delete; want 1", n)
	}
}

func TestRosterSessionExpiredPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := NewMemTokenStore()
	tokens.Set("stale")
	roster := NewRoster(NewGateway(srv.URL, tokens, nil))

	_, err := roster.Load(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v; want ErrSessionExpired", err)
	}
	if tokens.IsPresent() {
		t.Fatal("token should be cleared")
	}
}

func TestRosterAthletesSnapshotIsACopy(t *testing.T) {
	backend := &rosterBackend{athletes: []athlete.Athlete{{ID: "a1", FirstName: "Jane", LastName: "Doe"}}}
	roster := newTestRoster(t, backend)
	if _, err := roster.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snap := roster.Athletes()
	snap[0].FirstName = "Mutated"
	if got, _ := roster.Get("a1"); got.FirstName != "Jane" {
		t.Fatalf("mutating the snapshot leaked into the roster: %+v", got)
	}
}
