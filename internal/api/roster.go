package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"xcsite/internal/domain/athlete"
)

// Roster is the athlete roster controller. It owns the in-memory collection
// the admin dashboard renders from. The collection is reconciled strictly
// from authoritative server responses: a mutating call changes it only after
// the backend reports success, and only with the record the backend returned.
// No optimistic updates.
type Roster struct {
	mu       sync.Mutex
	gateway  *Gateway
	athletes []athlete.Athlete
	loaded   bool
}

// NewRoster creates an empty roster over the given gateway.
func NewRoster(gateway *Gateway) *Roster {
	return &Roster{gateway: gateway}
}

// Athletes returns a snapshot of the collection in its current order.
// POST: Mutating the returned slice does not affect the roster
func (r *Roster) Athletes() []athlete.Athlete {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]athlete.Athlete, len(r.athletes))
	copy(out, r.athletes)
	return out
}

// Loaded reports whether Load has succeeded at least once.
func (r *Roster) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Load fetches the full collection and replaces the in-memory copy with the
// server's ordering.
// POST: On success the collection matches the server response; on failure the
// previous collection is untouched
func (r *Roster) Load(ctx context.Context) ([]athlete.Athlete, error) {
	resp, err := r.gateway.Do(ctx, http.MethodGet, "/api/athletes", nil, nil)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
		return nil, ErrFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrFetchFailed
	}

	var athletes []athlete.Athlete
	if err := json.NewDecoder(resp.Body).Decode(&athletes); err != nil {
		return nil, ErrFetchFailed
	}

	r.mu.Lock()
	r.athletes = athletes
	r.loaded = true
	r.mu.Unlock()
	return r.Athletes(), nil
}

// Create posts a new record. The payload carries no id or timestamps; the
// backend assigns both.
// POST: On success the returned record is appended at the tail of the
// collection; on failure the collection is untouched
func (r *Roster) Create(ctx context.Context, payload athlete.Payload) (athlete.Athlete, error) {
	created, err := r.send(ctx, http.MethodPost, "/api/athletes", payload, ErrCreateFailed)
	if err != nil {
		return athlete.Athlete{}, err
	}

	r.mu.Lock()
	r.athletes = append(r.athletes, created)
	r.mu.Unlock()
	slog.Info("roster_event", "event", "athlete_created", "id", created.ID)
	return created, nil
}

// Update replaces the record with the given id. An id not present locally is
// rejected before any call is made.
// POST: On success only the matching record changes, in place; order and all
// other records are untouched
func (r *Roster) Update(ctx context.Context, id string, payload athlete.Payload) (athlete.Athlete, error) {
	if r.indexOf(id) < 0 {
		return athlete.Athlete{}, ErrNotFound
	}

	updated, err := r.send(ctx, http.MethodPut, "/api/athletes/"+id, payload, ErrUpdateFailed)
	if err != nil {
		return athlete.Athlete{}, err
	}

	r.mu.Lock()
	for i := range r.athletes {
		if r.athletes[i].ID == id {
			r.athletes[i] = updated
			break
		}
	}
	r.mu.Unlock()
	slog.Info("roster_event", "event", "athlete_updated", "id", id)
	return updated, nil
}

// Delete removes the record with the given id. An id not present locally is
// rejected before any call is made and the collection stays unchanged.
// POST: On success exactly the matching record is removed
func (r *Roster) Delete(ctx context.Context, id string) error {
	if r.indexOf(id) < 0 {
		return ErrNotFound
	}

	resp, err := r.gateway.Do(ctx, http.MethodDelete, "/api/athletes/"+id, nil, nil)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return err
		}
		return ErrDeleteFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrDeleteFailed
	}

	r.mu.Lock()
	kept := r.athletes[:0]
	for _, a := range r.athletes {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	r.athletes = kept
	r.mu.Unlock()
	slog.Info("roster_event", "event", "athlete_deleted", "id", id)
	return nil
}

// Get returns the local record with the given id.
func (r *Roster) Get(id string) (athlete.Athlete, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.athletes {
		if a.ID == id {
			return a, true
		}
	}
	return athlete.Athlete{}, false
}

func (r *Roster) indexOf(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.athletes {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// send performs a mutating call and decodes the authoritative record from the
// response. failErr is returned for any non-2xx status.
func (r *Roster) send(ctx context.Context, method, path string, payload athlete.Payload, failErr error) (athlete.Athlete, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return athlete.Athlete{}, failErr
	}

	resp, err := r.gateway.Do(ctx, method, path, body, nil)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return athlete.Athlete{}, err
		}
		return athlete.Athlete{}, failErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return athlete.Athlete{}, failErr
	}

	var record athlete.Athlete
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return athlete.Athlete{}, failErr
	}
	return record, nil
}
