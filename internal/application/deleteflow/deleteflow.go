// Package deleteflow models the two-step destructive-action guard for
// roster deletions as an explicit state machine, so "at most one pending
// deletion at a time" is structural rather than a convention across flags.
package deleteflow

import (
	"errors"
	"sync"
)

// State of the confirmation flow.
type State string

// Flow states. idle -> pending (confirmation shown) -> deleting (call in
// flight) -> idle. Cancel returns pending -> idle.
const (
	StateIdle     State = "idle"
	StatePending  State = "pending"
	StateDeleting State = "deleting"
)

// Transition errors
var (
	ErrDeleteInFlight = errors.New("a delete is already in flight")
	ErrNothingPending = errors.New("no deletion is pending")
)

// Flow tracks the single pending-deletion marker.
type Flow struct {
	mu     sync.Mutex
	state  State
	target string
}

// New creates a flow in the idle state.
func New() *Flow {
	return &Flow{state: StateIdle}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Target returns the id marked for deletion, or "" when idle.
func (f *Flow) Target() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target
}

// Begin marks the given id for deletion. Beginning while another target is
// pending replaces the marker; beginning while a delete is in flight is
// rejected.
// PRE: id is non-empty
// POST: State is pending with the given target
func (f *Flow) Begin(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateDeleting {
		return ErrDeleteInFlight
	}
	f.state = StatePending
	f.target = id
	return nil
}

// Cancel clears the pending marker.
// POST: State is idle, target is cleared
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePending {
		return ErrNothingPending
	}
	f.state = StateIdle
	f.target = ""
	return nil
}

// Start moves the pending target into the deleting state and returns it.
// POST: State is deleting; controls for the target stay disabled until Finish
func (f *Flow) Start() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePending {
		return "", ErrNothingPending
	}
	f.state = StateDeleting
	return f.target, nil
}

// Finish returns to idle after the delete call completes, on success or
// failure alike.
// POST: State is idle, target is cleared
func (f *Flow) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateIdle
	f.target = ""
}
