package athlete

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Grade bounds for school athletes.
const (
	MinGrade = 1
	MaxGrade = 12
)

// Domain errors
var (
	ErrEmptyFirstName = errors.New("first name cannot be empty")
	ErrEmptyLastName  = errors.New("last name cannot be empty")
	ErrInvalidGrade   = errors.New("grade must be between 1 and 12")
	ErrInvalidEvent   = errors.New("event names cannot contain commas")
)

// Athlete is one roster record as the backend stores it. ID and the
// timestamps are server-assigned; ID never changes after creation.
type Athlete struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Grade     int       `json:"grade,omitempty"`
	Team      string    `json:"team,omitempty"`
	Events    []string  `json:"events,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Payload carries the client-editable fields for create and update calls.
// Optional fields use the zero value to mean "omitted" and are dropped from
// the JSON body entirely.
type Payload struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Grade     int      `json:"grade,omitempty"`
	Team      string   `json:"team,omitempty"`
	Events    []string `json:"events,omitempty"`
}

// FullName returns "First Last".
// INVARIANT: Athlete fields are not mutated
func (a Athlete) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Validate checks the record against roster invariants.
// PRE: Athlete struct is populated
// POST: Returns nil if valid, error otherwise
func (a Athlete) Validate() error {
	return Payload{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Grade:     a.Grade,
		Events:    a.Events,
	}.Validate()
}

// Validate checks the payload against roster invariants.
// POST: Returns nil if valid, error otherwise
func (p Payload) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(p.LastName) == "" {
		return ErrEmptyLastName
	}
	if p.Grade != 0 && (p.Grade < MinGrade || p.Grade > MaxGrade) {
		return ErrInvalidGrade
	}
	// Events are stored comma-joined, so a comma inside a name would split
	// into two events on the next read.
	for _, ev := range p.Events {
		if strings.Contains(ev, ",") {
			return ErrInvalidEvent
		}
	}
	return nil
}

// ParseForm normalizes raw form input into a Payload:
//   - first/last name are trimmed (required-ness is validated separately)
//   - grade is parsed as an integer; non-numeric input is silently omitted
//   - team is omitted when blank after trimming
//   - events is comma-split into trimmed, non-empty tokens; omitted when the
//     resulting list is empty
func ParseForm(firstName, lastName, grade, team, events string) Payload {
	p := Payload{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}

	if g := strings.TrimSpace(grade); g != "" {
		if n, err := strconv.Atoi(g); err == nil {
			p.Grade = n
		}
	}

	if t := strings.TrimSpace(team); t != "" {
		p.Team = t
	}

	for _, ev := range strings.Split(events, ",") {
		if ev = strings.TrimSpace(ev); ev != "" {
			p.Events = append(p.Events, ev)
		}
	}

	return p
}
