package meet

import (
	"errors"
	"strings"
	"time"
)

// Season values.
const (
	SeasonXC    = "xc"
	SeasonTrack = "track"
)

// DateLayout is the wire format for meet dates.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrEmptyName   = errors.New("meet name cannot be empty")
	ErrInvalidDate = errors.New("meet date must be YYYY-MM-DD")
)

// Meet is a scheduled race on the season calendar. Notes hold markdown shown
// on the schedule page.
type Meet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Location  string    `json:"location,omitempty"`
	Season    string    `json:"season,omitempty"`
	HomeMeet  bool      `json:"homeMeet,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Validate checks the meet has a name and a well-formed date.
// POST: Returns nil if valid, error otherwise
func (m Meet) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// IsUpcoming reports whether the meet date is today or later.
// INVARIANT: Meet fields are not mutated
func (m Meet) IsUpcoming(now time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, m.Date, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.Before(today)
}

// SeasonName returns the display name for a season value.
func SeasonName(season string) string {
	if season == SeasonTrack {
		return "Track & Field"
	}
	return "Cross Country"
}
