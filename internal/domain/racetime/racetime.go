// Package racetime parses and formats race times. Supported display formats
// are "16:45" (minutes:seconds) and bare seconds like "58.2"; fractional
// seconds round down when converting to whole seconds.
package racetime

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidTime reports input that is not a recognizable race time.
var ErrInvalidTime = errors.New("invalid race time")

// ParseSeconds converts a time string such as "16:45" or "1:56.2" to seconds.
// A string without a colon is read as plain seconds.
// POST: Returns a non-negative number of seconds, or ErrInvalidTime
func ParseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		sec, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || sec < 0 {
			return 0, ErrInvalidTime
		}
		return sec, nil
	case 2:
		min, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || min < 0 {
			return 0, ErrInvalidTime
		}
		sec, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || sec < 0 || sec >= 60 {
			return 0, ErrInvalidTime
		}
		return min*60 + sec, nil
	default:
		return 0, ErrInvalidTime
	}
}

// Format renders whole seconds as "M:SS" (e.g. 1005 -> "16:45").
// PRE: totalSeconds >= 0
func Format(totalSeconds int) string {
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// SortFastest orders seconds ascending, fastest first. The input is not
// modified.
func SortFastest(seconds []int) []int {
	out := make([]int, len(seconds))
	copy(out, seconds)
	sort.Ints(out)
	return out
}

// Ranked pairs an identifier with a time and its computed rank.
type Ranked struct {
	ID          string
	TimeSeconds int
	Rank        int
}

// Rank orders entries fastest-first and assigns 1-based ranks. Ties get the
// same order they arrived in.
func Rank(times map[string]int) []Ranked {
	out := make([]Ranked, 0, len(times))
	for id, t := range times {
		out = append(out, Ranked{ID: id, TimeSeconds: t})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TimeSeconds != out[j].TimeSeconds {
			return out[i].TimeSeconds < out[j].TimeSeconds
		}
		return out[i].ID < out[j].ID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// GradeSuffix renders a grade with its ordinal suffix ("9th", "11th", "12th").
func GradeSuffix(grade int) string {
	if grade >= 11 && grade <= 13 {
		return fmt.Sprintf("%dth", grade)
	}
	switch grade % 10 {
	case 1:
		return fmt.Sprintf("%dst", grade)
	case 2:
		return fmt.Sprintf("%dnd", grade)
	case 3:
		return fmt.Sprintf("%drd", grade)
	default:
		return fmt.Sprintf("%dth", grade)
	}
}
