package result

import "time"

// Result is one athlete's finish at one meet. Times are stored in whole
// seconds; formatting lives in the racetime package.
type Result struct {
	ID           string    `json:"id"`
	AthleteID    string    `json:"athleteId"`
	MeetID       string    `json:"meetId"`
	Event        string    `json:"event,omitempty"`
	TimeSeconds  int       `json:"timeSeconds"`
	PlaceOverall int       `json:"placeOverall,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// BestByAthlete returns each athlete's fastest time across the given results.
// POST: Returned map has one entry per athlete that has at least one result
func BestByAthlete(results []Result) map[string]int {
	best := make(map[string]int)
	for _, r := range results {
		if r.TimeSeconds <= 0 {
			continue
		}
		if cur, ok := best[r.AthleteID]; !ok || r.TimeSeconds < cur {
			best[r.AthleteID] = r.TimeSeconds
		}
	}
	return best
}
