package apiserver

import (
	"context"
	"time"

	"github.com/google/uuid"

	athleteDomain "xcsite/internal/domain/athlete"
	meetDomain "xcsite/internal/domain/meet"
	resultDomain "xcsite/internal/domain/result"
)

// SeedDemoData loads a small season of sample athletes, meets, and results
// for local development. Idempotent in effect: it does nothing when athletes
// already exist.
// POST: Stores hold a renderable data set, or are untouched if non-empty
func SeedDemoData(ctx context.Context, stores *Stores) error {
	existing, err := stores.AthleteStore.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	year := now.Year()

	athletes := []athleteDomain.Athlete{
		{FirstName: "Jane", LastName: "Doe", Grade: 10, Team: "Varsity", Events: []string{"5K", "3200m"}},
		{FirstName: "Marcus", LastName: "Webb", Grade: 12, Team: "Varsity", Events: []string{"5K"}},
		{FirstName: "Priya", LastName: "Natarajan", Grade: 9, Team: "JV", Events: []string{"5K", "1600m"}},
		{FirstName: "Tom", LastName: "Reyes", Grade: 11, Events: []string{"5K"}},
	}
	for i := range athletes {
		athletes[i].ID = uuid.New().String()
		athletes[i].CreatedAt = now.Add(time.Duration(i) * time.Second)
		athletes[i].UpdatedAt = athletes[i].CreatedAt
		if err := stores.AthleteStore.Save(ctx, athletes[i]); err != nil {
			return err
		}
	}

	meets := []meetDomain.Meet{
		{
			Name: "Season Opener Invitational", Date: date(year, 9, 5), Location: "Riverside Park",
			Season: meetDomain.SeasonXC, HomeMeet: true,
			Notes: "Course starts on the **soccer fields** and finishes at the track. Parking at gate B.",
		},
		{
			Name: "County Championships", Date: date(year, 10, 17), Location: "Fairgrounds Course",
			Season: meetDomain.SeasonXC,
		},
		{
			Name: "Regional Qualifier", Date: date(year, 11, 2), Location: "State Park Trail",
			Season: meetDomain.SeasonXC,
		},
	}
	for i := range meets {
		meets[i].ID = uuid.New().String()
		meets[i].CreatedAt = now
		if err := stores.MeetStore.Save(ctx, meets[i]); err != nil {
			return err
		}
	}

	times := []int{1005, 962, 1123, 1048}
	for i, a := range athletes {
		r := resultDomain.Result{
			ID:           uuid.New().String(),
			AthleteID:    a.ID,
			MeetID:       meets[0].ID,
			Event:        "5K",
			TimeSeconds:  times[i],
			PlaceOverall: i + 3,
			CreatedAt:    now,
		}
		if err := stores.ResultStore.Save(ctx, r); err != nil {
			return err
		}
	}

	return nil
}

func date(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(meetDomain.DateLayout)
}
