package result

import (
	"context"

	domain "xcsite/internal/domain/result"
)

// Store persists race results for the backend API.
type Store interface {
	List(ctx context.Context) ([]domain.Result, error)
	Save(ctx context.Context, r domain.Result) error
	DeleteByAthlete(ctx context.Context, athleteID string) error
}
