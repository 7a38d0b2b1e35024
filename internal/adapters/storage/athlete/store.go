package athlete

import (
	"context"

	domain "xcsite/internal/domain/athlete"
)

// Store persists Athlete records for the backend API.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Athlete, error)
	List(ctx context.Context) ([]domain.Athlete, error)
	Save(ctx context.Context, a domain.Athlete) error
	Delete(ctx context.Context, id string) error
}
