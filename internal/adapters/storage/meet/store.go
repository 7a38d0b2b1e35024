package meet

import (
	"context"

	domain "xcsite/internal/domain/meet"
)

// Store persists Meet records for the backend API.
type Store interface {
	List(ctx context.Context) ([]domain.Meet, error)
	Save(ctx context.Context, m domain.Meet) error
}
