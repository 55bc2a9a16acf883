package repository

import (
	"context"

	"parishfinder/internal/domain/entity"
)

// Geocoder resolves a free-text location query to its single best-match
// coordinate. A nil result with a nil error means the query resolved to
// nothing; callers cache that as a negative result.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*entity.GeocodingResult, error)
}
