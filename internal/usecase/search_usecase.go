package usecase

import (
	"context"

	"parishfinder/internal/domain/entity"
)

// SearchInput represents one parish search request. Either Query or the
// Lat/Lng pair must be set; coordinates take precedence and skip
// geocoding entirely.
type SearchInput struct {
	// Query is the free-text location: a zip code, city name or address.
	Query string `json:"query"`

	// Lat/Lng select the coordinate path.
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`

	// RadiusMiles overrides the configured search radius when positive.
	RadiusMiles float64 `json:"radiusMiles,omitempty"`

	// Day filters schedule entries to an exact weekday name. Empty or
	// "all" disables the filter.
	Day string `json:"day"`

	// Service filters schedule entries by service type substring. Empty
	// or "all" disables the filter.
	Service string `json:"service"`

	// Sort selects the result order: "distance", "name" or "nextMass".
	Sort string `json:"sort"`
}

// SearchOutput carries the resolved location and the matching parishes.
type SearchOutput struct {
	Location *entity.GeocodingResult `json:"location"`
	Parishes []*entity.Parish        `json:"parishes"`
}

// SearchUsecase defines the interface for the parish search pipeline
type SearchUsecase interface {
	// Search resolves the query to coordinates, loads nearby parishes
	// from the configured source, then filters and sorts them.
	Search(ctx context.Context, input *SearchInput) (*SearchOutput, error)
}
