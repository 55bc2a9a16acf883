package entity

// GeocodingResult is the single best-match coordinate for a free-text
// location query. Derived data; lives only as long as the cache TTL.
type GeocodingResult struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName"`
}
