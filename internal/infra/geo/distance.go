// Package geo provides great-circle distance and coordinate validation.
package geo

import (
	"math"

	domainerrors "parishfinder/internal/domain/errors"
)

// EarthRadiusMiles is the haversine Earth radius. The database-backed
// parish source pushes the same formula with the same constant into SQL;
// the two paths must produce identical distances.
const EarthRadiusMiles = 3959

// Distance returns the haversine great-circle distance in miles between
// two coordinates in decimal degrees.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// ValidateCoordinates checks that a coordinate pair is finite and within
// [-90,90] / [-180,180]. Applied at every entry point that accepts a
// coordinate: query params, geocoding results, device locations.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return domainerrors.ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 {
		return domainerrors.ErrLatitudeRange
	}
	if lng < -180 || lng > 180 {
		return domainerrors.ErrLongitudeRange
	}

	return nil
}
