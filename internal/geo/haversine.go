// Package geo holds the great-circle helpers used to move vehicles between
// customers. Inputs are not range-checked.
package geo

import (
	"math"

	"vrp-route-env/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle surface distance between a and b in
// kilometres. Identical points yield exactly 0.
func Haversine(a, b domain.Location) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h a hair above 1 for antipodal points.
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// TravelHours converts a distance to nominal driving hours at speedKmh.
func TravelHours(distanceKm, speedKmh float64) float64 {
	if distanceKm <= 0 || speedKmh <= 0 {
		return 0
	}
	return distanceKm / speedKmh
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
