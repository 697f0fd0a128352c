package geo

import (
	"testing"

	"vrp-route-env/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestHaversineKnownDistance(t *testing.T) {
	// Jakarta depot to the Bogor branch is roughly 43 km as the crow flies.
	depot := domain.Location{Lat: -6.2088, Lon: 106.8456}
	bogor := domain.Location{Lat: -6.5950, Lon: 106.8167}

	d := Haversine(depot, bogor)
	require.InDelta(t, 43.07, d, 0.2)
}

func TestHaversineSymmetryAndIdentity(t *testing.T) {
	points := []domain.Location{
		{Lat: 0, Lon: 0},
		{Lat: -6.1702, Lon: 106.9417},
		{Lat: 51.5, Lon: -0.12},
		{Lat: -33.86, Lon: 151.2},
		{Lat: 89.9, Lon: 179.9},
	}

	for _, a := range points {
		require.Equal(t, 0.0, Haversine(a, a))
		for _, b := range points {
			require.Equal(t, Haversine(a, b), Haversine(b, a), "a=%v b=%v", a, b)
		}
	}
}

func TestHaversineQuarterMeridian(t *testing.T) {
	d := Haversine(domain.Location{Lat: 0, Lon: 0}, domain.Location{Lat: 90, Lon: 0})
	require.InDelta(t, EarthRadiusKm*3.141592653589793/2, d, 1e-6)
}

func TestTravelHours(t *testing.T) {
	require.Equal(t, 2.0, TravelHours(100, 50))
	require.Equal(t, 0.0, TravelHours(0, 50))
	require.Equal(t, 0.0, TravelHours(10, 0))
}
