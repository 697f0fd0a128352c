package ports

import (
	"context"
	"vrp-route-env/internal/domain"
)

// Fallible upstream reporting the weather condition at a location.
// The condition is the raw upstream label (e.g. "Rain"); mapping it to a
// factor is not the source's concern.
type WeatherSource interface {
	CurrentCondition(ctx context.Context, loc domain.Location) (string, error)
}

// Traffic observation for one edge.
type TrafficObservation struct {
	DurationSeconds          int
	DurationInTrafficSeconds int
	DistanceMeters           int
}

// Fallible upstream reporting live traffic for one edge.
type TrafficSource interface {
	Observe(ctx context.Context, origin, destination domain.Location) (TrafficObservation, error)
}
