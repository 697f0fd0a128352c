package ports

import (
	"context"
	"vrp-route-env/internal/domain"
)

// NeutralImpact is the factor that leaves travel time unchanged.
const NeutralImpact = 1.0

// Contract for scaling travel time by external conditions.
//
// Implementations must return a factor >= NeutralImpact and must never fail:
// a broken upstream degrades to NeutralImpact at this boundary.
type ImpactProvider interface {
	// Return the travel-condition factor (traffic) for one edge.
	TravelImpact(ctx context.Context, origin, destination domain.Location) float64
	// Return the local-condition factor (weather) at one location.
	LocalImpact(ctx context.Context, loc domain.Location) float64
}
