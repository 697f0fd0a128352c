package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/env"
	"vrp-route-env/internal/geo"
	"vrp-route-env/internal/ports"

	"golang.org/x/sync/errgroup"
)

const defaultFleetConcurrency = 5

// PartitionByDistance assigns customers to vehicles using a simple heuristic.
//
// Customers are sorted by depot distance and chunked across vehicles to
// produce a deterministic, reasonably balanced distribution without solving
// a full VRP. Each vehicle ends up with a contiguous distance band.
func PartitionByDistance(depot domain.Customer, customers []domain.Customer, vehicles []*domain.Vehicle) error {
	if len(vehicles) == 0 {
		return errors.New("partition customers: vehicle list must not be empty")
	}

	sorted := slices.Clone(customers)
	dist := make(map[int]float64, len(sorted))
	for _, c := range sorted {
		dist[c.Index] = geo.Haversine(depot.Location, c.Location)
	}

	slices.SortFunc(sorted, func(a, b domain.Customer) int {
		da, db := dist[a.Index], dist[b.Index]
		if da < db {
			return -1
		}
		if da > db {
			return 1
		}
		return a.Index - b.Index
	})

	nVehicles := len(vehicles)
	nCustomers := len(sorted)

	// Ceiling division: distribute customers as evenly as possible.
	chunkSize := (nCustomers + nVehicles - 1) / nVehicles

	for vi := 0; vi < nVehicles; vi++ {
		start := vi * chunkSize
		if start >= nCustomers {
			break
		}
		end := min(start+chunkSize, nCustomers)

		// Over capacity fails fast rather than rebalancing.
		if err := vehicles[vi].LoadMultiple(sorted[start:end]); err != nil {
			return fmt.Errorf("partition customers: vehicle %d: %w", vehicles[vi].VehicleID, err)
		}
	}

	return nil
}

type FleetRequest struct {
	VehicleCount int
	Capacity     float64
	Config       env.Config
	// NewPolicy builds the policy of one vehicle. Nil means NearestFeasible.
	NewPolicy func(vehicleID int) Policy
	// Concurrency bounds the number of vehicles simulated at once.
	Concurrency int
}

// PlanFleet loads the customer table from repo and runs the fleet over it.
func PlanFleet(
	ctx context.Context,
	req FleetRequest,
	repo ports.CustomerRepository,
	provider ports.ImpactProvider,
) ([]domain.RoutePlan, error) {
	customers, err := repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan fleet: list customers: %w", err)
	}

	plans, err := RunFleet(ctx, req, customers, provider)
	if err != nil {
		return nil, fmt.Errorf("plan fleet: %w", err)
	}
	return plans, nil
}

// RunFleet partitions the dataset across VehicleCount vehicles and rolls out
// one environment per vehicle in parallel. Plans are returned in vehicle
// order and report customer indices of the original dataset.
func RunFleet(
	ctx context.Context,
	req FleetRequest,
	customers domain.Dataset,
	provider ports.ImpactProvider,
) ([]domain.RoutePlan, error) {
	if err := customers.Validate(); err != nil {
		return nil, fmt.Errorf("run fleet: %w: %w", env.ErrConfiguration, err)
	}
	if req.VehicleCount < 1 {
		return nil, fmt.Errorf("run fleet: %w: vehicle count must be at least 1", env.ErrConfiguration)
	}

	vehicles := make([]*domain.Vehicle, 0, req.VehicleCount)
	for i := 0; i < req.VehicleCount; i++ {
		vehicles = append(vehicles, domain.NewVehicle(i+1, req.Capacity))
	}

	depot := customers.Depot()
	if err := PartitionByDistance(depot, customers.Customers(), vehicles); err != nil {
		return nil, fmt.Errorf("run fleet: %w", err)
	}

	newPolicy := req.NewPolicy
	if newPolicy == nil {
		newPolicy = func(int) Policy { return NearestFeasible{} }
	}
	limit := req.Concurrency
	if limit <= 0 {
		limit = defaultFleetConcurrency
	}

	plans := make([]domain.RoutePlan, len(vehicles))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, v := range vehicles {
		g.Go(func() error {
			e, err := env.New(req.Config, provider)
			if err != nil {
				return err
			}

			res, err := RunEpisode(ctx, e, newPolicy(v.VehicleID), EpisodeRequest{
				Customers:    domain.Reindex(depot, v.Customers),
				VehicleCount: req.VehicleCount,
				Capacity:     v.Capacity,
				VehicleID:    v.VehicleID,
			})
			if err != nil {
				return err
			}

			// Map local indices back onto the shared dataset.
			for s := range res.Plan.Stops {
				local := res.Plan.Stops[s].CustomerIndex
				res.Plan.Stops[s].CustomerIndex = v.Customers[local-1].Index
			}
			plans[i] = res.Plan
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run fleet: %w", err)
	}
	return plans, nil
}
