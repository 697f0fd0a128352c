package services

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"vrp-route-env/internal/domain"
)

type GenerateOptions struct {
	Customers int
	Center    domain.Location
	// Spread is the half-width of the square, in degrees, customers are
	// scattered in around Center.
	Spread float64
	Seed   uint64
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Customers: 10,
		Center:    domain.Location{Lat: -6.2088, Lon: 106.8456},
		Spread:    0.25,
		Seed:      1,
	}
}

// GenerateCustomers builds a synthetic dataset: the depot at Center and
// customers scattered uniformly around it with demand in [10, 100], a window
// opening between 0h and 12h and closing 13h to 24h later (clipped to the
// end of the day) and 5 to 30 minutes of service. The same seed always
// yields the same dataset.
func GenerateCustomers(opts GenerateOptions) (domain.Dataset, error) {
	if opts.Customers < 0 {
		return nil, fmt.Errorf("generate customers: count must not be negative, got %d", opts.Customers)
	}
	if !opts.Center.Finite() || math.IsNaN(opts.Spread) || opts.Spread < 0 {
		return nil, errors.New("generate customers: center and spread must be finite")
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed+1))

	out := make(domain.Dataset, 0, opts.Customers+1)
	out = append(out, domain.NewDepot("depot", opts.Center))

	for i := 1; i <= opts.Customers; i++ {
		start := float64(rng.IntN(13))
		end := math.Min(start+float64(13+rng.IntN(12)), domain.DayHours)

		out = append(out, domain.Customer{
			Index: i,
			Name:  fmt.Sprintf("customer-%d", i),
			Location: domain.Location{
				Lat: opts.Center.Lat + (rng.Float64()*2-1)*opts.Spread,
				Lon: opts.Center.Lon + (rng.Float64()*2-1)*opts.Spread,
			},
			Demand:      float64(10 + rng.IntN(91)),
			WindowStart: start,
			WindowEnd:   end,
			ServiceTime: float64(5+rng.IntN(26)) / 60,
		})
	}

	return out, nil
}
