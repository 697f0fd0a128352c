package services

import (
	"context"
	"errors"
	"fmt"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/env"
	"vrp-route-env/internal/ports"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

type BatchRequest struct {
	Customers    domain.Dataset
	VehicleCount int
	Capacity     float64
	Config       env.Config
	Episodes     int
	Workers      int
	// NewPolicy builds the policy of one episode. Nil means NearestFeasible.
	NewPolicy func(episode int) Policy
}

// BatchStats aggregates the results of many independent rollouts.
type BatchStats struct {
	Episodes       int
	MeanReturn     float64
	StdReturn      float64
	MinReturn      float64
	MaxReturn      float64
	MeanDistance   float64
	MeanHours      float64
	MeanSteps      float64
	MeanLateStops  float64
	CompletionRate float64
}

// EvaluateBatch runs Episodes rollouts over the same dataset, one environment
// per worker, and summarizes them.
func EvaluateBatch(ctx context.Context, req BatchRequest, provider ports.ImpactProvider) (BatchStats, error) {
	if req.Episodes < 1 {
		return BatchStats{}, errors.New("evaluate batch: episodes must be at least 1")
	}
	workers := req.Workers
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, req.Episodes)

	newPolicy := req.NewPolicy
	if newPolicy == nil {
		newPolicy = func(int) Policy { return NearestFeasible{} }
	}

	results := make([]EpisodeResult, req.Episodes)
	jobs := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < req.Episodes; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			e, err := env.New(req.Config, provider)
			if err != nil {
				return err
			}
			for i := range jobs {
				res, err := RunEpisode(ctx, e, newPolicy(i), EpisodeRequest{
					Customers:    req.Customers,
					VehicleCount: req.VehicleCount,
					Capacity:     req.Capacity,
					VehicleID:    1,
				})
				if err != nil {
					return fmt.Errorf("episode %d: %w", i, err)
				}
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchStats{}, fmt.Errorf("evaluate batch: %w", err)
	}

	return Summarize(results), nil
}

// Summarize computes batch statistics over finished rollouts.
func Summarize(results []EpisodeResult) BatchStats {
	n := len(results)
	if n == 0 {
		return BatchStats{}
	}

	returns := make([]float64, n)
	distances := make([]float64, n)
	hours := make([]float64, n)
	steps := make([]float64, n)
	late := make([]float64, n)
	completed := make([]float64, n)

	for i, r := range results {
		returns[i] = r.Return
		distances[i] = r.Plan.TotalDistance
		hours[i] = r.Plan.TotalHours
		steps[i] = float64(r.Steps)
		late[i] = float64(r.Plan.LateStops())
		if r.Plan.Completed {
			completed[i] = 1
		}
	}

	out := BatchStats{Episodes: n}
	out.MeanReturn, out.StdReturn = stat.MeanStdDev(returns, nil)
	if n == 1 {
		out.StdReturn = 0
	}
	out.MinReturn, out.MaxReturn = returns[0], returns[0]
	for _, r := range returns[1:] {
		out.MinReturn = min(out.MinReturn, r)
		out.MaxReturn = max(out.MaxReturn, r)
	}
	out.MeanDistance = stat.Mean(distances, nil)
	out.MeanHours = stat.Mean(hours, nil)
	out.MeanSteps = stat.Mean(steps, nil)
	out.MeanLateStops = stat.Mean(late, nil)
	out.CompletionRate = stat.Mean(completed, nil)

	return out
}
