package services

import (
	"context"
	"math"
	"testing"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/env"

	"github.com/stretchr/testify/require"
)

func TestEvaluateBatch_Deterministic(t *testing.T) {
	ctx := context.Background()
	req := BatchRequest{
		Customers:    seedCustomers(),
		VehicleCount: 1,
		Capacity:     5000,
		Config:       env.DefaultConfig(),
		Episodes:     8,
		Workers:      3,
	}

	stats, err := EvaluateBatch(ctx, req, nil)
	require.NoError(t, err)

	e, err := env.New(env.DefaultConfig(), nil)
	require.NoError(t, err)
	single, err := RunEpisode(ctx, e, NearestFeasible{}, EpisodeRequest{
		Customers:    req.Customers,
		VehicleCount: 1,
		Capacity:     5000,
		VehicleID:    1,
	})
	require.NoError(t, err)

	require.Equal(t, 8, stats.Episodes)
	require.InDelta(t, single.Return, stats.MeanReturn, 1e-9)
	require.InDelta(t, 0, stats.StdReturn, 1e-9)
	require.InDelta(t, single.Plan.TotalDistance, stats.MeanDistance, 1e-9)
	require.Equal(t, 1.0, stats.CompletionRate)
	require.Equal(t, 4.0, stats.MeanSteps)
}

func TestEvaluateBatch_SeededRandom(t *testing.T) {
	req := BatchRequest{
		Customers:    seedCustomers(),
		VehicleCount: 1,
		Capacity:     3000,
		Config:       env.DefaultConfig(),
		Episodes:     12,
		Workers:      4,
		NewPolicy:    func(i int) Policy { return NewRandomFeasible(uint64(i)) },
	}

	a, err := EvaluateBatch(context.Background(), req, nil)
	require.NoError(t, err)
	b, err := EvaluateBatch(context.Background(), req, nil)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.LessOrEqual(t, a.MinReturn, a.MeanReturn)
	require.GreaterOrEqual(t, a.MaxReturn, a.MeanReturn)
	require.Less(t, a.CompletionRate, 1.0)
}

func TestEvaluateBatch_Errors(t *testing.T) {
	_, err := EvaluateBatch(context.Background(), BatchRequest{Episodes: 0}, nil)
	require.Error(t, err)

	_, err = EvaluateBatch(context.Background(), BatchRequest{
		Customers:    nil,
		VehicleCount: 1,
		Capacity:     10,
		Config:       env.DefaultConfig(),
		Episodes:     3,
		Workers:      2,
	}, nil)
	require.ErrorIs(t, err, env.ErrConfiguration)
}

func TestSummarize(t *testing.T) {
	results := []EpisodeResult{
		{Return: 1, Steps: 2, Plan: domain.RoutePlan{TotalDistance: 10, TotalHours: 1, Completed: true}},
		{Return: 3, Steps: 4, Plan: domain.RoutePlan{
			TotalDistance: 20,
			TotalHours:    3,
			Stops:         []domain.RouteStop{{Late: true}, {}},
		}},
	}

	s := Summarize(results)
	require.Equal(t, 2, s.Episodes)
	require.InDelta(t, 2, s.MeanReturn, 1e-12)
	require.InDelta(t, math.Sqrt2, s.StdReturn, 1e-12)
	require.Equal(t, 1.0, s.MinReturn)
	require.Equal(t, 3.0, s.MaxReturn)
	require.InDelta(t, 15, s.MeanDistance, 1e-12)
	require.InDelta(t, 2, s.MeanHours, 1e-12)
	require.InDelta(t, 3, s.MeanSteps, 1e-12)
	require.InDelta(t, 0.5, s.MeanLateStops, 1e-12)
	require.InDelta(t, 0.5, s.CompletionRate, 1e-12)

	require.Equal(t, BatchStats{}, Summarize(nil))
	require.Zero(t, Summarize(results[:1]).StdReturn)
}
