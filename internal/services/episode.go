package services

import (
	"context"
	"errors"
	"fmt"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/env"
	"vrp-route-env/internal/platform/obs"
)

// TerminalStalled marks a rollout where the environment refused every
// ranked action without ending the episode.
const TerminalStalled = "stalled"

type EpisodeRequest struct {
	Customers    []domain.Customer
	VehicleCount int
	Capacity     float64
	VehicleID    int
}

// EpisodeResult summarizes one rollout.
type EpisodeResult struct {
	EpisodeID string
	Plan      domain.RoutePlan
	Rewards   []float64
	Return    float64
	Steps     int
}

// RunEpisode resets e and drives it with p until the episode ends.
func RunEpisode(
	ctx context.Context,
	e *env.Environment,
	p Policy,
	req EpisodeRequest,
) (res EpisodeResult, err error) {
	if e == nil || p == nil {
		return EpisodeResult{}, errors.New("run episode: environment and policy must be non-nil")
	}

	if _, err := e.Reset(ctx, req.Customers, req.VehicleCount, req.Capacity); err != nil {
		return EpisodeResult{}, fmt.Errorf("run episode: %w", err)
	}

	ctx = obs.WithEpisodeID(ctx, e.EpisodeID())
	defer obs.Time(ctx, "run_episode")(&err)

	plan := domain.RoutePlan{VehicleID: req.VehicleID}
	var rewards []float64

	for !e.IsTerminal() {
		step, action, ok, err := stepRanked(ctx, e, p.Rank(e))
		if err != nil {
			return EpisodeResult{}, fmt.Errorf("run episode: vehicle %d: %w", req.VehicleID, err)
		}
		if !ok {
			plan.TerminalReason = TerminalStalled
			break
		}

		rewards = append(rewards, step.Reward)
		if step.Error != "" {
			continue
		}

		c := e.Customer(action)
		plan.Stops = append(plan.Stops, domain.RouteStop{
			CustomerIndex: c.Index,
			Name:          c.Name,
			ArriveAt:      step.Info[env.InfoArrivalTime],
			DepartAt:      e.ElapsedTime(),
			Demand:        c.Demand,
			Late:          step.Info[env.InfoLate] == 1,
		})
	}

	if plan.TerminalReason == "" {
		plan.TerminalReason = e.TerminalReason()
	}
	plan.TotalDistance = e.TotalDistance()
	plan.TotalHours = e.ElapsedTime()
	plan.TotalReward = e.Return()
	plan.RemainingLoad = e.RemainingCapacity()
	plan.Completed = plan.TerminalReason == env.TerminalCompleted

	return EpisodeResult{
		EpisodeID: e.EpisodeID(),
		Plan:      plan,
		Rewards:   rewards,
		Return:    e.Return(),
		Steps:     e.Steps(),
	}, nil
}

// stepRanked applies the first ranked action the environment accepts.
// Refused actions are skipped; any other error aborts the rollout.
func stepRanked(ctx context.Context, e *env.Environment, ranked []int) (env.StepResult, int, bool, error) {
	for _, a := range ranked {
		res, err := e.Step(ctx, a)
		if err == nil {
			return res, a, true, nil
		}

		var ae *env.ActionError
		if !errors.As(err, &ae) {
			return env.StepResult{}, 0, false, err
		}
	}
	return env.StepResult{}, 0, false, nil
}
