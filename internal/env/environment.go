// Package env is the sequential decision environment: one vehicle leaves the
// depot and an agent picks the next customer to serve, step by step, under
// capacity and time-window constraints.
//
// An Environment is not safe for concurrent use. Run one per goroutine.
package env

import (
	"context"
	"fmt"
	"math"
	"sort"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/geo"
	"vrp-route-env/internal/impact"
	"vrp-route-env/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the lifecycle position of the environment.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateActive
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateActive:
		return "ACTIVE"
	case StateTerminal:
		return "TERMINAL"
	default:
		return "UNINITIALIZED"
	}
}

// Reasons an episode ended.
const (
	TerminalCompleted     = "completed"
	TerminalNoFeasible    = "no_feasible_action"
	TerminalStepBudget    = "step_budget"
	TerminalTimeBudget    = "time_budget"
	TerminalInvalidAction = "invalid_action"
)

// Step outcomes reported to metrics.
const (
	outcomeAccepted  = "accepted"
	outcomeRejected  = "rejected"
	outcomePenalized = "penalized"
)

type Environment struct {
	cfg      Config
	provider ports.ImpactProvider

	customers    domain.Dataset
	vehicleCount int
	maxCapacity  float64

	state          State
	episodeID      string
	current        int
	remaining      float64
	elapsed        float64
	visited        map[int]struct{}
	route          []int
	totalDistance  float64
	totalTravel    float64
	steps          int
	episodeReturn  float64
	terminalReason string
}

// New builds an environment. A nil provider means neutral conditions.
func New(cfg Config, provider ports.ImpactProvider) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new environment: %w", err)
	}
	if provider == nil {
		provider = impact.Neutral{}
	}

	return &Environment{cfg: cfg, provider: provider}, nil
}

// Reset starts a new episode over customers, discarding any previous one.
// On error the previous episode, if any, is left untouched.
func (e *Environment) Reset(
	ctx context.Context,
	customers []domain.Customer,
	vehicleCount int,
	maxCapacity float64,
) (Observation, error) {
	dataset := make(domain.Dataset, len(customers))
	copy(dataset, customers)

	if err := dataset.Validate(); err != nil {
		return nil, fmt.Errorf("reset: %w: %w", ErrConfiguration, err)
	}
	if vehicleCount < 1 {
		return nil, fmt.Errorf("reset: %w: vehicle count must be at least 1, got %d", ErrConfiguration, vehicleCount)
	}
	if math.IsNaN(maxCapacity) || math.IsInf(maxCapacity, 0) || maxCapacity <= 0 {
		return nil, fmt.Errorf("reset: %w: max capacity must be a positive number, got %v", ErrConfiguration, maxCapacity)
	}

	e.customers = dataset
	e.vehicleCount = vehicleCount
	e.maxCapacity = maxCapacity

	e.state = StateReady
	e.episodeID = uuid.NewString()
	e.current = domain.DepotIndex
	e.remaining = maxCapacity
	e.elapsed = 0
	e.visited = make(map[int]struct{}, len(dataset))
	e.route = e.route[:0]
	e.totalDistance = 0
	e.totalTravel = 0
	e.steps = 0
	e.episodeReturn = 0
	e.terminalReason = ""

	if reason, done := e.terminalCheck(); done {
		e.finish(reason)
	}

	zerolog.Ctx(ctx).Debug().
		Str("episode_id", e.episodeID).
		Int("customers", len(dataset)-1).
		Int("vehicles", vehicleCount).
		Float64("max_capacity", maxCapacity).
		Str("state", e.state.String()).
		Msg("episode reset")

	return e.observation(), nil
}

// Step moves the vehicle to customer action.
func (e *Environment) Step(ctx context.Context, action int) (StepResult, error) {
	if e.state != StateReady && e.state != StateActive {
		return StepResult{}, fmt.Errorf("step: %w: environment is %s", ErrInvalidState, e.state)
	}

	if action < 0 || action >= len(e.customers) {
		e.cfg.Metrics.Step(outcomeRejected)
		return StepResult{}, &ActionError{Action: action, Reason: ReasonOutOfRange}
	}

	target := e.customers[action]
	if reason, ok := e.structuralCheck(target); !ok {
		return e.refuse(ctx, action, reason)
	}

	from := e.customers[e.current].Location
	distance := geo.Haversine(from, target.Location)
	factor := e.impactFactor(ctx, from, target.Location)
	travel := geo.TravelHours(distance, e.cfg.AverageSpeedKmh) * factor
	arrival := e.elapsed + travel
	late := target.Late(arrival)

	if late && e.cfg.RejectLateArrivals {
		return e.refuse(ctx, action, ReasonTimeWindow)
	}

	e.state = StateActive
	e.current = action
	e.remaining -= target.Demand
	e.elapsed = arrival + target.ServiceTime
	e.visited[action] = struct{}{}
	e.route = append(e.route, action)
	e.totalDistance += distance
	e.totalTravel += travel
	e.steps++

	completed := len(e.visited) == len(e.customers)-1
	reward := Reward(e.cfg.Weights, Outcome{
		Distance:          distance,
		TravelTime:        travel,
		ServiceTime:       target.ServiceTime,
		RemainingCapacity: e.remaining,
		MaxCapacity:       e.maxCapacity,
		Completed:         completed,
		Late:              late,
	})
	e.episodeReturn += reward
	e.cfg.Metrics.Step(outcomeAccepted)

	if reason, done := e.terminalCheck(); done {
		e.finish(reason)
	}

	lateFlag := 0.0
	if late {
		lateFlag = 1
	}

	zerolog.Ctx(ctx).Debug().
		Str("episode_id", e.episodeID).
		Int("action", action).
		Float64("distance_km", distance).
		Float64("travel_h", travel).
		Float64("impact", factor).
		Bool("late", late).
		Float64("reward", reward).
		Bool("terminal", e.state == StateTerminal).
		Msg("step")

	return StepResult{
		Observation: e.observation(),
		Reward:      reward,
		Terminal:    e.state == StateTerminal,
		Info: map[string]float64{
			InfoDistance:          distance,
			InfoTravelTime:        travel,
			InfoArrivalTime:       arrival,
			InfoImpactFactor:      factor,
			InfoLate:              lateFlag,
			InfoRemainingCapacity: e.remaining,
			InfoTotalDistance:     e.totalDistance,
			InfoVisited:           float64(len(e.visited)),
		},
		TerminalReason: e.terminalReason,
	}, nil
}

// refuse handles an action the environment will not apply. Under strict
// masking nothing changes; otherwise the episode ends with a penalty.
func (e *Environment) refuse(ctx context.Context, action int, reason ActionReason) (StepResult, error) {
	if e.cfg.StrictMasking {
		e.cfg.Metrics.Step(outcomeRejected)
		return StepResult{}, &ActionError{Action: action, Reason: reason}
	}

	reward := e.cfg.Weights.InvalidActionPenalty
	e.steps++
	e.episodeReturn += reward
	e.finish(TerminalInvalidAction)
	e.cfg.Metrics.Step(outcomePenalized)

	zerolog.Ctx(ctx).Debug().
		Str("episode_id", e.episodeID).
		Int("action", action).
		Str("reason", string(reason)).
		Msg("penalized invalid action")

	return StepResult{
		Observation: e.observation(),
		Reward:      reward,
		Terminal:    true,
		Info: map[string]float64{
			InfoDistance:          0,
			InfoTravelTime:        0,
			InfoArrivalTime:       e.elapsed,
			InfoImpactFactor:      ports.NeutralImpact,
			InfoLate:              0,
			InfoRemainingCapacity: e.remaining,
			InfoTotalDistance:     e.totalDistance,
			InfoVisited:           float64(len(e.visited)),
		},
		TerminalReason: e.terminalReason,
		Error:          string(reason),
	}, nil
}

func (e *Environment) structuralCheck(c domain.Customer) (ActionReason, bool) {
	if c.IsDepot() {
		return ReasonDepot, false
	}
	if _, ok := e.visited[c.Index]; ok {
		return ReasonVisited, false
	}
	if c.Demand > e.remaining {
		return ReasonCapacity, false
	}
	return "", true
}

// actionable reports whether Step would apply an action towards c. With
// late arrivals rejected the arrival is estimated at nominal speed; impact
// factors only slow the vehicle down, so a customer that is late even then
// is unreachable.
func (e *Environment) actionable(c domain.Customer) bool {
	if _, ok := e.structuralCheck(c); !ok {
		return false
	}
	if !e.cfg.RejectLateArrivals {
		return true
	}
	from := e.customers[e.current].Location
	nominal := geo.TravelHours(geo.Haversine(from, c.Location), e.cfg.AverageSpeedKmh)
	return !c.Late(e.elapsed + nominal)
}

func (e *Environment) terminalCheck() (string, bool) {
	if len(e.visited) == len(e.customers)-1 {
		return TerminalCompleted, true
	}
	if e.cfg.MaxSteps > 0 && e.steps >= e.cfg.MaxSteps {
		return TerminalStepBudget, true
	}
	if e.cfg.MaxEpisodeHours > 0 && e.elapsed > e.cfg.MaxEpisodeHours {
		return TerminalTimeBudget, true
	}
	for _, c := range e.customers.Customers() {
		if e.actionable(c) {
			return "", false
		}
	}
	return TerminalNoFeasible, true
}

func (e *Environment) finish(reason string) {
	e.state = StateTerminal
	e.terminalReason = reason
	e.cfg.Metrics.EpisodeFinished(e.episodeReturn)
}

func (e *Environment) impactFactor(ctx context.Context, from, to domain.Location) float64 {
	if e.cfg.ImpactTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ImpactTimeout)
		defer cancel()
	}

	travel := impact.Sanitize(e.provider.TravelImpact(ctx, from, to))
	local := impact.Sanitize(e.provider.LocalImpact(ctx, to))
	return travel * local
}

func (e *Environment) observation() Observation {
	obs := make(Observation, ObsHeaderSize+len(e.customers))
	loc := e.customers[e.current].Location
	obs[ObsLat] = loc.Lat
	obs[ObsLon] = loc.Lon
	obs[ObsRemainingCapacity] = e.remaining
	obs[ObsElapsedTime] = e.elapsed
	for i := range e.visited {
		obs[ObsHeaderSize+i] = 1
	}
	return obs
}

// ValidActions lists the actions Step would apply without refusing them,
// in ascending order.
func (e *Environment) ValidActions() []int {
	if e.state != StateReady && e.state != StateActive {
		return nil
	}

	out := make([]int, 0, len(e.customers))
	for _, c := range e.customers.Customers() {
		if e.actionable(c) {
			out = append(out, c.Index)
		}
	}
	return out
}

// ActionMask is ValidActions as a 0/1 vector over the whole action space.
func (e *Environment) ActionMask() []float64 {
	mask := make([]float64, len(e.customers))
	for _, a := range e.ValidActions() {
		mask[a] = 1
	}
	return mask
}

// Observation returns the current observation without stepping.
func (e *Environment) Observation() Observation {
	if e.state == StateUninitialized {
		return nil
	}
	return e.observation()
}

func (e *Environment) State() State { return e.state }
func (e *Environment) IsTerminal() bool { return e.state == StateTerminal }
func (e *Environment) TerminalReason() string { return e.terminalReason }
func (e *Environment) EpisodeID() string { return e.episodeID }
func (e *Environment) RemainingCapacity() float64 { return e.remaining }
func (e *Environment) MaxCapacity() float64 { return e.maxCapacity }
func (e *Environment) ElapsedTime() float64 { return e.elapsed }
func (e *Environment) TotalDistance() float64 { return e.totalDistance }
func (e *Environment) TotalTravelTime() float64 { return e.totalTravel }
func (e *Environment) Steps() int { return e.steps }
func (e *Environment) Return() float64 { return e.episodeReturn }
func (e *Environment) CurrentIndex() int { return e.current }
func (e *Environment) VehicleCount() int { return e.vehicleCount }
func (e *Environment) NumCustomers() int { return len(e.customers) }
func (e *Environment) ObservationSize() int { return ObsHeaderSize + len(e.customers) }
func (e *Environment) Customer(i int) domain.Customer { return e.customers[i] }

// Visited returns the visited customer indices in ascending order.
func (e *Environment) Visited() []int {
	out := make([]int, 0, len(e.visited))
	for i := range e.visited {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Route returns the customers in the order they were served.
func (e *Environment) Route() []int {
	return append([]int(nil), e.route...)
}
