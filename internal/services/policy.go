package services

import (
	"math/rand/v2"
	"slices"

	"vrp-route-env/internal/env"
	"vrp-route-env/internal/geo"
)

// Policy ranks the actions an agent is willing to take next. RunEpisode tries
// them in order until the environment accepts one.
type Policy interface {
	Rank(e *env.Environment) []int
}

// NearestFeasible is the greedy nearest-neighbour heuristic over the action
// mask: closest valid customer first.
//
// It minimizes the immediate leg only and makes no attempt at global route
// optimization. Ties are broken by the lower customer index so rollouts are
// reproducible.
type NearestFeasible struct{}

func (NearestFeasible) Rank(e *env.Environment) []int {
	actions := e.ValidActions()
	if len(actions) == 0 {
		return nil
	}

	from := e.Customer(e.CurrentIndex()).Location
	dist := make(map[int]float64, len(actions))
	for _, a := range actions {
		dist[a] = geo.Haversine(from, e.Customer(a).Location)
	}

	slices.SortStableFunc(actions, func(a, b int) int {
		da, db := dist[a], dist[b]
		if da < db {
			return -1
		}
		if da > db {
			return 1
		}
		return a - b
	})
	return actions
}

// RandomFeasible picks uniformly among valid actions from its own seeded
// source. Not safe for concurrent use.
type RandomFeasible struct {
	rng *rand.Rand
}

func NewRandomFeasible(seed uint64) *RandomFeasible {
	return &RandomFeasible{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *RandomFeasible) Rank(e *env.Environment) []int {
	actions := e.ValidActions()
	p.rng.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
	})
	return actions
}

// PolicyByName resolves the policies exposed on the command line.
func PolicyByName(name string, seed uint64) (Policy, bool) {
	switch name {
	case "nearest", "greedy":
		return NearestFeasible{}, true
	case "random":
		return NewRandomFeasible(seed), true
	default:
		return nil, false
	}
}
