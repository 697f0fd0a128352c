package env

import (
	"fmt"
	"math"
)

// Weights are the constants of the reward model. They are fixed when the
// environment is built.
type Weights struct {
	DistanceWeight       float64
	TimeEfficiencyWeight float64
	UtilizationWeight    float64
	CompletionBonus      float64
	// Added when the arrival misses the window; negative to penalize.
	TimeWindowPenalty float64
	Epsilon           float64
	// Reward of a penalized terminal transition when masking is not strict.
	InvalidActionPenalty float64
}

// DefaultWeights returns the reference tuning.
func DefaultWeights() Weights {
	return Weights{
		DistanceWeight:       0.2,
		TimeEfficiencyWeight: 2.0,
		UtilizationWeight:    10,
		CompletionBonus:      200,
		TimeWindowPenalty:    -10,
		Epsilon:              1e-6,
		InvalidActionPenalty: -1000,
	}
}

func (w Weights) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"distance_weight", w.DistanceWeight},
		{"time_efficiency_weight", w.TimeEfficiencyWeight},
		{"utilization_weight", w.UtilizationWeight},
		{"completion_bonus", w.CompletionBonus},
		{"time_window_penalty", w.TimeWindowPenalty},
		{"epsilon", w.Epsilon},
		{"invalid_action_penalty", w.InvalidActionPenalty},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: weight %s must be finite", ErrConfiguration, f.name)
		}
	}
	if w.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive", ErrConfiguration)
	}
	return nil
}

// Outcome is everything the reward model sees of one accepted transition.
type Outcome struct {
	Distance          float64
	TravelTime        float64
	ServiceTime       float64
	RemainingCapacity float64
	MaxCapacity       float64
	Completed         bool
	Late              bool
}

// Reward scores one accepted transition:
//
//	-(DistanceWeight * distance)
//	+ TimeEfficiencyWeight / (travel + service + Epsilon)
//	+ UtilizationWeight * (1 - remaining/max)
//	+ CompletionBonus * [all customers visited]
//	+ TimeWindowPenalty * [arrival > window end]
func Reward(w Weights, o Outcome) float64 {
	r := -(w.DistanceWeight * o.Distance)
	r += w.TimeEfficiencyWeight / (o.TravelTime + o.ServiceTime + w.Epsilon)

	if o.MaxCapacity > 0 {
		r += w.UtilizationWeight * (1 - o.RemainingCapacity/o.MaxCapacity)
	}
	if o.Completed {
		r += w.CompletionBonus
	}
	if o.Late {
		r += w.TimeWindowPenalty
	}

	return r
}
