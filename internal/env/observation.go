package env

import (
	"gonum.org/v1/gonum/mat"
)

// Layout of the observation vector. Per-customer visited flags follow the
// fixed header, one slot per dataset row (the depot slot stays 0).
const (
	ObsLat = iota
	ObsLon
	ObsRemainingCapacity
	ObsElapsedTime
	ObsHeaderSize
)

// Observation is the fixed-width numeric state handed to the agent.
type Observation []float64

// Visited reports the flag of customer i.
func (o Observation) Visited(i int) bool {
	return o[ObsHeaderSize+i] == 1
}

// NumCustomers is the number of per-customer slots.
func (o Observation) NumCustomers() int {
	return len(o) - ObsHeaderSize
}

// Vector copies the observation into a gonum vector.
func (o Observation) Vector() *mat.VecDense {
	if len(o) == 0 {
		return nil
	}
	return mat.NewVecDense(len(o), append([]float64(nil), o...))
}

// Info keys reported with every step.
const (
	InfoDistance          = "distance"
	InfoTravelTime        = "travel_time"
	InfoArrivalTime       = "arrival_time"
	InfoImpactFactor      = "impact_factor"
	InfoLate              = "late"
	InfoRemainingCapacity = "remaining_capacity"
	InfoTotalDistance     = "total_distance"
	InfoVisited           = "visited"
)

// StepResult is what Step hands back for one transition.
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminal    bool
	Info        map[string]float64
	// TerminalReason is set once the episode has ended.
	TerminalReason string
	// Error describes the refused action of a penalized transition.
	Error string
}

// ActionMaskVector is ActionMask as a gonum vector, ready to be applied to
// a policy's logits. It is nil before the first reset.
func (e *Environment) ActionMaskVector() *mat.VecDense {
	if e.state == StateUninitialized {
		return nil
	}
	return mat.NewVecDense(len(e.customers), e.ActionMask())
}
