package domain

// Represents a single stop in a simulated route.
// A RouteStop records arriving at one customer at a simulated hour and the
// load delivered there.
type RouteStop struct {
	CustomerIndex int
	Name          string
	ArriveAt      float64
	DepartAt      float64
	Demand        float64
	Late          bool
}

// Represents the route a single vehicle drove through one episode.
// A RoutePlan is the output of a rollout and describes the ordered sequence
// of stops, along with aggregate distance, duration and reward metrics.
// It is immutable reporting data and contains no side effects.
type RoutePlan struct {
	VehicleID      int
	Stops          []RouteStop
	TotalDistance  float64
	TotalHours     float64
	TotalReward    float64
	RemainingLoad  float64
	Completed      bool
	TerminalReason string
}

// Indices returns the visiting order as customer indices.
func (p RoutePlan) Indices() []int {
	out := make([]int, 0, len(p.Stops))
	for _, s := range p.Stops {
		out = append(out, s.CustomerIndex)
	}
	return out
}

// LateStops counts stops served after their window closed.
func (p RoutePlan) LateStops() int {
	n := 0
	for _, s := range p.Stops {
		if s.Late {
			n++
		}
	}
	return n
}
