package domain

// DayHours is the length of the service day; time windows live in [0, DayHours].
const DayHours = 24.0

// DepotIndex is the reserved position of the depot in every dataset.
const DepotIndex = 0

// Represents a single delivery point handled by a vehicle.
// Time windows and service durations are expressed in hours on a 24-hour
// clock. A Customer is loaded once per dataset and never mutated during
// an episode.
type Customer struct {
	Index       int
	Name        string
	Location    Location
	Demand      float64
	WindowStart float64
	WindowEnd   float64
	ServiceTime float64
}

// NewDepot builds the depot record: zero demand and a full-day window.
func NewDepot(name string, loc Location) Customer {
	return Customer{
		Index:       DepotIndex,
		Name:        name,
		Location:    loc,
		WindowStart: 0,
		WindowEnd:   DayHours,
	}
}

// IsDepot reports whether the customer occupies the depot slot.
func (c Customer) IsDepot() bool { return c.Index == DepotIndex }

// Late reports whether arriving at the given elapsed hour misses the window.
func (c Customer) Late(arrival float64) bool { return arrival > c.WindowEnd }
