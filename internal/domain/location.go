package domain

import "math"

// Immutable geographic position in degrees (WGS84-like).
type Location struct {
	Lat float64
	Lon float64
}

// Finite reports whether both coordinates are real numbers.
func (l Location) Finite() bool {
	return isFinite(l.Lat) && isFinite(l.Lon)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
