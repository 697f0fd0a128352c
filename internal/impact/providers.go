package impact

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/ports"
)

// Neutral never degrades travel.
type Neutral struct{}

func (Neutral) TravelImpact(context.Context, domain.Location, domain.Location) float64 {
	return ports.NeutralImpact
}

func (Neutral) LocalImpact(context.Context, domain.Location) float64 {
	return ports.NeutralImpact
}

// Fixed returns the same factors for every lookup. Useful for deterministic
// runs and tests.
type Fixed struct {
	Travel float64
	Local  float64
}

func (f Fixed) TravelImpact(context.Context, domain.Location, domain.Location) float64 {
	return Sanitize(f.Travel)
}

func (f Fixed) LocalImpact(context.Context, domain.Location) float64 {
	return Sanitize(f.Local)
}

// Combined multiplies the factors of several providers.
type Combined []ports.ImpactProvider

func (c Combined) TravelImpact(ctx context.Context, origin, destination domain.Location) float64 {
	factor := ports.NeutralImpact
	for _, p := range c {
		if p == nil {
			continue
		}
		factor *= Sanitize(p.TravelImpact(ctx, origin, destination))
	}
	return Sanitize(factor)
}

func (c Combined) LocalImpact(ctx context.Context, loc domain.Location) float64 {
	factor := ports.NeutralImpact
	for _, p := range c {
		if p == nil {
			continue
		}
		factor *= Sanitize(p.LocalImpact(ctx, loc))
	}
	return Sanitize(factor)
}

// HourWindow is a [Start, End) interval in hours of the day.
type HourWindow struct {
	Start float64
	End   float64
}

func (w HourWindow) contains(h float64) bool { return h >= w.Start && h < w.End }

// DefaultRushHours are the morning and evening peaks.
func DefaultRushHours() []HourWindow {
	return []HourWindow{{Start: 7, End: 9}, {Start: 16, End: 19}}
}

// ParseHourWindows reads "7-9,16-19" style lists. Bounds are hours in
// [0, 24] with start < end.
func ParseHourWindows(spec string) ([]HourWindow, error) {
	var out []HourWindow
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, ok := strings.Cut(part, "-")
		if !ok {
			return nil, fmt.Errorf("hour window %q: want start-end", part)
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return nil, fmt.Errorf("hour window %q: %w", part, err)
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return nil, fmt.Errorf("hour window %q: %w", part, err)
		}
		if start < 0 || end > domain.DayHours || start >= end {
			return nil, fmt.Errorf("hour window %q: must satisfy 0 <= start < end <= 24", part)
		}
		out = append(out, HourWindow{Start: start, End: end})
	}
	return out, nil
}

// RushHour applies a travel factor while the wall clock is inside a peak window.
type RushHour struct {
	Windows []HourWindow
	Factor  float64
	Now     func() time.Time
}

func NewRushHour(factor float64, windows []HourWindow) *RushHour {
	return &RushHour{Windows: windows, Factor: factor, Now: time.Now}
}

func (r *RushHour) TravelImpact(context.Context, domain.Location, domain.Location) float64 {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	t := now()
	h := float64(t.Hour()) + float64(t.Minute())/60
	for _, w := range r.Windows {
		if w.contains(h) {
			return Sanitize(r.Factor)
		}
	}
	return ports.NeutralImpact
}

func (r *RushHour) LocalImpact(context.Context, domain.Location) float64 {
	return ports.NeutralImpact
}
