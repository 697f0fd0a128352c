package env

import (
	"fmt"
	"math"
	"time"

	"vrp-route-env/internal/platform/obs"
)

// Config fixes the behaviour of an Environment for its whole lifetime.
type Config struct {
	Weights Weights

	// StrictMasking rejects depot, visited and over-capacity actions with an
	// *ActionError. When false they end the episode with
	// Weights.InvalidActionPenalty instead.
	StrictMasking bool
	// RejectLateArrivals treats a projected arrival after the window end as
	// an invalid action rather than a penalized one.
	RejectLateArrivals bool

	// AverageSpeedKmh converts distance to nominal driving hours.
	AverageSpeedKmh float64
	// MaxSteps ends the episode after this many steps; 0 disables.
	MaxSteps int
	// MaxEpisodeHours ends the episode once elapsed time exceeds it; 0 disables.
	MaxEpisodeHours float64
	// ImpactTimeout bounds each impact provider call; 0 disables.
	ImpactTimeout time.Duration

	Metrics *obs.Metrics
}

func DefaultConfig() Config {
	return Config{
		Weights:         DefaultWeights(),
		StrictMasking:   true,
		AverageSpeedKmh: 50,
		ImpactTimeout:   750 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if math.IsNaN(c.AverageSpeedKmh) || math.IsInf(c.AverageSpeedKmh, 0) || c.AverageSpeedKmh <= 0 {
		return fmt.Errorf("%w: average speed must be a positive number", ErrConfiguration)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must not be negative", ErrConfiguration)
	}
	if math.IsNaN(c.MaxEpisodeHours) || c.MaxEpisodeHours < 0 {
		return fmt.Errorf("%w: max episode hours must not be negative", ErrConfiguration)
	}
	if c.ImpactTimeout < 0 {
		return fmt.Errorf("%w: impact timeout must not be negative", ErrConfiguration)
	}
	return nil
}
