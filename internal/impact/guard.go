package impact

import (
	"context"
	"errors"
	"time"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/platform/obs"
	"vrp-route-env/internal/ports"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single upstream lookup.
const DefaultTimeout = 750 * time.Millisecond

// Fallback reasons reported on the metrics side channel.
const (
	ReasonError     = "error"
	ReasonTimeout   = "timeout"
	ReasonMalformed = "malformed"
	ReasonUnknown   = "unknown_condition"
)

type GuardConfig struct {
	Weather        ports.WeatherSource
	Traffic        ports.TrafficSource
	WeatherFactors WeatherTable
	TrafficFactors TrafficTable
	Timeout        time.Duration
	Metrics        *obs.Metrics
}

// Guard adapts fallible condition sources to the ImpactProvider contract.
// Any upstream failure, timeout or unusable answer resolves to the neutral
// factor; the failure is visible only through metrics and debug logs.
//
// Guard is safe for concurrent use if its sources are.
type Guard struct {
	weather        ports.WeatherSource
	traffic        ports.TrafficSource
	weatherFactors WeatherTable
	trafficFactors TrafficTable
	timeout        time.Duration
	metrics        *obs.Metrics
}

func NewGuard(cfg GuardConfig) *Guard {
	g := &Guard{
		weather:        cfg.Weather,
		traffic:        cfg.Traffic,
		weatherFactors: cfg.WeatherFactors,
		trafficFactors: cfg.TrafficFactors,
		timeout:        cfg.Timeout,
		metrics:        cfg.Metrics,
	}
	if g.weatherFactors == nil {
		g.weatherFactors = DefaultWeatherTable()
	}
	if g.trafficFactors == nil {
		g.trafficFactors = DefaultTrafficTable()
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	return g
}

func (g *Guard) LocalImpact(ctx context.Context, loc domain.Location) float64 {
	f, _ := g.localImpact(ctx, loc)
	return f
}

func (g *Guard) TravelImpact(ctx context.Context, origin, destination domain.Location) float64 {
	f, _ := g.travelImpact(ctx, origin, destination)
	return f
}

// localImpact also reports whether the factor came from a usable upstream
// answer. A degraded factor is valid for this call only.
func (g *Guard) localImpact(ctx context.Context, loc domain.Location) (float64, bool) {
	if g.weather == nil {
		return ports.NeutralImpact, true
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	label, err := g.weather.CurrentCondition(ctx, loc)
	if err != nil {
		return g.fallback(ctx, "weather", reasonFor(err), err), false
	}

	cond := ParseWeatherCondition(label)
	if cond == WeatherUnknown {
		zerolog.Ctx(ctx).Debug().Str("source", "weather").Str("label", label).Msg("unrecognised weather condition")
		g.metrics.ImpactFallback("weather", ReasonUnknown)
		return ports.NeutralImpact, false
	}

	return Sanitize(g.weatherFactors.Factor(cond)), true
}

func (g *Guard) travelImpact(ctx context.Context, origin, destination domain.Location) (float64, bool) {
	if g.traffic == nil {
		return ports.NeutralImpact, true
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	observation, err := g.traffic.Observe(ctx, origin, destination)
	if err != nil {
		return g.fallback(ctx, "traffic", reasonFor(err), err), false
	}

	level := ClassifyTraffic(observation)
	if level == TrafficUnknown {
		return g.fallback(ctx, "traffic", ReasonMalformed, errors.New("traffic observation has no free-flow duration")), false
	}

	return Sanitize(g.trafficFactors.Factor(level)), true
}

func (g *Guard) fallback(ctx context.Context, source, reason string, err error) float64 {
	zerolog.Ctx(ctx).Debug().
		Str("source", source).
		Str("reason", reason).
		Err(err).
		Msg("impact lookup degraded to neutral")
	g.metrics.ImpactFallback(source, reason)
	return ports.NeutralImpact
}

func reasonFor(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonError
}
