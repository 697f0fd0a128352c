// Package impact turns external conditions into travel-time multipliers.
//
// Every provider in this package honours the ports.ImpactProvider contract:
// factors are >= 1.0 and failures degrade to the neutral factor.
package impact

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"vrp-route-env/internal/ports"
)

// ErrInvalidTable is returned when a factor table fails validation.
var ErrInvalidTable = errors.New("invalid impact table")

// WeatherCondition is the closed set of weather states the simulator knows.
type WeatherCondition string

const (
	WeatherUnknown      WeatherCondition = "unknown"
	WeatherClear        WeatherCondition = "clear"
	WeatherClouds       WeatherCondition = "clouds"
	WeatherDrizzle      WeatherCondition = "drizzle"
	WeatherRain         WeatherCondition = "rain"
	WeatherThunderstorm WeatherCondition = "thunderstorm"
	WeatherSnow         WeatherCondition = "snow"
	WeatherMist         WeatherCondition = "mist"
	WeatherFog          WeatherCondition = "fog"
	WeatherWind         WeatherCondition = "wind"
	WeatherStorm        WeatherCondition = "storm"
)

var weatherConditions = []WeatherCondition{
	WeatherClear, WeatherClouds, WeatherDrizzle, WeatherRain, WeatherThunderstorm,
	WeatherSnow, WeatherMist, WeatherFog, WeatherWind, WeatherStorm,
}

// upstream labels that map onto a known condition
var weatherAliases = map[string]WeatherCondition{
	"haze":    WeatherMist,
	"smoke":   WeatherMist,
	"dust":    WeatherWind,
	"sand":    WeatherWind,
	"squall":  WeatherStorm,
	"tornado": WeatherStorm,
	"ash":     WeatherFog,
}

// ParseWeatherCondition maps an upstream label onto the closed set.
// Unrecognised labels map to WeatherUnknown.
func ParseWeatherCondition(s string) WeatherCondition {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range weatherConditions {
		if string(c) == s {
			return c
		}
	}
	if c, ok := weatherAliases[s]; ok {
		return c
	}
	return WeatherUnknown
}

// TrafficLevel is the closed set of congestion levels.
type TrafficLevel string

const (
	TrafficUnknown TrafficLevel = "unknown"
	TrafficLow     TrafficLevel = "low"
	TrafficMedium  TrafficLevel = "medium"
	TrafficHigh    TrafficLevel = "high"
)

var trafficLevels = []TrafficLevel{TrafficLow, TrafficMedium, TrafficHigh}

// ClassifyTraffic derives the congestion level from the ratio of the
// in-traffic duration to the free-flow duration.
func ClassifyTraffic(obs ports.TrafficObservation) TrafficLevel {
	if obs.DurationSeconds <= 0 {
		return TrafficUnknown
	}

	inTraffic := obs.DurationInTrafficSeconds
	if inTraffic <= 0 {
		inTraffic = obs.DurationSeconds
	}

	ratio := float64(inTraffic) / float64(obs.DurationSeconds)
	switch {
	case ratio < 1.2:
		return TrafficLow
	case ratio < 1.5:
		return TrafficMedium
	default:
		return TrafficHigh
	}
}

// Table maps a closed set of conditions to multipliers. Keys that are not in
// the table resolve to the neutral factor.
type Table[K ~string] map[K]float64

type (
	WeatherTable = Table[WeatherCondition]
	TrafficTable = Table[TrafficLevel]
)

// Factor returns the multiplier for k, or the neutral factor.
func (t Table[K]) Factor(k K) float64 {
	f, ok := t[k]
	if !ok {
		return ports.NeutralImpact
	}
	return f
}

func (t Table[K]) validate(known []K) error {
	for k, f := range t {
		if !contains(known, k) {
			return fmt.Errorf("%w: unknown condition %q", ErrInvalidTable, k)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: factor for %q must be finite", ErrInvalidTable, k)
		}
		if f < ports.NeutralImpact {
			return fmt.Errorf("%w: factor for %q is %.3f, must be >= 1.0", ErrInvalidTable, k, f)
		}
	}
	return nil
}

// String renders the table as a stable "k=v,k=v" list.
func (t Table[K]) String() string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, strconv.FormatFloat(t[K(k)], 'f', -1, 64)))
	}
	return strings.Join(parts, ",")
}

func contains[K comparable](set []K, k K) bool {
	for _, s := range set {
		if s == k {
			return true
		}
	}
	return false
}

// DefaultWeatherTable returns the built-in weather multipliers.
func DefaultWeatherTable() WeatherTable {
	return WeatherTable{
		WeatherClear:        1.0,
		WeatherClouds:       1.0,
		WeatherDrizzle:      1.1,
		WeatherMist:         1.1,
		WeatherFog:          1.2,
		WeatherWind:         1.2,
		WeatherRain:         1.3,
		WeatherSnow:         1.4,
		WeatherStorm:        1.5,
		WeatherThunderstorm: 1.5,
	}
}

// DefaultTrafficTable returns the built-in congestion multipliers.
func DefaultTrafficTable() TrafficTable {
	return TrafficTable{
		TrafficLow:    1.0,
		TrafficMedium: 1.2,
		TrafficHigh:   1.5,
	}
}

// ValidateWeather checks keys against the closed condition set and factors
// against the >= 1.0 contract.
func ValidateWeather(t WeatherTable) error { return t.validate(weatherConditions) }

// ValidateTraffic is ValidateWeather for congestion levels.
func ValidateTraffic(t TrafficTable) error { return t.validate(trafficLevels) }

// ParseWeatherTable applies "rain=1.3,storm=1.6" overrides on top of base and
// validates the result. An empty spec returns a copy of base.
func ParseWeatherTable(spec string, base WeatherTable) (WeatherTable, error) {
	out, err := parseOverrides(spec, base, func(s string) WeatherCondition {
		return WeatherCondition(strings.ToLower(strings.TrimSpace(s)))
	})
	if err != nil {
		return nil, err
	}
	if err := ValidateWeather(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseTrafficTable is ParseWeatherTable for congestion levels.
func ParseTrafficTable(spec string, base TrafficTable) (TrafficTable, error) {
	out, err := parseOverrides(spec, base, func(s string) TrafficLevel {
		return TrafficLevel(strings.ToLower(strings.TrimSpace(s)))
	})
	if err != nil {
		return nil, err
	}
	if err := ValidateTraffic(out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseOverrides[K ~string](spec string, base Table[K], key func(string) K) (Table[K], error) {
	out := make(Table[K], len(base))
	for k, v := range base {
		out[k] = v
	}

	spec = strings.TrimSpace(spec)
	if spec == "" {
		return out, nil
	}

	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: entry %q is not key=value", ErrInvalidTable, pair)
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrInvalidTable, pair, err)
		}
		out[key(name)] = f
	}

	return out, nil
}

// Sanitize enforces the provider contract on a raw factor.
func Sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < ports.NeutralImpact {
		return ports.NeutralImpact
	}
	return f
}
