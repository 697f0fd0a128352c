package impact

import (
	"errors"
	"testing"

	"vrp-route-env/internal/ports"

	"github.com/stretchr/testify/require"
)

func TestParseWeatherCondition(t *testing.T) {
	require.Equal(t, WeatherRain, ParseWeatherCondition(" Rain "))
	require.Equal(t, WeatherThunderstorm, ParseWeatherCondition("Thunderstorm"))
	require.Equal(t, WeatherMist, ParseWeatherCondition("Haze"))
	require.Equal(t, WeatherUnknown, ParseWeatherCondition("volcano"))
	require.Equal(t, WeatherUnknown, ParseWeatherCondition(""))
}

func TestClassifyTraffic(t *testing.T) {
	tests := []struct {
		obs  ports.TrafficObservation
		want TrafficLevel
	}{
		{ports.TrafficObservation{DurationSeconds: 600, DurationInTrafficSeconds: 650}, TrafficLow},
		{ports.TrafficObservation{DurationSeconds: 600, DurationInTrafficSeconds: 720}, TrafficMedium},
		{ports.TrafficObservation{DurationSeconds: 600, DurationInTrafficSeconds: 900}, TrafficHigh},
		{ports.TrafficObservation{DurationSeconds: 600}, TrafficLow},
		{ports.TrafficObservation{}, TrafficUnknown},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ClassifyTraffic(tt.obs), "obs=%+v", tt.obs)
	}
}

func TestTableFactorDefaultsToNeutral(t *testing.T) {
	w := DefaultWeatherTable()
	require.Equal(t, 1.3, w.Factor(WeatherRain))
	require.Equal(t, 1.0, w.Factor(WeatherUnknown))

	delete(w, WeatherRain)
	require.Equal(t, 1.0, w.Factor(WeatherRain))
}

func TestParseWeatherTableOverrides(t *testing.T) {
	tbl, err := ParseWeatherTable("rain=1.35, storm=1.8", DefaultWeatherTable())
	require.NoError(t, err)
	require.Equal(t, 1.35, tbl.Factor(WeatherRain))
	require.Equal(t, 1.8, tbl.Factor(WeatherStorm))
	require.Equal(t, 1.4, tbl.Factor(WeatherSnow))

	base := DefaultWeatherTable()
	_, err = ParseWeatherTable("rain=2", base)
	require.NoError(t, err)
	require.Equal(t, 1.3, base.Factor(WeatherRain), "base table must not be mutated")
}

func TestParseTablesRejectInvalidEntries(t *testing.T) {
	for _, spec := range []string{
		"hail=1.2",
		"rain=0.8",
		"rain=NaN",
		"rain",
		"rain=fast",
	} {
		_, err := ParseWeatherTable(spec, DefaultWeatherTable())
		require.Error(t, err, spec)
		require.True(t, errors.Is(err, ErrInvalidTable), spec)
	}

	_, err := ParseTrafficTable("gridlock=3", DefaultTrafficTable())
	require.ErrorIs(t, err, ErrInvalidTable)

	tbl, err := ParseTrafficTable("high=1.7", DefaultTrafficTable())
	require.NoError(t, err)
	require.Equal(t, "high=1.7,low=1,medium=1.2", tbl.String())
}

func TestSanitize(t *testing.T) {
	require.Equal(t, 1.0, Sanitize(0.5))
	require.Equal(t, 1.0, Sanitize(-3))
	require.Equal(t, 1.25, Sanitize(1.25))
}
