package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vrp-route-env/internal/env"
	"vrp-route-env/internal/impact"

	"github.com/stretchr/testify/require"
)

// Load also reads ./.env; run from a clean directory so a developer's file
// cannot leak into the assertions.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ConfigPathEnv, "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, env.DefaultConfig().Weights, cfg.EnvConfig(nil).Weights)
	require.True(t, cfg.Env.StrictMasking)
	require.Equal(t, 50.0, cfg.Env.AverageSpeedKmh)
	require.Equal(t, 750*time.Millisecond, cfg.Env.ImpactTimeout)
	require.Equal(t, 1, cfg.Env.VehicleCount)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "data/seeds/customers.json", cfg.Database.SeedPath)
	require.Equal(t, 15*time.Minute, cfg.Redis.TTL)
	require.Equal(t, impact.DefaultWeatherTable(), cfg.WeatherFactors)
	require.Equal(t, []impact.HourWindow{{Start: 7, End: 9}, {Start: 16, End: 19}}, cfg.RushWindows)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("REWARD_COMPLETION_BONUS", "500")
	t.Setenv("ENV_STRICT_MASKING", "false")
	t.Setenv("ENV_MAX_STEPS", "12")
	t.Setenv("IMPACT_TIMEOUT", "2s")
	t.Setenv("WEATHER_FACTORS", "rain=1.8")
	t.Setenv("REDIS_PASSWORD", `"s3cret"`)
	t.Setenv("DB_DRIVER", "pgx")

	cfg, err := Load("")
	require.NoError(t, err)

	ec := cfg.EnvConfig(nil)
	require.Equal(t, 500.0, ec.Weights.CompletionBonus)
	require.False(t, ec.StrictMasking)
	require.Equal(t, 12, ec.MaxSteps)
	require.Equal(t, 2*time.Second, ec.ImpactTimeout)
	require.Equal(t, 1.8, cfg.WeatherFactors.Factor(impact.WeatherRain))
	require.Equal(t, 1.5, cfg.WeatherFactors.Factor(impact.WeatherStorm))
	require.Equal(t, "s3cret", cfg.Redis.Password)
	require.Equal(t, "pgx", cfg.Database.Driver)
}

func TestLoad_DotEnvAndConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VEHICLE_COUNT=3\n"), 0o644))

	path := filepath.Join(dir, "vrp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ENV_AVERAGE_SPEED_KMH: 30\nRUSH_HOUR_WINDOWS: \"6-10\"\n"), 0o644))

	// godotenv does not unset what it loads; keep the process env clean.
	t.Cleanup(func() { _ = os.Unsetenv("VEHICLE_COUNT") })

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Env.VehicleCount)
	require.Equal(t, 30.0, cfg.Env.AverageSpeedKmh)
	require.Equal(t, []impact.HourWindow{{Start: 6, End: 10}}, cfg.RushWindows)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative speed", "ENV_AVERAGE_SPEED_KMH", "-5"},
		{"zero epsilon", "REWARD_EPSILON", "0"},
		{"unknown weather", "WEATHER_FACTORS", "hail=1.2"},
		{"factor below one", "TRAFFIC_FACTORS", "high=0.5"},
		{"bad window", "RUSH_HOUR_WINDOWS", "19-7"},
		{"no vehicles", "VEHICLE_COUNT", "0"},
		{"no capacity", "VEHICLE_CAPACITY", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.ErrorIs(t, err, env.ErrConfiguration)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
