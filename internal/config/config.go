// Package config loads simulator settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"vrp-route-env/internal/env"
	"vrp-route-env/internal/impact"
	"vrp-route-env/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigPathEnv names the variable that may point at a config file.
const ConfigPathEnv = "VRP_CONFIG"

// EnvConfig holds the environment and reward settings.
type EnvConfig struct {
	DistanceWeight       float64 `mapstructure:"REWARD_DISTANCE_WEIGHT"`
	TimeEfficiencyWeight float64 `mapstructure:"REWARD_TIME_EFFICIENCY_WEIGHT"`
	UtilizationWeight    float64 `mapstructure:"REWARD_UTILIZATION_WEIGHT"`
	CompletionBonus      float64 `mapstructure:"REWARD_COMPLETION_BONUS"`
	TimeWindowPenalty    float64 `mapstructure:"REWARD_TIME_WINDOW_PENALTY"`
	Epsilon              float64 `mapstructure:"REWARD_EPSILON"`
	InvalidActionPenalty float64 `mapstructure:"REWARD_INVALID_ACTION_PENALTY"`

	StrictMasking      bool          `mapstructure:"ENV_STRICT_MASKING"`
	RejectLateArrivals bool          `mapstructure:"ENV_REJECT_LATE_ARRIVALS"`
	AverageSpeedKmh    float64       `mapstructure:"ENV_AVERAGE_SPEED_KMH"`
	MaxSteps           int           `mapstructure:"ENV_MAX_STEPS"`
	MaxEpisodeHours    float64       `mapstructure:"ENV_MAX_EPISODE_HOURS"`
	ImpactTimeout      time.Duration `mapstructure:"IMPACT_TIMEOUT"`

	VehicleCount    int     `mapstructure:"VEHICLE_COUNT"`
	VehicleCapacity float64 `mapstructure:"VEHICLE_CAPACITY"`
}

type WeatherConfig struct {
	APIKey        string  `mapstructure:"OPENWEATHER_API_KEY"`
	BaseURL       string  `mapstructure:"OPENWEATHER_BASE_URL"`
	RatePerSecond float64 `mapstructure:"OPENWEATHER_RATE_PER_SECOND"`
	Burst         int     `mapstructure:"OPENWEATHER_BURST"`
	// Factors overrides the default table, e.g. "rain=1.3,storm=1.6".
	Factors string `mapstructure:"WEATHER_FACTORS"`
}

type TrafficConfig struct {
	APIKey  string `mapstructure:"DIRECTIONS_API_KEY"`
	BaseURL string `mapstructure:"DIRECTIONS_BASE_URL"`
	Factors string `mapstructure:"TRAFFIC_FACTORS"`
}

type RushHourConfig struct {
	Enabled bool    `mapstructure:"RUSH_HOUR_ENABLED"`
	Factor  float64 `mapstructure:"RUSH_HOUR_FACTOR"`
	Windows string  `mapstructure:"RUSH_HOUR_WINDOWS"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"REDIS_ADDRESS"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	TTL      time.Duration `mapstructure:"IMPACT_CACHE_TTL"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"DB_DRIVER"`
	DSN      string `mapstructure:"DB_DSN"`
	SeedPath string `mapstructure:"SEED_PATH"`
}

type LogConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"LOG_PRETTY"`
}

// Config stores all configuration of the simulator.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Env      EnvConfig      `mapstructure:",squash"`
	Weather  WeatherConfig  `mapstructure:",squash"`
	Traffic  TrafficConfig  `mapstructure:",squash"`
	RushHour RushHourConfig `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	Log      LogConfig      `mapstructure:",squash"`

	// Parsed and validated during Load.
	WeatherFactors impact.WeatherTable `mapstructure:"-"`
	TrafficFactors impact.TrafficTable `mapstructure:"-"`
	RushWindows    []impact.HourWindow `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	w := env.DefaultWeights()
	ec := env.DefaultConfig()

	defaults := map[string]any{
		"REWARD_DISTANCE_WEIGHT":        w.DistanceWeight,
		"REWARD_TIME_EFFICIENCY_WEIGHT": w.TimeEfficiencyWeight,
		"REWARD_UTILIZATION_WEIGHT":     w.UtilizationWeight,
		"REWARD_COMPLETION_BONUS":       w.CompletionBonus,
		"REWARD_TIME_WINDOW_PENALTY":    w.TimeWindowPenalty,
		"REWARD_EPSILON":                w.Epsilon,
		"REWARD_INVALID_ACTION_PENALTY": w.InvalidActionPenalty,
		"ENV_STRICT_MASKING":            ec.StrictMasking,
		"ENV_REJECT_LATE_ARRIVALS":      ec.RejectLateArrivals,
		"ENV_AVERAGE_SPEED_KMH":         ec.AverageSpeedKmh,
		"ENV_MAX_STEPS":                 ec.MaxSteps,
		"ENV_MAX_EPISODE_HOURS":         ec.MaxEpisodeHours,
		"IMPACT_TIMEOUT":                ec.ImpactTimeout,
		"VEHICLE_COUNT":                 1,
		"VEHICLE_CAPACITY":              5000.0,

		"OPENWEATHER_API_KEY":         "",
		"OPENWEATHER_BASE_URL":        "https://api.openweathermap.org",
		"OPENWEATHER_RATE_PER_SECOND": 1.0,
		"OPENWEATHER_BURST":           5,
		"WEATHER_FACTORS":             "",

		"DIRECTIONS_API_KEY":  "",
		"DIRECTIONS_BASE_URL": "https://maps.googleapis.com/maps/api",
		"TRAFFIC_FACTORS":     "",

		"RUSH_HOUR_ENABLED": false,
		"RUSH_HOUR_FACTOR":  1.4,
		"RUSH_HOUR_WINDOWS": "7-9,16-19",

		"REDIS_ADDRESS":    "",
		"REDIS_PASSWORD":   "",
		"REDIS_DB":         0,
		"IMPACT_CACHE_TTL": 15 * time.Minute,

		"DB_DRIVER": "sqlite",
		"DB_DSN":    "data/app.db",
		"SEED_PATH": "data/seeds/customers.json",

		"LOG_LEVEL":  "info",
		"LOG_PRETTY": false,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Load reads configuration from the environment, a .env file in the working
// directory if present, and the config file at path (or $VRP_CONFIG) if one
// is given. Any invalid value wraps env.ErrConfiguration.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	cfg.Redis.Password = trimOptionalQuotes(cfg.Redis.Password)
	cfg.Weather.APIKey = trimOptionalQuotes(cfg.Weather.APIKey)
	cfg.Traffic.APIKey = trimOptionalQuotes(cfg.Traffic.APIKey)

	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// finish parses the derived fields and validates the whole configuration.
func (c *Config) finish() error {
	var err error

	c.WeatherFactors, err = impact.ParseWeatherTable(c.Weather.Factors, impact.DefaultWeatherTable())
	if err != nil {
		return fmt.Errorf("config: WEATHER_FACTORS: %w: %w", env.ErrConfiguration, err)
	}
	c.TrafficFactors, err = impact.ParseTrafficTable(c.Traffic.Factors, impact.DefaultTrafficTable())
	if err != nil {
		return fmt.Errorf("config: TRAFFIC_FACTORS: %w: %w", env.ErrConfiguration, err)
	}
	c.RushWindows, err = impact.ParseHourWindows(c.RushHour.Windows)
	if err != nil {
		return fmt.Errorf("config: RUSH_HOUR_WINDOWS: %w: %w", env.ErrConfiguration, err)
	}
	if c.RushHour.Enabled && c.RushHour.Factor < 1 {
		return fmt.Errorf("config: RUSH_HOUR_FACTOR: %w: must be at least 1", env.ErrConfiguration)
	}

	if err := c.EnvConfig(nil).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Env.VehicleCount < 1 {
		return fmt.Errorf("config: VEHICLE_COUNT: %w: must be at least 1", env.ErrConfiguration)
	}
	if c.Env.VehicleCapacity <= 0 {
		return fmt.Errorf("config: VEHICLE_CAPACITY: %w: must be positive", env.ErrConfiguration)
	}

	return nil
}

// EnvConfig converts the settings into an environment configuration.
func (c Config) EnvConfig(metrics *obs.Metrics) env.Config {
	return env.Config{
		Weights: env.Weights{
			DistanceWeight:       c.Env.DistanceWeight,
			TimeEfficiencyWeight: c.Env.TimeEfficiencyWeight,
			UtilizationWeight:    c.Env.UtilizationWeight,
			CompletionBonus:      c.Env.CompletionBonus,
			TimeWindowPenalty:    c.Env.TimeWindowPenalty,
			Epsilon:              c.Env.Epsilon,
			InvalidActionPenalty: c.Env.InvalidActionPenalty,
		},
		StrictMasking:      c.Env.StrictMasking,
		RejectLateArrivals: c.Env.RejectLateArrivals,
		AverageSpeedKmh:    c.Env.AverageSpeedKmh,
		MaxSteps:           c.Env.MaxSteps,
		MaxEpisodeHours:    c.Env.MaxEpisodeHours,
		ImpactTimeout:      c.Env.ImpactTimeout,
		Metrics:            metrics,
	}
}

func trimOptionalQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
