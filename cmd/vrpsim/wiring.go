package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vrp-route-env/internal/adapters/cache"
	"vrp-route-env/internal/adapters/repositories"
	"vrp-route-env/internal/adapters/traffic"
	"vrp-route-env/internal/adapters/weather"
	"vrp-route-env/internal/impact"
	"vrp-route-env/internal/platform/db"
	"vrp-route-env/internal/ports"

	"github.com/redis/go-redis/v9"
)

// sourceDB selects the configured database instead of a dataset file.
const sourceDB = "db"

const upstreamTimeout = 10 * time.Second

// openDB connects to the configured database and makes sure the schema exists.
func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	conn, err := db.OpenDriver(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// repository resolves a --data value: "db" reads the customers table, any
// other value is a JSON or CSV file. An empty value uses SEED_PATH.
func (a *app) repository(conn *sql.DB, source string) ports.CustomerRepository {
	switch source {
	case sourceDB:
		if a.cfg.Database.Driver == db.DriverPostgres || a.cfg.Database.Driver == "postgres" {
			return repositories.NewPostgresCustomerRepository(conn)
		}
		return repositories.NewSqliteCustomerRepository(conn)
	case "":
		return repositories.NewFileCustomerRepository(a.cfg.Database.SeedPath)
	default:
		return repositories.NewFileCustomerRepository(source)
	}
}

// impactProvider composes the live condition sources, the rush hour model and
// a shared cache. With no API keys and rush hour disabled it is neutral.
// The returned func releases the cache connection.
func (a *app) impactProvider(ctx context.Context, conn *sql.DB) (ports.ImpactProvider, func(), error) {
	closeFn := func() {}

	guardCfg := impact.GuardConfig{
		WeatherFactors: a.cfg.WeatherFactors,
		TrafficFactors: a.cfg.TrafficFactors,
		Timeout:        a.cfg.Env.ImpactTimeout,
		Metrics:        a.metrics,
	}

	if a.cfg.Weather.APIKey != "" {
		w, err := weather.NewOpenWeatherClient(weather.Options{
			APIKey:        a.cfg.Weather.APIKey,
			BaseURL:       a.cfg.Weather.BaseURL,
			Timeout:       upstreamTimeout,
			RatePerSecond: a.cfg.Weather.RatePerSecond,
			Burst:         a.cfg.Weather.Burst,
		})
		if err != nil {
			return nil, closeFn, fmt.Errorf("impact provider: %w", err)
		}
		guardCfg.Weather = w
	}
	if a.cfg.Traffic.APIKey != "" {
		t, err := traffic.NewDirectionsClient(a.cfg.Traffic.APIKey, a.cfg.Traffic.BaseURL, upstreamTimeout)
		if err != nil {
			return nil, closeFn, fmt.Errorf("impact provider: %w", err)
		}
		guardCfg.Traffic = t
	}

	live := guardCfg.Weather != nil || guardCfg.Traffic != nil
	if !live && !a.cfg.RushHour.Enabled {
		a.log.Debug().Msg("no impact sources configured; travel is unscaled")
		return impact.Neutral{}, closeFn, nil
	}

	var combined impact.Combined
	if live {
		// Only live lookups are worth caching; rush hour depends on the clock.
		var store ports.ImpactCache
		switch {
		case a.cfg.Redis.Address != "":
			client := redis.NewClient(&redis.Options{
				Addr:     a.cfg.Redis.Address,
				Password: a.cfg.Redis.Password,
				DB:       a.cfg.Redis.DB,
			})
			if err := client.Ping(ctx).Err(); err != nil {
				a.log.Warn().Err(err).Str("addr", a.cfg.Redis.Address).Msg("redis unreachable; lookups will bypass the cache")
			}
			store = cache.NewRedisImpactCache(client, "", a.cfg.Redis.TTL)
			closeFn = func() { _ = client.Close() }
		case conn != nil:
			store = cache.NewSQLImpactCache(conn, a.cfg.Redis.TTL)
		}
		combined = append(combined, impact.NewCached(impact.NewGuard(guardCfg), store))
	}
	if a.cfg.RushHour.Enabled {
		combined = append(combined, impact.NewRushHour(a.cfg.RushHour.Factor, a.cfg.RushWindows))
	}

	a.log.Info().
		Bool("weather", guardCfg.Weather != nil).
		Bool("traffic", guardCfg.Traffic != nil).
		Bool("rush_hour", a.cfg.RushHour.Enabled).
		Msg("impact provider ready")
	return combined, closeFn, nil
}
