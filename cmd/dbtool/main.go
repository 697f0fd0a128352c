package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	"vrp-route-env/internal/adapters/cache"
	"vrp-route-env/internal/adapters/repositories"
	"vrp-route-env/internal/config"
	"vrp-route-env/internal/platform/db"
	"vrp-route-env/internal/platform/obs"

	"github.com/rs/zerolog"
)

// dbtool prepares the configured database: it creates the schema, loads the
// seed dataset and drops expired impact cache rows.
func main() {
	skipSeed := flag.Bool("skip-seed", false, "Only create the schema and purge the cache")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := obs.NewLogger(cfg.Log.Level, cfg.Log.Pretty)
	ctx := logger.WithContext(context.Background())

	conn, err := db.OpenDriver(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	seedPath := cfg.Database.SeedPath
	if *skipSeed {
		seedPath = ""
	}
	if err := initAndSeed(ctx, conn, seedPath, cfg); err != nil {
		logger.Error().Err(err).Msg("dbtool failed")
		conn.Close()
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, cfg config.Config) error {
	logger := zerolog.Ctx(ctx)

	logger.Info().Str("driver", cfg.Database.Driver).Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}
	logger.Info().Msg("schema ready")

	if seedPath != "" {
		logger.Info().Str("path", seedPath).Msg("seeding database")
		if err := repositories.SeedFromFile(ctx, conn, seedPath); err != nil {
			return err
		}
		logger.Info().Msg("seeding complete")
	}

	purged, err := cache.NewSQLImpactCache(conn, cfg.Redis.TTL).Purge(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int64("rows", purged).Msg("expired impact cache entries purged")

	return nil
}
