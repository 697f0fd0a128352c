package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"vrp-route-env/internal/config"
	"vrp-route-env/internal/platform/obs"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath  string
	metricsAddr string

	cfg     config.Config
	log     zerolog.Logger
	metrics *obs.Metrics
}

func rootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vrpsim",
		Short:         "Simulate vehicle routing episodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (defaults to $"+config.ConfigPathEnv+")")
	cmd.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	cmd.AddCommand(
		a.generateCommand(),
		a.simulateCommand(),
		a.evaluateCommand(),
		a.seedCommand(),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = obs.NewLogger(cfg.Log.Level, cfg.Log.Pretty)
	a.metrics = obs.NewMetrics()

	ctx := a.log.WithContext(cmd.Context())
	if a.metricsAddr != "" {
		if err := a.serveMetrics(ctx); err != nil {
			return err
		}
	}
	cmd.SetContext(ctx)
	return nil
}

// serveMetrics exposes the registry until ctx is cancelled.
func (a *app) serveMetrics(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.metricsAddr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	a.log.Info().Str("addr", ln.Addr().String()).Msg("metrics listening")
	return nil
}
