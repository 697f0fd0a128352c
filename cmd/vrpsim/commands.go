package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"vrp-route-env/internal/adapters/repositories"
	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/env"
	"vrp-route-env/internal/ports"
	"vrp-route-env/internal/services"

	"github.com/spf13/cobra"
)

// datasetFlags are shared by the commands that read customers.
type datasetFlags struct {
	source string
	only   []int
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "data", "", `Dataset file (.json or .csv), or "db" for the configured database (defaults to SEED_PATH)`)
	cmd.Flags().IntSliceVar(&f.only, "only", nil, "Restrict the episode to these customer indices")
}

// load resolves the dataset. The returned *sql.DB is non-nil only when the
// database was opened and must be closed by the caller.
func (a *app) load(ctx context.Context, f datasetFlags) (domain.Dataset, *sql.DB, error) {
	var conn *sql.DB
	if f.source == sourceDB {
		var err error
		if conn, err = a.openDB(ctx); err != nil {
			return nil, nil, err
		}
	}

	repo := a.repository(conn, f.source)

	var (
		data domain.Dataset
		err  error
	)
	if len(f.only) > 0 {
		data, err = services.SelectCustomers(ctx, repo, f.only)
	} else {
		data, err = repo.ListCustomers(ctx)
	}
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, nil, err
	}
	return data, conn, nil
}

func (a *app) generateCommand() *cobra.Command {
	opts := services.DefaultGenerateOptions()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := services.GenerateCustomers(opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("generate: %w", err)
				}
				defer file.Close()
				w = file
			}
			if err := repositories.EncodeJSON(w, data); err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			a.log.Info().Int("customers", opts.Customers).Uint64("seed", opts.Seed).Str("out", out).Msg("dataset generated")
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Customers, "customers", opts.Customers, "Number of customers besides the depot")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "Random seed")
	cmd.Flags().Float64Var(&opts.Spread, "spread", opts.Spread, "Half-width in degrees of the area around the depot")
	cmd.Flags().Float64Var(&opts.Center.Lat, "lat", opts.Center.Lat, "Depot latitude")
	cmd.Flags().Float64Var(&opts.Center.Lon, "lon", opts.Center.Lon, "Depot longitude")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) simulateCommand() *cobra.Command {
	var (
		data     datasetFlags
		policy   string
		seed     uint64
		vehicles int
		capacity float64
		render   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Roll out one episode per vehicle with a fixed policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if _, ok := services.PolicyByName(policy, seed); !ok {
				return fmt.Errorf("simulate: unknown policy %q", policy)
			}
			if !cmd.Flags().Changed("vehicles") {
				vehicles = a.cfg.Env.VehicleCount
			}
			if !cmd.Flags().Changed("capacity") {
				capacity = a.cfg.Env.VehicleCapacity
			}

			customers, conn, err := a.load(ctx, data)
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}
			if conn != nil {
				defer conn.Close()
			}

			provider, release, err := a.impactProvider(ctx, conn)
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}
			defer release()

			newPolicy := func(vehicleID int) services.Policy {
				p, _ := services.PolicyByName(policy, seed+uint64(vehicleID))
				return p
			}

			w := cmd.OutOrStdout()

			if vehicles == 1 {
				e, err := env.New(a.cfg.EnvConfig(a.metrics), provider)
				if err != nil {
					return fmt.Errorf("simulate: %w", err)
				}
				res, err := services.RunEpisode(ctx, e, newPolicy(1), services.EpisodeRequest{
					Customers:    customers,
					VehicleCount: 1,
					Capacity:     capacity,
					VehicleID:    1,
				})
				if err != nil {
					return fmt.Errorf("simulate: %w", err)
				}

				if render {
					if err := e.Render(w); err != nil {
						return err
					}
					fmt.Fprintln(w)
				}
				return writePlans(w, []domain.RoutePlan{res.Plan})
			}

			plans, err := services.RunFleet(ctx, services.FleetRequest{
				VehicleCount: vehicles,
				Capacity:     capacity,
				Config:       a.cfg.EnvConfig(a.metrics),
				NewPolicy:    newPolicy,
			}, customers, provider)
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}
			return writePlans(w, plans)
		},
	}
	data.register(cmd)
	cmd.Flags().StringVar(&policy, "policy", "nearest", "Policy: nearest, greedy or random")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed of the random policy")
	cmd.Flags().IntVar(&vehicles, "vehicles", 1, "Number of vehicles (defaults to VEHICLE_COUNT)")
	cmd.Flags().Float64Var(&capacity, "capacity", 0, "Capacity of each vehicle (defaults to VEHICLE_CAPACITY)")
	cmd.Flags().BoolVar(&render, "render", false, "Print the final environment state of a single-vehicle run")
	return cmd
}

func (a *app) evaluateCommand() *cobra.Command {
	var (
		data     datasetFlags
		policy   string
		seed     uint64
		episodes int
		workers  int
		capacity float64
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run many episodes and report return statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if _, ok := services.PolicyByName(policy, seed); !ok {
				return fmt.Errorf("evaluate: unknown policy %q", policy)
			}
			if !cmd.Flags().Changed("capacity") {
				capacity = a.cfg.Env.VehicleCapacity
			}

			customers, conn, err := a.load(ctx, data)
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}
			if conn != nil {
				defer conn.Close()
			}

			provider, release, err := a.impactProvider(ctx, conn)
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}
			defer release()

			stats, err := services.EvaluateBatch(ctx, services.BatchRequest{
				Customers:    customers,
				VehicleCount: 1,
				Capacity:     capacity,
				Config:       a.cfg.EnvConfig(a.metrics),
				Episodes:     episodes,
				Workers:      workers,
				NewPolicy: func(episode int) services.Policy {
					p, _ := services.PolicyByName(policy, seed+uint64(episode))
					return p
				},
			}, provider)
			if err != nil {
				return err
			}

			return writeStats(cmd.OutOrStdout(), policy, stats)
		},
	}
	data.register(cmd)
	cmd.Flags().StringVar(&policy, "policy", "random", "Policy: nearest, greedy or random")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Base seed; episode i uses seed+i")
	cmd.Flags().IntVar(&episodes, "episodes", 100, "Number of episodes")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent environments")
	cmd.Flags().Float64Var(&capacity, "capacity", 0, "Vehicle capacity (defaults to VEHICLE_CAPACITY)")
	return cmd
}

func (a *app) seedCommand() *cobra.Command {
	var (
		from     string
		generate int
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a dataset into the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				data domain.Dataset
				err  error
			)
			if generate > 0 {
				opts := services.DefaultGenerateOptions()
				opts.Customers = generate
				opts.Seed = seed
				data, err = services.GenerateCustomers(opts)
			} else {
				if from == "" {
					from = a.cfg.Database.SeedPath
				}
				var repo ports.CustomerRepository = repositories.NewFileCustomerRepository(from)
				data, err = repo.ListCustomers(ctx)
			}
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			conn, err := a.openDB(ctx)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer conn.Close()

			if err := repositories.SeedCustomers(ctx, conn, data); err != nil {
				return err
			}

			a.log.Info().
				Str("driver", a.cfg.Database.Driver).
				Int("customers", len(data)-1).
				Msg("seeding complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Dataset file to load (defaults to SEED_PATH)")
	cmd.Flags().IntVar(&generate, "generate", 0, "Seed a synthetic dataset with this many customers instead")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed for --generate")
	return cmd
}
