package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medflow/medflow/internal/config"
	"github.com/medflow/medflow/internal/dashboard"
	"github.com/medflow/medflow/internal/platform/db"
	"github.com/medflow/medflow/internal/seed"
	"github.com/medflow/medflow/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "medflow-server",
		Short:        "MedFlow hospital dashboard API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if cfg.IsDev() {
		logger.Warn().Msg("ENV=development: requests without a bearer token are treated as admin")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger, b)
	if err != nil {
		b.Close()
		return err
	}
	defer a.Close()
	logger.Info().Str("backend", b.kind).Msg("storage ready")

	if err := a.seedMemory(ctx); err != nil {
		return err
	}
	if _, err := a.feed.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial dashboard load failed")
	}

	e := a.router()
	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations (postgres backend)",
	}

	withMigrator := func(fn func(ctx context.Context, m *db.Migrator) error) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for migrations")
		}
		ctx := context.Background()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		return fn(ctx, db.NewMigrator(pool, migrations.FS))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printMigrationStatus(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the records of a JSON or TOML fixture file",
		Long:  "Create the records of a fixture file through the gateways. Without --file the demo dataset is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreBackend == config.BackendMemory {
				return errors.New("seed needs a persistent STORE_BACKEND (postgres or redis)")
			}

			data := seed.Demo()
			if file != "" {
				if data, err = seed.LoadFile(file); err != nil {
					return err
				}
			}

			ctx := context.Background()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := seed.Apply(ctx, a.gw.seedTarget(), data, a.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d departments, %d staff, %d patients, %d appointments.\n",
				n.Departments, n.Staff, n.Patients, n.Appointments)
			return nil
		},
	}
	cmd.Flags().String("file", "", "Fixture file (.json or .toml)")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the hospital reports summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.seedMemory(ctx); err != nil {
				return err
			}

			col, err := a.gw.loader().Load(ctx)
			if err != nil {
				return err
			}
			r := dashboard.NewReports(col, a.now())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			printReports(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print JSON instead of text")
	return cmd
}

// openApp builds an app with a quiet logger for one-shot commands.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)
	if cfg.LogLevel == "" || cfg.LogLevel == "info" {
		logger = logger.Level(zerolog.WarnLevel)
	}
	a, err := newApp(cfg, logger, b)
	if err != nil {
		b.Close()
		return nil, err
	}
	return a, nil
}
