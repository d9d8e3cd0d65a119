package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/projectapex/apex-api/internal/app"
	"github.com/projectapex/apex-api/internal/config"
	"github.com/projectapex/apex-api/internal/models"
	"github.com/projectapex/apex-api/internal/store"
	"github.com/projectapex/apex-api/migrations"
)

func migrateCmd() *cobra.Command {
	var skipClickHouse bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres and ClickHouse schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			sugar := logger.Sugar()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			pgMigrations, err := store.LoadMigrations(migrations.Postgres, "postgres")
			if err != nil {
				return err
			}
			db, err := store.OpenPostgresSQL(ctx, cfg.PostgresURL)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := store.MigratePostgres(ctx, db, pgMigrations, sugar)
			if err != nil {
				return err
			}
			sugar.Infow("Postgres schema up to date", "applied", len(applied), "known", len(pgMigrations))

			if skipClickHouse || cfg.ClickHouseURL == "" {
				sugar.Info("Skipping ClickHouse migrations")
				return nil
			}
			chMigrations, err := store.LoadMigrations(migrations.ClickHouse, "clickhouse")
			if err != nil {
				return err
			}
			conn, err := store.ConnectClickHouse(ctx, cfg.ClickHouseURL)
			if err != nil {
				return err
			}
			defer conn.Close()
			return store.MigrateClickHouse(ctx, conn, chMigrations, sugar)
		},
	}
	cmd.Flags().BoolVar(&skipClickHouse, "skip-clickhouse", false, "Only migrate Postgres")
	return cmd
}

func importLegacyCmd() *cobra.Command {
	var dsn, since string
	var pageSize int
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Copy predictions from the MySQL archive into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sinceTime time.Time
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				sinceTime = t
			}

			return runWithApp(func(ctx context.Context, a *app.App) error {
				sugar := logger.Sugar()
				if dsn == "" {
					dsn = a.Config.LegacyMySQLDSN
				}
				if dsn == "" {
					return fmt.Errorf("--dsn or LEGACY_MYSQL_DSN is required")
				}

				archive, err := store.OpenLegacyArchive(ctx, dsn)
				if err != nil {
					return err
				}
				defer archive.Close()

				start := time.Now()
				n, err := archive.Scan(ctx, sinceTime, pageSize, func(page []models.StoredPrediction) error {
					if dryRun {
						sugar.Debugw("Dry run page", "rows", len(page), "first", page[0].ID)
						return nil
					}
					return a.Repository.SavePredictions(ctx, page)
				})
				if err != nil {
					return fmt.Errorf("import stopped after %d rows: %w", n, err)
				}
				sugar.Infow("Legacy import finished",
					"rows", n,
					"dry_run", dryRun,
					"duration", time.Since(start).Round(time.Millisecond),
				)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "MySQL DSN; defaults to LEGACY_MYSQL_DSN")
	cmd.Flags().StringVar(&since, "since", "", "Only import rows created on or after this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&pageSize, "page-size", 500, "Rows per page")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Read the archive without writing")
	return cmd
}
