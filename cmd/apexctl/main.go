// Command apexctl is the Apex operations CLI.
//
// Usage:
//
//	apexctl predict --file matchup.json --model ensemble
//	apexctl predict-game --home bos --away nyk --sport nba --game-id g-1001
//	apexctl evaluate --prediction-id p-1 --actual home --predicted home --probability 0.64 --sport nba --model ensemble
//	apexctl resolve --game-id g-1001 --home 112 --away 104
//	apexctl analyze --sport nba --model ensemble --range month
//	apexctl calibrate --sport nba --model ensemble
//	apexctl monitor
//	apexctl migrate
//	apexctl import-legacy --since 2023-01-01
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/app"
	"github.com/projectapex/apex-api/internal/config"
)

var (
	logger  *zap.Logger
	verbose bool
)

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "apexctl",
		Short:         "Apex prediction operations CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(predictCmd())
	root.AddCommand(weightsCmd())
	root.AddCommand(predictGameCmd())
	root.AddCommand(evaluateCmd())
	root.AddCommand(resolveCmd())
	root.AddCommand(analyzeCmd())
	root.AddCommand(calibrateCmd())
	root.AddCommand(monitorCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(importLegacyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger writes to stderr so command output on stdout stays parseable
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// runWithApp loads config, connects the stores and runs fn. The prediction
// log pool is started so entries enqueued by fn are flushed before exit.
func runWithApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, 30*time.Second)
	a, err := app.New(connectCtx, cfg, logger)
	cancelConnect()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Pool != nil {
		a.Pool.Start(context.Background())
		defer a.Pool.Stop()
	}

	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
