// Command api serves game predictions, evaluation tracking and model
// performance analysis over HTTP.
//
// @title Apex Prediction API
// @version 1.0
// @description Game outcome predictions, evaluation tracking and model performance analysis.
// @BasePath /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/projectapex/apex-api/docs" // swagger docs
	"github.com/projectapex/apex-api/internal/app"
	"github.com/projectapex/apex-api/internal/config"
	"github.com/projectapex/apex-api/internal/handlers"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(ctx, 30*time.Second)
	a, err := app.New(connectCtx, cfg, logger)
	cancelConnect()
	if err != nil {
		sugar.Fatalw("Failed to initialize", "error", err)
	}
	defer a.Close()

	// Workers outlive the signal context so Stop can drain them
	a.Start(context.Background())

	h := handlers.New(a.HandlerConfig())
	router := handlers.NewRouter(h, handlers.RouterConfig{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		EnableSwagger:      cfg.EnableSwagger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("Starting Apex API",
			"addr", srv.Addr,
			"env", cfg.Env,
			"clickhouse", cfg.ClickHouseURL != "",
			"redis", cfg.RedisURL != "",
			"monitorSchedule", cfg.MonitorSchedule,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("HTTP shutdown error", "error", err)
	}
	a.Stop(shutdownCtx)
	sugar.Info("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
