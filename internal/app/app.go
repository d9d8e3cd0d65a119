// Package app wires configuration, stores, services and workers together
// for the API server and the operations CLI.
package app

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/config"
	"github.com/projectapex/apex-api/internal/handlers"
	"github.com/projectapex/apex-api/internal/logic"
	"github.com/projectapex/apex-api/internal/predict"
	"github.com/projectapex/apex-api/internal/store"
	"github.com/projectapex/apex-api/internal/worker"
)

// App holds every long-lived dependency. ClickHouse, Redis and the pool are
// nil when their URLs are not configured.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client

	Engine     *predict.Engine
	Repository *store.Repository
	LogReader  *store.PredictionLogReader
	Pool       *worker.Pool
	Scheduler  *worker.Scheduler

	Prediction logic.PredictionService
	Tracker    logic.TrackerService
	Analyzer   logic.AnalyzerService
	Monitor    logic.MonitorService

	guard *store.Guard
}

// New connects to every configured store and builds the services.
// On error, anything already opened is closed.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()
	sugar := logger.Sugar()

	weights := predict.DefaultWeights()
	if cfg.WeightsFile != "" {
		if weights, err = predict.LoadWeightsFile(cfg.WeightsFile); err != nil {
			return nil, fmt.Errorf("load weights: %w", err)
		}
	}
	a.Engine = predict.NewEngine(weights)
	sugar.Infow("Model weights loaded", "version", a.Engine.Version(), "file", cfg.WeightsFile)

	if a.Postgres, err = store.ConnectPostgres(ctx, cfg.PostgresURL, int32(cfg.PostgresMaxConns)); err != nil {
		return nil, err
	}
	a.guard = store.NewGuard(store.GuardConfig{
		Name:        "postgres",
		CallTimeout: cfg.StoreTimeout,
		OpenTimeout: cfg.BreakerTimeout,
		MaxFailures: uint32(cfg.BreakerMaxFailures),
		Logger:      sugar,
	})
	a.Repository = store.NewRepository(a.Postgres, a.guard)
	teamStats := store.NewTeamStatsRepository(a.Postgres, a.guard)

	var sink logic.PredictionLogger
	if cfg.ClickHouseURL != "" {
		if a.ClickHouse, err = store.ConnectClickHouse(ctx, cfg.ClickHouseURL); err != nil {
			return nil, err
		}
		a.LogReader = store.NewPredictionLogReader(a.ClickHouse)
	}

	var cache logic.MetricsCache
	var alerts worker.AlertSink
	if cfg.RedisURL != "" {
		if a.Redis, err = store.ConnectRedis(ctx, cfg.RedisURL); err != nil {
			return nil, err
		}
		kv := store.NewRedisKV(a.Redis)
		cache = store.NewMetricsCache(kv, cfg.MetricsCacheTTL)
		alerts = store.NewAlertPublisher(kv, cfg.AlertDedupeWindow, sugar)
	}

	if a.ClickHouse != nil {
		a.Pool = worker.NewPool(worker.PoolConfig{
			WorkerCount:   cfg.WorkerCount,
			QueueSize:     cfg.QueueSize,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			ClickHouse:    a.ClickHouse,
			Redis:         a.Redis,
			Logger:        logger,
		})
		sink = a.Pool
	}

	a.Analyzer = logic.NewAnalyzerService(a.Repository, cache, sugar)
	a.Tracker = logic.NewTrackerService(a.Repository, a.Analyzer, a.Repository, sugar)
	a.Prediction = logic.NewPredictionService(a.Engine, teamStats, a.Repository, sink, sugar)

	a.Scheduler, err = worker.NewScheduler(worker.SchedulerConfig{
		Schedule: cfg.MonitorSchedule,
		Timeout:  cfg.MonitorTimeout,
		Monitor:  logic.NewMonitorService(a.Repository, sugar),
		Alerts:   alerts,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	a.Monitor = a.Scheduler

	return a, nil
}

// Start launches background workers
func (a *App) Start(ctx context.Context) {
	if a.Pool != nil {
		a.Pool.Start(ctx)
	}
	a.Scheduler.Start()
}

// Stop drains background workers
func (a *App) Stop(ctx context.Context) {
	a.Scheduler.Stop(ctx)
	if a.Pool != nil {
		a.Pool.Stop()
	}
}

// Close releases store connections
func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.ClickHouse != nil {
		a.ClickHouse.Close()
	}
	if a.Postgres != nil {
		a.Postgres.Close()
	}
}

// HandlerConfig exposes the services to the HTTP layer
func (a *App) HandlerConfig() handlers.Config {
	cfg := handlers.Config{
		Logger:     a.Logger,
		Prediction: a.Prediction,
		Tracker:    a.Tracker,
		Analyzer:   a.Analyzer,
		Monitor:    a.Monitor,
		Checks: map[string]handlers.ReadinessCheck{
			"postgres": a.Postgres.Ping,
		},
	}
	if a.LogReader != nil {
		cfg.PredictionLog = a.LogReader
	}
	if a.Pool != nil {
		cfg.Queue = a.Pool
	}
	if a.ClickHouse != nil {
		cfg.Checks["clickhouse"] = a.ClickHouse.Ping
	}
	if a.Redis != nil {
		rdb := a.Redis
		cfg.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return cfg
}
