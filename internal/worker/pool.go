// Package worker implements the buffered worker pool that ships served
// predictions to the ClickHouse prediction log, and the cron scheduler that
// runs periodic monitoring passes.
//
// The pool decouples request handling from analytics writes:
// - Load shedding when the queue is full
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/models"
)

const (
	servedCountsKey   = "apex:predictions:served"
	dailyCountsPrefix = "apex:predictions:daily:"
	dailyCountsTTL    = 48 * time.Hour
	flushTimeout      = 10 * time.Second
)

// Prometheus metrics
var (
	entriesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apex_prediction_log_ingested_total",
		Help: "Total number of prediction log entries enqueued",
	})

	entriesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apex_prediction_log_written_total",
		Help: "Total number of prediction log entries written to ClickHouse",
	})

	entriesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apex_prediction_log_failed_total",
		Help: "Total number of prediction log entries that failed to write",
	})

	entriesShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apex_prediction_log_load_shed_total",
		Help: "Total number of prediction log entries dropped due to load shedding",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "apex_prediction_log_queue_depth",
		Help: "Current depth of the prediction log queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "apex_prediction_log_batch_duration_seconds",
		Help:    "Duration of prediction log batch inserts",
		Buckets: prometheus.DefBuckets,
	})
)

// Job is one queued log entry
type Job struct {
	Entry    models.PredictionLogEntry
	Enqueued time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Redis         *redis.Client // optional; per-model counters are skipped without it
	Logger        *zap.Logger
}

// Pool batches prediction log entries into ClickHouse
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop drains the queue, flushes pending batches and waits for workers to exit
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	close(p.jobQueue)
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds an entry without blocking. It returns false when the entry was shed.
func (p *Pool) Enqueue(entry models.PredictionLogEntry) (ok bool) {
	// Sending on a closed queue after Stop
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue prediction log entry (pool stopped)", "error", r)
			entriesShed.Inc()
			ok = false
		}
	}()

	select {
	case p.jobQueue <- Job{Entry: entry, Enqueued: time.Now()}:
		entriesIngested.Inc()
		return true
	default:
		entriesShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			entriesFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch written", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			entriesWritten.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// processBatch writes a batch to ClickHouse, then bumps Redis counters
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO apex.prediction_log (
			prediction_id, game_id, model, sport, league, home_team_id, away_team_id,
			home_win_probability, predicted_spread, predicted_total, confidence, created_at
		)
	`)
	if err != nil {
		return err
	}

	for _, job := range batch {
		e := job.Entry
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = job.Enqueued
		}
		if err := chBatch.Append(
			e.PredictionID,
			e.GameID,
			e.Model,
			e.Sport,
			e.League,
			e.HomeTeamID,
			e.AwayTeamID,
			e.HomeWinProbability,
			e.PredictedSpread,
			e.PredictedTotal,
			e.Confidence,
			createdAt,
		); err != nil {
			p.logger.Warnw("Failed to append entry to batch", "error", err, "prediction_id", e.PredictionID)
			continue
		}
	}

	if err := chBatch.Send(); err != nil {
		return err
	}

	if p.config.Redis != nil {
		// The slice is reused by the worker loop
		batchCopy := make([]Job, len(batch))
		copy(batchCopy, batch)
		go p.processBatchSideEffects(context.Background(), batchCopy)
	}
	return nil
}

// processBatchSideEffects maintains per-model served counters in Redis
func (p *Pool) processBatchSideEffects(ctx context.Context, batch []Job) {
	pipe := p.config.Redis.Pipeline()

	touched := make(map[string]struct{})
	for _, job := range batch {
		e := job.Entry
		field := e.Model + ":" + e.Sport
		pipe.HIncrBy(ctx, servedCountsKey, field, 1)

		day := dailyCountsPrefix + job.Enqueued.UTC().Format("2006-01-02")
		pipe.HIncrBy(ctx, day, field, 1)
		touched[day] = struct{}{}
	}
	for key := range touched {
		pipe.Expire(ctx, key, dailyCountsTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Warnw("Failed to update served counters", "error", err, "batchSize", len(batch))
	}
}
