package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/logic"
	"github.com/projectapex/apex-api/internal/models"
)

const defaultMonitorSchedule = "@every 15m"

// AlertSink receives the alerts raised by a monitoring pass
type AlertSink interface {
	Publish(ctx context.Context, alerts []models.Alert) (int, error)
}

// SchedulerConfig configures the monitor scheduler
type SchedulerConfig struct {
	Schedule string        // cron spec or @every descriptor
	Timeout  time.Duration // per-pass deadline
	Monitor  logic.MonitorService
	Alerts   AlertSink // optional
	Logger   *zap.Logger
}

// Scheduler runs monitoring passes on a cron schedule and keeps the last report
type Scheduler struct {
	cron    *cron.Cron
	entry   cron.EntryID
	monitor logic.MonitorService
	alerts  AlertSink
	timeout time.Duration
	logger  *zap.SugaredLogger

	mu   sync.RWMutex
	last *models.MonitorReport
}

func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = defaultMonitorSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(cfg.Logger.Named("cron")))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		monitor: cfg.Monitor,
		alerts:  cfg.Alerts,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.Sugar(),
	}

	id, err := s.cron.AddFunc(cfg.Schedule, s.runOnce)
	if err != nil {
		return nil, fmt.Errorf("schedule monitor %q: %w", cfg.Schedule, err)
	}
	s.entry = id
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infow("Monitor scheduler started", "next", s.cron.Entry(s.entry).Next)
}

// Stop waits for a running pass to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Monitor scheduler stop timed out")
	}
}

// LastReport returns the most recent report, or nil before the first pass
func (s *Scheduler) LastReport() *models.MonitorReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.Run(ctx); err != nil {
		s.logger.Errorw("Monitoring pass failed", "error", err)
	}
}

// Run performs one monitoring pass and publishes its alerts. It satisfies
// logic.MonitorService so on-demand passes share the alert fan-out.
func (s *Scheduler) Run(ctx context.Context) (*models.MonitorReport, error) {
	start := time.Now()
	report, err := s.monitor.Run(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	published := 0
	if s.alerts != nil {
		published, err = s.alerts.Publish(ctx, report.Alerts)
		if err != nil {
			s.logger.Warnw("Failed to publish alerts", "error", err, "published", published)
		}
	}

	s.logger.Infow("Monitoring pass complete",
		"alerts", len(report.Alerts),
		"published", published,
		"groups", len(report.ModelHealthScores),
		"duration", time.Since(start),
	)
	return report, nil
}
