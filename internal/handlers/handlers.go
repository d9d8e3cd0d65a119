package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/logic"
	"github.com/projectapex/apex-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// PredictionLogReader serves recently logged predictions
type PredictionLogReader interface {
	Recent(ctx context.Context, sport string, limit int) ([]models.PredictionLogEntry, error)
}

// QueueStats reports the prediction log backlog
type QueueStats interface {
	QueueDepth() int
}

// ReadinessCheck probes one dependency
type ReadinessCheck func(ctx context.Context) error

type Config struct {
	Logger *zap.Logger
	// Services
	Prediction logic.PredictionService
	Tracker    logic.TrackerService
	Analyzer   logic.AnalyzerService
	Monitor    logic.MonitorService
	// Optional collaborators
	PredictionLog PredictionLogReader
	Queue         QueueStats
	Checks        map[string]ReadinessCheck
}

type Handler struct {
	logger        *zap.SugaredLogger
	validator     *validator.Validate
	prediction    logic.PredictionService
	tracker       logic.TrackerService
	analyzer      logic.AnalyzerService
	monitor       logic.MonitorService
	predictionLog PredictionLogReader
	queue         QueueStats
	checks        map[string]ReadinessCheck
}

func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:        logger.Sugar(),
		validator:     validator.New(),
		prediction:    cfg.Prediction,
		tracker:       cfg.Tracker,
		analyzer:      cfg.Analyzer,
		monitor:       cfg.Monitor,
		predictionLog: cfg.PredictionLog,
		queue:         cfg.Queue,
		checks:        cfg.Checks,
	}
}
