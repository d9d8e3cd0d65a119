package logic

import (
	"context"
	"time"

	"github.com/projectapex/apex-api/internal/models"
)

// TeamStatsSource supplies season-to-date team statistics
type TeamStatsSource interface {
	FetchTeamStats(ctx context.Context, teamID string, asOf time.Time) (*models.TeamStats, error)
}

// EvaluationStore persists evaluations and serves them back for analysis
type EvaluationStore interface {
	FetchEvaluatedPredictions(ctx context.Context, filter models.EvaluationFilter) ([]models.EvaluationRecord, error)
	PersistEvaluation(ctx context.Context, ev *models.PredictionEvaluation) error
	TouchActualOutcome(ctx context.Context, predictionID string, actual models.Outcome, isCorrect bool) error
	UpsertMetrics(ctx context.Context, m *models.PredictionMetrics) error
}

// PredictionStore keeps per-game prediction rows
type PredictionStore interface {
	SavePredictions(ctx context.Context, preds []models.StoredPrediction) error
	PredictionsForGame(ctx context.Context, gameID string) ([]models.StoredPrediction, error)
}

// PredictionLogger accepts served predictions for the analytics sink.
// Enqueue must not block; it returns false when the entry was dropped.
type PredictionLogger interface {
	Enqueue(entry models.PredictionLogEntry) bool
}

// MetricsCache holds the latest metrics per (sport, league, model)
type MetricsCache interface {
	GetMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error)
	SetMetrics(ctx context.Context, m *models.PredictionMetrics) error
}

// MetricsRefresher recomputes stored metrics for one (sport, league, model)
type MetricsRefresher interface {
	RefreshMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error)
}
