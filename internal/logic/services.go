package logic

import (
	"context"

	"github.com/projectapex/apex-api/internal/models"
)

// PredictionService serves game forecasts
type PredictionService interface {
	Predict(model string, home, away *models.TeamStats, gc *models.GameContext) (models.MLPrediction, error)
	PredictGame(ctx context.Context, req PredictGameRequest) (*models.GamePrediction, error)
}

// TrackerService scores predictions against realized outcomes
type TrackerService interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (*models.PredictionEvaluation, error)
	ResolveGame(ctx context.Context, gameID string, homeScore, awayScore float64) ([]models.PredictionEvaluation, error)
}

// AnalyzerService aggregates evaluations into performance reports
type AnalyzerService interface {
	MetricsRefresher
	Analyze(ctx context.Context, sport, league, model string, tr TimeRange) (*models.ModelPerformanceAnalysis, error)
	CalibrationAnalysis(ctx context.Context, sport, model string) (*models.CalibrationReport, error)
	CachedMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error)
}

// MonitorService runs health checks over recent evaluations
type MonitorService interface {
	Run(ctx context.Context) (*models.MonitorReport, error)
}
