package handlers

import (
	"context"

	"github.com/projectapex/apex-api/internal/logic"
	"github.com/projectapex/apex-api/internal/models"
)

// MockPredictionService
type MockPredictionService struct {
	PredictFunc     func(model string, home, away *models.TeamStats, gc *models.GameContext) (models.MLPrediction, error)
	PredictGameFunc func(ctx context.Context, req logic.PredictGameRequest) (*models.GamePrediction, error)
}

func (m *MockPredictionService) Predict(model string, home, away *models.TeamStats, gc *models.GameContext) (models.MLPrediction, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(model, home, away, gc)
	}
	return models.MLPrediction{HomeWinProbability: 0.5, AwayWinProbability: 0.5}, nil
}

func (m *MockPredictionService) PredictGame(ctx context.Context, req logic.PredictGameRequest) (*models.GamePrediction, error) {
	if m.PredictGameFunc != nil {
		return m.PredictGameFunc(ctx, req)
	}
	return &models.GamePrediction{PredictionID: "p-1"}, nil
}

// MockTrackerService
type MockTrackerService struct {
	EvaluateFunc    func(ctx context.Context, req logic.EvaluateRequest) (*models.PredictionEvaluation, error)
	ResolveGameFunc func(ctx context.Context, gameID string, homeScore, awayScore float64) ([]models.PredictionEvaluation, error)
}

func (m *MockTrackerService) Evaluate(ctx context.Context, req logic.EvaluateRequest) (*models.PredictionEvaluation, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, req)
	}
	return &models.PredictionEvaluation{PredictionID: req.PredictionID}, nil
}

func (m *MockTrackerService) ResolveGame(ctx context.Context, gameID string, homeScore, awayScore float64) ([]models.PredictionEvaluation, error) {
	if m.ResolveGameFunc != nil {
		return m.ResolveGameFunc(ctx, gameID, homeScore, awayScore)
	}
	return nil, nil
}

// MockAnalyzerService
type MockAnalyzerService struct {
	AnalyzeFunc       func(ctx context.Context, sport, league, model string, tr logic.TimeRange) (*models.ModelPerformanceAnalysis, error)
	CalibrationFunc   func(ctx context.Context, sport, model string) (*models.CalibrationReport, error)
	CachedMetricsFunc func(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error)
}

func (m *MockAnalyzerService) Analyze(ctx context.Context, sport, league, model string, tr logic.TimeRange) (*models.ModelPerformanceAnalysis, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, sport, league, model, tr)
	}
	return nil, nil
}

func (m *MockAnalyzerService) CalibrationAnalysis(ctx context.Context, sport, model string) (*models.CalibrationReport, error) {
	if m.CalibrationFunc != nil {
		return m.CalibrationFunc(ctx, sport, model)
	}
	return nil, nil
}

func (m *MockAnalyzerService) CachedMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error) {
	if m.CachedMetricsFunc != nil {
		return m.CachedMetricsFunc(ctx, sport, league, model)
	}
	return nil, nil
}

func (m *MockAnalyzerService) RefreshMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error) {
	return m.CachedMetrics(ctx, sport, league, model)
}

// MockMonitorService
type MockMonitorService struct {
	RunFunc func(ctx context.Context) (*models.MonitorReport, error)
}

func (m *MockMonitorService) Run(ctx context.Context) (*models.MonitorReport, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return &models.MonitorReport{}, nil
}

// MockPredictionLog
type MockPredictionLog struct {
	RecentFunc func(ctx context.Context, sport string, limit int) ([]models.PredictionLogEntry, error)
}

func (m *MockPredictionLog) Recent(ctx context.Context, sport string, limit int) ([]models.PredictionLogEntry, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, sport, limit)
	}
	return []models.PredictionLogEntry{}, nil
}

type MockQueue struct{ Depth int }

func (m *MockQueue) QueueDepth() int { return m.Depth }
