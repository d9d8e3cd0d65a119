package logic

import (
	"context"
	"sync"
	"time"

	"github.com/projectapex/apex-api/internal/models"
)

// MockEvaluationStore records calls in order and delegates to optional funcs
type MockEvaluationStore struct {
	mu    sync.Mutex
	Calls []string

	Records        []models.EvaluationRecord
	LastFilter     models.EvaluationFilter
	PersistErr     error
	TouchErr       error
	UpsertErr      error
	FetchErr       error
	UpsertedMetric *models.PredictionMetrics
}

func (m *MockEvaluationStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockEvaluationStore) FetchEvaluatedPredictions(ctx context.Context, filter models.EvaluationFilter) ([]models.EvaluationRecord, error) {
	m.record("fetch")
	m.LastFilter = filter
	return m.Records, m.FetchErr
}

func (m *MockEvaluationStore) PersistEvaluation(ctx context.Context, ev *models.PredictionEvaluation) error {
	m.record("persist")
	if m.PersistErr == nil {
		m.Records = append(m.Records, models.EvaluationRecord{
			PredictionID: ev.PredictionID,
			ModelName:    ev.ModelName,
			Sport:        ev.Sport,
			League:       ev.League,
			Confidence:   ev.Probability,
			IsCorrect:    ev.IsCorrect,
			CreatedAt:    ev.EvaluatedAt,
		})
	}
	return m.PersistErr
}

func (m *MockEvaluationStore) TouchActualOutcome(ctx context.Context, predictionID string, actual models.Outcome, isCorrect bool) error {
	m.record("touch")
	return m.TouchErr
}

func (m *MockEvaluationStore) UpsertMetrics(ctx context.Context, metrics *models.PredictionMetrics) error {
	m.record("upsert")
	m.UpsertedMetric = metrics
	return m.UpsertErr
}

// MockRefresher implements MetricsRefresher
type MockRefresher struct {
	RefreshFunc func(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error)
	Store       *MockEvaluationStore
}

func (m *MockRefresher) RefreshMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error) {
	if m.Store != nil {
		m.Store.record("refresh")
	}
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, sport, league, model)
	}
	return &models.PredictionMetrics{}, nil
}

// MockStatsSource implements TeamStatsSource
type MockStatsSource struct {
	FetchFunc func(ctx context.Context, teamID string, asOf time.Time) (*models.TeamStats, error)
}

func (m *MockStatsSource) FetchTeamStats(ctx context.Context, teamID string, asOf time.Time) (*models.TeamStats, error) {
	return m.FetchFunc(ctx, teamID, asOf)
}

// MockPredictionStore implements PredictionStore
type MockPredictionStore struct {
	Saved    []models.StoredPrediction
	SaveErr  error
	ForGame  []models.StoredPrediction
	LoadErr  error
	LoadedID string
}

func (m *MockPredictionStore) SavePredictions(ctx context.Context, preds []models.StoredPrediction) error {
	m.Saved = append(m.Saved, preds...)
	return m.SaveErr
}

func (m *MockPredictionStore) PredictionsForGame(ctx context.Context, gameID string) ([]models.StoredPrediction, error) {
	m.LoadedID = gameID
	return m.ForGame, m.LoadErr
}

// MockSink implements PredictionLogger
type MockSink struct {
	Entries []models.PredictionLogEntry
	Full    bool
}

func (m *MockSink) Enqueue(entry models.PredictionLogEntry) bool {
	if m.Full {
		return false
	}
	m.Entries = append(m.Entries, entry)
	return true
}

// MockCache implements MetricsCache
type MockCache struct {
	Stored  map[string]*models.PredictionMetrics
	SetErr  error
	GetErr  error
	GetHits int
}

func (m *MockCache) key(sport, league, model string) string {
	return sport + "|" + league + "|" + model
}

func (m *MockCache) GetMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if v, ok := m.Stored[m.key(sport, league, model)]; ok {
		m.GetHits++
		return v, nil
	}
	return nil, nil
}

func (m *MockCache) SetMetrics(ctx context.Context, metrics *models.PredictionMetrics) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Stored == nil {
		m.Stored = make(map[string]*models.PredictionMetrics)
	}
	m.Stored[m.key(metrics.Sport, metrics.League, metrics.ModelName)] = metrics
	return nil
}
