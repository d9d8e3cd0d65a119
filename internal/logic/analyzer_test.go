package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/models"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// series builds records in time order from a correctness pattern
func series(conf float64, pattern ...bool) []models.EvaluationRecord {
	out := make([]models.EvaluationRecord, len(pattern))
	for i, c := range pattern {
		out[i] = models.EvaluationRecord{
			PredictionID:   "p",
			ModelName:      "ensemble",
			Sport:          "basketball",
			Confidence:     conf,
			IsCorrect:      c,
			PredictedValue: 1,
			CreatedAt:      t0.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func repeat(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newTestAnalyzer(store *MockEvaluationStore, cache MetricsCache) *analyzerService {
	a := NewAnalyzerService(store, cache, zap.NewNop().Sugar()).(*analyzerService)
	a.now = func() time.Time { return t0.AddDate(0, 2, 0) }
	return a
}

func TestAggregate(t *testing.T) {
	records := []models.EvaluationRecord{
		{Confidence: 0.8, IsCorrect: true, PredictedValue: 1},  // TP
		{Confidence: 0.7, IsCorrect: false, PredictedValue: 1}, // FP
		{Confidence: 0.6, IsCorrect: false, PredictedValue: 0}, // FN
		{Confidence: 0.9, IsCorrect: true, PredictedValue: 0},  // TN
	}

	m := Aggregate(records, t0)
	assert.Equal(t, 4, m.TotalPredictions)
	assert.Equal(t, 2, m.CorrectPredictions)
	assert.InDelta(t, 0.5, m.Accuracy, 1e-9)
	assert.InDelta(t, 0.5, m.Precision, 1e-9)
	assert.InDelta(t, 0.5, m.Recall, 1e-9)
	assert.InDelta(t, 0.5, m.F1Score, 1e-9)
	// (0.2² + 0.7² + 0.6² + 0.1²) / 4
	assert.InDelta(t, (0.04+0.49+0.36+0.01)/4, m.BrierScore, 1e-9)
	assert.InDelta(t, ((0.95/0.8-1)+(0.95/0.9-1)-2)/4, m.Profitability, 1e-9)
}

func TestAggregate_BrierBounded(t *testing.T) {
	inputs := [][]models.EvaluationRecord{
		series(1.0, repeat(false, 7)...),
		series(0.0, repeat(true, 3)...),
		{{Confidence: 1.7, IsCorrect: false}, {Confidence: -0.4, IsCorrect: true}},
		series(0.5, true, false, true),
	}
	for _, records := range inputs {
		m := Aggregate(records, t0)
		assert.GreaterOrEqual(t, m.BrierScore, 0.0)
		assert.LessOrEqual(t, m.BrierScore, 1.0)
	}
}

func TestAggregate_Empty(t *testing.T) {
	m := Aggregate(nil, t0)
	assert.Equal(t, 0, m.TotalPredictions)
	assert.Equal(t, 0.0, m.Accuracy)
}

func TestTrends(t *testing.T) {
	t.Run("short history is a single window", func(t *testing.T) {
		tr := Trends(series(0.6, true, false, true, true))
		require.Len(t, tr.Accuracy, 1)
		assert.InDelta(t, 0.75, tr.Accuracy[0], 1e-9)
		assert.Equal(t, models.TrendStable, tr.RecentForm)
	})

	t.Run("equal length series", func(t *testing.T) {
		tr := Trends(series(0.6, repeat(true, 25)...))
		assert.Len(t, tr.Accuracy, 16)
		assert.Len(t, tr.Profitability, 16)
		assert.Len(t, tr.Confidence, 16)
		assert.InDelta(t, 0.6, tr.Confidence[0], 1e-9)
	})

	t.Run("declining", func(t *testing.T) {
		pattern := append(repeat(true, 15), repeat(false, 15)...)
		assert.Equal(t, models.TrendDeclining, Trends(series(0.7, pattern...)).RecentForm)
	})

	t.Run("improving", func(t *testing.T) {
		pattern := append(repeat(false, 15), repeat(true, 15)...)
		assert.Equal(t, models.TrendImproving, Trends(series(0.7, pattern...)).RecentForm)
	})

	t.Run("sorts by creation time", func(t *testing.T) {
		records := series(0.7, append(repeat(false, 15), repeat(true, 15)...)...)
		// reverse input order; result must not change
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
		assert.Equal(t, models.TrendImproving, Trends(records).RecentForm)
	})
}

func TestAnalyze(t *testing.T) {
	records := series(0.65, repeat(true, 6)...)
	records = append(records, series(0.85, false, false, false, false)...)
	records[0].Season = "2024-25"
	records[1].GameType = "Playoffs"

	store := &MockEvaluationStore{Records: records}
	a := newTestAnalyzer(store, nil)

	got, err := a.Analyze(context.Background(), "basketball", "nba", "ensemble", RangeMonth)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, t0.AddDate(0, 1, 0), store.LastFilter.Since)
	assert.Equal(t, "nba", store.LastFilter.League)

	assert.Equal(t, 10, got.Overall.TotalPredictions)
	assert.InDelta(t, 0.6, got.Overall.Accuracy, 1e-9)
	assert.Equal(t, "basketball", got.Overall.Sport)

	assert.Equal(t, 6, got.ByConfidenceLevel["60-70%"].TotalPredictions)
	assert.Equal(t, 4, got.ByConfidenceLevel["80-100%"].TotalPredictions)
	assert.NotContains(t, got.ByConfidenceLevel, "50-60%")

	assert.Equal(t, 1, got.BySeason["2024-25"].TotalPredictions)
	assert.Equal(t, 9, got.BySeason["2025"].TotalPredictions)
	assert.Equal(t, 1, got.ByGameType["Playoffs"].TotalPredictions)
	assert.Equal(t, 9, got.ByGameType["Regular Season"].TotalPredictions)

	parts := []models.PredictionMetrics{got.ByConfidenceLevel["60-70%"], got.BySeason["2025"], got.ByGameType["Playoffs"]}
	for _, m := range parts {
		assert.Equal(t, "basketball", m.Sport)
		assert.Equal(t, "nba", m.League)
		assert.Equal(t, "ensemble", m.ModelName)
	}

	assert.NotEmpty(t, got.Recommendations)
}

func TestAnalyze_NoData(t *testing.T) {
	got, err := newTestAnalyzer(&MockEvaluationStore{}, nil).
		Analyze(context.Background(), "hockey", "", "", RangeAll)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAnalyze_StoreError(t *testing.T) {
	boom := errors.New("pool closed")
	got, err := newTestAnalyzer(&MockEvaluationStore{FetchErr: boom}, nil).
		Analyze(context.Background(), "hockey", "", "", RangeWeek)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestRecommendations(t *testing.T) {
	healthy := recommendations(models.PredictionMetrics{Accuracy: 0.7, Profitability: 0.1, BrierScore: 0.15}, models.PerformanceTrends{RecentForm: models.TrendStable})
	assert.Equal(t, []string{"Model performance is within expected parameters"}, healthy)

	bad := recommendations(models.PredictionMetrics{Accuracy: 0.4, Profitability: -0.3, BrierScore: 0.4}, models.PerformanceTrends{RecentForm: models.TrendDeclining})
	assert.Len(t, bad, 4)
}

func TestParseTimeRange(t *testing.T) {
	for _, s := range []string{"week", "MONTH", "season", "all"} {
		_, err := ParseTimeRange(s)
		assert.NoError(t, err, s)
	}
	tr, err := ParseTimeRange("")
	assert.NoError(t, err)
	assert.Equal(t, RangeAll, tr)
	assert.True(t, tr.Since(t0).IsZero())

	_, err = ParseTimeRange("decade")
	assert.Error(t, err)

	assert.Equal(t, t0.AddDate(0, 0, -7), RangeWeek.Since(t0))
	assert.Equal(t, t0.AddDate(-1, 0, 0), RangeSeason.Since(t0))
}

func TestCalibrate_PerfectCalibration(t *testing.T) {
	var records []models.EvaluationRecord
	// bin 5 (midpoint 0.55): 11 of 20 correct
	records = append(records, series(0.55, append(repeat(true, 11), repeat(false, 9)...)...)...)
	// bin 7 (midpoint 0.75): 3 of 4 correct
	records = append(records, series(0.72, true, true, true, false)...)

	report := Calibrate(records)
	assert.Equal(t, 0.0, report.CalibrationScore)
	assert.True(t, report.IsWellCalibrated)
	require.Len(t, report.CalibrationCurve, 2)
	assert.Equal(t, 5, report.CalibrationCurve[0].Bin)
	assert.Equal(t, 20, report.CalibrationCurve[0].Count)
	assert.Equal(t, []string{"Confidence is well calibrated"}, report.Recommendations)
}

func TestCalibrate_Overconfident(t *testing.T) {
	report := Calibrate(series(0.92, true, false, false, false))
	// midpoint 0.95, observed 0.25
	assert.InDelta(t, 0.7, report.CalibrationScore, 1e-9)
	assert.False(t, report.IsWellCalibrated)
	require.Len(t, report.Recommendations, 2)
	assert.Contains(t, report.Recommendations[0], "Overconfident in the 90-100% confidence range")
}

func TestCalibrationAnalysis_NoData(t *testing.T) {
	got, err := newTestAnalyzer(&MockEvaluationStore{}, nil).CalibrationAnalysis(context.Background(), "soccer", "")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRefreshMetrics_UpsertsAndCaches(t *testing.T) {
	store := &MockEvaluationStore{Records: series(0.7, true, true, false)}
	cache := &MockCache{}
	a := newTestAnalyzer(store, cache)

	m, err := a.RefreshMetrics(context.Background(), "basketball", "nba", "ensemble")
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalPredictions)
	assert.Equal(t, []string{"fetch", "upsert"}, store.Calls)
	require.NotNil(t, store.UpsertedMetric)
	assert.Equal(t, "nba", store.UpsertedMetric.League)
	assert.Contains(t, cache.Stored, "basketball|nba|ensemble")
}

func TestRefreshMetrics_CacheFailureIsNotFatal(t *testing.T) {
	store := &MockEvaluationStore{Records: series(0.7, true)}
	a := newTestAnalyzer(store, &MockCache{SetErr: errors.New("redis down")})
	_, err := a.RefreshMetrics(context.Background(), "basketball", "", "ensemble")
	assert.NoError(t, err)
}

func TestRefreshMetrics_UpsertFailurePropagates(t *testing.T) {
	boom := errors.New("deadlock")
	a := newTestAnalyzer(&MockEvaluationStore{Records: series(0.7, true), UpsertErr: boom}, nil)
	_, err := a.RefreshMetrics(context.Background(), "basketball", "", "ensemble")
	assert.ErrorIs(t, err, boom)
}

func TestCachedMetrics(t *testing.T) {
	cached := &models.PredictionMetrics{Sport: "basketball", ModelName: "ensemble", TotalPredictions: 42}
	cache := &MockCache{Stored: map[string]*models.PredictionMetrics{"basketball||ensemble": cached}}
	store := &MockEvaluationStore{}
	a := newTestAnalyzer(store, cache)

	got, err := a.CachedMetrics(context.Background(), "basketball", "", "ensemble")
	require.NoError(t, err)
	assert.Equal(t, 42, got.TotalPredictions)
	assert.Empty(t, store.Calls)

	// miss with no evaluations
	got, err = a.CachedMetrics(context.Background(), "hockey", "", "ensemble")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCachedMetrics_MissWithoutEvaluationsWritesNothing(t *testing.T) {
	store := &MockEvaluationStore{}
	cache := &MockCache{}
	a := newTestAnalyzer(store, cache)

	got, err := a.CachedMetrics(context.Background(), "no-such-sport", "", "bogus")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []string{"fetch"}, store.Calls)
	assert.Nil(t, store.UpsertedMetric)
	assert.Empty(t, cache.Stored)
}

func TestCachedMetrics_MissRecomputesAndStores(t *testing.T) {
	store := &MockEvaluationStore{Records: series(0.7, true, false)}
	cache := &MockCache{}
	a := newTestAnalyzer(store, cache)

	got, err := a.CachedMetrics(context.Background(), "basketball", "", "ensemble")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.TotalPredictions)
	assert.Equal(t, []string{"fetch", "upsert"}, store.Calls)
	assert.Contains(t, cache.Stored, "basketball||ensemble")
}
