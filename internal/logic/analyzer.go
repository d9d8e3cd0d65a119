package logic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/projectapex/apex-api/internal/models"
)

// TimeRange selects how far back an analysis looks
type TimeRange string

const (
	RangeWeek   TimeRange = "week"
	RangeMonth  TimeRange = "month"
	RangeSeason TimeRange = "season"
	RangeAll    TimeRange = "all"
)

// ParseTimeRange validates a time range name; empty means all
func ParseTimeRange(s string) (TimeRange, error) {
	switch tr := TimeRange(strings.ToLower(s)); tr {
	case "":
		return RangeAll, nil
	case RangeWeek, RangeMonth, RangeSeason, RangeAll:
		return tr, nil
	default:
		return "", fmt.Errorf("invalid time range %q", s)
	}
}

// Since returns the lower bound for the range, or the zero time for all
func (tr TimeRange) Since(now time.Time) time.Time {
	switch tr {
	case RangeWeek:
		return now.AddDate(0, 0, -7)
	case RangeMonth:
		return now.AddDate(0, -1, 0)
	case RangeSeason:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

const (
	trendWindow         = 10
	trendCompare        = 5
	trendThreshold      = 0.05
	wellCalibratedBelow = 0.1
	binGapThreshold     = 0.1
	defaultGameType     = "Regular Season"
)

type analyzerService struct {
	store  EvaluationStore
	cache  MetricsCache
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewAnalyzerService creates an analyzer. cache may be nil.
func NewAnalyzerService(store EvaluationStore, cache MetricsCache, logger *zap.SugaredLogger) AnalyzerService {
	return &analyzerService{store: store, cache: cache, logger: logger, now: time.Now}
}

// Analyze returns (nil, nil) when no evaluations match
func (a *analyzerService) Analyze(ctx context.Context, sport, league, model string, tr TimeRange) (*models.ModelPerformanceAnalysis, error) {
	records, err := a.store.FetchEvaluatedPredictions(ctx, models.EvaluationFilter{
		Sport:     sport,
		League:    league,
		ModelName: model,
		Since:     tr.Since(a.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch evaluations: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	now := a.now().UTC()
	aggregate := func(group []models.EvaluationRecord) models.PredictionMetrics {
		m := Aggregate(group, now)
		m.Sport, m.League, m.ModelName = sport, league, model
		return m
	}
	overall := aggregate(records)

	analysis := &models.ModelPerformanceAnalysis{
		Overall:           overall,
		ByConfidenceLevel: make(map[string]models.PredictionMetrics),
		BySeason:          make(map[string]models.PredictionMetrics),
		ByGameType:        make(map[string]models.PredictionMetrics),
		Trends:            Trends(records),
	}

	for key, group := range groupBy(records, confidenceBand) {
		if key != "" {
			analysis.ByConfidenceLevel[key] = aggregate(group)
		}
	}
	for key, group := range groupBy(records, seasonOf) {
		analysis.BySeason[key] = aggregate(group)
	}
	for key, group := range groupBy(records, gameTypeOf) {
		analysis.ByGameType[key] = aggregate(group)
	}

	analysis.Recommendations = recommendations(overall, analysis.Trends)
	return analysis, nil
}

// CalibrationAnalysis returns (nil, nil) when no evaluations match
func (a *analyzerService) CalibrationAnalysis(ctx context.Context, sport, model string) (*models.CalibrationReport, error) {
	records, err := a.store.FetchEvaluatedPredictions(ctx, models.EvaluationFilter{
		Sport:     sport,
		ModelName: model,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch evaluations: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return Calibrate(records), nil
}

// RefreshMetrics recomputes metrics over all evaluations of one tuple,
// upserts them and updates the cache. Cache failures are logged only.
func (a *analyzerService) RefreshMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error) {
	records, err := a.fetchTuple(ctx, sport, league, model)
	if err != nil {
		return nil, err
	}
	return a.storeMetrics(ctx, records, sport, league, model)
}

// CachedMetrics serves metrics from the cache, recomputing on a miss.
// A tuple with no evaluations returns (nil, nil) and writes nothing.
func (a *analyzerService) CachedMetrics(ctx context.Context, sport, league, model string) (*models.PredictionMetrics, error) {
	if a.cache != nil {
		m, err := a.cache.GetMetrics(ctx, sport, league, model)
		if err != nil {
			a.logger.Warnw("Metrics cache read failed", "sport", sport, "model", model, "error", err)
		} else if m != nil {
			return m, nil
		}
	}

	records, err := a.fetchTuple(ctx, sport, league, model)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return a.storeMetrics(ctx, records, sport, league, model)
}

func (a *analyzerService) fetchTuple(ctx context.Context, sport, league, model string) ([]models.EvaluationRecord, error) {
	records, err := a.store.FetchEvaluatedPredictions(ctx, models.EvaluationFilter{
		Sport:     sport,
		League:    league,
		ModelName: model,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch evaluations: %w", err)
	}
	return records, nil
}

func (a *analyzerService) storeMetrics(ctx context.Context, records []models.EvaluationRecord, sport, league, model string) (*models.PredictionMetrics, error) {
	m := Aggregate(records, a.now().UTC())
	m.Sport, m.League, m.ModelName = sport, league, model

	if err := a.store.UpsertMetrics(ctx, &m); err != nil {
		return nil, fmt.Errorf("upsert metrics: %w", err)
	}

	if a.cache != nil {
		if err := a.cache.SetMetrics(ctx, &m); err != nil {
			a.logger.Warnw("Failed to cache metrics",
				"sport", sport,
				"model", model,
				"error", err,
			)
		}
	}
	return &m, nil
}

// Aggregate computes accuracy, precision/recall/F1 (positive class is
// predicted_value == 1), Brier score and mean profit for a record set.
func Aggregate(records []models.EvaluationRecord, now time.Time) models.PredictionMetrics {
	m := models.PredictionMetrics{
		TotalPredictions: len(records),
		LastUpdated:      now,
	}
	if len(records) == 0 {
		return m
	}

	var tp, fp, fn int
	var brier, profit float64
	for _, r := range records {
		outcome := 0.0
		if r.IsCorrect {
			m.CorrectPredictions++
			outcome = 1
		}

		positive := r.PredictedValue == 1
		switch {
		case positive && r.IsCorrect:
			tp++
		case positive && !r.IsCorrect:
			fp++
		case !positive && !r.IsCorrect:
			fn++
		}

		conf := math.Max(0, math.Min(1, r.Confidence))
		brier += (conf - outcome) * (conf - outcome)
		profit += ProfitLoss(r.Confidence, r.IsCorrect)
	}

	n := float64(len(records))
	m.Accuracy = float64(m.CorrectPredictions) / n
	m.Precision = ratio(tp, tp+fp)
	m.Recall = ratio(tp, tp+fn)
	if m.Precision+m.Recall > 0 {
		m.F1Score = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.BrierScore = brier / n
	m.Profitability = profit / n
	return m
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Trends computes rolling-window series in time order. With fewer records
// than the window, a single window spans them all.
func Trends(records []models.EvaluationRecord) models.PerformanceTrends {
	sorted := make([]models.EvaluationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	window := trendWindow
	if len(sorted) < window {
		window = len(sorted)
	}

	var t models.PerformanceTrends
	for end := window; end <= len(sorted) && window > 0; end++ {
		slice := sorted[end-window : end]
		var correct, profit, conf float64
		for _, r := range slice {
			if r.IsCorrect {
				correct++
			}
			profit += ProfitLoss(r.Confidence, r.IsCorrect)
			conf += r.Confidence
		}
		n := float64(len(slice))
		t.Accuracy = append(t.Accuracy, correct/n)
		t.Profitability = append(t.Profitability, profit/n)
		t.Confidence = append(t.Confidence, conf/n)
	}

	t.RecentForm = trendDirection(t.Accuracy)
	return t
}

// trendDirection compares the mean of the last k points with the first k,
// k = min(5, len/2)
func trendDirection(series []float64) models.TrendDirection {
	k := len(series) / 2
	if k > trendCompare {
		k = trendCompare
	}
	if k == 0 {
		return models.TrendStable
	}

	delta := stat.Mean(series[len(series)-k:], nil) - stat.Mean(series[:k], nil)
	switch {
	case delta > trendThreshold:
		return models.TrendImproving
	case delta < -trendThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

func recommendations(m models.PredictionMetrics, t models.PerformanceTrends) []string {
	var recs []string
	if m.Accuracy < 0.55 {
		recs = append(recs, fmt.Sprintf("Accuracy is %.1f%%, below the 55%% target: review feature weights for this sport", m.Accuracy*100))
	}
	if m.Profitability < -0.05 {
		recs = append(recs, fmt.Sprintf("Profitability is %.1f%% per unit: raise the confidence threshold before acting on predictions", m.Profitability*100))
	}
	if t.RecentForm == models.TrendDeclining {
		recs = append(recs, "Recent accuracy is declining: check for data quality issues or roster changes")
	}
	if m.BrierScore > 0.25 {
		recs = append(recs, fmt.Sprintf("Brier score %.3f is above 0.25: confidence outputs need recalibration", m.BrierScore))
	}
	if len(recs) == 0 {
		recs = append(recs, "Model performance is within expected parameters")
	}
	return recs
}

// Calibrate bins records by floor(confidence*10) and compares each bin's
// midpoint with its observed accuracy. The score is the expected calibration error.
func Calibrate(records []models.EvaluationRecord) *models.CalibrationReport {
	var counts, correct [10]int
	for _, r := range records {
		bin := CalibrationBin(r.Confidence)
		counts[bin]++
		if r.IsCorrect {
			correct[bin]++
		}
	}

	report := &models.CalibrationReport{}
	var weightedGap float64
	for bin := 0; bin < 10; bin++ {
		if counts[bin] == 0 {
			continue
		}
		predicted := (float64(bin) + 0.5) / 10
		observed := float64(correct[bin]) / float64(counts[bin])
		gap := math.Abs(observed - predicted)
		weightedGap += gap * float64(counts[bin])

		report.CalibrationCurve = append(report.CalibrationCurve, models.CalibrationPoint{
			Bin:                  bin,
			PredictedProbability: predicted,
			ObservedAccuracy:     observed,
			Count:                counts[bin],
		})

		if gap > binGapThreshold {
			label := "Overconfident"
			if observed > predicted {
				label = "Underconfident"
			}
			report.Recommendations = append(report.Recommendations, fmt.Sprintf(
				"%s in the %d-%d%% confidence range: observed accuracy %.1f%% over %d predictions",
				label, bin*10, (bin+1)*10, observed*100, counts[bin]))
		}
	}

	report.CalibrationScore = weightedGap / float64(len(records))
	report.IsWellCalibrated = report.CalibrationScore < wellCalibratedBelow
	if !report.IsWellCalibrated {
		report.Recommendations = append(report.Recommendations, fmt.Sprintf(
			"Expected calibration error %.3f exceeds %.2f: recalibrate confidence outputs",
			report.CalibrationScore, wellCalibratedBelow))
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = []string{"Confidence is well calibrated"}
	}
	return report
}

func groupBy(records []models.EvaluationRecord, key func(models.EvaluationRecord) string) map[string][]models.EvaluationRecord {
	groups := make(map[string][]models.EvaluationRecord)
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

// confidenceBand returns "" for confidence below 50%
func confidenceBand(r models.EvaluationRecord) string {
	switch c := r.Confidence; {
	case c >= 0.8:
		return "80-100%"
	case c >= 0.7:
		return "70-80%"
	case c >= 0.6:
		return "60-70%"
	case c >= 0.5:
		return "50-60%"
	default:
		return ""
	}
}

func seasonOf(r models.EvaluationRecord) string {
	if r.Season != "" {
		return r.Season
	}
	return strconv.Itoa(r.CreatedAt.Year())
}

func gameTypeOf(r models.EvaluationRecord) string {
	if r.GameType != "" {
		return r.GameType
	}
	return defaultGameType
}
