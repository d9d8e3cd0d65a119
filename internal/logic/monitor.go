package logic

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/projectapex/apex-api/internal/models"
)

const (
	monitorLookback       = 24 * time.Hour
	minMonitorSamples     = 5
	insufficientDataScore = 0.5
	lowAccuracy           = 0.4
	overconfidentAbove    = 0.9
	overconfidentAccuracy = 0.6
)

type monitorService struct {
	store  EvaluationStore
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewMonitorService(store EvaluationStore, logger *zap.SugaredLogger) MonitorService {
	return &monitorService{store: store, logger: logger, now: time.Now}
}

// Run checks every model/sport group evaluated in the last 24 hours
func (m *monitorService) Run(ctx context.Context) (*models.MonitorReport, error) {
	now := m.now().UTC()
	records, err := m.store.FetchEvaluatedPredictions(ctx, models.EvaluationFilter{
		Since: now.Add(-monitorLookback),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch recent evaluations: %w", err)
	}

	groups := groupBy(records, func(r models.EvaluationRecord) string {
		return r.ModelName + "/" + r.Sport
	})
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	report := &models.MonitorReport{
		ModelHealthScores: make(map[string]float64, len(groups)),
		GeneratedAt:       now,
	}
	raise := func(t models.AlertType, source, msg string) {
		report.Alerts = append(report.Alerts, models.Alert{
			ID:        uuid.NewString(),
			Type:      t,
			Message:   msg,
			Timestamp: now,
			Source:    source,
		})
		monitorAlerts.WithLabelValues(string(t)).Inc()
	}

	for _, key := range keys {
		group := groups[key]
		if len(group) < minMonitorSamples {
			report.ModelHealthScores[key] = insufficientDataScore
			raise(models.AlertInfo, key, fmt.Sprintf("Insufficient data for %s: %d of %d evaluations needed", key, len(group), minMonitorSamples))
			report.RecommendedActions = append(report.RecommendedActions, fmt.Sprintf(
				"Insufficient data for %s: %d evaluations in the last 24h", key, len(group)))
			modelHealth.WithLabelValues(key).Set(insufficientDataScore)
			continue
		}

		var correct int
		var confSum float64
		for _, r := range group {
			if r.IsCorrect {
				correct++
			}
			confSum += r.Confidence
		}
		accuracy := float64(correct) / float64(len(group))
		avgConf := confSum / float64(len(group))
		health := 0.7*accuracy + 0.3*avgConf
		report.ModelHealthScores[key] = health
		modelHealth.WithLabelValues(key).Set(health)

		if accuracy < lowAccuracy {
			raise(models.AlertError, key, fmt.Sprintf("Low accuracy for %s: %.1f%% over %d predictions", key, accuracy*100, len(group)))
			report.RecommendedActions = append(report.RecommendedActions, fmt.Sprintf("Retrain or re-weight %s", key))
		}
		if avgConf > overconfidentAbove && accuracy < overconfidentAccuracy {
			raise(models.AlertWarning, key, fmt.Sprintf("%s is overconfident: average confidence %.1f%% vs accuracy %.1f%%", key, avgConf*100, accuracy*100))
			report.RecommendedActions = append(report.RecommendedActions, fmt.Sprintf("Recalibrate confidence for %s", key))
		}
	}

	// Any alert, insufficient data included, replaces the all-clear
	if len(report.Alerts) == 0 {
		raise(models.AlertInfo, "monitor", "All models within expected parameters")
	}

	m.logger.Infow("Monitoring pass complete",
		"groups", len(groups),
		"evaluations", len(records),
		"alerts", len(report.Alerts),
	)
	return report, nil
}
