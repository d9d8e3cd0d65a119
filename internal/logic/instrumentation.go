package logic

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apex_predictions_served_total",
		Help: "Predictions served, by model and sport",
	}, []string{"model", "sport"})

	evaluationsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apex_evaluations_total",
		Help: "Evaluated predictions, by model, sport and correctness",
	}, []string{"model", "sport", "correct"})

	evaluationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apex_evaluation_failures_total",
		Help: "Evaluations that failed at a store step",
	}, []string{"step"})

	modelHealth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "apex_model_health_score",
		Help: "Latest health score per model/sport group",
	}, []string{"group"})

	monitorAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apex_monitor_alerts_total",
		Help: "Alerts raised by monitoring passes, by type",
	}, []string{"type"})
)

func recordEvaluation(model, sport string, correct bool) {
	evaluationsRecorded.WithLabelValues(model, sport, strconv.FormatBool(correct)).Inc()
}
