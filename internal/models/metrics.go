package models

import "time"

// PredictionMetrics aggregates evaluated predictions for one (model, sport, league)
type PredictionMetrics struct {
	ModelName          string    `json:"model_name"`
	Sport              string    `json:"sport"`
	League             string    `json:"league,omitempty"`
	TotalPredictions   int       `json:"total_predictions"`
	CorrectPredictions int       `json:"correct_predictions"`
	Accuracy           float64   `json:"accuracy"`
	Precision          float64   `json:"precision"`
	Recall             float64   `json:"recall"`
	F1Score            float64   `json:"f1_score"`
	BrierScore         float64   `json:"brier_score"`
	Profitability      float64   `json:"profitability"`
	LastUpdated        time.Time `json:"last_updated"`
}

// TrendDirection classifies recent form
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// PerformanceTrends holds rolling-window series of equal length
type PerformanceTrends struct {
	Accuracy      []float64      `json:"accuracy"`
	Profitability []float64      `json:"profitability"`
	Confidence    []float64      `json:"confidence"`
	RecentForm    TrendDirection `json:"recent_form"`
}

// ModelPerformanceAnalysis is the full breakdown returned by the analyzer
type ModelPerformanceAnalysis struct {
	Overall           PredictionMetrics            `json:"overall"`
	ByConfidenceLevel map[string]PredictionMetrics `json:"by_confidence_level"`
	BySeason          map[string]PredictionMetrics `json:"by_season"`
	ByGameType        map[string]PredictionMetrics `json:"by_game_type"`
	Trends            PerformanceTrends            `json:"trends"`
	Recommendations   []string                     `json:"recommendations"`
}

// CalibrationPoint is one confidence bin on the calibration curve
type CalibrationPoint struct {
	Bin                  int     `json:"bin"`
	PredictedProbability float64 `json:"predicted_probability"`
	ObservedAccuracy     float64 `json:"observed_accuracy"`
	Count                int     `json:"count"`
}

// CalibrationReport compares stated confidence with observed accuracy
type CalibrationReport struct {
	CalibrationCurve []CalibrationPoint `json:"calibration_curve"`
	CalibrationScore float64            `json:"calibration_score"` // expected calibration error
	IsWellCalibrated bool               `json:"is_well_calibrated"`
	Recommendations  []string           `json:"recommendations"`
}

// AlertType is the severity of an alert
type AlertType string

const (
	AlertError   AlertType = "error"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
)

// Alert is an operational notice raised by a monitoring pass
type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // model/sport group or service name
	Resolved  bool      `json:"resolved"`
}

// MonitorReport is the result of one monitoring pass
type MonitorReport struct {
	Alerts             []Alert            `json:"alerts"`
	ModelHealthScores  map[string]float64 `json:"model_health_scores"`
	RecommendedActions []string           `json:"recommended_actions"`
	GeneratedAt        time.Time          `json:"generated_at"`
}
