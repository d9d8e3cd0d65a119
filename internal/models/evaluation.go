package models

import "time"

// PredictionEvaluation scores one prediction against the realized outcome
type PredictionEvaluation struct {
	PredictionID     string    `json:"prediction_id"`
	ActualOutcome    Outcome   `json:"actual_outcome" swaggertype:"string"`
	PredictedOutcome Outcome   `json:"predicted_outcome" swaggertype:"string"`
	Probability      float64   `json:"probability"`
	IsCorrect        bool      `json:"is_correct"`
	Error            float64   `json:"error"`
	CalibrationBin   int       `json:"calibration_bin"`
	ProfitLoss       float64   `json:"profit_loss"`
	Sport            string    `json:"sport"`
	League           string    `json:"league,omitempty"`
	ModelName        string    `json:"model_name"`
	EvaluatedAt      time.Time `json:"evaluated_at"`
}

// EvaluationRecord is an evaluated prediction as read back from the store
type EvaluationRecord struct {
	PredictionID   string    `json:"prediction_id"`
	ModelName      string    `json:"model_name"`
	Sport          string    `json:"sport"`
	League         string    `json:"league,omitempty"`
	PredictionType string    `json:"prediction_type"`
	Confidence     float64   `json:"confidence"`
	IsCorrect      bool      `json:"is_correct"`
	PredictedValue float64   `json:"predicted_value"`
	ActualValue    *float64  `json:"actual_value,omitempty"`
	Season         string    `json:"season,omitempty"`
	GameType       string    `json:"game_type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// EvaluationFilter narrows an evaluation fetch; empty fields do not filter
type EvaluationFilter struct {
	Sport     string
	League    string
	ModelName string
	Since     time.Time
}
