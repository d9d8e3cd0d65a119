package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Weather is the optional weather payload attached to outdoor games
type Weather struct {
	Condition    string  `json:"condition"` // "clear", "rain", "snow", ...
	TemperatureF float64 `json:"temperature_f"`
	WindMph      float64 `json:"wind_mph"`
}

// IsAdverse reports whether conditions typically suppress scoring
func (w *Weather) IsAdverse() bool {
	if w == nil {
		return false
	}
	switch strings.ToLower(w.Condition) {
	case "rain", "snow", "storm", "sleet", "thunderstorm":
		return true
	}
	return w.WindMph >= 15
}

// GameContext carries the situational factors of a single game
type GameContext struct {
	Sport          string   `json:"sport" validate:"required"`
	Venue          string   `json:"venue,omitempty"`
	IsPlayoffs     bool     `json:"is_playoffs"`
	IsRivalry      bool     `json:"is_rivalry"`
	RestDays       int      `json:"rest_days" validate:"gte=0"`
	AwayRestDays   *int     `json:"away_rest_days,omitempty" validate:"omitempty,gte=0"` // defaults to RestDays
	TravelDistance float64  `json:"travel_distance" validate:"gte=0"`
	Weather        *Weather `json:"weather,omitempty"`

	// Injuries is sport-specific and passed through untouched
	Injuries json.RawMessage `json:"injuries,omitempty" swaggertype:"object"`
}

// AwayRest returns the away side's rest days
func (c *GameContext) AwayRest() int {
	if c.AwayRestDays != nil {
		return *c.AwayRestDays
	}
	return c.RestDays
}

// MLPrediction is a single model's forecast for one game
type MLPrediction struct {
	Model              string             `json:"model"` // name_sport_vVersion
	HomeWinProbability float64            `json:"home_win_probability"`
	AwayWinProbability float64            `json:"away_win_probability"`
	PredictedSpread    float64            `json:"predicted_spread"` // home minus away
	PredictedTotal     float64            `json:"predicted_total"`
	Confidence         float64            `json:"confidence"`
	Factors            []string           `json:"factors"`
	FeatureImportance  map[string]float64 `json:"feature_importance,omitempty"`
}

// Prediction types stored per game
const (
	PredictionTypeWinner = "winner"
	PredictionTypeSpread = "spread"
	PredictionTypeTotal  = "total"
)

// Categorical winner labels
const (
	WinnerHome = "home"
	WinnerAway = "away"
)

// StoredPrediction is one persisted prediction row.
// A game prediction produces three rows: winner, spread and total.
type StoredPrediction struct {
	ID             string    `json:"id"`
	GameID         string    `json:"game_id"`
	ModelName      string    `json:"model_name"`
	Sport          string    `json:"sport"`
	League         string    `json:"league,omitempty"`
	PredictionType string    `json:"prediction_type"`
	PredictedValue float64   `json:"predicted_value"`
	PredictedLabel string    `json:"predicted_label,omitempty"` // winner rows only
	Confidence     float64   `json:"confidence"`
	Season         string    `json:"season,omitempty"`
	GameType       string    `json:"game_type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PredictedOutcome returns the row's prediction in union form
func (p *StoredPrediction) PredictedOutcome() Outcome {
	if p.PredictionType == PredictionTypeWinner {
		return CategoricalOutcome(p.PredictedLabel)
	}
	return NumericOutcome(p.PredictedValue)
}

// GamePrediction is the service-level result of predicting a scheduled game
type GamePrediction struct {
	PredictionID string       `json:"prediction_id"`
	GameID       string       `json:"game_id,omitempty"`
	HomeTeamID   string       `json:"home_team_id"`
	AwayTeamID   string       `json:"away_team_id"`
	Sport        string       `json:"sport"`
	League       string       `json:"league,omitempty"`
	Prediction   MLPrediction `json:"prediction"`
	CreatedAt    time.Time    `json:"created_at"`
}

// PredictionLogEntry is the flattened analytics row written to ClickHouse
type PredictionLogEntry struct {
	PredictionID       string    `json:"prediction_id"`
	GameID             string    `json:"game_id"`
	Model              string    `json:"model"`
	Sport              string    `json:"sport"`
	League             string    `json:"league"`
	HomeTeamID         string    `json:"home_team_id"`
	AwayTeamID         string    `json:"away_team_id"`
	HomeWinProbability float64   `json:"home_win_probability"`
	PredictedSpread    float64   `json:"predicted_spread"`
	PredictedTotal     float64   `json:"predicted_total"`
	Confidence         float64   `json:"confidence"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewPredictionLogEntry flattens a game prediction for the analytics sink
func NewPredictionLogEntry(gp *GamePrediction) PredictionLogEntry {
	return PredictionLogEntry{
		PredictionID:       gp.PredictionID,
		GameID:             gp.GameID,
		Model:              gp.Prediction.Model,
		Sport:              gp.Sport,
		League:             gp.League,
		HomeTeamID:         gp.HomeTeamID,
		AwayTeamID:         gp.AwayTeamID,
		HomeWinProbability: gp.Prediction.HomeWinProbability,
		PredictedSpread:    gp.Prediction.PredictedSpread,
		PredictedTotal:     gp.Prediction.PredictedTotal,
		Confidence:         gp.Prediction.Confidence,
		CreatedAt:          gp.CreatedAt,
	}
}
