package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/projectapex/apex-api/internal/logic"
	"github.com/projectapex/apex-api/internal/models"
	"github.com/projectapex/apex-api/internal/predict"
)

// PredictRequest carries both teams' stats and the game context
type PredictRequest struct {
	HomeStats *models.TeamStats  `json:"home_stats" validate:"required"`
	AwayStats *models.TeamStats  `json:"away_stats" validate:"required"`
	Context   models.GameContext `json:"context"`
}

// PredictMatchup forecasts a game from supplied team statistics
// @Summary Predict a matchup
// @Description Runs the ensemble (default) or a single model against supplied stats
// @Tags Predictions
// @Accept json
// @Produce json
// @Param model query string false "ensemble, linear, rating or strength"
// @Param body body PredictRequest true "Matchup"
// @Success 200 {object} models.MLPrediction
// @Failure 400 {object} map[string]string
// @Router /predictions [post]
func (h *Handler) PredictMatchup(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	model := r.URL.Query().Get("model")
	pred, err := h.prediction.Predict(model, req.HomeStats, req.AwayStats, &req.Context)
	if err != nil {
		if errors.Is(err, predict.ErrUnknownModel) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("Failed to predict matchup", "error", err, "model", model)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to predict")
		return
	}

	h.jsonResponse(w, http.StatusOK, pred)
}

// PredictGame forecasts a game between two teams using stored statistics
// @Summary Predict a scheduled game
// @Description Derives both teams' stats from completed games, predicts, stores and logs the forecast
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body logic.PredictGameRequest true "Game"
// @Success 201 {object} models.GamePrediction
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /games/predict [post]
func (h *Handler) PredictGame(w http.ResponseWriter, r *http.Request) {
	var req logic.PredictGameRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	gp, err := h.prediction.PredictGame(r.Context(), req)
	if err != nil {
		if errors.Is(err, predict.ErrUnknownModel) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("Failed to predict game", "error", err, "home", req.HomeTeamID, "away", req.AwayTeamID)
		h.errorResponse(w, storeErrorStatus(err), "Failed to predict game")
		return
	}

	h.jsonResponse(w, http.StatusCreated, gp)
}

// GetRecentPredictions lists the newest logged predictions
// @Summary Recent predictions
// @Tags Predictions
// @Produce json
// @Param sport query string false "Sport filter"
// @Param limit query int false "Max rows (default 50, max 500)"
// @Success 200 {array} models.PredictionLogEntry
// @Failure 503 {object} map[string]string
// @Router /predictions/recent [get]
func (h *Handler) GetRecentPredictions(w http.ResponseWriter, r *http.Request) {
	if h.predictionLog == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Prediction log is not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sport := r.URL.Query().Get("sport")
	entries, err := h.predictionLog.Recent(r.Context(), sport, limit)
	if err != nil {
		h.logger.Errorw("Failed to read prediction log", "error", err, "sport", sport)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to read prediction log")
		return
	}

	h.jsonResponse(w, http.StatusOK, entries)
}
