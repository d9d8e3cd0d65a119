package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/projectapex/apex-api/internal/logic"
	"github.com/projectapex/apex-api/internal/models"
)

// ResolveGameRequest carries a completed game's final score
type ResolveGameRequest struct {
	HomeScore *float64 `json:"home_score" validate:"required,gte=0"`
	AwayScore *float64 `json:"away_score" validate:"required,gte=0"`
}

// EvaluatePrediction scores a prediction against its realized outcome
// @Summary Evaluate a prediction
// @Description Scores, persists and folds the evaluation into the model's metrics
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param body body logic.EvaluateRequest true "Evaluation"
// @Success 201 {object} models.PredictionEvaluation
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /evaluations [post]
func (h *Handler) EvaluatePrediction(w http.ResponseWriter, r *http.Request) {
	var req logic.EvaluateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ev, err := h.tracker.Evaluate(r.Context(), req)
	if err != nil {
		if isEvaluationInputError(err) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("Failed to evaluate prediction", "error", err, "prediction_id", req.PredictionID)
		h.errorResponse(w, storeErrorStatus(err), "Failed to evaluate prediction")
		return
	}

	h.jsonResponse(w, http.StatusCreated, ev)
}

// ResolveGame evaluates every stored prediction for a completed game
// @Summary Resolve a completed game
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Param body body ResolveGameRequest true "Final score"
// @Success 200 {array} models.PredictionEvaluation
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /games/{gameID}/resolve [post]
func (h *Handler) ResolveGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Game ID is required")
		return
	}

	var req ResolveGameRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	evals, err := h.tracker.ResolveGame(r.Context(), gameID, *req.HomeScore, *req.AwayScore)
	if err != nil {
		h.logger.Errorw("Failed to resolve game", "error", err, "game_id", gameID)
		h.errorResponse(w, storeErrorStatus(err), "Failed to resolve game")
		return
	}
	if evals == nil {
		evals = []models.PredictionEvaluation{}
	}

	h.jsonResponse(w, http.StatusOK, evals)
}

func isEvaluationInputError(err error) bool {
	return errors.Is(err, logic.ErrInvalidProbability) ||
		errors.Is(err, logic.ErrMissingOutcome) ||
		errors.Is(err, models.ErrOutcomeMismatch)
}
