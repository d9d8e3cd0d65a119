package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/projectapex/apex-api/internal/logic"
)

// GetPerformance returns the full performance analysis for a sport
// @Summary Model performance analysis
// @Tags Performance
// @Produce json
// @Param sport path string true "Sport"
// @Param league query string false "League filter"
// @Param model query string false "Model filter"
// @Param range query string false "week, month, season or all"
// @Success 200 {object} models.ModelPerformanceAnalysis
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /performance/{sport} [get]
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	q := r.URL.Query()

	tr, err := logic.ParseTimeRange(q.Get("range"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), sport, q.Get("league"), q.Get("model"), tr)
	if err != nil {
		h.logger.Errorw("Failed to analyze performance", "error", err, "sport", sport)
		h.errorResponse(w, storeErrorStatus(err), "Failed to analyze performance")
		return
	}
	if analysis == nil {
		h.errorResponse(w, http.StatusNotFound, "No evaluated predictions found")
		return
	}

	h.jsonResponse(w, http.StatusOK, analysis)
}

// GetCalibration compares stated confidence with observed accuracy
// @Summary Calibration analysis
// @Tags Performance
// @Produce json
// @Param sport path string true "Sport"
// @Param model query string false "Model filter"
// @Success 200 {object} models.CalibrationReport
// @Failure 404 {object} map[string]string
// @Router /performance/{sport}/calibration [get]
func (h *Handler) GetCalibration(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	model := r.URL.Query().Get("model")

	report, err := h.analyzer.CalibrationAnalysis(r.Context(), sport, model)
	if err != nil {
		h.logger.Errorw("Failed to analyze calibration", "error", err, "sport", sport, "model", model)
		h.errorResponse(w, storeErrorStatus(err), "Failed to analyze calibration")
		return
	}
	if report == nil {
		h.errorResponse(w, http.StatusNotFound, "No evaluated predictions found")
		return
	}

	h.jsonResponse(w, http.StatusOK, report)
}

// GetMetrics returns the latest aggregate metrics, served from cache when warm
// @Summary Cached model metrics
// @Tags Performance
// @Produce json
// @Param sport path string true "Sport"
// @Param league query string false "League filter"
// @Param model query string false "Model filter"
// @Success 200 {object} models.PredictionMetrics
// @Failure 404 {object} map[string]string
// @Router /performance/{sport}/metrics [get]
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	q := r.URL.Query()

	m, err := h.analyzer.CachedMetrics(r.Context(), sport, q.Get("league"), q.Get("model"))
	if err != nil {
		h.logger.Errorw("Failed to load metrics", "error", err, "sport", sport)
		h.errorResponse(w, storeErrorStatus(err), "Failed to load metrics")
		return
	}
	if m == nil {
		h.errorResponse(w, http.StatusNotFound, "No evaluated predictions found")
		return
	}

	h.jsonResponse(w, http.StatusOK, m)
}

// RunMonitor performs a monitoring pass over the last 24 hours
// @Summary Run a monitoring pass
// @Tags Monitoring
// @Produce json
// @Success 200 {object} models.MonitorReport
// @Failure 503 {object} map[string]string
// @Router /monitor [get]
func (h *Handler) RunMonitor(w http.ResponseWriter, r *http.Request) {
	report, err := h.monitor.Run(r.Context())
	if err != nil {
		h.logger.Errorw("Monitoring pass failed", "error", err)
		h.errorResponse(w, storeErrorStatus(err), "Monitoring pass failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, report)
}
