package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/projectapex/apex-api/internal/store"
)

// Health check endpoint
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
// @Summary Readiness probe
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]bool, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		ok := check(ctx) == nil
		checks[name] = ok
		if !ok {
			allHealthy = false
		}
	}

	body := map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	}
	if h.queue != nil {
		body["queueDepth"] = h.queue.QueueDepth()
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, body)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// decodeAndValidate reads a size-limited JSON body into dst and validates it.
// It writes the error response itself and reports whether handling may continue.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage flattens validator errors into one readable line
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	sort.Strings(msgs)
	return "Validation failed: " + strings.Join(msgs, "; ")
}

// storeErrorStatus maps collaborator failures to a response status
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
