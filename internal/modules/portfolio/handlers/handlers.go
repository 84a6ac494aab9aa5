// Package handlers provides HTTP handlers for portfolio metrics.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/trendly/internal/modules/portfolio"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// MetricsRequest is the body of POST /api/portfolio/metrics
type MetricsRequest struct {
	Holdings     []portfolio.Holding     `json:"holdings" validate:"required,min=1,max=100,dive"`
	Transactions []portfolio.Transaction `json:"transactions" validate:"omitempty,dive"`
}

// Handler handles portfolio HTTP requests
type Handler struct {
	metrics  *portfolio.MetricsService
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(metrics *portfolio.MetricsService, log zerolog.Logger) *Handler {
	return &Handler{
		metrics:  metrics,
		validate: validator.New(),
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleComputeMetrics handles POST /api/portfolio/metrics
func (h *Handler) HandleComputeMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	metrics, err := h.metrics.Compute(r.Context(), req.Holdings, req.Transactions)
	if err != nil {
		if errors.Is(err, portfolio.ErrNoHoldings) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No stocks found in portfolio."})
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute portfolio metrics")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to compute portfolio metrics"})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": metrics,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
