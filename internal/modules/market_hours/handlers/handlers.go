// Package handlers provides HTTP handlers for market hours operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/internal/modules/market_hours"
	"github.com/rs/zerolog"
)

// Handler handles market hours HTTP requests
type Handler struct {
	service *market_hours.MarketHoursService
	now     func() time.Time
	log     zerolog.Logger
}

// NewHandler creates a new market hours handler
func NewHandler(
	service *market_hours.MarketHoursService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
		log:     log.With().Str("handler", "market_hours").Logger(),
	}
}

// HandleGetStatus handles GET /api/market-hours/status
// Returns current market status for all configured exchanges
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"timestamp": now.Format(time.RFC3339),
			"markets":   h.service.GetAllMarketStatuses(now),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetStatusByExchange handles GET /api/market-hours/status/{exchange}
func (h *Handler) HandleGetStatusByExchange(w http.ResponseWriter, r *http.Request, exchange string) {
	status, err := h.service.GetMarketStatus(exchange, h.now())
	if err != nil {
		if errors.Is(err, domain.ErrUnknownExchange) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown exchange '" + exchange + "'"})
			return
		}
		h.log.Error().Err(err).Str("exchange", exchange).Msg("Failed to get market status")
		http.Error(w, "Failed to get market status", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": status,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetOpenMarkets handles GET /api/market-hours/open-markets
// Returns list of currently open exchanges
func (h *Handler) HandleGetOpenMarkets(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	openMarkets := h.service.GetOpenMarkets(now)

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"timestamp":    now.Format(time.RFC3339),
			"open_markets": openMarkets,
			"count":        len(openMarkets),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
