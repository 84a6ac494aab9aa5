// Package handlers provides HTTP handlers for currency operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/internal/modules/currency"
	"github.com/rs/zerolog"
)

// Handler handles currency HTTP requests
type Handler struct {
	rates *currency.RateProvider
	log   zerolog.Logger
}

// NewHandler creates a new currency handler
func NewHandler(rates *currency.RateProvider, log zerolog.Logger) *Handler {
	return &Handler{
		rates: rates,
		log:   log.With().Str("handler", "currency").Logger(),
	}
}

// HandleGetRate handles GET /api/currency/rate/{currency}
func (h *Handler) HandleGetRate(w http.ResponseWriter, r *http.Request, code string) {
	cur, ok := parseCurrency(code)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "currency must be a 3-letter code")
		return
	}

	rate, err := h.rates.CurrentRate(r.Context(), cur)
	if err != nil {
		h.log.Warn().Err(err).Str("currency", code).Msg("Exchange rate unavailable")
		h.writeError(w, http.StatusBadGateway, "Exchange rate temporarily unavailable.")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"base":     domain.ReportingCurrency,
			"currency": cur,
			"pair":     currency.PairSymbol(cur),
			"rate":     rate,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetHistory handles GET /api/currency/history/{currency}?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request, code string) {
	cur, ok := parseCurrency(code)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "currency must be a 3-letter code")
		return
	}

	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "start must be a date (YYYY-MM-DD)")
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "end must be a date (YYYY-MM-DD)")
		return
	}
	if !start.Before(end) {
		h.writeError(w, http.StatusBadRequest, "start must be before end")
		return
	}

	points, err := h.rates.HistoricalRates(r.Context(), cur, start, end)
	if err != nil {
		if errors.Is(err, domain.ErrRateUnavailable) {
			h.log.Warn().Err(err).Str("currency", code).Msg("Historical rates unavailable")
			h.writeError(w, http.StatusBadGateway, "Exchange rate temporarily unavailable.")
			return
		}
		h.log.Error().Err(err).Str("currency", code).Msg("Failed to get historical rates")
		h.writeError(w, http.StatusInternalServerError, "Failed to get historical rates")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"currency": cur,
			"pair":     currency.PairSymbol(cur),
			"rates":    points,
			"count":    len(points),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func parseCurrency(code string) (domain.Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", false
		}
	}
	return domain.Currency(code), true
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
