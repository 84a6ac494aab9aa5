// Package handlers provides HTTP handlers for quote lookups.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/internal/modules/quotes"
	"github.com/aristath/trendly/internal/utils"
	"github.com/rs/zerolog"
)

// maxBatchTickers caps the number of tickers in one batch request
const maxBatchTickers = 50

// Handler handles quote HTTP requests
type Handler struct {
	service *quotes.Service
	log     zerolog.Logger
}

// NewHandler creates a new quotes handler
func NewHandler(service *quotes.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "quotes").Logger(),
	}
}

// HandleGetQuote handles GET /api/quotes/{ticker}
func (h *Handler) HandleGetQuote(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ticker is required"})
		return
	}

	result := h.service.Lookup(r.Context(), ticker)
	if !result.OK() {
		h.writeJSON(w, statusFor(result.Err), result)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetQuotes handles GET /api/quotes?tickers=AAPL,MSFT
// Per-ticker failures are reported inline and do not fail the request.
func (h *Handler) HandleGetQuotes(w http.ResponseWriter, r *http.Request) {
	tickers := utils.ParseTickers(r.URL.Query().Get("tickers"))
	if len(tickers) == 0 {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tickers parameter is required"})
		return
	}
	if len(tickers) > maxBatchTickers {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "too many tickers"})
		return
	}

	results := h.service.LookupMany(r.Context(), tickers)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"quotes": results,
			"count":  len(results),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleValidateTicker handles GET /api/quotes/{ticker}/validate
func (h *Handler) HandleValidateTicker(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = utils.NormalizeTicker(ticker)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"ticker": ticker,
			"valid":  ticker != "" && h.service.CheckTicker(r.Context(), ticker),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetCacheStats handles GET /api/quotes/cache/stats
func (h *Handler) HandleGetCacheStats(w http.ResponseWriter, r *http.Request) {
	cache := h.service.Cache()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"entries":     cache.Len(),
			"ttl_seconds": int64(cache.TTL().Seconds()),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidTicker):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownExchange):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
