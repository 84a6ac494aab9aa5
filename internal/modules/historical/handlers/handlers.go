// Package handlers provides HTTP handlers for historical series and portfolio comparisons.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/internal/modules/historical"
	"github.com/aristath/trendly/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// CompareRequest is the body of POST /api/historical/compare
type CompareRequest struct {
	Index     string               `json:"index" validate:"required"`
	Holdings  []historical.Holding `json:"holdings" validate:"required,min=1,max=100,dive"`
	Start     string               `json:"start" validate:"required,datetime=2006-01-02"`
	End       string               `json:"end" validate:"required,datetime=2006-01-02"`
	Frequency string               `json:"frequency"`
}

// Handler handles historical data HTTP requests
type Handler struct {
	fetcher    *historical.Fetcher
	comparator *historical.Comparator
	validate   *validator.Validate
	log        zerolog.Logger
}

// NewHandler creates a new historical data handler
func NewHandler(
	fetcher *historical.Fetcher,
	comparator *historical.Comparator,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		fetcher:    fetcher,
		comparator: comparator,
		validate:   validator.New(),
		log:        log.With().Str("handler", "historical").Logger(),
	}
}

// HandleGetSeries handles GET /api/historical/{ticker}?start=&end=&frequency=
func (h *Handler) HandleGetSeries(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = utils.NormalizeTicker(ticker)
	query := r.URL.Query()

	freq, err := historical.ParseFrequency(query.Get("frequency"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end, err := parseRange(query.Get("start"), query.Get("end"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bars, err := h.fetcher.Fetch(r.Context(), ticker, start, end, freq)
	if err != nil {
		h.log.Debug().Err(err).Str("ticker", ticker).Msg("Historical fetch failed")
		h.writeError(w, statusFor(err), messageFor(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"ticker":    ticker,
			"frequency": freq,
			"currency":  domain.ReportingCurrency,
			"bars":      bars,
			"count":     len(bars),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCompare handles POST /api/historical/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	freq, err := historical.ParseFrequency(req.Frequency)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end, err := parseRange(req.Start, req.End)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for i := range req.Holdings {
		req.Holdings[i].Ticker = utils.NormalizeTicker(req.Holdings[i].Ticker)
	}
	index := utils.NormalizeTicker(req.Index)

	comparison, err := h.comparator.Compare(r.Context(), index, req.Holdings, start, end, freq)
	if err != nil {
		var mismatch *domain.DataLengthMismatchError
		if errors.As(err, &mismatch) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":    mismatch.Error(),
				"culprits": mismatch.Culprits,
				"hint":     mismatch.Hint,
			})
			return
		}
		h.log.Debug().Err(err).Str("index", index).Msg("Comparison failed")
		h.writeError(w, statusFor(err), messageFor(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": comparison,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// parseRange parses a [start, end) pair of calendar dates. A missing end means today.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" {
		return time.Time{}, time.Time{}, errors.New("start is required (YYYY-MM-DD)")
	}
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	if endStr != "" {
		end, err = time.Parse(dateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid end date (YYYY-MM-DD)")
		}
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("start must be before end")
	}
	return start, end, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFrequency), errors.Is(err, domain.ErrUnknownExchange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTicker), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDataLengthMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTicker):
		return "Invalid or unsupported ticker."
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "Historical data temporarily unavailable."
	default:
		return err.Error()
	}
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
