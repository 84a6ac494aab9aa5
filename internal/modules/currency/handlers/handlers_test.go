package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/internal/modules/currency"
	testingpkg "github.com/aristath/trendly/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter() (*chi.Mux, *testingpkg.MockMarketDataSource) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	source := new(testingpkg.MockMarketDataSource)
	handler := NewHandler(currency.NewRateProvider(source, nil, time.Second, logger), logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, source
}

func TestHandleGetRate(t *testing.T) {
	router, source := setupRouter()
	source.On("GetLatestPrice", mock.Anything, "USDGBP=X").Return(0.79, nil)

	req := httptest.NewRequest("GET", "/currency/rate/gbp", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "GBP", data["currency"])
	assert.Equal(t, "USDGBP=X", data["pair"])
	assert.Equal(t, 0.79, data["rate"])
}

func TestHandleGetRate_Errors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setup          func(*testingpkg.MockMarketDataSource)
		expectedStatus int
	}{
		{
			name:           "invalid code",
			path:           "/currency/rate/EURO",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "upstream failure",
			path: "/currency/rate/EUR",
			setup: func(m *testingpkg.MockMarketDataSource) {
				m.On("GetLatestPrice", mock.Anything, "USDEUR=X").Return(0.0, errors.New("down"))
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, source := setupRouter()
			if tt.setup != nil {
				tt.setup(source)
			}

			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestHandleGetHistory(t *testing.T) {
	router, source := setupRouter()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	source.On("GetHistory", mock.Anything, "USDEUR=X", start, end).Return([]domain.RatePoint{
		{Date: start, Rate: 0.91},
		{Date: start.AddDate(0, 0, 1), Rate: 0.92},
	}, nil)

	req := httptest.NewRequest("GET", "/currency/history/EUR?start=2024-01-01&end=2024-01-03", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestHandleGetHistory_BadDates(t *testing.T) {
	router, _ := setupRouter()

	for _, query := range []string{
		"",
		"?start=2024-01-01",
		"?start=2024-02-01&end=2024-01-01",
		"?start=yesterday&end=2024-01-01",
	} {
		req := httptest.NewRequest("GET", "/currency/history/EUR"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}
