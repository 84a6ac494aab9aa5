package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/trendly/internal/modules/currency"
	"github.com/aristath/trendly/internal/modules/market_hours"
	"github.com/aristath/trendly/internal/modules/portfolio"
	"github.com/aristath/trendly/internal/modules/quotes"
	testingpkg "github.com/aristath/trendly/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*chi.Mux, *testingpkg.MockMarketDataSource) {
	t.Helper()
	logger := zerolog.Nop()

	registry, err := market_hours.LoadRegistry(strings.NewReader("code,currency,timezone,open,close\nNMS,USD,America/New_York,09:30,16:00\n"))
	require.NoError(t, err)

	source := new(testingpkg.MockMarketDataSource)
	now := func() time.Time { return time.Date(2024, 1, 16, 22, 0, 0, 0, time.UTC) }
	service := quotes.NewService(
		source,
		registry,
		currency.NewRateProvider(source, nil, time.Second, logger),
		quotes.NewCache(quotes.DefaultTTL, now),
		quotes.Config{UpstreamTimeout: time.Second, Now: now},
		logger,
	)

	router := chi.NewRouter()
	NewHandler(portfolio.NewMetricsService(service, logger), logger).RegisterRoutes(router)
	return router, source
}

func post(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/portfolio/metrics", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleComputeMetrics(t *testing.T) {
	router, source := setupRouter(t)
	source.On("GetInstrumentInfo", mock.Anything, "AAPL").Return(testingpkg.NewEquityInfo("AAPL", "NMS", "USD"), nil)

	w := post(router, `{"holdings":[{"ticker":"AAPL","shares":2}],"transactions":[{"ticker":"AAPL","type":"buy","price":100,"shares":2}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data portfolio.Metrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 220.0, body.Data.EquityValue)
	require.Len(t, body.Data.Positions, 1)
	assert.InDelta(t, 0.1, body.Data.Positions[0].Return, 1e-9)
}

func TestHandleComputeMetrics_BadRequests(t *testing.T) {
	router, source := setupRouter(t)

	for _, body := range []string{
		`not json`,
		`{"holdings":[]}`,
		`{"holdings":[{"ticker":"","shares":1}]}`,
		`{"holdings":[{"ticker":"A","shares":-1}]}`,
		`{"holdings":[{"ticker":"A","shares":1}],"transactions":[{"ticker":"A","type":"gift","price":1,"shares":1}]}`,
		`{"holdings":[{"ticker":"A","shares":0}]}`,
	} {
		w := post(router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	source.AssertNotCalled(t, "GetInstrumentInfo", mock.Anything, mock.Anything)
}
