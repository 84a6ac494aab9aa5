package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/trendly/internal/config"
	"github.com/aristath/trendly/internal/di"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		DataDir:         t.TempDir(),
		Port:            8001,
		QuoteCacheTTL:   12 * time.Hour,
		UpstreamTimeout: time.Second,
		YahooBaseURL:    "http://127.0.0.1:0",
		CleanupSchedule: "0 0 3 * * *",
	}

	container, jobs, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	return New(Config{
		Log:       zerolog.Nop(),
		Port:      cfg.Port,
		DevMode:   true,
		Container: container,
		Jobs:      jobs,
	})
}

func request(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := setupServer(t)

	w := request(s, "GET", "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "trendly", body["service"])
}

func TestHealth_DatabaseClosed(t *testing.T) {
	s := setupServer(t)
	require.NoError(t, s.container.ClientDataDB.Close())

	w := request(s, "GET", "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutesMounted(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/market-hours/status", http.StatusOK},
		{"GET", "/api/market-hours/status/NOPE", http.StatusNotFound},
		{"GET", "/api/market-hours/open-markets", http.StatusOK},
		{"GET", "/api/quotes/cache/stats", http.StatusOK},
		{"GET", "/api/quotes", http.StatusBadRequest},
		{"GET", "/api/currency/rate/USD", http.StatusOK},
		{"GET", "/api/historical/AAPL?frequency=1mo", http.StatusBadRequest},
		{"POST", "/api/historical/compare", http.StatusBadRequest},
		{"POST", "/api/portfolio/metrics", http.StatusBadRequest},
		{"GET", "/api/system/jobs", http.StatusOK},
		{"GET", "/api/system/database", http.StatusOK},
		{"GET", "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := request(s, tt.method, tt.path)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/quotes/AAPL", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
