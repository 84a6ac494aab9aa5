package historical

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/internal/modules/currency"
	"github.com/aristath/trendly/internal/modules/market_hours"
	testingpkg "github.com/aristath/trendly/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testExchanges = `code,currency,timezone,open,close
NMS,USD,America/New_York,09:30,16:00
SNP,USD,America/New_York,09:30,16:00
LSE,GBP,Europe/London,08:00,16:30
`

var (
	rangeStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
)

func newTestFetcher(t *testing.T) (*Fetcher, *testingpkg.MockMarketDataSource) {
	t.Helper()

	registry, err := market_hours.LoadRegistry(strings.NewReader(testExchanges))
	require.NoError(t, err)

	logger := zerolog.Nop()
	source := new(testingpkg.MockMarketDataSource)
	rates := currency.NewRateProvider(source, nil, time.Second, logger)

	return NewFetcher(source, registry, rates, time.Second, logger), source
}

func indexInfo(symbol string) *domain.InstrumentInfo {
	return &domain.InstrumentInfo{Symbol: symbol, QuoteType: domain.ProductTypeIndex, ExchangeCode: "SNP", Currency: "USD"}
}

func TestParseFrequency(t *testing.T) {
	for _, s := range []string{"1h", "1d", "5d", "1wk"} {
		f, err := ParseFrequency(s)
		require.NoError(t, err)
		assert.Equal(t, Frequency(s), f)
	}

	f, err := ParseFrequency("")
	require.NoError(t, err)
	assert.Equal(t, FrequencyDaily, f)

	_, err = ParseFrequency("1mo")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFrequency))
}

func TestFetch_UnsupportedFrequencyBeforeUpstream(t *testing.T) {
	fetcher, source := newTestFetcher(t)

	for _, freq := range []Frequency{"1m", "1mo", ""} {
		_, err := fetcher.Fetch(context.Background(), "AAPL", rangeStart, rangeEnd, freq)
		assert.True(t, errors.Is(err, domain.ErrUnsupportedFrequency), string(freq))
	}

	source.AssertNotCalled(t, "GetInstrumentInfo", mock.Anything, mock.Anything)
	source.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFetch_ReportingCurrencyUnchanged(t *testing.T) {
	fetcher, source := newTestFetcher(t)
	bars := testingpkg.NewDailyBars(rangeStart, 5, 100)
	source.On("GetInstrumentInfo", mock.Anything, "AAPL").Return(testingpkg.NewEquityInfo("AAPL", "NMS", "USD"), nil)
	source.On("Download", mock.Anything, "AAPL", rangeStart, rangeEnd, "1d").Return(bars, nil)

	got, err := fetcher.Fetch(context.Background(), "AAPL", rangeStart, rangeEnd, FrequencyDaily)
	require.NoError(t, err)
	assert.Equal(t, bars, got)
	source.AssertNotCalled(t, "GetLatestPrice", mock.Anything, mock.Anything)
}

func TestFetch_ConvertsWithCurrentRate(t *testing.T) {
	fetcher, source := newTestFetcher(t)
	bars := testingpkg.NewDailyBars(rangeStart, 3, 80)
	source.On("GetInstrumentInfo", mock.Anything, "VOD.L").Return(testingpkg.NewEquityInfo("VOD.L", "LSE", "GBP"), nil)
	source.On("Download", mock.Anything, "VOD.L", rangeStart, rangeEnd, "1wk").Return(bars, nil)
	source.On("GetLatestPrice", mock.Anything, "USDGBP=X").Return(0.8, nil).Once()

	got, err := fetcher.Fetch(context.Background(), "VOD.L", rangeStart, rangeEnd, FrequencyWeekly)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, bar := range got {
		assert.InDelta(t, bars[i].Open/0.8, bar.Open, 1e-9)
		assert.InDelta(t, bars[i].High/0.8, bar.High, 1e-9)
		assert.InDelta(t, bars[i].Low/0.8, bar.Low, 1e-9)
		assert.InDelta(t, bars[i].Close/0.8, bar.Close, 1e-9)
		assert.Equal(t, bars[i].Volume, bar.Volume)
	}
	// Input untouched
	assert.Equal(t, 80.0, bars[0].Close)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testingpkg.MockMarketDataSource)
		kind  error
	}{
		{
			name: "unknown ticker",
			setup: func(m *testingpkg.MockMarketDataSource) {
				m.On("GetInstrumentInfo", mock.Anything, "X").Return(nil, domain.ErrNotFound)
			},
			kind: domain.ErrInvalidTicker,
		},
		{
			name: "metadata failure",
			setup: func(m *testingpkg.MockMarketDataSource) {
				m.On("GetInstrumentInfo", mock.Anything, "X").Return(nil, errors.New("boom"))
			},
			kind: domain.ErrUpstreamUnavailable,
		},
		{
			name: "unknown exchange",
			setup: func(m *testingpkg.MockMarketDataSource) {
				m.On("GetInstrumentInfo", mock.Anything, "X").Return(testingpkg.NewEquityInfo("X", "XYZ", "USD"), nil)
			},
			kind: domain.ErrUnknownExchange,
		},
		{
			name: "download failure",
			setup: func(m *testingpkg.MockMarketDataSource) {
				m.On("GetInstrumentInfo", mock.Anything, "X").Return(testingpkg.NewEquityInfo("X", "NMS", "USD"), nil)
				m.On("Download", mock.Anything, "X", rangeStart, rangeEnd, "1d").Return(nil, context.DeadlineExceeded)
			},
			kind: domain.ErrUpstreamUnavailable,
		},
		{
			name: "rate failure",
			setup: func(m *testingpkg.MockMarketDataSource) {
				m.On("GetInstrumentInfo", mock.Anything, "X").Return(testingpkg.NewEquityInfo("X", "LSE", "GBP"), nil)
				m.On("Download", mock.Anything, "X", rangeStart, rangeEnd, "1d").Return(testingpkg.NewDailyBars(rangeStart, 2, 10), nil)
				m.On("GetLatestPrice", mock.Anything, "USDGBP=X").Return(0.0, errors.New("fx down"))
			},
			kind: domain.ErrUpstreamUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, source := newTestFetcher(t)
			tt.setup(source)

			_, err := fetcher.Fetch(context.Background(), "X", rangeStart, rangeEnd, FrequencyDaily)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), err.Error())
		})
	}
}

func TestFetch_IndexesAreAllowed(t *testing.T) {
	fetcher, source := newTestFetcher(t)
	source.On("GetInstrumentInfo", mock.Anything, "^GSPC").Return(indexInfo("^GSPC"), nil)
	source.On("Download", mock.Anything, "^GSPC", rangeStart, rangeEnd, "1d").Return(testingpkg.NewDailyBars(rangeStart, 4, 4700), nil)

	bars, err := fetcher.Fetch(context.Background(), "^GSPC", rangeStart, rangeEnd, FrequencyDaily)
	require.NoError(t, err)
	assert.Len(t, bars, 4)
}

func TestFetch_InvalidRange(t *testing.T) {
	fetcher, _ := newTestFetcher(t)

	_, err := fetcher.Fetch(context.Background(), "AAPL", rangeEnd, rangeStart, FrequencyDaily)
	assert.Error(t, err)
}
