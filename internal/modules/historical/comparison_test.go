package historical

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/trendly/internal/domain"
	testingpkg "github.com/aristath/trendly/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestComparator(t *testing.T) (*Comparator, *testingpkg.MockMarketDataSource) {
	t.Helper()
	fetcher, source := newTestFetcher(t)
	source.On("GetInstrumentInfo", mock.Anything, "^GSPC").Return(indexInfo("^GSPC"), nil)
	return NewComparator(fetcher, zerolog.Nop()), source
}

func onBars(source *testingpkg.MockMarketDataSource, ticker string, bars []domain.Bar) {
	source.On("GetInstrumentInfo", mock.Anything, ticker).Return(testingpkg.NewEquityInfo(ticker, "NMS", "USD"), nil)
	source.On("Download", mock.Anything, ticker, rangeStart, rangeEnd, "1d").Return(bars, nil)
}

func TestCompare(t *testing.T) {
	comparator, source := newTestComparator(t)
	source.On("Download", mock.Anything, "^GSPC", rangeStart, rangeEnd, "1d").Return(testingpkg.NewDailyBars(rangeStart, 4, 200), nil)
	onBars(source, "AAPL", testingpkg.NewDailyBars(rangeStart, 4, 100))
	onBars(source, "MSFT", testingpkg.NewDailyBars(rangeStart, 4, 50))

	comparison, err := comparator.Compare(context.Background(), "^GSPC", []Holding{
		{Ticker: "AAPL", Shares: 2},
		{Ticker: "MSFT", Shares: 4},
	}, rangeStart, rangeEnd, FrequencyDaily)
	require.NoError(t, err)

	require.Len(t, comparison.Points, 4)
	// Day 0: 2*100 + 4*50 = 400. Day 3: 2*103 + 4*53 = 418
	assert.Equal(t, []float64{400, 406, 412, 418}, comparison.Total)
	assert.Equal(t, []float64{200, 202, 204, 206}, comparison.Values["AAPL"])

	assert.InDelta(t, 100.0, comparison.Points[0].Portfolio, 1e-9)
	assert.InDelta(t, 100.0, comparison.Points[0].Index, 1e-9)
	assert.InDelta(t, 104.5, comparison.Points[3].Portfolio, 1e-9)
	assert.InDelta(t, 101.5, comparison.Points[3].Index, 1e-9)
}

func TestCompare_ForwardFillsGaps(t *testing.T) {
	comparator, source := newTestComparator(t)
	source.On("Download", mock.Anything, "^GSPC", rangeStart, rangeEnd, "1d").Return(testingpkg.NewDailyBars(rangeStart, 4, 200), nil)

	// Holding did not trade on day 2
	bars := testingpkg.NewDailyBars(rangeStart, 4, 10)
	bars = append(bars[:2], bars[3])
	onBars(source, "GAP", bars)

	comparison, err := comparator.Compare(context.Background(), "^GSPC", []Holding{{Ticker: "GAP", Shares: 1}}, rangeStart, rangeEnd, FrequencyDaily)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 11, 13}, comparison.Total)
}

func TestCompare_DataLengthMismatch(t *testing.T) {
	comparator, source := newTestComparator(t)
	source.On("Download", mock.Anything, "^GSPC", rangeStart, rangeEnd, "1d").Return(testingpkg.NewDailyBars(rangeStart, 10, 200), nil)
	onBars(source, "OLD", testingpkg.NewDailyBars(rangeStart, 10, 100))
	onBars(source, "NEW", testingpkg.NewDailyBars(rangeStart.AddDate(0, 0, 3), 7, 20))
	onBars(source, "NEWER", testingpkg.NewDailyBars(rangeStart.AddDate(0, 0, 5), 5, 20))

	_, err := comparator.Compare(context.Background(), "^GSPC", []Holding{
		{Ticker: "OLD", Shares: 1},
		{Ticker: "NEWER", Shares: 1},
		{Ticker: "NEW", Shares: 1},
	}, rangeStart, rangeEnd, FrequencyDaily)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataLengthMismatch))

	var mismatch *domain.DataLengthMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"NEW", "NEWER"}, mismatch.Culprits)
	assert.Equal(t, "2024-01-06", mismatch.Hint)
}

func TestCompare_HoldingFailurePropagates(t *testing.T) {
	comparator, source := newTestComparator(t)
	source.On("Download", mock.Anything, "^GSPC", rangeStart, rangeEnd, "1d").Return(testingpkg.NewDailyBars(rangeStart, 4, 200), nil)
	source.On("GetInstrumentInfo", mock.Anything, "BAD").Return(nil, domain.ErrNotFound)

	_, err := comparator.Compare(context.Background(), "^GSPC", []Holding{{Ticker: "BAD", Shares: 1}}, rangeStart, rangeEnd, FrequencyDaily)
	assert.True(t, errors.Is(err, domain.ErrInvalidTicker))
}

func TestCompare_RequiresHoldings(t *testing.T) {
	comparator, _ := newTestComparator(t)

	_, err := comparator.Compare(context.Background(), "^GSPC", nil, rangeStart, rangeEnd, FrequencyDaily)
	assert.Error(t, err)
}

func TestRebase(t *testing.T) {
	out, err := rebase([]float64{50, 75, 25})
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 150, 50}, out)

	_, err = rebase([]float64{0, 1})
	assert.Error(t, err)
}
