package historical

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/internal/utils"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"golang.org/x/sync/errgroup"
)

// Holding is a position size in one ticker
type Holding struct {
	Ticker string  `json:"ticker" validate:"required"`
	Shares float64 `json:"shares" validate:"gt=0"`
}

// ComparisonPoint is one aligned sample of the normalized portfolio and index series
type ComparisonPoint struct {
	Date      time.Time `json:"date"`
	Portfolio float64   `json:"portfolio"`
	Index     float64   `json:"index"`
}

// Comparison is a portfolio value series aligned to an index, both rebased to 100
type Comparison struct {
	Index     string               `json:"index"`
	Frequency Frequency            `json:"frequency"`
	Points    []ComparisonPoint    `json:"points"`
	Values    map[string][]float64 `json:"values"`
	Total     []float64            `json:"total"`
}

// Comparator compares the value of a set of holdings against an index
type Comparator struct {
	fetcher *Fetcher
	log     zerolog.Logger
}

// NewComparator creates a comparator backed by fetcher
func NewComparator(fetcher *Fetcher, log zerolog.Logger) *Comparator {
	return &Comparator{
		fetcher: fetcher,
		log:     log.With().Str("service", "comparator").Logger(),
	}
}

// Compare builds the portfolio value series on the index's dates and rebases both to 100.
// A holding whose data starts after the index's first sample cannot be aligned; the
// returned *domain.DataLengthMismatchError names every such holding and the earliest
// start date from which all series are complete. Gaps inside a holding's history
// carry its previous close forward.
func (c *Comparator) Compare(ctx context.Context, index string, holdings []Holding, start, end time.Time, freq Frequency) (*Comparison, error) {
	if len(holdings) == 0 {
		return nil, fmt.Errorf("at least one holding is required")
	}
	defer utils.OperationTimer("portfolio_comparison", 30*time.Second, c.log)()

	indexBars, err := c.fetcher.Fetch(ctx, index, start, end, freq)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", index, err)
	}
	if len(indexBars) == 0 {
		return nil, fmt.Errorf("index %s: %w between %s and %s", index, domain.ErrNotFound, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	series := make([][]domain.Bar, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	for i, h := range holdings {
		g.Go(func() error {
			bars, err := c.fetcher.Fetch(gctx, h.Ticker, start, end, freq)
			if err != nil {
				return fmt.Errorf("holding %s: %w", h.Ticker, err)
			}
			series[i] = bars
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	key := sampleKey(freq)
	indexStart := indexBars[0].Date

	var culprits []string
	var latestStart time.Time
	for i, h := range holdings {
		bars := series[i]
		if len(bars) == 0 || key(bars[0].Date) > key(indexStart) {
			culprits = append(culprits, h.Ticker)
			if len(bars) > 0 && bars[0].Date.After(latestStart) {
				latestStart = bars[0].Date
			}
		}
	}
	if len(culprits) > 0 {
		sort.Strings(culprits)
		return nil, &domain.DataLengthMismatchError{
			Culprits: culprits,
			Hint:     hintDate(indexBars, latestStart, key),
		}
	}

	n := len(indexBars)
	total := make([]float64, n)
	values := make(map[string][]float64, len(holdings))
	for i, h := range holdings {
		closes := alignCloses(indexBars, series[i], key)
		floats.AddScaled(total, h.Shares, closes)

		value := make([]float64, n)
		floats.AddScaled(value, h.Shares, closes)
		if existing, ok := values[h.Ticker]; ok {
			floats.Add(existing, value)
		} else {
			values[h.Ticker] = value
		}
	}

	indexCloses := make([]float64, n)
	for i, bar := range indexBars {
		indexCloses[i] = bar.Close
	}

	portfolioNorm, err := rebase(total)
	if err != nil {
		return nil, fmt.Errorf("portfolio: %w", err)
	}
	indexNorm, err := rebase(indexCloses)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", index, err)
	}

	points := make([]ComparisonPoint, n)
	for i, bar := range indexBars {
		points[i] = ComparisonPoint{Date: bar.Date, Portfolio: portfolioNorm[i], Index: indexNorm[i]}
	}

	c.log.Debug().
		Str("index", index).
		Int("holdings", len(holdings)).
		Int("points", n).
		Msg("Built portfolio comparison")

	return &Comparison{
		Index:     index,
		Frequency: freq,
		Points:    points,
		Values:    values,
		Total:     total,
	}, nil
}

// sampleKey returns the function that identifies a sample's slot on the time axis.
// Intraday samples match on the hour, everything else on the exchange-local date.
func sampleKey(freq Frequency) func(time.Time) string {
	if freq == FrequencyHourly {
		return func(t time.Time) string { return t.UTC().Truncate(time.Hour).Format(time.RFC3339) }
	}
	return func(t time.Time) string { return t.Format("2006-01-02") }
}

// alignCloses returns the holding's close on every index sample, carrying the last
// known close across samples the holding did not trade
func alignCloses(indexBars, bars []domain.Bar, key func(time.Time) string) []float64 {
	byKey := make(map[string]float64, len(bars))
	for _, bar := range bars {
		byKey[key(bar.Date)] = bar.Close
	}

	closes := make([]float64, len(indexBars))
	last := bars[0].Close
	for i, bar := range indexBars {
		if v, ok := byKey[key(bar.Date)]; ok {
			last = v
		}
		closes[i] = last
	}
	return closes
}

// rebase scales series so its first value is 100
func rebase(series []float64) ([]float64, error) {
	if len(series) == 0 || series[0] == 0 {
		return nil, fmt.Errorf("cannot rebase a series starting at zero")
	}
	out := make([]float64, len(series))
	copy(out, series)
	floats.Scale(100/series[0], out)
	return out, nil
}

// hintDate returns the first index sample on or after the latest holding start
func hintDate(indexBars []domain.Bar, latestStart time.Time, key func(time.Time) string) string {
	if latestStart.IsZero() {
		return indexBars[len(indexBars)-1].Date.Format("2006-01-02")
	}
	for _, bar := range indexBars {
		if key(bar.Date) >= key(latestStart) {
			return bar.Date.Format("2006-01-02")
		}
	}
	return latestStart.Format("2006-01-02")
}
