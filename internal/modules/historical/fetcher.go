// Package historical provides historical OHLCV series in the reporting currency
// and portfolio-versus-index comparisons built on them.
package historical

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/rs/zerolog"
)

// Frequency is the sampling interval of a historical series
type Frequency string

const (
	FrequencyHourly  Frequency = "1h"
	FrequencyDaily   Frequency = "1d"
	FrequencyFiveDay Frequency = "5d"
	FrequencyWeekly  Frequency = "1wk"
)

// SupportedFrequencies lists the accepted sampling intervals
var SupportedFrequencies = []Frequency{FrequencyHourly, FrequencyDaily, FrequencyFiveDay, FrequencyWeekly}

// ParseFrequency validates a frequency string. Empty means daily.
func ParseFrequency(s string) (Frequency, error) {
	if s == "" {
		return FrequencyDaily, nil
	}
	for _, f := range SupportedFrequencies {
		if Frequency(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (choose from 1h, 1d, 5d, 1wk)", domain.ErrUnsupportedFrequency, s)
}

// SeriesSource is the upstream needed to build a converted series
type SeriesSource interface {
	domain.InstrumentSource
	domain.OHLCVSource
}

// Fetcher retrieves OHLCV series converted into the reporting currency
type Fetcher struct {
	source    SeriesSource
	exchanges domain.ExchangeResolver
	rates     domain.RateProvider
	timeout   time.Duration
	log       zerolog.Logger
}

// NewFetcher creates a historical series fetcher
func NewFetcher(
	source SeriesSource,
	exchanges domain.ExchangeResolver,
	rates domain.RateProvider,
	timeout time.Duration,
	log zerolog.Logger,
) *Fetcher {
	return &Fetcher{
		source:    source,
		exchanges: exchanges,
		rates:     rates,
		timeout:   timeout,
		log:       log.With().Str("service", "historical").Logger(),
	}
}

// Fetch returns bars for ticker in [start, end) at freq.
// When the instrument is not priced in the reporting currency, open, high, low and
// close are divided by the current rate of the exchange's currency. The same rate
// applies to every bar; historical rates are not used.
func (f *Fetcher) Fetch(ctx context.Context, ticker string, start, end time.Time, freq Frequency) ([]domain.Bar, error) {
	if _, err := ParseFrequency(string(freq)); err != nil || freq == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFrequency, freq)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s must be before end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	info, err := f.instrumentInfo(ctx, ticker)
	if err != nil {
		return nil, err
	}

	exchange, err := f.exchanges.Resolve(info.ExchangeCode)
	if err != nil {
		return nil, err
	}

	bars, err := f.download(ctx, ticker, start, end, freq)
	if err != nil {
		return nil, err
	}

	if info.Currency == domain.ReportingCurrency || len(bars) == 0 {
		return bars, nil
	}

	rate, err := f.currentRate(ctx, exchange.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: converting %s: %v", domain.ErrUpstreamUnavailable, ticker, err)
	}

	converted := make([]domain.Bar, len(bars))
	for i, bar := range bars {
		converted[i] = domain.Bar{
			Date:   bar.Date,
			Open:   bar.Open / rate,
			High:   bar.High / rate,
			Low:    bar.Low / rate,
			Close:  bar.Close / rate,
			Volume: bar.Volume,
		}
	}

	return converted, nil
}

func (f *Fetcher) instrumentInfo(ctx context.Context, ticker string) (*domain.InstrumentInfo, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	info, err := f.source.GetInstrumentInfo(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTicker, ticker)
		}
		f.log.Warn().Err(err).Str("ticker", ticker).Msg("Instrument metadata unavailable")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return info, nil
}

func (f *Fetcher) download(ctx context.Context, ticker string, start, end time.Time, freq Frequency) ([]domain.Bar, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	bars, err := f.source.Download(ctx, ticker, start, end, string(freq))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no history for %s", domain.ErrInvalidTicker, ticker)
		}
		f.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to download history")
		return nil, fmt.Errorf("%w: failed to fetch data for %s: %v", domain.ErrUpstreamUnavailable, ticker, err)
	}
	return bars, nil
}

func (f *Fetcher) currentRate(ctx context.Context, cur domain.Currency) (float64, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	return f.rates.CurrentRate(ctx, cur)
}

func (f *Fetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}
