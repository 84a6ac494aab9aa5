// Package currency provides conversion rates into the reporting currency.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/aristath/trendly/internal/clientdata"
	"github.com/aristath/trendly/internal/domain"
	"github.com/rs/zerolog"
)

// cachedExchangeRate is the structure stored in the cache
type cachedExchangeRate struct {
	Rate float64 `json:"rate"`
}

// RateProvider resolves FX rates from the reporting currency into other currencies.
// A rate r means 1 USD = r units of the foreign currency; converting divides by r.
type RateProvider struct {
	source    domain.FXSource
	cacheRepo *clientdata.Repository
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRateProvider creates a rate provider.
// cacheRepo is optional - if nil, caching is disabled.
func NewRateProvider(source domain.FXSource, cacheRepo *clientdata.Repository, timeout time.Duration, log zerolog.Logger) *RateProvider {
	return &RateProvider{
		source:    source,
		cacheRepo: cacheRepo,
		timeout:   timeout,
		log:       log.With().Str("service", "rate_provider").Logger(),
	}
}

// PairSymbol returns the upstream symbol quoting currency against the reporting currency
func PairSymbol(currency domain.Currency) string {
	return fmt.Sprintf("%s%s=X", domain.ReportingCurrency, currency)
}

// CurrentRate returns the latest rate for currency.
// The reporting currency itself is always 1.0 without an upstream call.
func (p *RateProvider) CurrentRate(ctx context.Context, currency domain.Currency) (float64, error) {
	if currency == domain.ReportingCurrency {
		return 1.0, nil
	}

	pair := PairSymbol(currency)

	if rate, ok := p.getFresh(pair); ok {
		p.log.Debug().Str("pair", pair).Float64("rate", rate).Msg("Cache hit")
		return rate, nil
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rate, err := p.source.GetLatestPrice(ctx, pair)
	if err != nil {
		p.log.Warn().Err(err).Str("pair", pair).Msg("Failed to fetch exchange rate")
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrRateUnavailable, pair, err)
	}
	if !validRate(rate) {
		p.log.Warn().Str("pair", pair).Float64("rate", rate).Msg("Upstream returned unusable exchange rate")
		return 0, fmt.Errorf("%w: %s: invalid rate %v", domain.ErrRateUnavailable, pair, rate)
	}

	if p.cacheRepo != nil {
		if err := p.cacheRepo.Store(clientdata.TableExchangeRate, pair, cachedExchangeRate{Rate: rate}, clientdata.TTLExchangeRate); err != nil {
			p.log.Warn().Err(err).Str("pair", pair).Msg("Failed to cache exchange rate")
		}
	}

	p.log.Debug().Str("pair", pair).Float64("rate", rate).Msg("Fetched rate")

	return rate, nil
}

// HistoricalRates returns daily rates for currency over [start, end) in date order.
// An empty, non-nil slice means the upstream had no samples in range.
func (p *RateProvider) HistoricalRates(ctx context.Context, currency domain.Currency, start, end time.Time) ([]domain.RatePoint, error) {
	if !start.Before(end) {
		return []domain.RatePoint{}, nil
	}

	if currency == domain.ReportingCurrency {
		return unitRates(start, end), nil
	}

	pair := PairSymbol(currency)
	cacheKey := fmt.Sprintf("%s|%s|%s", pair, start.Format("2006-01-02"), end.Format("2006-01-02"))

	if p.cacheRepo != nil {
		if data, err := p.cacheRepo.GetIfFresh(clientdata.TableExchangeRateHistory, cacheKey); err == nil && data != nil {
			var points []domain.RatePoint
			if err := json.Unmarshal(data, &points); err == nil {
				return points, nil
			}
		}
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	points, err := p.source.GetHistory(ctx, pair, start, end)
	if err != nil {
		p.log.Warn().Err(err).Str("pair", pair).Msg("Failed to fetch historical exchange rates")
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRateUnavailable, pair, err)
	}

	clean := make([]domain.RatePoint, 0, len(points))
	for _, pt := range points {
		if validRate(pt.Rate) {
			clean = append(clean, pt)
		}
	}

	if p.cacheRepo != nil && len(clean) > 0 {
		if err := p.cacheRepo.Store(clientdata.TableExchangeRateHistory, cacheKey, clean, clientdata.TTLExchangeRateHistory); err != nil {
			p.log.Warn().Err(err).Str("pair", pair).Msg("Failed to cache historical exchange rates")
		}
	}

	return clean, nil
}

func (p *RateProvider) getFresh(pair string) (float64, bool) {
	if p.cacheRepo == nil {
		return 0, false
	}

	data, err := p.cacheRepo.GetIfFresh(clientdata.TableExchangeRate, pair)
	if err != nil {
		p.log.Warn().Err(err).Str("pair", pair).Msg("Failed to read exchange rate cache")
		return 0, false
	}
	if data == nil {
		return 0, false
	}

	var cached cachedExchangeRate
	if err := json.Unmarshal(data, &cached); err != nil || !validRate(cached.Rate) {
		return 0, false
	}
	return cached.Rate, true
}

func (p *RateProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

// unitRates returns 1.0 for every calendar day in [start, end)
func unitRates(start, end time.Time) []domain.RatePoint {
	points := []domain.RatePoint{}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		points = append(points, domain.RatePoint{Date: day, Rate: 1.0})
	}
	return points
}

// Convert divides amount by rate. A nil amount stays nil.
func Convert(amount *float64, rate float64) *float64 {
	if amount == nil || !validRate(rate) {
		return nil
	}
	v := *amount / rate
	return &v
}
