// Package portfolio values caller-supplied holdings at current USD quotes.
package portfolio

import (
	"context"
	"errors"

	"github.com/aristath/trendly/internal/modules/quotes"
	"github.com/aristath/trendly/internal/utils"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// ErrNoHoldings is returned when no holding has a positive share count
var ErrNoHoldings = errors.New("no stocks found in portfolio")

// QuoteLookup resolves current quotes for a batch of tickers
type QuoteLookup interface {
	LookupMany(ctx context.Context, tickers []string) []quotes.Result
}

// MetricsService computes per-position and whole-portfolio metrics
type MetricsService struct {
	quotes QuoteLookup
	log    zerolog.Logger
}

// NewMetricsService creates a metrics service backed by quotes
func NewMetricsService(quotes QuoteLookup, log zerolog.Logger) *MetricsService {
	return &MetricsService{
		quotes: quotes,
		log:    log.With().Str("service", "portfolio_metrics").Logger(),
	}
}

// Compute values holdings at their latest price.
//
// Holdings for the same ticker are merged; positions with no shares are skipped.
// Weighted price is net spend (buys minus sells) per share held, and the return
// is measured against it. A position whose quote fails or has no price is
// valued at zero and carries the lookup error.
func (s *MetricsService) Compute(ctx context.Context, holdings []Holding, transactions []Transaction) (*Metrics, error) {
	var tickers []string
	shares := make(map[string]float64)
	for _, h := range holdings {
		ticker := utils.NormalizeTicker(h.Ticker)
		if ticker == "" {
			continue
		}
		if _, ok := shares[ticker]; !ok {
			tickers = append(tickers, ticker)
		}
		shares[ticker] += h.Shares
	}

	held := tickers[:0]
	for _, ticker := range tickers {
		if shares[ticker] > 0 {
			held = append(held, ticker)
		}
	}
	if len(held) == 0 {
		return nil, ErrNoHoldings
	}

	spend := netSpend(transactions)
	results := s.quotes.LookupMany(ctx, held)

	positions := make([]PositionMetrics, len(held))
	values := make([]float64, len(held))
	for i, ticker := range held {
		pos := PositionMetrics{Ticker: ticker, Shares: shares[ticker]}

		result := results[i]
		switch {
		case !result.OK():
			pos.Error = result.Error
		case result.Quote == nil || result.Quote.Price == nil:
			pos.Error = "price unavailable"
		default:
			pos.Price = *result.Quote.Price
			pos.Cached = result.Cached
		}
		if pos.Error != "" {
			s.log.Warn().Str("ticker", ticker).Str("error", pos.Error).Msg("Valuing position at zero")
		}

		pos.ShareValue = pos.Shares * pos.Price
		pos.WeightedPrice = spend[ticker] / pos.Shares
		if pos.WeightedPrice != 0 {
			pos.Return = (pos.Price - pos.WeightedPrice) / pos.WeightedPrice
		}

		positions[i] = pos
		values[i] = pos.ShareValue
	}

	equity := floats.Sum(values)
	if equity != 0 {
		for i := range positions {
			positions[i].Contribution = positions[i].ShareValue / equity
		}
	}

	s.log.Debug().
		Int("positions", len(positions)).
		Float64("equity_value", equity).
		Msg("Computed portfolio metrics")

	return &Metrics{Positions: positions, EquityValue: equity}, nil
}

// netSpend returns total bought minus total sold per ticker
func netSpend(transactions []Transaction) map[string]float64 {
	type legs struct{ prices, shares []float64 }
	byTicker := make(map[string]*legs)
	for _, t := range transactions {
		ticker := utils.NormalizeTicker(t.Ticker)
		l, ok := byTicker[ticker]
		if !ok {
			l = &legs{}
			byTicker[ticker] = l
		}
		qty := t.Shares
		if t.Type == TransactionSell {
			qty = -qty
		}
		l.prices = append(l.prices, t.Price)
		l.shares = append(l.shares, qty)
	}

	spend := make(map[string]float64, len(byTicker))
	for ticker, l := range byTicker {
		spend[ticker] = floats.Dot(l.prices, l.shares)
	}
	return spend
}
