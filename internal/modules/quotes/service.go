package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/internal/modules/currency"
	"github.com/aristath/trendly/internal/modules/market_hours"
	"github.com/aristath/trendly/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Lookup failure messages returned to callers
const (
	MsgInvalidTicker       = "Invalid or unsupported ticker."
	MsgUpstreamUnavailable = "Quote data temporarily unavailable."
)

// DefaultMaxConcurrency bounds parallel lookups in LookupMany
const DefaultMaxConcurrency = 8

// Result is the outcome of a single lookup. Exactly one of Quote or Error is set.
type Result struct {
	Ticker   string
	Exchange string
	IsOpen   bool
	Cached   bool
	Quote    *domain.NormalizedQuote
	Error    string
	// Err classifies a failed lookup for callers that map errors to transport codes
	Err error
}

// OK reports whether the lookup produced a quote
func (r Result) OK() bool {
	return r.Error == ""
}

// MarshalJSON flattens the quote fields into the result object.
// Failed lookups serialize as {"ticker": ..., "error": ...} only.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(struct {
			Ticker string `json:"ticker"`
			Error  string `json:"error"`
		}{r.Ticker, r.Error})
	}

	var quote domain.NormalizedQuote
	if r.Quote != nil {
		quote = *r.Quote
	}
	return json.Marshal(struct {
		Ticker   string `json:"ticker"`
		Exchange string `json:"exchange"`
		IsOpen   bool   `json:"is_open"`
		Cached   bool   `json:"cached"`
		domain.NormalizedQuote
	}{r.Ticker, r.Exchange, r.IsOpen, r.Cached, quote})
}

func failure(ticker, msg string, err error) Result {
	return Result{Ticker: ticker, Error: msg, Err: err}
}

// Config tunes the lookup service
type Config struct {
	// UpstreamTimeout bounds every call to the market data source
	UpstreamTimeout time.Duration
	MaxConcurrency  int
	Now             func() time.Time
}

// Service decides per ticker whether to serve a cached quote or fetch a fresh one
type Service struct {
	source    domain.InstrumentSource
	exchanges domain.ExchangeResolver
	rates     domain.RateProvider
	cache     *Cache
	cfg       Config
	log       zerolog.Logger
}

// NewService creates a quote lookup service
func NewService(
	source domain.InstrumentSource,
	exchanges domain.ExchangeResolver,
	rates domain.RateProvider,
	cache *Cache,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	return &Service{
		source:    source,
		exchanges: exchanges,
		rates:     rates,
		cache:     cache,
		cfg:       cfg,
		log:       log.With().Str("service", "quotes").Logger(),
	}
}

// Cache returns the underlying quote cache
func (s *Service) Cache() *Cache {
	return s.cache
}

// Lookup returns the current quote for ticker in the reporting currency.
// While the exchange is open every call fetches fresh data. While it is closed
// the first call fetches and caches, and later calls within the TTL are served
// from cache. Lookup never returns an error; failures are carried in the Result.
// When the exchange rate is unavailable the quote is not cached, so an open-market
// lookup leaves no entry behind.
func (s *Service) Lookup(ctx context.Context, ticker string) Result {
	info, err := s.fetchInfo(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTicker) {
			return failure(ticker, MsgInvalidTicker, err)
		}
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Instrument metadata unavailable")
		return failure(ticker, MsgUpstreamUnavailable, err)
	}

	exchange, err := s.exchanges.Resolve(info.ExchangeCode)
	if err != nil {
		return failure(ticker, fmt.Sprintf("Unknown exchange '%s'", info.ExchangeCode), err)
	}

	unlock := s.cache.Lock(ticker)
	defer unlock()

	if market_hours.IsOpen(exchange, s.cfg.Now()) {
		quote := s.normalize(ctx, info, exchange)
		s.cache.Invalidate(ticker)
		s.store(ticker, exchange, quote)
		return Result{Ticker: ticker, Exchange: exchange.Code, IsOpen: true, Quote: &quote}
	}

	if entry, ok := s.cache.Get(ticker); ok && entry.Exchange == exchange.Code {
		quote := entry.Quote
		return Result{Ticker: ticker, Exchange: exchange.Code, Cached: true, Quote: &quote}
	}

	quote := s.normalize(ctx, info, exchange)
	s.store(ticker, exchange, quote)
	return Result{Ticker: ticker, Exchange: exchange.Code, Quote: &quote}
}

// LookupMany looks up tickers concurrently and returns results in input order
func (s *Service) LookupMany(ctx context.Context, tickers []string) []Result {
	defer utils.OperationTimer("lookup_many", s.cfg.UpstreamTimeout, s.log)()

	results := make([]Result, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			results[i] = s.Lookup(gctx, ticker)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// CheckTicker reports whether ticker exists upstream and is an equity
func (s *Service) CheckTicker(ctx context.Context, ticker string) bool {
	_, err := s.fetchInfo(ctx, ticker)
	return err == nil
}

// fetchInfo loads instrument metadata and rejects anything that is not an equity
func (s *Service) fetchInfo(ctx context.Context, ticker string) (*domain.InstrumentInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	info, err := s.source.GetInstrumentInfo(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTicker, ticker)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if !info.IsEquity() {
		return nil, fmt.Errorf("%w: %s is %q", domain.ErrInvalidTicker, ticker, info.QuoteType)
	}
	return info, nil
}

// normalize converts the instrument's price fields into the reporting currency using the
// exchange's settlement currency. If no rate is available every price field is nil.
func (s *Service) normalize(ctx context.Context, info *domain.InstrumentInfo, exchange domain.ExchangeInfo) domain.NormalizedQuote {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rate, err := s.rates.CurrentRate(ctx, exchange.Currency)
	if err != nil {
		s.log.Warn().Err(err).
			Str("ticker", info.Symbol).
			Str("currency", string(exchange.Currency)).
			Msg("Exchange rate unavailable, omitting prices")
		rate = 0
	}

	return domain.NewNormalizedQuote(
		currency.Convert(info.MarketOpen, rate),
		currency.Convert(info.Price, rate),
		currency.Convert(info.Bid, rate),
		currency.Convert(info.Ask, rate),
		info.Volume,
	)
}

// store caches a fetched quote. Quotes without a price are not cached so the
// next call retries the conversion.
func (s *Service) store(ticker string, exchange domain.ExchangeInfo, quote domain.NormalizedQuote) {
	if quote.Price == nil && quote.MarketOpen == nil && quote.Bid == nil && quote.Ask == nil {
		return
	}
	s.cache.Put(Entry{Ticker: ticker, Exchange: exchange.Code, Quote: quote})
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.UpstreamTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
}
