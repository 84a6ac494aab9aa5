package di

import (
	"fmt"

	"github.com/aristath/trendly/internal/clientdata"
	"github.com/aristath/trendly/internal/clients/yahoo"
	"github.com/aristath/trendly/internal/config"
	"github.com/aristath/trendly/internal/modules/currency"
	"github.com/aristath/trendly/internal/modules/historical"
	"github.com/aristath/trendly/internal/modules/market_hours"
	"github.com/aristath/trendly/internal/modules/portfolio"
	"github.com/aristath/trendly/internal/modules/quotes"
	"github.com/aristath/trendly/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices builds the clients and services on top of the databases.
// A missing or malformed exchange table fails initialization.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	registry, err := market_hours.LoadRegistryFile(cfg.ExchangesCSV)
	if err != nil {
		return fmt.Errorf("failed to load exchange registry: %w", err)
	}
	container.ExchangeRegistry = registry
	container.MarketHoursService = market_hours.NewMarketHoursService(registry, log)

	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())
	container.YahooClient = yahoo.NewClient(cfg.YahooBaseURL, log)

	container.RateProvider = currency.NewRateProvider(
		container.YahooClient,
		container.ClientDataRepo,
		cfg.UpstreamTimeout,
		log,
	)

	container.QuoteCache = quotes.NewCache(cfg.QuoteCacheTTL, nil)
	container.QuoteService = quotes.NewService(
		container.YahooClient,
		registry,
		container.RateProvider,
		container.QuoteCache,
		quotes.Config{UpstreamTimeout: cfg.UpstreamTimeout},
		log,
	)

	container.HistoricalFetcher = historical.NewFetcher(
		container.YahooClient,
		registry,
		container.RateProvider,
		cfg.UpstreamTimeout,
		log,
	)
	container.Comparator = historical.NewComparator(container.HistoricalFetcher, log)
	container.MetricsService = portfolio.NewMetricsService(container.QuoteService, log)

	container.Scheduler = scheduler.New(log)

	log.Info().
		Int("exchanges", registry.Len()).
		Dur("quote_cache_ttl", cfg.QuoteCacheTTL).
		Dur("upstream_timeout", cfg.UpstreamTimeout).
		Msg("Services initialized")

	return nil
}
