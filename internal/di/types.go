// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/trendly/internal/clientdata"
	"github.com/aristath/trendly/internal/clients/yahoo"
	"github.com/aristath/trendly/internal/database"
	"github.com/aristath/trendly/internal/modules/currency"
	"github.com/aristath/trendly/internal/modules/historical"
	"github.com/aristath/trendly/internal/modules/market_hours"
	"github.com/aristath/trendly/internal/modules/portfolio"
	"github.com/aristath/trendly/internal/modules/quotes"
	"github.com/aristath/trendly/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	ClientDataDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository

	// Clients
	YahooClient *yahoo.Client

	// Services
	ExchangeRegistry   *market_hours.Registry
	MarketHoursService *market_hours.MarketHoursService
	RateProvider       *currency.RateProvider
	QuoteCache         *quotes.Cache
	QuoteService       *quotes.Service
	HistoricalFetcher  *historical.Fetcher
	Comparator         *historical.Comparator
	MetricsService     *portfolio.MetricsService

	Scheduler *scheduler.Scheduler
}

// JobInstances holds registered jobs for manual triggering
type JobInstances struct {
	ClientDataCleanup scheduler.Job
	QuoteCachePurge   scheduler.Job
	WALCheckpoint     scheduler.Job
	DatabaseCheck     scheduler.Job
}

// Close releases resources held by the container
func (c *Container) Close() error {
	if c.ClientDataDB != nil {
		return c.ClientDataDB.Close()
	}
	return nil
}
