package domain

import (
	"context"
	"time"
)

// InstrumentSource provides instrument metadata.
// Returns ErrNotFound when the symbol does not exist.
type InstrumentSource interface {
	GetInstrumentInfo(ctx context.Context, symbol string) (*InstrumentInfo, error)
}

// FXSource provides FX quotes for synthetic pair symbols such as "USDGBP=X"
type FXSource interface {
	GetLatestPrice(ctx context.Context, pair string) (float64, error)
	GetHistory(ctx context.Context, pair string, start, end time.Time) ([]RatePoint, error)
}

// OHLCVSource provides historical bars for a symbol at an upstream interval ("1h", "1d", ...)
type OHLCVSource interface {
	Download(ctx context.Context, symbol string, start, end time.Time, interval string) ([]Bar, error)
}

// MarketDataSource is the full upstream surface consumed by the quote engine
type MarketDataSource interface {
	InstrumentSource
	FXSource
	OHLCVSource
}

// ExchangeResolver resolves an exchange code to its configuration
type ExchangeResolver interface {
	Resolve(code string) (ExchangeInfo, error)
}

// RateProvider resolves conversion rates to the reporting currency
type RateProvider interface {
	CurrentRate(ctx context.Context, currency Currency) (float64, error)
}
