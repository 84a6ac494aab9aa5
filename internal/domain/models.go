// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"time"
)

// Currency represents an ISO 4217 currency code
type Currency string

// ReportingCurrency is the single currency all monetary outputs are normalized to
const ReportingCurrency Currency = "USD"

// ProductType represents the type of financial product/instrument
type ProductType string

const (
	// ProductTypeEquity represents individual stocks/shares
	ProductTypeEquity ProductType = "EQUITY"
	// ProductTypeETF represents Exchange Traded Funds
	ProductTypeETF ProductType = "ETF"
	// ProductTypeIndex represents market indices (non-tradeable)
	ProductTypeIndex ProductType = "INDEX"
	// ProductTypeCurrency represents FX pairs
	ProductTypeCurrency ProductType = "CURRENCY"
)

// ClockTime is a local wall-clock time of day with minute precision
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM"
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Minutes returns minutes since local midnight
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// String formats as "HH:MM"
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ExchangeInfo describes an exchange's trading window and settlement currency.
// Loaded once at startup and never mutated.
type ExchangeInfo struct {
	Code     string
	Currency Currency
	Timezone *time.Location
	Open     ClockTime
	Close    ClockTime
}

// InstrumentInfo is the instrument metadata returned by the market data source.
// Price fields are in the instrument's trading currency; nil means absent upstream.
type InstrumentInfo struct {
	Symbol       string
	QuoteType    ProductType
	ExchangeCode string
	Currency     Currency
	MarketOpen   *float64
	Price        *float64
	Bid          *float64
	Ask          *float64
	Volume       *int64
}

// IsEquity reports whether the instrument is a tradable equity
func (i *InstrumentInfo) IsEquity() bool {
	return i != nil && i.QuoteType == ProductTypeEquity
}

// NormalizedQuote is a quote snapshot with every price in the reporting currency.
// A nil field means the value was unavailable upstream or could not be converted.
type NormalizedQuote struct {
	MarketOpen  *float64 `json:"market_open"`
	Price       *float64 `json:"price"`
	DailyReturn *float64 `json:"daily_return"`
	Bid         *float64 `json:"bid"`
	Ask         *float64 `json:"ask"`
	Volume      *int64   `json:"volume"`
}

// NewNormalizedQuote builds a quote and derives the daily return from price and market open
func NewNormalizedQuote(marketOpen, price, bid, ask *float64, volume *int64) NormalizedQuote {
	return NormalizedQuote{
		MarketOpen:  marketOpen,
		Price:       price,
		DailyReturn: DailyReturn(marketOpen, price),
		Bid:         bid,
		Ask:         ask,
		Volume:      volume,
	}
}

// DailyReturn returns price/marketOpen - 1, or nil when either operand is absent or zero
func DailyReturn(marketOpen, price *float64) *float64 {
	if marketOpen == nil || price == nil || *marketOpen == 0 || *price == 0 {
		return nil
	}
	r := *price / *marketOpen - 1
	return &r
}

// Bar is one OHLCV sample of a historical series
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// RatePoint is a dated FX rate (units of foreign currency per reporting currency unit)
type RatePoint struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}
