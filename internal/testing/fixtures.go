package testing

import (
	"time"

	"github.com/aristath/trendly/internal/domain"
)

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int64) *int64 {
	return &v
}

// NewEquityInfo returns equity metadata listed on exchange with a full set of quote figures
func NewEquityInfo(symbol, exchange string, currency domain.Currency) *domain.InstrumentInfo {
	return &domain.InstrumentInfo{
		Symbol:       symbol,
		QuoteType:    domain.ProductTypeEquity,
		ExchangeCode: exchange,
		Currency:     currency,
		MarketOpen:   Float(100),
		Price:        Float(110),
		Bid:          Float(109.5),
		Ask:          Float(110.5),
		Volume:       Int(1_000_000),
	}
}

// NewDailyBars returns n consecutive daily bars starting at start, closing at start price plus i
func NewDailyBars(start time.Time, n int, price float64) []domain.Bar {
	bars := make([]domain.Bar, 0, n)
	for i := 0; i < n; i++ {
		p := price + float64(i)
		bars = append(bars, domain.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   p,
			High:   p + 1,
			Low:    p - 1,
			Close:  p,
			Volume: 1000,
		})
	}
	return bars
}
