package testing

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockMarketDataSource is a testify mock of domain.MarketDataSource
type MockMarketDataSource struct {
	mock.Mock
}

// GetInstrumentInfo implements domain.InstrumentSource
func (m *MockMarketDataSource) GetInstrumentInfo(ctx context.Context, symbol string) (*domain.InstrumentInfo, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstrumentInfo), args.Error(1)
}

// GetLatestPrice implements domain.FXSource
func (m *MockMarketDataSource) GetLatestPrice(ctx context.Context, pair string) (float64, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(float64), args.Error(1)
}

// GetHistory implements domain.FXSource
func (m *MockMarketDataSource) GetHistory(ctx context.Context, pair string, start, end time.Time) ([]domain.RatePoint, error) {
	args := m.Called(ctx, pair, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

// Download implements domain.OHLCVSource
func (m *MockMarketDataSource) Download(ctx context.Context, symbol string, start, end time.Time, interval string) ([]domain.Bar, error) {
	args := m.Called(ctx, symbol, start, end, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bar), args.Error(1)
}

// MockClock is a manually advanced clock
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a clock fixed at now
func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

// Now returns the current mock time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
