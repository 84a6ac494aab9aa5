package market_hours

import (
	"testing"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func exchange(code, tz string, openH, openM, closeH, closeM int) domain.ExchangeInfo {
	return domain.ExchangeInfo{
		Code:     code,
		Currency: "USD",
		Timezone: mustLoadLocation(tz),
		Open:     domain.ClockTime{Hour: openH, Minute: openM},
		Close:    domain.ClockTime{Hour: closeH, Minute: closeM},
	}
}

func TestIsOpen_LSE(t *testing.T) {
	lse := exchange("LSE", "Europe/London", 8, 0, 16, 30)

	tests := []struct {
		name     string
		datetime time.Time
		expected bool
	}{
		{
			name:     "evening in London",
			datetime: time.Date(2024, 7, 10, 19, 0, 0, 0, time.UTC), // 20:00 BST
			expected: false,
		},
		{
			name:     "midday in summer",
			datetime: time.Date(2024, 7, 10, 11, 0, 0, 0, time.UTC), // 12:00 BST
			expected: true,
		},
		{
			name:     "exactly at open in winter",
			datetime: time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC), // 08:00 GMT
			expected: true,
		},
		{
			name:     "one minute before open",
			datetime: time.Date(2024, 1, 16, 7, 59, 59, 0, time.UTC),
			expected: false,
		},
		{
			name:     "exactly at close",
			datetime: time.Date(2024, 1, 16, 16, 30, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "within closing minute",
			datetime: time.Date(2024, 1, 16, 16, 30, 59, 0, time.UTC),
			expected: true,
		},
		{
			name:     "one minute after close",
			datetime: time.Date(2024, 1, 16, 16, 31, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "close expressed in summer time",
			datetime: time.Date(2024, 7, 10, 15, 45, 0, 0, time.UTC), // 16:45 BST
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsOpen(lse, tt.datetime))
		})
	}
}

func TestIsOpen_MidnightCrossing(t *testing.T) {
	overnight := exchange("NIGHT", "UTC", 23, 0, 5, 0)

	tests := []struct {
		name     string
		datetime time.Time
		expected bool
	}{
		{"late evening", time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC), true},
		{"at open", time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC), true},
		{"just after midnight", time.Date(2024, 3, 6, 0, 15, 0, 0, time.UTC), true},
		{"at close", time.Date(2024, 3, 6, 5, 0, 0, 0, time.UTC), true},
		{"after close", time.Date(2024, 3, 6, 5, 1, 0, 0, time.UTC), false},
		{"midday", time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), false},
		{"just before open", time.Date(2024, 3, 6, 22, 59, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsOpen(overnight, tt.datetime))
		})
	}
}

func TestIsOpen_EqualBounds(t *testing.T) {
	tests := []struct {
		name     string
		info     domain.ExchangeInfo
		datetime time.Time
	}{
		{"midnight bounds at midday", exchange("CCC", "UTC", 0, 0, 0, 0), time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)},
		{"midnight bounds at midnight", exchange("CCC", "UTC", 0, 0, 0, 0), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"midnight bounds last minute", exchange("CCC", "UTC", 0, 0, 0, 0), time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)},
		{"shared bound exactly", exchange("FX24", "Europe/London", 17, 0, 17, 0), time.Date(2024, 1, 16, 17, 0, 0, 0, time.UTC)},
		{"before shared bound", exchange("FX24", "Europe/London", 17, 0, 17, 0), time.Date(2024, 1, 16, 16, 59, 0, 0, time.UTC)},
		{"after shared bound", exchange("FX24", "Europe/London", 17, 0, 17, 0), time.Date(2024, 1, 16, 17, 1, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsOpen(tt.info, tt.datetime))
		})
	}
}

func TestIsOpen_ConvertsToExchangeTimezone(t *testing.T) {
	nms := exchange("NMS", "America/New_York", 9, 30, 16, 0)

	// 09:30 EST
	assert.True(t, IsOpen(nms, time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC)))
	assert.False(t, IsOpen(nms, time.Date(2024, 1, 16, 14, 29, 0, 0, time.UTC)))

	// Same instant in another zone gives the same answer
	tokyo := mustLoadLocation("Asia/Tokyo")
	assert.True(t, IsOpen(nms, time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC).In(tokyo)))
}

func newTestService(t *testing.T) *MarketHoursService {
	t.Helper()
	registry, err := LoadRegistryFile("")
	require.NoError(t, err)
	return NewMarketHoursService(registry, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestMarketHoursService_IsMarketOpen(t *testing.T) {
	service := newTestService(t)

	assert.True(t, service.IsMarketOpen("NMS", time.Date(2024, 1, 16, 15, 0, 0, 0, time.UTC)))
	assert.False(t, service.IsMarketOpen("NMS", time.Date(2024, 1, 16, 22, 0, 0, 0, time.UTC)))
	assert.False(t, service.IsMarketOpen("UNKNOWN", time.Date(2024, 1, 16, 15, 0, 0, 0, time.UTC)))
}

func TestMarketHoursService_GetMarketStatus(t *testing.T) {
	service := newTestService(t)

	status, err := service.GetMarketStatus("LSE", time.Date(2024, 7, 10, 19, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, status.Open)
	assert.Equal(t, "LSE", status.Exchange)
	assert.Equal(t, "GBP", status.Currency)
	assert.Equal(t, "Europe/London", status.Timezone)
	assert.Equal(t, "20:00:00", status.LocalTime)
	assert.Equal(t, "2024-07-10", status.LocalDate)
	assert.Equal(t, "08:00", status.OpensAt)
	assert.Equal(t, "16:30", status.ClosesAt)

	_, err = service.GetMarketStatus("UNKNOWN", time.Now())
	assert.ErrorIs(t, err, domain.ErrUnknownExchange)
}

func TestMarketHoursService_GetOpenMarkets(t *testing.T) {
	service := newTestService(t)

	// 15:00 UTC: US and European markets overlap, Asia is closed
	open := service.GetOpenMarkets(time.Date(2024, 1, 16, 15, 0, 0, 0, time.UTC))
	assert.Contains(t, open, "NMS")
	assert.Contains(t, open, "GER")
	assert.NotContains(t, open, "JPX")
	assert.NotContains(t, open, "HKG")

	statuses := service.GetAllMarketStatuses(time.Date(2024, 1, 16, 15, 0, 0, 0, time.UTC))
	assert.Len(t, statuses, service.Registry().Len())
}
