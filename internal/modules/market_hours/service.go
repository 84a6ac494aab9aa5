package market_hours

import (
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/rs/zerolog"
)

// IsOpen reports whether the exchange's trading window contains t.
// Both bounds are inclusive at minute precision. A window whose open is not before
// its close spans local midnight, so equal bounds trade all day.
func IsOpen(info domain.ExchangeInfo, t time.Time) bool {
	local := t.In(info.Timezone)
	now := local.Hour()*60 + local.Minute()
	open := info.Open.Minutes()
	closeAt := info.Close.Minutes()

	if open < closeAt {
		return open <= now && now <= closeAt
	}
	return now >= open || now <= closeAt
}

// MarketHoursService evaluates exchange trading windows against the registry
type MarketHoursService struct {
	registry *Registry
	log      zerolog.Logger
}

// NewMarketHoursService creates a new market hours service
func NewMarketHoursService(registry *Registry, log zerolog.Logger) *MarketHoursService {
	return &MarketHoursService{
		registry: registry,
		log:      log.With().Str("service", "market_hours").Logger(),
	}
}

// Registry returns the underlying exchange registry
func (s *MarketHoursService) Registry() *Registry {
	return s.registry
}

// IsMarketOpen checks if a market is open at t. Unknown exchanges are reported closed.
func (s *MarketHoursService) IsMarketOpen(exchangeCode string, t time.Time) bool {
	info, err := s.registry.Resolve(exchangeCode)
	if err != nil {
		s.log.Debug().Str("exchange", exchangeCode).Msg("Market status requested for unknown exchange")
		return false
	}
	return IsOpen(info, t)
}

// GetMarketStatus returns detailed status for a market
func (s *MarketHoursService) GetMarketStatus(exchangeCode string, t time.Time) (*MarketStatus, error) {
	info, err := s.registry.Resolve(exchangeCode)
	if err != nil {
		return nil, err
	}

	local := t.In(info.Timezone)
	return &MarketStatus{
		Open:      IsOpen(info, t),
		Exchange:  info.Code,
		Currency:  string(info.Currency),
		Timezone:  info.Timezone.String(),
		LocalTime: local.Format("15:04:05"),
		LocalDate: local.Format("2006-01-02"),
		OpensAt:   info.Open.String(),
		ClosesAt:  info.Close.String(),
	}, nil
}

// GetAllMarketStatuses returns the status of every registered exchange, ordered by code
func (s *MarketHoursService) GetAllMarketStatuses(t time.Time) []MarketStatus {
	codes := s.registry.Codes()
	statuses := make([]MarketStatus, 0, len(codes))
	for _, code := range codes {
		status, err := s.GetMarketStatus(code, t)
		if err != nil {
			continue
		}
		statuses = append(statuses, *status)
	}
	return statuses
}

// GetOpenMarkets returns a list of currently open exchanges
func (s *MarketHoursService) GetOpenMarkets(t time.Time) []string {
	openMarkets := make([]string, 0)
	for _, code := range s.registry.Codes() {
		if s.IsMarketOpen(code, t) {
			openMarkets = append(openMarkets, code)
		}
	}
	return openMarkets
}
