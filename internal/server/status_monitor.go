package server

import (
	"sync"
	"time"

	"github.com/aristath/trendly/internal/modules/market_hours"
	"github.com/rs/zerolog"
)

// StatusMonitor periodically checks exchange sessions and logs open/close transitions
type StatusMonitor struct {
	marketHoursService *market_hours.MarketHoursService
	now                func() time.Time
	log                zerolog.Logger

	lastMarketsStatus map[string]bool
	stop              chan struct{}
	stopOnce          sync.Once
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(marketHoursService *market_hours.MarketHoursService, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		marketHoursService: marketHoursService,
		now:                time.Now,
		log:                log.With().Str("component", "status_monitor").Logger(),
		lastMarketsStatus:  make(map[string]bool),
		stop:               make(chan struct{}),
	}
}

// Start begins periodic status monitoring
func (m *StatusMonitor) Start(interval time.Duration) {
	go m.monitor(interval)
}

// Stop ends monitoring. Safe to call more than once.
func (m *StatusMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *StatusMonitor) monitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.checkMarkets()

	for {
		select {
		case <-ticker.C:
			m.checkMarkets()
		case <-m.stop:
			return
		}
	}
}

// checkMarkets records every exchange's session and returns the codes whose state changed
func (m *StatusMonitor) checkMarkets() []string {
	if m.marketHoursService == nil {
		return nil
	}

	now := m.now()
	var changed []string
	for _, code := range m.marketHoursService.Registry().Codes() {
		open := m.marketHoursService.IsMarketOpen(code, now)

		previous, seen := m.lastMarketsStatus[code]
		m.lastMarketsStatus[code] = open
		if !seen || previous == open {
			continue
		}

		changed = append(changed, code)
		event := m.log.Info().Str("exchange", code)
		if open {
			event.Msg("Market opened")
		} else {
			event.Msg("Market closed")
		}
	}

	return changed
}
