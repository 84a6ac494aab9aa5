// Package embedded provides embedded static assets for the application.
package embedded

import (
	_ "embed"
)

// ExchangesCSV is the default exchange table (code,currency,timezone,open,close).
// Codes are the exchange identifiers reported by the market data upstream.
//
//go:embed exchanges.csv
var ExchangesCSV []byte
