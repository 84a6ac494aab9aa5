package clientdata

import "time"

// TTL constants for different data types.
// These are added to the current time when storing to calculate expires_at.
const (
	TTLExchangeRate        = 5 * time.Minute // latest FX quote
	TTLExchangeRateHistory = 24 * time.Hour  // daily closes for a closed date range
)
