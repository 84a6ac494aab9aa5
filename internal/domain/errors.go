package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTicker means the instrument does not exist or is not an equity
	ErrInvalidTicker = errors.New("invalid or unsupported ticker")
	// ErrUnknownExchange means the instrument's exchange code is not registered
	ErrUnknownExchange = errors.New("unknown exchange")
	// ErrUpstreamUnavailable means a market data source failed or timed out
	ErrUpstreamUnavailable = errors.New("upstream data unavailable")
	// ErrUnsupportedFrequency means the sampling frequency is outside the supported set
	ErrUnsupportedFrequency = errors.New("unsupported frequency")
	// ErrDataLengthMismatch means two series could not be aligned after trimming
	ErrDataLengthMismatch = errors.New("data length mismatch")
	// ErrNotFound is returned by sources when the symbol does not exist upstream
	ErrNotFound = errors.New("not found")
	// ErrRateUnavailable means no conversion rate could be resolved
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

// DataLengthMismatchError names the series that are too short to compare
type DataLengthMismatchError struct {
	Culprits []string
	// Hint is the earliest start date for which all series are complete
	Hint string
}

func (e *DataLengthMismatchError) Error() string {
	return fmt.Sprintf("data length mismatch for [%s]: input start date later than %s",
		strings.Join(e.Culprits, ", "), e.Hint)
}

// Unwrap allows errors.Is(err, ErrDataLengthMismatch)
func (e *DataLengthMismatchError) Unwrap() error {
	return ErrDataLengthMismatch
}
