package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AllLogLevels(t *testing.T) {
	testCases := []struct {
		level         string
		expectedLevel zerolog.Level
		name          string
	}{
		{"debug", zerolog.DebugLevel, "debug"},
		{"info", zerolog.InfoLevel, "info"},
		{"warn", zerolog.WarnLevel, "warn"},
		{"error", zerolog.ErrorLevel, "error"},
		{"unknown", zerolog.InfoLevel, "unknown defaults to info"},
		{"", zerolog.InfoLevel, "empty defaults to info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := New(Config{Level: tc.level})
			require.NotNil(t, l)
			assert.Equal(t, tc.expectedLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNew_TimestampFormat(t *testing.T) {
	New(Config{Level: "info"})
	assert.Equal(t, "2006-01-02T15:04:05Z07:00", zerolog.TimeFieldFormat)
}

func TestNew_ErrorLevelFiltersLower(t *testing.T) {
	l := New(Config{Level: "error"})
	var buf bytes.Buffer
	l = l.Output(&buf)

	l.Info().Msg("quote refreshed")
	assert.NotContains(t, buf.String(), "quote refreshed")

	l.Error().Msg("upstream failed")
	assert.Contains(t, buf.String(), "upstream failed")
}

func TestNew_PrettyOutput(t *testing.T) {
	l := New(Config{Level: "info", Pretty: true})
	var buf bytes.Buffer
	l = l.Output(&buf)
	l.Info().Str("ticker", "AAPL").Msg("lookup")

	assert.Contains(t, buf.String(), "lookup")
}

func TestSetGlobalLogger(t *testing.T) {
	l := New(Config{Level: "info"})
	assert.NotPanics(t, func() { SetGlobalLogger(l) })
	SetGlobalLogger(zerolog.Nop())
}
