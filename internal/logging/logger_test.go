package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"":        zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.WarnLevel,
	}
	for input, want := range testCases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := NewLogger("error", format)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", format, err)
		}
		if logger.Core().Enabled(zapcore.WarnLevel) {
			t.Fatalf("%s logger should not emit warnings at error level", format)
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Fatalf("%s logger should emit errors", format)
		}
	}
}
