package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wrenfold/sitewright/internal/config"
)

func TestNewLogger_levels(t *testing.T) {
	tests := []struct {
		level string
	}{
		{"debug"}, {"info"}, {"warn"}, {"error"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(config.ObservabilityConfig{LogLevel: tt.level})
			if err != nil {
				t.Fatalf("NewLogger(%q) error = %v", tt.level, err)
			}
			logger.Sync() //nolint:errcheck // stderr sync is best effort
		})
	}
}

func TestNewLogger_invalidLevelDefaultsToInfo(t *testing.T) {
	logger, err := NewLogger(config.ObservabilityConfig{LogLevel: "verbose"})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Error("info level not enabled after invalid level fallback")
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Error("debug level enabled after invalid level fallback")
	}
}

func TestLoggerFrom_roundTrip(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithLogger(context.Background(), logger)
	if got := LoggerFrom(ctx, nil); got != logger {
		t.Error("LoggerFrom() did not return the stored logger")
	}
}

func TestLoggerFrom_fallback(t *testing.T) {
	fallback := zap.NewNop()
	if got := LoggerFrom(context.Background(), fallback); got != fallback {
		t.Error("LoggerFrom() did not return the fallback")
	}
}

func TestRunLogger_addsRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := WithLogger(context.Background(), logger)
	RunLogger(ctx, nil, "run-42").Info("started")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if got := fields["run_id"]; got != "run-42" {
		t.Errorf("run_id = %v, want run-42", got)
	}
}
