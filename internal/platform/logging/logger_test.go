package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.WarnContext(context.Background(), "fetch failed", "kind", "standings", "error", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["kind"] != "standings" {
		t.Fatalf("unexpected kind field: %v", fields["kind"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
}

func TestLogger_NamedAndWith(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).Named("refresh").With("sensor_id", "abc")

	logger.Debug("hidden")
	logger.Info("visible")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected only info entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "refresh" {
		t.Fatalf("unexpected logger name %q", entries[0].LoggerName)
	}
	if entries[0].ContextMap()["sensor_id"] != "abc" {
		t.Fatalf("expected sensor_id field")
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Format: FormatConsole, Output: &buf})
	logger.Info("scheduler started", "workers", 4)

	out := buf.String()
	if !strings.Contains(out, "scheduler started") || !strings.Contains(out, "workers") {
		t.Fatalf("unexpected console output: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("console format should not emit JSON: %q", out)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	logger.With("k", "v").Warn("still no panic")
}

func TestLogger_TypedFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	FromZap(zap.New(core)).Warn("rate limited", "cooldown", time.Minute, "kinds", []string{"standings", "match_day"})

	fields := logs.All()[0].ContextMap()
	if fields["cooldown"] != time.Minute {
		t.Fatalf("expected duration field, got %#v", fields["cooldown"])
	}
	kinds, ok := fields["kinds"].([]any)
	if !ok || len(kinds) != 2 {
		t.Fatalf("expected string slice field, got %#v", fields["kinds"])
	}
}
