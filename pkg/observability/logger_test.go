package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		NewLogger(LogOptions{Output: &buf}).Info("page rendered", "slug", "home")

		assert.Contains(t, buf.String(), "page rendered")
		assert.Contains(t, buf.String(), "slug=home")
	})

	t.Run("json with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogOptions{JSON: true, Output: &buf, Service: "folio", Version: "1.2.0"})
		logger.Info("page rendered")

		entry := decodeLine(t, &buf)
		assert.Equal(t, "page rendered", entry["msg"])
		assert.Equal(t, "folio", entry["service"])
		assert.Equal(t, "1.2.0", entry["version"])
	})

	t.Run("level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogOptions{Level: slog.LevelWarn, Output: &buf})
		logger.Info("skipped")
		logger.Warn("kept")

		assert.NotContains(t, buf.String(), "skipped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("context values", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogOptions{JSON: true, Output: &buf}).With("component", "render")

		ctx := WithCorrelationID(context.Background(), "corr-123")
		ctx = WithRequestID(ctx, "req-456")
		ctx = WithLocale(ctx, "nl")
		logger.InfoContext(ctx, "rendered")

		entry := decodeLine(t, &buf)
		assert.Equal(t, "corr-123", entry[CorrelationIDKey])
		assert.Equal(t, "req-456", entry[RequestIDKey])
		assert.Equal(t, "nl", entry[LocaleKey])
		assert.Equal(t, "render", entry["component"])
	})

	t.Run("empty context adds nothing", func(t *testing.T) {
		var buf bytes.Buffer
		NewLogger(LogOptions{JSON: true, Output: &buf}).InfoContext(context.Background(), "boot")

		entry := decodeLine(t, &buf)
		assert.NotContains(t, entry, CorrelationIDKey)
		assert.NotContains(t, entry, LocaleKey)
	})
}

func TestLoggerFor(t *testing.T) {
	t.Setenv("FOLIO_VERSION", "")

	logger := LoggerFor("development", "debug", "json")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = LoggerFor("production", "warn", "text")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"warn+2", slog.LevelWarn + 2},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := NewRequestContext(context.Background(), "parent")
	assert.Equal(t, "parent", CorrelationIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(ctx))

	ctx = WithLocale(ctx, "nl")
	assert.Equal(t, "nl", LocaleFromContext(ctx))
	assert.Empty(t, LocaleFromContext(context.Background()))

	generated := WithCorrelationID(context.Background(), "")
	assert.Len(t, CorrelationIDFromContext(generated), 36)
}
