package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
)

func resetLogger(t *testing.T) {
	t.Helper()
	previous := slog.Default()
	ResetLoggerForTesting()
	t.Cleanup(func() {
		ResetLoggerForTesting()
		slog.SetDefault(previous)
	})
}

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestInitializeLogger_File(t *testing.T) {
	resetLogger(t)
	logFile := filepath.Join(t.TempDir(), "logs", "test.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	entries := decodeLines(t, content)
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Contains(t, entries[0], "source")
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	resetLogger(t)
	dir := t.TempDir()

	first, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(dir, "a.log")})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(dir, "b.log")})
	require.NoError(t, err)

	assert.Same(t, first, second)
	_, err = os.Stat(filepath.Join(dir, "b.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewLogger_TraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "with trace")
	logger.InfoContext(context.Background(), "without trace")
	logger.With("component", "test").DebugContext(ctx, "derived")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 3)
	assert.Equal(t, "test-trace-123", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
	assert.Equal(t, "test-trace-123", entries[2]["trace_id"])
	assert.Equal(t, "test", entries[2]["component"])
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"debug", []string{"d", "i", "w", "e"}},
		{"info", []string{"i", "w", "e"}},
		{"", []string{"i", "w", "e"}},
		{"warning", []string{"w", "e"}},
		{"error", []string{"e"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(config.LoggingConfig{Level: tt.level}, &buf)
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			var got []string
			for _, e := range decodeLines(t, buf.Bytes()) {
				got = append(got, e["msg"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(config.LoggingConfig{Format: "text"}, &buf).Info("hello", "k", "v")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
	assert.Empty(t, GetTraceID(context.Background()))
}
