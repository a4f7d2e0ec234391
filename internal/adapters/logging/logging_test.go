package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/extmgr/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopLogger_DiscardsEverything(t *testing.T) {
	t.Parallel()

	logger := NewNopLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Error(ctx, "error", ports.F("k", "v"))

	assert.Same(t, logger, logger.With(ports.F("key", "value")))
	assert.Equal(t, ports.LevelError, logger.Level())
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	_, isNop := FromContext(context.Background()).(*NopLogger)
	assert.True(t, isNop)

	console := NewConsoleLogger()
	ctx := ports.ContextWithLogger(context.Background(), console)
	assert.Same(t, console, FromContext(ctx))
}

func TestConsoleLogger_TextOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))

	logger.Info(context.Background(), "cloning", ports.F("url", "https://example.com/foo"), ports.F("note", "two words"))

	assert.Equal(t, "[INFO] cloning url=https://example.com/foo note=\"two words\"\n", buf.String())
}

func TestConsoleLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithLevel(ports.LevelWarn), WithTimestamp(false))
	ctx := context.Background()

	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN] shown")

	logger.SetLevel(ports.LevelDebug)
	logger.Debug(ctx, "now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestConsoleLogger_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithJSONFormat(true))
	logger.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	logger.Error(context.Background(), "uninstall failed", ports.Err(errors.New("busy")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "uninstall failed", entry["msg"])
	assert.Equal(t, "busy", entry["error"])
	assert.Equal(t, "2026-01-02T03:04:05Z", entry["time"])
}

func TestConsoleLogger_WithAddsFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))
	child := base.With(ports.F("op", "abc"))

	child.Info(context.Background(), "first")
	base.Info(context.Background(), "second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[INFO] first op=abc", lines[0])
	assert.Equal(t, "[INFO] second", lines[1])
}
