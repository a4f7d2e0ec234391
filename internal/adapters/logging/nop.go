// Package logging provides implementations of the ports.Logger interface:
// a NopLogger for disabled logging and a ConsoleLogger for text or JSON
// console output.
package logging

import (
	"context"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug does nothing.
func (l *NopLogger) Debug(_ context.Context, _ string, _ ...ports.Field) {}

// Info does nothing.
func (l *NopLogger) Info(_ context.Context, _ string, _ ...ports.Field) {}

// Warn does nothing.
func (l *NopLogger) Warn(_ context.Context, _ string, _ ...ports.Field) {}

// Error does nothing.
func (l *NopLogger) Error(_ context.Context, _ string, _ ...ports.Field) {}

// With returns itself.
func (l *NopLogger) With(_ ...ports.Field) ports.Logger {
	return l
}

// Level reports LevelError so callers skip building debug-only fields.
func (l *NopLogger) Level() ports.Level {
	return ports.LevelError
}

// FromContext returns the logger stored in ctx, or a NopLogger.
func FromContext(ctx context.Context) ports.Logger {
	if l := ports.LoggerFromContext(ctx); l != nil {
		return l
	}
	return NewNopLogger()
}

// Ensure NopLogger implements Logger.
var _ ports.Logger = (*NopLogger)(nil)
