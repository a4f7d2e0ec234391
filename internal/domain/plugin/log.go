package plugin

import (
	"context"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// discardLogger is the default logger of every component in this package.
type discardLogger struct{}

func (discardLogger) Debug(context.Context, string, ...ports.Field) {}
func (discardLogger) Info(context.Context, string, ...ports.Field)  {}
func (discardLogger) Warn(context.Context, string, ...ports.Field)  {}
func (discardLogger) Error(context.Context, string, ...ports.Field) {}
func (d discardLogger) With(...ports.Field) ports.Logger            { return d }
func (discardLogger) Level() ports.Level                            { return ports.LevelError }

// logFrom returns the request logger carried by ctx, or fallback.
func logFrom(ctx context.Context, fallback ports.Logger) ports.Logger {
	if l := ports.LoggerFromContext(ctx); l != nil {
		return l
	}
	return fallback
}
