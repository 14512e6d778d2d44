// Package ctxlog carries a slog.Logger in a context.Context
package ctxlog

import (
	"context"
	"log/slog"
)

// key is unexported so no other package can collide with it
type key struct{}

// loggerKey holds the logger in a context
var loggerKey = key{}

// WithLogger returns a copy of ctx carrying logger
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger carried by ctx, or slog.Default when there
// is none
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}
