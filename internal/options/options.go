package options

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextKey struct{}

// WithTracer stores a logger that decoders use for diagnostic traces.
func WithTracer(ctx context.Context, log logrus.FieldLogger) context.Context {
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, log)
}

// Tracer retrieves the trace logger from context if present.
func Tracer(ctx context.Context) logrus.FieldLogger {
	if ctx == nil {
		return nil
	}
	if v := ctx.Value(contextKey{}); v != nil {
		if log, ok := v.(logrus.FieldLogger); ok {
			return log
		}
	}
	return nil
}

// LevelForVerbosity maps a -v count to a logrus level.
func LevelForVerbosity(v int) logrus.Level {
	switch {
	case v <= 0:
		return logrus.InfoLevel
	case v == 1:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// ParseLevel validates a textual log level. An empty string means info.
func ParseLevel(input string) (logrus.Level, error) {
	clean := strings.TrimSpace(input)
	if clean == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(clean)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return lvl, nil
}
