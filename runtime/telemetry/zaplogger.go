package telemetry

import (
	"context"

	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.Logger to the Logger interface.
type ZapLogger struct {
	base *zap.Logger
}

// NewZapLogger wraps base as a Logger. A nil base is replaced with
// zap.NewNop() so callers never need to nil-check the result.
func NewZapLogger(base *zap.Logger) Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapLogger{base: base}
}

// Debug emits a debug-level log entry with structured key-value pairs.
func (l *ZapLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	l.base.Debug(msg, kvToZapFields(keyvals)...)
}

// Info emits an info-level log entry with structured key-value pairs.
func (l *ZapLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	l.base.Info(msg, kvToZapFields(keyvals)...)
}

// Warn emits a warning-level log entry with structured key-value pairs.
func (l *ZapLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	l.base.Warn(msg, kvToZapFields(keyvals)...)
}

// Error emits an error-level log entry with structured key-value pairs.
func (l *ZapLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	l.base.Error(msg, kvToZapFields(keyvals)...)
}

// kvToZapFields converts variadic key-value pairs (k1, v1, k2, v2, ...) into
// zap.Field values. Non-string keys are skipped; a trailing unpaired key is
// recorded with a nil value.
func kvToZapFields(keyvals []any) []zap.Field {
	fields := make([]zap.Field, 0, len(keyvals)/2+1)
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		var val any
		if i+1 < len(keyvals) {
			val = keyvals[i+1]
		}
		fields = append(fields, zap.Any(key, val))
	}
	return fields
}
