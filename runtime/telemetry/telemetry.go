// Package telemetry defines the runtime's observability seams: a small
// Logger/Metrics/Tracer surface that every other package depends on as an
// interface only, grounded on the teacher's runtime/agent/telemetry package
// (same Logger/Metrics/Tracer/Span shape, same no-op/real split), with the
// real implementation rebuilt on this module's actual stack — go.uber.org/zap
// for logging and go.opentelemetry.io/otel for metrics/tracing — in place of
// the teacher's goa.design/clue/log wrapper, which is not part of this
// module's dependency surface (see DESIGN.md).
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the structured logging surface used throughout the runtime.
// Implementations must be safe for concurrent use.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics exposes counter, timer, and gauge helpers for runtime
// instrumentation. tags are flattened key-value pairs (k1, v1, k2, v2, ...).
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, duration time.Duration, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
}

// Tracer abstracts span creation so runtime code stays agnostic of the
// underlying tracing provider.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
	Span(ctx context.Context) Span
}

// Span represents an in-flight tracing span.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// ToolTelemetry captures observability metadata collected for one tool
// invocation, recorded alongside the ToolResult it produced.
type ToolTelemetry struct {
	// DurationMs is the wall-clock execution time in milliseconds.
	DurationMs int64
	// Tool is the name of the invoked tool.
	Tool string
	// Decision is the RiskGate decision that authorized (or blocked) the call.
	Decision string
	// Extra holds tool-specific metadata not captured by the common fields.
	Extra map[string]any
}
