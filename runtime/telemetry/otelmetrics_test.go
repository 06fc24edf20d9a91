package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/telemetry"
)

// Without a configured SDK provider, otel.Meter/otel.Tracer resolve to the
// built-in no-op implementations; this just confirms the adapters wire
// through them without error so a host that never calls
// otel.Set{Meter,Tracer}Provider still gets a working, inert Metrics/Tracer.
func TestOTelAdaptersWorkAgainstTheDefaultProviders(t *testing.T) {
	metrics := telemetry.NewOTelMetrics()
	require.NotPanics(t, func() {
		metrics.IncCounter("tool_calls_total", 1, "tool", "read_file")
		metrics.RecordTimer("run_latency_seconds", 50*time.Millisecond, "agent", "support")
		metrics.RecordGauge("active_runs", 3)
	})

	tracer := telemetry.NewOTelTracer()
	require.NotPanics(t, func() {
		ctx, span := tracer.Start(context.Background(), "nodes.Executor")
		span.AddEvent("tool_proposed", "tool", "read_file")
		span.RecordError(errors.New("boom"))
		span.End()
		_ = tracer.Span(ctx)
	})
}
