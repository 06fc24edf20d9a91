package telemetry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/telemetry"
)

type recordingMetrics struct {
	counterCalls []counterCall
	timerCalls   []timerCall
}

type counterCall struct {
	name  string
	value float64
	tags  []string
}

type timerCall struct {
	name     string
	duration time.Duration
	tags     []string
}

func (m *recordingMetrics) IncCounter(name string, value float64, tags ...string) {
	m.counterCalls = append(m.counterCalls, counterCall{name: name, value: value, tags: tags})
}

func (m *recordingMetrics) RecordTimer(name string, duration time.Duration, tags ...string) {
	m.timerCalls = append(m.timerCalls, timerCall{name: name, duration: duration, tags: tags})
}

func (m *recordingMetrics) RecordGauge(string, float64, ...string) {}

func TestGraphCounterIncrementsUnderlyingMetric(t *testing.T) {
	metrics := &recordingMetrics{}
	counter := telemetry.NewGraphCounter(metrics, "node_transitions_total")

	counter.Inc(map[string]string{"node": "router", "to": "planner"})

	require.Len(t, metrics.counterCalls, 1)
	call := metrics.counterCalls[0]
	require.Equal(t, "node_transitions_total", call.name)
	require.Equal(t, float64(1), call.value)
	require.Equal(t, []string{"node", "router", "to", "planner"}, call.tags)
}

func TestGraphHistogramRecordsSecondsInOrder(t *testing.T) {
	metrics := &recordingMetrics{}
	histogram := telemetry.NewGraphHistogram(metrics, "run_latency_seconds")

	histogram.Observe(1.5, map[string]string{"agent": "support"})

	require.Len(t, metrics.timerCalls, 1)
	call := metrics.timerCalls[0]
	require.Equal(t, "run_latency_seconds", call.name)
	require.Equal(t, 1500*time.Millisecond, call.duration)
	require.Equal(t, []string{"agent", "support"}, call.tags)
}
