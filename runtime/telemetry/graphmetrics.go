package telemetry

import (
	"sort"
	"time"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// GraphCounter adapts a Metrics counter to graph.Counter, so a graph.Executor
// can emit through the same telemetry stack as the rest of the runtime
// without importing this package directly (see graph.Counter's doc comment).
type GraphCounter struct {
	metrics Metrics
	name    string
}

// NewGraphCounter returns a graph.Counter that increments name by one on
// every Inc call.
func NewGraphCounter(metrics Metrics, name string) *GraphCounter {
	return &GraphCounter{metrics: metrics, name: name}
}

// Inc increments the bound counter by one, tagged with labels.
func (c *GraphCounter) Inc(labels map[string]string) {
	c.metrics.IncCounter(c.name, 1, flattenLabels(labels)...)
}

// GraphHistogram adapts a Metrics timer to graph.Histogram.
type GraphHistogram struct {
	metrics Metrics
	name    string
}

// NewGraphHistogram returns a graph.Histogram that records observations
// under name (spec.md's run-latency histogram, see SPEC_FULL.md §3).
func NewGraphHistogram(metrics Metrics, name string) *GraphHistogram {
	return &GraphHistogram{metrics: metrics, name: name}
}

// Observe records a duration, in seconds, tagged with labels.
func (h *GraphHistogram) Observe(seconds float64, labels map[string]string) {
	h.metrics.RecordTimer(h.name, time.Duration(seconds*float64(time.Second)), flattenLabels(labels)...)
}

var (
	_ graph.Counter   = (*GraphCounter)(nil)
	_ graph.Histogram = (*GraphHistogram)(nil)
)

// flattenLabels converts a label map into Metrics' flattened tag pairs
// (k1, v1, k2, v2, ...) in sorted key order, keeping output deterministic.
func flattenLabels(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tags := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		tags = append(tags, k, labels[k])
	}
	return tags
}
