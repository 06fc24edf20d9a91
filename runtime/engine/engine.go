// Package engine abstracts "run one GraphExecutor invocation to completion"
// behind a pluggable backend, grounded on the teacher's runtime/agent/engine
// package but scaled down to this module's narrower need (SPEC_FULL.md §9):
// the teacher's full workflow/activity/signal machinery exists to host a
// durable, long-running, multi-workflow orchestration loop; this spec's
// AwaitApproval suspension model is stateless-HTTP-shaped instead (the
// caller re-invokes with the prior WorkingState once a reply arrives), so
// the only thing worth making pluggable is whether one invocation runs
// in-process (inmemengine) or as a durable Temporal workflow (temporalengine).
package engine

import (
	"context"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// Engine runs one GraphExecutor invocation from an initial WorkingState to a
// terminal state. One Engine instance is bound to a single named agent's
// compiled node registry (the unit of caching in runtime/engineregistry).
type Engine interface {
	// Run drives the bound executor to completion. runID correlates the
	// invocation with the underlying backend (a Temporal workflow ID, a log
	// field, etc.) and has no effect on routing.
	Run(ctx context.Context, runID string, initial graph.WorkingState) (graph.WorkingState, error)
}
