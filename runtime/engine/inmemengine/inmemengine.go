// Package inmemengine is the default engine backend: it runs a
// GraphExecutor invocation synchronously in the calling goroutine. Grounded
// on the teacher's inmem engine adapter shape, reduced to this module's
// single-invocation contract (no workflow/activity registration, since
// runtime/nodes already performs all I/O directly through its injected Deps).
package inmemengine

import (
	"context"

	"github.com/zerotrust-agents/agentrt/runtime/engine"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// Engine wraps a single *graph.Executor as an engine.Engine.
type Engine struct {
	executor *graph.Executor
}

var _ engine.Engine = (*Engine)(nil)

// New binds executor as the engine's invocation target.
func New(executor *graph.Executor) *Engine {
	return &Engine{executor: executor}
}

// Run delegates directly to the bound executor; runID is accepted only to
// satisfy engine.Engine and carries no in-process meaning.
func (e *Engine) Run(ctx context.Context, _ string, initial graph.WorkingState) (graph.WorkingState, error) {
	return e.executor.Invoke(ctx, initial)
}
