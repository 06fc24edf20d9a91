// Package temporalengine is the optional durable engine backend: it runs
// one GraphExecutor invocation as a Temporal workflow wrapping a single
// activity, grounded on the teacher's runtime/agent/engine/temporal adapter
// but reduced to this module's "durable backend for one GraphExecutor
// invocation" role (SPEC_FULL.md §9) — one task queue, no OTEL interceptor
// bundle, no signal/child-workflow machinery. Node functions perform LLM and
// tool I/O directly and are not replay-deterministic, so the whole
// invocation runs as a single activity rather than as workflow code itself;
// durability here buys retry-on-worker-crash and visibility, not step-level
// replay.
package temporalengine

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/zerotrust-agents/agentrt/runtime/engine"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// WorkflowName and ActivityName are the Temporal-visible identifiers
// registered by RegisterWith, one pair per Engine instance (i.e. per agent).
const (
	workflowNameSuffix = "-invoke"
	activityNameSuffix = "-invoke-activity"

	defaultActivityTimeout = 10 * time.Minute
)

// Config configures an Engine.
type Config struct {
	Client    client.Client
	TaskQueue string
	// AgentName distinguishes this engine's workflow/activity names from
	// another agent's when multiple agents share one worker/task queue.
	AgentName string
	// StartToCloseTimeout bounds the activity's execution time; zero means
	// defaultActivityTimeout applies.
	StartToCloseTimeout time.Duration
}

// Engine runs a GraphExecutor invocation as a durable Temporal workflow.
type Engine struct {
	client    client.Client
	taskQueue string
	executor  *graph.Executor

	workflowName string
	activityName string
	timeout      time.Duration
}

var _ engine.Engine = (*Engine)(nil)

// New binds executor as the activity body invoked by this agent's workflow.
// Call RegisterWith before starting a worker on cfg.TaskQueue.
func New(cfg Config, executor *graph.Executor) *Engine {
	return &Engine{
		client:       cfg.Client,
		taskQueue:    cfg.TaskQueue,
		executor:     executor,
		workflowName: cfg.AgentName + workflowNameSuffix,
		activityName: cfg.AgentName + activityNameSuffix,
		timeout:      cfg.StartToCloseTimeout,
	}
}

// RegisterWith registers this engine's workflow and activity against w. The
// caller owns starting/stopping w.
func (e *Engine) RegisterWith(w worker.Worker) {
	w.RegisterWorkflowWithOptions(e.runWorkflow, workflow.RegisterOptions{Name: e.workflowName})
	w.RegisterActivityWithOptions(e.runActivity, activity.RegisterOptions{Name: e.activityName})
}

// Run starts this engine's workflow with runID as the Temporal workflow ID
// and blocks until it completes.
func (e *Engine) Run(ctx context.Context, runID string, initial graph.WorkingState) (graph.WorkingState, error) {
	run, err := e.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        runID,
		TaskQueue: e.taskQueue,
	}, e.workflowName, initial)
	if err != nil {
		return graph.WorkingState{}, fmt.Errorf("temporalengine: starting workflow: %w", err)
	}

	var result graph.WorkingState
	if err := run.Get(ctx, &result); err != nil {
		return graph.WorkingState{}, fmt.Errorf("temporalengine: awaiting workflow: %w", err)
	}
	return result, nil
}

// runWorkflow is the Temporal workflow function: it schedules the single
// invocation activity and returns its result.
func (e *Engine) runWorkflow(ctx workflow.Context, initial graph.WorkingState) (graph.WorkingState, error) {
	timeout := e.timeout
	if timeout == 0 {
		timeout = defaultActivityTimeout
	}
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{StartToCloseTimeout: timeout})

	var result graph.WorkingState
	err := workflow.ExecuteActivity(ctx, e.activityName, initial).Get(ctx, &result)
	return result, err
}

// runActivity is the Temporal activity function: it runs the bound executor
// to completion with the host's real I/O (LLM calls, tool calls, audit log).
func (e *Engine) runActivity(ctx context.Context, initial graph.WorkingState) (graph.WorkingState, error) {
	return e.executor.Invoke(ctx, initial)
}
