package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStepLimitExceeded is the sentinel failure surfaced when a run exceeds
// its node transition ceiling (spec.md §4.1).
var ErrStepLimitExceeded = errors.New("graph: node transition limit exceeded")

// Command is what a node returns: a partial state update and the next node
// to run. Returning Terminal ends the invocation.
type Command struct {
	Update Update
	Goto   NodeID
}

// NodeFunc is the shape every node must satisfy: a pure function of
// (ctx, state) to a routing Command. Nodes must not perform I/O beyond
// explicitly injected collaborators — they receive those via closures over
// a Deps struct constructed by the caller, not by reaching into globals.
type NodeFunc func(ctx context.Context, state WorkingState) (Command, error)

// Counter is the minimal metrics surface the executor emits through; kept
// here rather than importing runtime/telemetry directly so this package has
// no dependency on the telemetry stack (it only needs to increment things).
type Counter interface {
	Inc(labels map[string]string)
}

// Histogram records run latency per SPEC_FULL.md §3 ("a histogram of run
// latency").
type Histogram interface {
	Observe(seconds float64, labels map[string]string)
}

// Executor drives the node state machine (C1). It holds no per-run state of
// its own; WorkingState is threaded through Invoke.
type Executor struct {
	nodes                map[NodeID]NodeFunc
	nodeTransitionLimit  int
	transitionCounter    Counter
	runLatencyHistogram  Histogram
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithNodeTransitionLimit overrides the default ceiling of 64 transitions.
func WithNodeTransitionLimit(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.nodeTransitionLimit = n
		}
	}
}

// WithTransitionCounter wires a metrics counter incremented once per node
// transition, labeled by node name.
func WithTransitionCounter(c Counter) Option {
	return func(e *Executor) { e.transitionCounter = c }
}

// WithRunLatencyHistogram wires a metrics histogram observing total
// Invoke wall-clock duration.
func WithRunLatencyHistogram(h Histogram) Option {
	return func(e *Executor) { e.runLatencyHistogram = h }
}

// NewExecutor constructs an Executor with the given node registry.
func NewExecutor(nodes map[NodeID]NodeFunc, opts ...Option) *Executor {
	e := &Executor{
		nodes:               nodes,
		nodeTransitionLimit: 64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type noopCounter struct{}

func (noopCounter) Inc(map[string]string) {}

type noopHistogram struct{}

func (noopHistogram) Observe(float64, map[string]string) {}

// Invoke repeatedly applies the current node starting from "router" (the
// sole fixed entry point) until a node returns Terminal, the context is
// canceled, or the transition ceiling is breached. A node that panics or
// returns an error is converted to a failed ToolResult routed to Finalizer,
// guaranteeing every run terminates with a user-visible message (I7).
func (e *Executor) Invoke(ctx context.Context, initial WorkingState) (WorkingState, error) {
	state := initial
	current := NodeRouter
	start := time.Now()

	histogram := e.runLatencyHistogram
	if histogram == nil {
		histogram = noopHistogram{}
	}
	observe := func(outcome string) {
		histogram.Observe(time.Since(start).Seconds(), map[string]string{"outcome": outcome})
	}

	counter := e.transitionCounter
	if counter == nil {
		counter = noopCounter{}
	}

	for {
		if err := ctx.Err(); err != nil {
			observe("error")
			return state, err
		}

		if state.NodeTransitions >= e.nodeTransitionLimit {
			state, current = e.fail(state, "step limit exceeded: too many node transitions")
			cmd, err := e.runNode(ctx, current, state)
			if err != nil {
				observe("error")
				return state, fmt.Errorf("graph: finalizer after limit breach: %w", err)
			}
			observe("limit_exceeded")
			return apply(state, cmd.Update), nil
		}

		cmd, err := e.runNode(ctx, current, state)
		if err != nil {
			state, current = e.fail(state, err.Error())
			counter.Inc(map[string]string{"node": string(current)})
			state.NodeTransitions++
			continue
		}

		state = apply(state, cmd.Update)
		state.NodeTransitions++
		counter.Inc(map[string]string{"node": string(current)})

		if cmd.Goto == Terminal {
			observe("success")
			return state, nil
		}
		current = cmd.Goto
	}
}

// runNode looks up and invokes the named node, converting an unknown node
// name or a node panic into an error so the caller can route to Finalizer.
func (e *Executor) runNode(ctx context.Context, id NodeID, state WorkingState) (cmd Command, err error) {
	fn, ok := e.nodes[id]
	if !ok {
		return Command{}, fmt.Errorf("graph: unknown node %q", id)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("graph: node %q panicked: %v", id, r)
		}
	}()

	return fn(ctx, state)
}

// fail converts an error into a failed ToolResult and routes to Finalizer,
// the universal fallback that guarantees termination with a user-visible
// message.
func (e *Executor) fail(state WorkingState, msg string) (WorkingState, NodeID) {
	state.LastToolResult = Failed(msg)
	return state, NodeFinalizer
}
