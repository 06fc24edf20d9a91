// Package nodes implements C2: the ten pure node functions wired into a
// graph.Executor's registry (Router, Planner, Supervisor, Executor,
// RiskGate, AwaitApproval, ApprovalHandler, Tools, Interpreter, Finalizer),
// grounded on original_source's brain/nodes.py and brain/llm_nodes.py and
// the teacher's Command{update, goto} node-return convention.
//
// Nodes receive collaborators through Deps rather than globals or package
// state (original_source wires a RiskEngine/TokenManager as module-level
// singletons; this module injects them instead, per spec.md §4.1: "nodes
// must not perform I/O beyond explicitly injected collaborators").
package nodes

import (
	"time"

	"github.com/zerotrust-agents/agentrt/runtime/audit"
	"github.com/zerotrust-agents/agentrt/runtime/contentstore"
	"github.com/zerotrust-agents/agentrt/runtime/idempotency"
	"github.com/zerotrust-agents/agentrt/runtime/llm"
	"github.com/zerotrust-agents/agentrt/runtime/riskgate"
	"github.com/zerotrust-agents/agentrt/runtime/toolrunner"
	"github.com/zerotrust-agents/agentrt/runtime/token"
	"github.com/zerotrust-agents/agentrt/runtime/validator"
)

// Deps bundles every collaborator a node may call out to. A single Deps is
// shared by all ten node closures built for one agent/engine instance.
type Deps struct {
	LLM llm.Adapter

	ToolRegistry *toolrunner.Registry
	ToolRunner   toolrunner.Runner

	Validator *validator.Validator
	Policy    *riskgate.Policy

	Tokens       *token.Manager
	Idempotency  idempotency.Store
	Audit        *audit.Log
	ContentStore contentstore.Store

	SandboxRoot       string
	ToolTimeout       time.Duration
	IdempotencyTTL    time.Duration
	ApprovalTTL       time.Duration
	MaxPlanSteps      int
	MaxRetriesPerStep int

	// EvictionThresholdChars and RehydrationMaxChars configure the
	// Interpreter's oversized-output handling (spec.md §4.2/§6). Zero means
	// the package defaults of 10,000 and 50,000 chars apply.
	EvictionThresholdChars int
	RehydrationMaxChars    int

	Now func() time.Time
}

func (d *Deps) evictionThresholdChars() int {
	if d.EvictionThresholdChars > 0 {
		return d.EvictionThresholdChars
	}
	return defaultEvictionThresholdChars
}

func (d *Deps) rehydrationMaxChars() int {
	if d.RehydrationMaxChars > 0 {
		return d.RehydrationMaxChars
	}
	return defaultRehydrationMaxChars
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
