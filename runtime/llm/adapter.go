// Package llm defines the Adapter contract consumed by Planner and Executor
// (and optionally Finalizer). Provider wire protocols are out of scope
// (spec.md §1); only this interface and two concrete, directly-exercised
// implementations (anthropicadapter, openaiadapter) live in this module.
package llm

import "context"

// Message is one turn in a conversation passed to Invoke.
type Message struct {
	Role    string
	Content string
}

// Adapter is the single call-site contract Planner/Executor depend on:
// invoke(messages) -> text. Implementations must be retry-safe at the
// caller — no streaming requirement for correctness (spec.md §6).
type Adapter interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
}
