package riskgate

import (
	"errors"
	"fmt"

	"github.com/zerotrust-agents/agentrt/runtime/canonical"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// ErrIntegrityViolation is the sentinel returned when a proposed tool's
// caller-supplied canonical args or hash do not match the server-recomputed
// values — a fatal tamper event (spec.md §3, invariant I1).
var ErrIntegrityViolation = errors.New("riskgate: integrity violation")

// CheckIntegrity recomputes canonical_args and args_hash from proposed.Args
// and compares against the caller-supplied values. A mismatch in either
// field is reported distinctly, matching the original risk_gate_node's two
// separate error messages.
func CheckIntegrity(proposed *graph.ProposedTool) error {
	canonicalArgs, err := canonical.Canonicalize(proposed.Args)
	if err != nil {
		return fmt.Errorf("riskgate: recomputing canonical args: %w", err)
	}
	if canonicalArgs != proposed.CanonicalArgs {
		return fmt.Errorf("%w: canonical args mismatch", ErrIntegrityViolation)
	}

	hash := canonical.Hash(canonicalArgs)
	if hash != proposed.ArgsHash {
		return fmt.Errorf("%w: hash mismatch (tampering detected)", ErrIntegrityViolation)
	}
	return nil
}
