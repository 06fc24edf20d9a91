package toolrunner

import "github.com/google/uuid"

// NewToolCallID generates a unique tool_call_id for a ProposedTool, matching
// the teacher's use of uuid.NewString() wherever a real UUID fits better
// than hand-rolled random hex (approval_id keeps the spec's explicit
// random-hex format; tool_call_id has no such constraint).
func NewToolCallID() string {
	return uuid.NewString()
}
