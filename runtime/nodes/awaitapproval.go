package nodes

import (
	"context"
	"fmt"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// NewAwaitApproval builds the AwaitApproval node (spec.md §4.2): terminal
// for this invocation, emitting a convenience token signed for the
// approval payload. Grounded on original_source's await_approval_node.
func NewAwaitApproval(deps *Deps) graph.NodeFunc {
	return func(_ context.Context, state graph.WorkingState) (graph.Command, error) {
		if state.Approval == nil {
			return graph.Command{}, fmt.Errorf("nodes: await_approval reached with no approval record")
		}

		payload := fmt.Sprintf("%s:%s:%s", state.ThreadID, state.UserID, state.Approval.ApprovalHash)
		tok, err := deps.Tokens.Sign(payload)
		if err != nil {
			return graph.Command{}, fmt.Errorf("nodes: signing approval token: %w", err)
		}

		msg := fmt.Sprintf(
			"Action requires approval.\nTo approve: APPROVE %s %s\nTo reject: REJECT %s",
			state.Approval.ApprovalID, tok, state.Approval.ApprovalID,
		)

		return graph.Command{
			Update: graph.Update{AppendMessages: []graph.Message{{Role: graph.RoleAssistant, Content: msg}}},
			Goto:   graph.Terminal,
		}, nil
	}
}
