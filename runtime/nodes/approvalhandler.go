package nodes

import (
	"context"
	"fmt"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// NewApprovalHandler builds the ApprovalHandler node (spec.md §4.2),
// grounded on original_source's approval_handler_node.
func NewApprovalHandler(deps *Deps) graph.NodeFunc {
	return func(_ context.Context, state graph.WorkingState) (graph.Command, error) {
		msg, _ := state.LastUserMessage()

		if _, ok := matchReject(msg); ok {
			return graph.Command{
				Update: graph.Update{
					AwaitingApproval:  graph.BoolPtr(false),
					ClearApproval:     true,
					ClearProposedTool: true,
					LastToolResult:    graph.Failed("User rejected action"),
				},
				Goto: graph.NodeSupervisor,
			}, nil
		}

		id, tok, ok := matchApprove(msg)
		if !ok {
			return graph.Command{Goto: graph.NodeSupervisor}, nil
		}
		if state.Approval == nil || id != state.Approval.ApprovalID {
			return graph.Command{Goto: graph.NodeSupervisor}, nil
		}
		if deps.now().After(state.Approval.ExpiresAt) {
			return graph.Command{
				Update: graph.Update{AwaitingApproval: graph.BoolPtr(false), ClearApproval: true},
				Goto:   graph.NodeSupervisor,
			}, nil
		}

		payload := fmt.Sprintf("%s:%s:%s", state.ThreadID, state.UserID, state.Approval.ApprovalHash)
		if !deps.Tokens.VerifyAndConsume(tok, payload) {
			return graph.Command{Goto: graph.NodeSupervisor}, nil
		}

		return graph.Command{
			Update: graph.Update{
				AwaitingApproval: graph.BoolPtr(false),
				ClearApproval:    true,
			},
			Goto: graph.NodeTools,
		}, nil
	}
}
