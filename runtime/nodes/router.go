package nodes

import (
	"context"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// NewRouter builds the Router node (spec.md §4.2): decides the entry route
// for a freshly re-entered invocation, grounded on original_source's
// router_node.
func NewRouter(_ *Deps) graph.NodeFunc {
	return func(_ context.Context, state graph.WorkingState) (graph.Command, error) {
		if state.AwaitingApproval {
			msg, _ := state.LastUserMessage()
			if isApprovalReply(msg) {
				return graph.Command{Goto: graph.NodeApprovalHandler}, nil
			}
			return graph.Command{Goto: graph.NodeSupervisor}, nil
		}

		if state.AwaitingUserInput {
			msg, _ := state.LastUserMessage()
			if decision, ok := matchRetryDecision(msg); ok {
				return graph.Command{
					Update: graph.Update{RetryDecision: graph.StringPtr(decision)},
					Goto:   graph.NodeSupervisor,
				}, nil
			}
			return graph.Command{Goto: graph.NodeSupervisor}, nil
		}

		switch state.Intent {
		case graph.IntentConversation:
			return graph.Command{Goto: graph.NodeFinalizer}, nil
		case graph.IntentTask:
			if len(state.Plan) == 0 {
				return graph.Command{Goto: graph.NodePlanner}, nil
			}
			return graph.Command{Goto: graph.NodeSupervisor}, nil
		default:
			return graph.Command{Goto: graph.NodeSupervisor}, nil
		}
	}
}
