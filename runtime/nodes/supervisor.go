package nodes

import (
	"context"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// NewSupervisor builds the Supervisor node (spec.md §4.2): orchestrates
// progress without any LLM call, grounded on spec.md's textual description
// (original_source's supervisor_node is an MVP placeholder; this
// implements the fuller spec'd decision table).
func NewSupervisor(deps *Deps) graph.NodeFunc {
	return func(_ context.Context, state graph.WorkingState) (graph.Command, error) {
		maxRetries := deps.MaxRetriesPerStep
		if maxRetries <= 0 {
			maxRetries = 3
		}

		if len(state.Plan) == 0 || state.CurrentStep >= len(state.Plan) {
			return graph.Command{Goto: graph.NodeFinalizer}, nil
		}

		switch state.StepStatus[state.CurrentStep] {
		case graph.StepDone:
			next := state.CurrentStep + 1
			if next >= len(state.Plan) {
				return graph.Command{
					Update: graph.Update{CurrentStep: graph.IntPtr(next)},
					Goto:   graph.NodeFinalizer,
				}, nil
			}
			return graph.Command{
				Update: graph.Update{CurrentStep: graph.IntPtr(next)},
				Goto:   graph.NodeExecutor,
			}, nil

		case graph.StepFailed:
			if state.AwaitingUserInput {
				return retryDecisionCommand(state)
			}
			if state.Tries[state.CurrentStep] >= maxRetries {
				question := "This step has failed repeatedly. Reply RETRY, SKIP, or CANCEL."
				return graph.Command{
					Update: graph.Update{
						AwaitingUserInput: graph.BoolPtr(true),
						Question:          graph.StringPtr(question),
					},
					Goto: graph.NodeFinalizer,
				}, nil
			}
			tries := map[int]int{state.CurrentStep: state.Tries[state.CurrentStep] + 1}
			status := map[int]graph.StepStatus{state.CurrentStep: graph.StepPending}
			return graph.Command{
				Update: graph.Update{Tries: tries, StepStatus: status},
				Goto:   graph.NodeExecutor,
			}, nil

		default: // pending or running
			return graph.Command{Goto: graph.NodeExecutor}, nil
		}
	}
}

// retryDecisionCommand consumes a RETRY/SKIP/CANCEL reply Router parsed out
// of the user's answer to a retry-exhausted question (spec.md §8, SPEC_FULL
// §12). Router sets state.RetryDecision before handing the state back to
// Supervisor; an unrecognized or absent decision re-surfaces the same
// question instead of silently re-asking forever without consuming a valid
// one when it does arrive.
func retryDecisionCommand(state graph.WorkingState) (graph.Command, error) {
	clear := graph.Update{
		AwaitingUserInput: graph.BoolPtr(false),
		ClearQuestion:     true,
		RetryDecision:     graph.StringPtr(""),
	}

	switch state.RetryDecision {
	case "RETRY":
		clear.Tries = map[int]int{state.CurrentStep: 0}
		clear.StepStatus = map[int]graph.StepStatus{state.CurrentStep: graph.StepPending}
		return graph.Command{Update: clear, Goto: graph.NodeExecutor}, nil

	case "SKIP":
		next := state.CurrentStep + 1
		clear.CurrentStep = graph.IntPtr(next)
		if next >= len(state.Plan) {
			return graph.Command{Update: clear, Goto: graph.NodeFinalizer}, nil
		}
		return graph.Command{Update: clear, Goto: graph.NodeExecutor}, nil

	case "CANCEL":
		clear.CurrentStep = graph.IntPtr(len(state.Plan))
		return graph.Command{Update: clear, Goto: graph.NodeFinalizer}, nil

	default:
		question := "This step has failed repeatedly. Reply RETRY, SKIP, or CANCEL."
		return graph.Command{
			Update: graph.Update{
				AwaitingUserInput: graph.BoolPtr(true),
				Question:          graph.StringPtr(question),
			},
			Goto: graph.NodeFinalizer,
		}, nil
	}
}
