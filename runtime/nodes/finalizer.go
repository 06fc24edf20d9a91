package nodes

import (
	"context"
	"strconv"
	"strings"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// NewFinalizer builds the Finalizer node (spec.md §4.2): produces the
// user-visible assistant message and ends the invocation. Grounded on
// original_source's finalizer_node_impl.
func NewFinalizer(_ *Deps) graph.NodeFunc {
	return func(_ context.Context, state graph.WorkingState) (graph.Command, error) {
		var msg string

		switch {
		case state.AwaitingApproval:
			// AwaitApproval already emitted the approval prompt and exited
			// the graph; Finalizer only reaches this branch if a node
			// re-routed here mid-approval (e.g. a BLOCKED honeytoken decoy).
			msg = "This action requires approval before it can proceed."

		case state.AwaitingUserInput:
			if state.Question != nil {
				msg = *state.Question
			} else {
				msg = "I need more information to continue."
			}

		case state.Intent == graph.IntentConversation:
			msg = "Understood. What else can I help with?"

		case len(state.Plan) == 0:
			msg = "There are no tasks in progress."

		default:
			msg = progressSummary(state)
		}

		return graph.Command{
			Update: graph.Update{AppendMessages: []graph.Message{{Role: graph.RoleAssistant, Content: msg}}},
			Goto:   graph.Terminal,
		}, nil
	}
}

func progressSummary(state graph.WorkingState) string {
	done := 0
	for _, status := range state.StepStatus {
		if status == graph.StepDone {
			done++
		}
	}

	var b strings.Builder
	b.WriteString("Progress: " + strconv.Itoa(done) + "/" + strconv.Itoa(len(state.Plan)) + " steps completed.\n\n")
	b.WriteString("Steps:\n")
	for i, step := range state.Plan {
		glyph := glyphFor(state.StepStatus[i])
		b.WriteString(glyph + " " + strconv.Itoa(i+1) + ". " + step + "\n")
	}
	return b.String()
}

func glyphFor(status graph.StepStatus) string {
	switch status {
	case graph.StepDone:
		return "[done]"
	case graph.StepFailed:
		return "[failed]"
	default:
		return "[pending]"
	}
}
