package nodes

import (
	"context"
	"strconv"

	"github.com/zerotrust-agents/agentrt/runtime/contentstore"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

const (
	defaultEvictionThresholdChars = 10_000
	evictionSummaryChars          = 500
	defaultRehydrationMaxChars    = 50_000
)

// NewInterpreter builds the Interpreter node (C7, spec.md §4.2): normalizes
// and evicts oversized tool output, clears proposed_tool, and advances
// step_status. Grounded on original_source's interpreter_node.
func NewInterpreter(deps *Deps) graph.NodeFunc {
	return func(ctx context.Context, state graph.WorkingState) (graph.Command, error) {
		result := state.LastToolResult
		if result == nil {
			failed := graph.Failed("no result found")
			result = failed
		}
		normalized := *result

		if len(normalized.Output) > deps.evictionThresholdChars() && deps.ContentStore != nil {
			filename := contentstore.EvictionFilename(state.ThreadID, normalized.Output)
			path, err := deps.ContentStore.Write(ctx, filename, normalized.Output)
			if err != nil {
				normalized.Status = graph.ToolResultFailed
				normalized.Output = "eviction failed: " + err.Error()
			} else {
				size := len(normalized.Output)
				summary := normalized.Output
				if len(summary) > evictionSummaryChars {
					summary = summary[:evictionSummaryChars] + "…"
				}
				normalized.Evicted = true
				normalized.Pointer = &path
				normalized.SizeChars = size
				normalized.Output = evictedPointerMessage(size, path)
				normalized.Summary = &summary
				normalized.RehydrationAllowed = size <= deps.rehydrationMaxChars()
			}
		} else {
			normalized.Evicted = false
			normalized.RehydrationAllowed = true
			normalized.SizeChars = len(normalized.Output)
		}

		newStatus := graph.StepFailed
		if normalized.Status == graph.ToolResultSuccess {
			newStatus = graph.StepDone
		}

		return graph.Command{
			Update: graph.Update{
				LastToolResult:    &normalized,
				ClearProposedTool: true,
				StepStatus:        map[int]graph.StepStatus{state.CurrentStep: newStatus},
			},
			Goto: graph.NodeSupervisor,
		}, nil
	}
}

func evictedPointerMessage(size int, path string) string {
	return "[EVICTED size=" + strconv.Itoa(size) + "] pointer=" + path
}
