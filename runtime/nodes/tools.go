package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/idempotency"
)

const defaultIdempotencyTTL = 600 * time.Second // spec.md §4.5/§6 default

// NewTools builds the Tools node (spec.md §4.2): the sole executor of
// external tool calls, gated behind idempotency caching, grounded on
// original_source's MCPToolRunner invocation pattern (src/app/core/tools).
func NewTools(deps *Deps) graph.NodeFunc {
	return func(ctx context.Context, state graph.WorkingState) (graph.Command, error) {
		tool := state.ProposedTool
		if tool == nil {
			return graph.Command{
				Update: graph.Update{LastToolResult: graph.Failed("system error: no tool to execute")},
				Goto:   graph.NodeInterpreter,
			}, nil
		}

		key := idempotency.Key(state.ThreadID, tool.StepIdx, tool.ArgsHash)

		if cached, found, err := deps.Idempotency.Get(ctx, key); err == nil && found {
			if result, ok := cached.(graph.ToolResult); ok {
				return graph.Command{
					Update: graph.Update{LastToolResult: &result},
					Goto:   graph.NodeInterpreter,
				}, nil
			}
		}

		outcome, err := deps.ToolRunner.Call(ctx, tool.Name, tool.Args)
		if err != nil {
			return graph.Command{
				Update: graph.Update{LastToolResult: graph.Failed(fmt.Sprintf("tool runner error: %v", err))},
				Goto:   graph.NodeInterpreter,
			}, nil
		}

		var result graph.ToolResult
		if outcome.OK {
			result = *graph.Succeeded(outcome.Output)
		} else {
			result = *graph.Failed(outcome.Error)
		}
		result.SizeChars = len(result.Output)

		ttl := deps.IdempotencyTTL
		if ttl <= 0 {
			ttl = defaultIdempotencyTTL
		}
		_ = deps.Idempotency.Set(ctx, key, result, ttl)

		return graph.Command{
			Update: graph.Update{LastToolResult: &result},
			Goto:   graph.NodeInterpreter,
		}, nil
	}
}
