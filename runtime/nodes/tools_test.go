package nodes_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/idempotency"
	"github.com/zerotrust-agents/agentrt/runtime/nodes"
	"github.com/zerotrust-agents/agentrt/runtime/toolrunner"
)

func stateWithTool(name string, args map[string]any, hash string) graph.WorkingState {
	state := newPlanState("step one")
	state.ProposedTool = &graph.ProposedTool{
		Name:       name,
		Args:       args,
		ArgsHash:   hash,
		ToolCallID: "tc-1",
		StepIdx:    0,
		CreatedAt:  time.Now(),
	}
	return state
}

func TestToolsRunsAndCachesResult(t *testing.T) {
	runner := &stubRunner{outcome: toolrunner.Outcome{OK: true, Output: "file contents"}}
	store := idempotency.NewInMemoryStore()
	defer store.Close()

	run := nodes.NewTools(&nodes.Deps{ToolRunner: runner, Idempotency: store})
	state := stateWithTool("read_file", map[string]any{"path": "a.txt"}, "hash-a")

	cmd, err := run(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeInterpreter, cmd.Goto)
	require.Equal(t, graph.ToolResultSuccess, cmd.Update.LastToolResult.Status)
	require.Equal(t, "file contents", cmd.Update.LastToolResult.Output)
	require.Equal(t, 1, runner.calls)

	cmd2, err := run(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, "file contents", cmd2.Update.LastToolResult.Output)
	require.Equal(t, 1, runner.calls, "second call with identical key must hit the idempotency cache")
}

func TestToolsWrapsRunnerFailureAsFailedResult(t *testing.T) {
	runner := &stubRunner{outcome: toolrunner.Outcome{OK: false, Error: "permission denied"}}
	store := idempotency.NewInMemoryStore()
	defer store.Close()

	run := nodes.NewTools(&nodes.Deps{ToolRunner: runner, Idempotency: store})
	state := stateWithTool("read_file", map[string]any{"path": "a.txt"}, "hash-b")

	cmd, err := run(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.ToolResultFailed, cmd.Update.LastToolResult.Status)
	require.Equal(t, "permission denied", cmd.Update.LastToolResult.Output)
}

func TestToolsHandlesMissingProposedTool(t *testing.T) {
	store := idempotency.NewInMemoryStore()
	defer store.Close()

	run := nodes.NewTools(&nodes.Deps{ToolRunner: &stubRunner{}, Idempotency: store})
	state := newPlanState("step one")

	cmd, err := run(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeInterpreter, cmd.Goto)
	require.Equal(t, graph.ToolResultFailed, cmd.Update.LastToolResult.Status)
}
