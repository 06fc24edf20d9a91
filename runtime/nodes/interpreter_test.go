package nodes_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/contentstore"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/nodes"
)

func TestInterpreterPassesThroughSmallOutput(t *testing.T) {
	interpret := nodes.NewInterpreter(&nodes.Deps{})

	state := newPlanState("step one")
	state.LastToolResult = graph.Succeeded("short output")

	cmd, err := interpret(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeSupervisor, cmd.Goto)
	require.True(t, cmd.Update.ClearProposedTool)
	require.Equal(t, graph.StepDone, cmd.Update.StepStatus[0])
	require.False(t, cmd.Update.LastToolResult.Evicted)
	require.Equal(t, "short output", cmd.Update.LastToolResult.Output)
}

func TestInterpreterMarksFailedStepOnFailure(t *testing.T) {
	interpret := nodes.NewInterpreter(&nodes.Deps{})

	state := newPlanState("step one")
	state.LastToolResult = graph.Failed("boom")

	cmd, err := interpret(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.StepFailed, cmd.Update.StepStatus[0])
}

func TestInterpreterEvictsOversizedOutput(t *testing.T) {
	store, err := contentstore.NewFSStore(t.TempDir())
	require.NoError(t, err)

	interpret := nodes.NewInterpreter(&nodes.Deps{ContentStore: store})

	state := newPlanState("step one")
	state.LastToolResult = graph.Succeeded(strings.Repeat("x", 11_000))

	cmd, err := interpret(context.Background(), state)
	require.NoError(t, err)
	result := cmd.Update.LastToolResult
	require.True(t, result.Evicted)
	require.NotNil(t, result.Pointer)
	require.Contains(t, result.Output, "[EVICTED size=11000]")
	require.NotNil(t, result.Summary)
	require.LessOrEqual(t, len(*result.Summary), 501)
	require.True(t, result.RehydrationAllowed)
}

func TestInterpreterHandlesMissingToolResult(t *testing.T) {
	interpret := nodes.NewInterpreter(&nodes.Deps{})

	state := newPlanState("step one")
	cmd, err := interpret(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.StepFailed, cmd.Update.StepStatus[0])
}
