package nodes_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/audit"
	"github.com/zerotrust-agents/agentrt/runtime/canonical"
	"github.com/zerotrust-agents/agentrt/runtime/dlp/regexscanner"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/nodes"
	"github.com/zerotrust-agents/agentrt/runtime/riskgate"
)

func newAuditLog(t *testing.T) *audit.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, err := audit.New(audit.NewJSONLSink(path))
	require.NoError(t, err)
	return log
}

func stateWithProposedTool(name string, args map[string]any) graph.WorkingState {
	state := newPlanState("step one")
	canonicalArgs, hash, _ := canonical.CanonicalizeAndHash(args)
	state.ProposedTool = &graph.ProposedTool{
		Name:          name,
		Args:          args,
		CanonicalArgs: canonicalArgs,
		ArgsHash:      hash,
		ToolCallID:    "tc-1",
		StepIdx:       0,
		CreatedAt:     time.Now(),
	}
	return state
}

func TestRiskGateAllowsRoutineTool(t *testing.T) {
	gate := nodes.NewRiskGate(&nodes.Deps{
		Policy: riskgate.DefaultPolicy(regexscanner.New()),
		Audit:  newAuditLog(t),
	})

	state := stateWithProposedTool("list_dir", map[string]any{"directory": "."})
	cmd, err := gate(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeTools, cmd.Goto)
}

func TestRiskGateRequiresApprovalForHighRiskTool(t *testing.T) {
	gate := nodes.NewRiskGate(&nodes.Deps{
		Policy: riskgate.DefaultPolicy(regexscanner.New()),
		Audit:  newAuditLog(t),
	})

	state := stateWithProposedTool("run_command", map[string]any{"cmd": "ls"})
	cmd, err := gate(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeAwaitApproval, cmd.Goto)
	require.True(t, *cmd.Update.AwaitingApproval)
	require.NotNil(t, cmd.Update.Approval)
	require.NotEmpty(t, cmd.Update.Approval.ApprovalID)
}

func TestRiskGateBlocksHoneytoken(t *testing.T) {
	gate := nodes.NewRiskGate(&nodes.Deps{
		Policy: riskgate.DefaultPolicy(regexscanner.New()),
		Audit:  newAuditLog(t),
	})

	state := stateWithProposedTool("read_file", map[string]any{"path": "sk-admin-canary-token-999"})
	cmd, err := gate(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeInterpreter, cmd.Goto)
	require.Equal(t, graph.ToolResultFailed, cmd.Update.LastToolResult.Status)
	require.Contains(t, cmd.Update.LastToolResult.Output, "SECURITY ALERT")
}

func TestRiskGateFailsOnMissingProposedTool(t *testing.T) {
	gate := nodes.NewRiskGate(&nodes.Deps{
		Policy: riskgate.DefaultPolicy(regexscanner.New()),
		Audit:  newAuditLog(t),
	})

	state := newPlanState("step one")
	cmd, err := gate(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeInterpreter, cmd.Goto)
	require.Equal(t, graph.ToolResultFailed, cmd.Update.LastToolResult.Status)
}
