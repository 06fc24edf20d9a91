package nodes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/nodes"
)

func TestRouterConversationGoesToFinalizer(t *testing.T) {
	route := nodes.NewRouter(&nodes.Deps{})
	state := graph.NewWorkingState("t1", "u1")
	state.Intent = graph.IntentConversation

	cmd, err := route(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeFinalizer, cmd.Goto)
}

func TestRouterTaskWithEmptyPlanGoesToPlanner(t *testing.T) {
	route := nodes.NewRouter(&nodes.Deps{})
	state := graph.NewWorkingState("t1", "u1")
	state.Intent = graph.IntentTask

	cmd, err := route(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodePlanner, cmd.Goto)
}

func TestRouterTaskWithExistingPlanGoesToSupervisor(t *testing.T) {
	route := nodes.NewRouter(&nodes.Deps{})
	state := graph.NewWorkingState("t1", "u1")
	state.Intent = graph.IntentTask
	state.Plan = []string{"step one"}

	cmd, err := route(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeSupervisor, cmd.Goto)
}

func TestRouterAwaitingApprovalWithApprovalReplyGoesToApprovalHandler(t *testing.T) {
	route := nodes.NewRouter(&nodes.Deps{})
	state := graph.NewWorkingState("t1", "u1")
	state.AwaitingApproval = true
	state.Messages = append(state.Messages, graph.Message{Role: graph.RoleUser, Content: "APPROVE auth_abcd1234 v1.1.aa.bb"})

	cmd, err := route(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeApprovalHandler, cmd.Goto)
}

func TestRouterAwaitingApprovalWithUnrelatedReplyGoesToSupervisor(t *testing.T) {
	route := nodes.NewRouter(&nodes.Deps{})
	state := graph.NewWorkingState("t1", "u1")
	state.AwaitingApproval = true
	state.Messages = append(state.Messages, graph.Message{Role: graph.RoleUser, Content: "what is happening?"})

	cmd, err := route(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeSupervisor, cmd.Goto)
}

func TestRouterAwaitingUserInputGoesToSupervisor(t *testing.T) {
	route := nodes.NewRouter(&nodes.Deps{})
	state := graph.NewWorkingState("t1", "u1")
	state.AwaitingUserInput = true

	cmd, err := route(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeSupervisor, cmd.Goto)
}

func TestRouterAwaitingUserInputWithUnrelatedReplyGoesToSupervisorWithoutDecision(t *testing.T) {
	route := nodes.NewRouter(&nodes.Deps{})
	state := graph.NewWorkingState("t1", "u1")
	state.AwaitingUserInput = true
	state.Messages = append(state.Messages, graph.Message{Role: graph.RoleUser, Content: "why did it fail?"})

	cmd, err := route(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeSupervisor, cmd.Goto)
	require.Nil(t, cmd.Update.RetryDecision)
}

func TestRouterAwaitingUserInputWithRetryReplyExtractsDecision(t *testing.T) {
	route := nodes.NewRouter(&nodes.Deps{})
	state := graph.NewWorkingState("t1", "u1")
	state.AwaitingUserInput = true
	state.Messages = append(state.Messages, graph.Message{Role: graph.RoleUser, Content: "retry"})

	cmd, err := route(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, graph.NodeSupervisor, cmd.Goto)
	require.NotNil(t, cmd.Update.RetryDecision)
	require.Equal(t, "RETRY", *cmd.Update.RetryDecision)
}
