package nodes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/nodes"
)

func TestParseLLMJSONFencedBlock(t *testing.T) {
	text := "Here you go:\n```json\n{\"plan\": [\"a\", \"b\"]}\n```\n"
	got := nodes.ParseLLMJSONForTest(text, nil)
	require.Equal(t, []any{"a", "b"}, got["plan"])
}

func TestParseLLMJSONBareObject(t *testing.T) {
	got := nodes.ParseLLMJSONForTest(`{"name": "read_file", "args": {"path": "a"}}`, nil)
	require.Equal(t, "read_file", got["name"])
}

func TestParseLLMJSONLargestBalancedCandidate(t *testing.T) {
	text := `noise {"a":1} then the real one {"plan": ["step one", "step two"]} trailing`
	got := nodes.ParseLLMJSONForTest(text, nil)
	require.Contains(t, got, "plan")
}

func TestParseLLMJSONFallsBackOnGarbage(t *testing.T) {
	fallback := map[string]any{"plan": []any{"goal"}}
	got := nodes.ParseLLMJSONForTest("not json at all", fallback)
	require.Equal(t, fallback, got)
}

func TestApprovalGrammar(t *testing.T) {
	id, tok, ok := nodes.MatchApproveForTest("APPROVE auth_deadbeef v1.123.abc123.def456abcdef")
	require.True(t, ok)
	require.Equal(t, "auth_deadbeef", id)
	require.Equal(t, "v1.123.abc123.def456abcdef", tok)

	rid, ok := nodes.MatchRejectForTest("REJECT auth_deadbeef")
	require.True(t, ok)
	require.Equal(t, "auth_deadbeef", rid)

	require.True(t, nodes.IsApprovalReplyForTest("approve auth_deadbeef v1.123.abc123.def456abcdef"))
	require.False(t, nodes.IsApprovalReplyForTest("something else"))
}

func TestRetryDecisionGrammar(t *testing.T) {
	d, ok := nodes.MatchRetryDecisionForTest("retry")
	require.True(t, ok)
	require.Equal(t, "RETRY", d)

	_, ok = nodes.MatchRetryDecisionForTest("maybe later")
	require.False(t, ok)
}
