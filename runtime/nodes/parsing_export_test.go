package nodes

// Exported test shims so the black-box nodes_test package can exercise
// unexported parsing/grammar helpers directly without duplicating them.

func ParseLLMJSONForTest(text string, fallback map[string]any) map[string]any {
	return parseLLMJSON(text, fallback)
}

func MatchApproveForTest(msg string) (string, string, bool) { return matchApprove(msg) }
func MatchRejectForTest(msg string) (string, bool)          { return matchReject(msg) }
func IsApprovalReplyForTest(msg string) bool                { return isApprovalReply(msg) }
func MatchRetryDecisionForTest(msg string) (string, bool)   { return matchRetryDecision(msg) }
