package nodes

import (
	"regexp"
	"strings"
)

// Approval grammar, ported from original_source's RE_APROBAR/RE_RECHAZAR
// with English verbs per spec.md §4.2 ("APPROVE <id> <token>" / "REJECT
// <id>").
var (
	rejectPattern  = regexp.MustCompile(`(?i)^REJECT\s+([A-Za-z0-9_-]{6,})\s*$`)
	approvePattern = regexp.MustCompile(`(?i)^APPROVE\s+([A-Za-z0-9_-]{6,})\s+([A-Za-z0-9._-]{10,})\s*$`)
)

// retryDecisionPattern recognizes the RETRY/SKIP/CANCEL continuation
// grammar offered after a retry-exhausted question (SPEC_FULL.md §12,
// ported from supervisor.py's REINTENTAR/OMITIR/CANCELAR options with
// English verbs).
var retryDecisionPattern = regexp.MustCompile(`(?i)^(RETRY|SKIP|CANCEL)\s*$`)

// matchReject reports whether msg is a REJECT <id> reply, returning id.
func matchReject(msg string) (id string, ok bool) {
	m := rejectPattern.FindStringSubmatch(strings.TrimSpace(msg))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// matchApprove reports whether msg is an APPROVE <id> <token> reply.
func matchApprove(msg string) (id, token string, ok bool) {
	m := approvePattern.FindStringSubmatch(strings.TrimSpace(msg))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// isApprovalReply reports whether msg matches either approval grammar, used
// by Router to decide whether to enter ApprovalHandler.
func isApprovalReply(msg string) bool {
	clean := strings.TrimSpace(msg)
	return rejectPattern.MatchString(clean) || approvePattern.MatchString(clean)
}

// matchRetryDecision extracts a normalized RETRY/SKIP/CANCEL decision, or
// ok=false if msg doesn't match.
func matchRetryDecision(msg string) (decision string, ok bool) {
	m := retryDecisionPattern.FindStringSubmatch(strings.TrimSpace(msg))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}
