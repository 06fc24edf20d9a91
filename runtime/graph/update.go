package graph

// Update is a partial WorkingState produced by a node. Nil-pointer and
// nil-map/slice fields mean "leave unchanged"; Messages is special-cased to
// append rather than replace. A node that wants to clear proposed_tool or
// last_tool_result explicitly sets the corresponding Clear* flag, since a
// nil pointer already means "no change" and can't also mean "clear".
type Update struct {
	Intent *Intent

	AppendMessages []Message

	Plan        []string
	ClearPlan   bool
	CurrentStep *int
	StepStatus  map[int]StepStatus
	Tries       map[int]int

	ProposedTool      *ProposedTool
	ClearProposedTool bool

	LastToolResult      *ToolResult
	ClearLastToolResult bool

	AwaitingUserInput *bool
	Question          *string
	ClearQuestion     bool

	AwaitingApproval *bool
	Approval         *ApprovalRecord
	ClearApproval    bool

	DoNotStore *bool

	AppendSecurityFindings []SecurityFinding
	AppendAuditTrail       []string

	Authenticated *bool
	RetryDecision *string
}

// apply merges u into s per the field-specific reducer rules in spec.md §4.1:
// messages append-only, everything else replace-on-present.
func apply(s WorkingState, u Update) WorkingState {
	if u.Intent != nil {
		s.Intent = *u.Intent
	}
	if len(u.AppendMessages) > 0 {
		s.Messages = append(append([]Message{}, s.Messages...), u.AppendMessages...)
	}
	if u.ClearPlan {
		s.Plan = nil
	} else if u.Plan != nil {
		s.Plan = u.Plan
	}
	if u.CurrentStep != nil {
		s.CurrentStep = *u.CurrentStep
	}
	if u.StepStatus != nil {
		merged := make(map[int]StepStatus, len(s.StepStatus)+len(u.StepStatus))
		for k, v := range s.StepStatus {
			merged[k] = v
		}
		for k, v := range u.StepStatus {
			merged[k] = v
		}
		s.StepStatus = merged
	}
	if u.Tries != nil {
		merged := make(map[int]int, len(s.Tries)+len(u.Tries))
		for k, v := range s.Tries {
			merged[k] = v
		}
		for k, v := range u.Tries {
			merged[k] = v
		}
		s.Tries = merged
	}
	if u.ClearProposedTool {
		s.ProposedTool = nil
	} else if u.ProposedTool != nil {
		s.ProposedTool = u.ProposedTool
	}
	if u.ClearLastToolResult {
		s.LastToolResult = nil
	} else if u.LastToolResult != nil {
		s.LastToolResult = u.LastToolResult
	}
	if u.AwaitingUserInput != nil {
		s.AwaitingUserInput = *u.AwaitingUserInput
	}
	if u.ClearQuestion {
		s.Question = nil
	} else if u.Question != nil {
		s.Question = u.Question
	}
	if u.AwaitingApproval != nil {
		s.AwaitingApproval = *u.AwaitingApproval
	}
	if u.ClearApproval {
		s.Approval = nil
	} else if u.Approval != nil {
		s.Approval = u.Approval
	}
	if u.DoNotStore != nil {
		s.DoNotStore = *u.DoNotStore
	}
	if len(u.AppendSecurityFindings) > 0 {
		s.SecurityFindings = append(append([]SecurityFinding{}, s.SecurityFindings...), u.AppendSecurityFindings...)
	}
	if len(u.AppendAuditTrail) > 0 {
		s.AuditTrail = append(append([]string{}, s.AuditTrail...), u.AppendAuditTrail...)
	}
	if u.Authenticated != nil {
		s.Authenticated = *u.Authenticated
	}
	if u.RetryDecision != nil {
		s.RetryDecision = *u.RetryDecision
	}
	return s
}

// BoolPtr is a small helper for constructing Update literals without a
// local variable for every flag flip.
func BoolPtr(b bool) *bool { return &b }

// StringPtr mirrors BoolPtr for string fields.
func StringPtr(s string) *string { return &s }

// IntPtr mirrors BoolPtr for int fields.
func IntPtr(i int) *int { return &i }

// IntentPtr mirrors BoolPtr for Intent fields.
func IntentPtr(i Intent) *Intent { return &i }
