package nodes

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zerotrust-agents/agentrt/runtime/graph"
	"github.com/zerotrust-agents/agentrt/runtime/riskgate"
)

const defaultApprovalTTL = 300 * time.Second // spec.md §4.2/§6 approval_ttl_seconds default

// NewRiskGate builds the RiskGate node (C3, spec.md §4.2): the only path to
// Tools. Recomputes integrity fields server-side, evaluates policy, and
// records every decision to the audit log.
func NewRiskGate(deps *Deps) graph.NodeFunc {
	return func(_ context.Context, state graph.WorkingState) (graph.Command, error) {
		tool := state.ProposedTool
		if tool == nil {
			return logAndRoute(deps, state, "risk_gate", "integrity_violation", "critical",
				failToInterpreter("system error: no tool proposed")), nil
		}

		if err := riskgate.CheckIntegrity(tool); err != nil {
			return logAndRoute(deps, state, "risk_gate", "integrity_violation", "critical",
				failToInterpreter(err.Error())), nil
		}

		assessment := deps.Policy.Evaluate(riskgate.Input{
			ToolName:      tool.Name,
			Args:          tool.Args,
			Authenticated: state.Authenticated,
			SandboxRoot:   deps.SandboxRoot,
		})

		finding := graph.SecurityFinding{
			Timestamp: deps.now(),
			Tool:      tool.Name,
			Decision:  string(assessment.Decision),
			Risk:      string(assessment.Level),
			Reason:    assessment.Reason,
		}

		switch assessment.Decision {
		case riskgate.Blocked:
			reason := assessment.Reason
			if assessment.Panic && assessment.Decoy != "" {
				reason = assessment.Decoy
			}
			cmd := failToInterpreter(reason)
			cmd.Update.AppendSecurityFindings = []graph.SecurityFinding{finding}
			return logAndRoute(deps, state, "risk_gate", "BLOCKED", string(assessment.Level), cmd), nil

		case riskgate.AuthRequired:
			approvalID, err := randomApprovalID()
			if err != nil {
				return graph.Command{}, fmt.Errorf("nodes: generating approval id: %w", err)
			}
			ttl := deps.ApprovalTTL
			if ttl <= 0 {
				ttl = defaultApprovalTTL
			}
			cmd := graph.Command{
				Update: graph.Update{
					AwaitingApproval: graph.BoolPtr(true),
					Approval: &graph.ApprovalRecord{
						ApprovalID:   approvalID,
						ApprovalHash: tool.ArgsHash,
						ExpiresAt:    deps.now().Add(ttl),
					},
					AppendSecurityFindings: []graph.SecurityFinding{finding},
				},
				Goto: graph.NodeAwaitApproval,
			}
			return logAndRoute(deps, state, "risk_gate", "AUTH_REQUIRED", string(assessment.Level), cmd), nil

		default: // Allow
			cmd := graph.Command{
				Update: graph.Update{AppendSecurityFindings: []graph.SecurityFinding{finding}},
				Goto:   graph.NodeTools,
			}
			return logAndRoute(deps, state, "risk_gate", "ALLOW", string(assessment.Level), cmd), nil
		}
	}
}

// randomApprovalID generates the spec'd "random 8 hex bytes" approval_id
// (spec.md §4.2 item 5), distinct from tool_call_id's uuid.NewString()
// (DESIGN.md's Open Question decision on the two ID formats).
func randomApprovalID() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "auth_" + hex.EncodeToString(buf), nil
}

func logAndRoute(deps *Deps, state graph.WorkingState, event, decision, risk string, cmd graph.Command) graph.Command {
	if deps.Audit != nil {
		details := map[string]any{
			"thread_id": state.ThreadID,
			"step_idx":  state.CurrentStep,
		}
		if state.ProposedTool != nil {
			details["tool"] = state.ProposedTool.Name
		}
		_ = deps.Audit.LogEvent(event, details, decision, risk, state.DoNotStore)
	}
	return cmd
}
