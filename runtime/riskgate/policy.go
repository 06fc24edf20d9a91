// Package riskgate implements C3 RiskGate's policy evaluation: the 9-layer
// priority table from spec.md §4.2, grounded on the original RiskEngine
// (security/engine.py).
package riskgate

import (
	"strings"

	"github.com/zerotrust-agents/agentrt/runtime/dlp"
	"github.com/zerotrust-agents/agentrt/runtime/validator"
)

// Decision is the outcome of a policy evaluation.
type Decision string

const (
	Allow        Decision = "ALLOW"
	AuthRequired Decision = "AUTH_REQUIRED"
	Blocked      Decision = "BLOCKED"
)

// AuthClass names the strength of authentication AUTH_REQUIRED demands.
type AuthClass string

const (
	AuthNone      AuthClass = "none"
	AuthSimple    AuthClass = "simple"
	AuthStrong    AuthClass = "strong"
	AuthBiometric AuthClass = "biometric"
)

// RiskLevel mirrors the original RiskAssessment.level classification, used
// for audit logging and metrics, not for routing (Decision drives routing).
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Assessment is the full result of evaluating one proposed tool call.
type Assessment struct {
	Decision  Decision
	Level     RiskLevel
	Reason    string
	AuthClass AuthClass
	// Decoy carries the active-defense payload surfaced by Finalizer when
	// Panic is set (SPEC_FULL.md §12, ported from override_response).
	Decoy string
	Panic bool
}

// Policy holds the static policy configuration (tool classifications and
// honeypot lists) plus its DLP collaborator.
type Policy struct {
	SensitiveFiles []string
	HighRiskTools  []string
	CriticalTools  []string
	HoneyFiles     []string
	HoneyTokens    []string

	FilesystemTools []string
	WriteTools      []string

	Scanner dlp.Scanner
}

// DefaultPolicy returns the policy table grounded on the original
// RiskEngine's hard-coded lists.
func DefaultPolicy(scanner dlp.Scanner) *Policy {
	return &Policy{
		SensitiveFiles:  []string{".env", "id_rsa", "credentials.json", "secrets.yaml"},
		HighRiskTools:   []string{"run_command", "send_email", "delete_file"},
		CriticalTools:   []string{"deploy_production", "access_database_admin"},
		HoneyFiles:      []string{"admin_backup.json", "prod_db_credentials.yaml", ".aws/credentials.bak"},
		HoneyTokens:     []string{"sk-admin-canary-token-999", "ghp_fake_github_token_for_trap"},
		FilesystemTools: []string{"read_file", "write_file", "edit_file", "list_dir"},
		WriteTools:      []string{"write_file", "edit_file"},
		Scanner:         scanner,
	}
}

const decoyPayload = `
☣ LICHVIRUS SYSTEM DEFENSE ☣

[CRITICAL SECURITY EVENT]
-------------------------
Compromise Detected: HONEYPOT_TRIGGER
Source IP: LOGGED
Counter-measures: ACTIVE
`

const honeytokenDecoy = " *** SECURITY ALERT *** \nYour IP has been logged. Counter-measures initiated."

// Input bundles everything the policy evaluator needs for one decision.
type Input struct {
	ToolName      string
	Args          map[string]any
	Authenticated bool
	SandboxRoot   string
}

// Evaluate runs the 9-layer priority table in order, first match wins,
// exactly as spec.md §4.2 describes. Layer 0 (honeytoken) is checked first
// and unconditionally, ahead of every other rule, matching the original's
// separate honeytoken pre-check in evaluate_risk before _internal_evaluate.
func (p *Policy) Evaluate(in Input) Assessment {
	if tok, found := p.findHoneytoken(in.Args); found {
		return Assessment{
			Decision:  Blocked,
			Level:     RiskCritical,
			Reason:    "INTRUSION ALERT: honeytoken '" + tok + "' used",
			AuthClass: AuthBiometric,
			Decoy:     honeytokenDecoy,
			Panic:     true,
		}
	}
	return p.evaluateRemaining(in)
}

func (p *Policy) evaluateRemaining(in Input) Assessment {
	// Layer 1: critical tool set.
	if contains(p.CriticalTools, in.ToolName) {
		return Assessment{
			Decision:  AuthRequired,
			Level:     RiskCritical,
			Reason:    "tool '" + in.ToolName + "' is classified as CRITICAL",
			AuthClass: AuthBiometric,
		}
	}

	if contains(p.FilesystemTools, in.ToolName) {
		if assessment, matched := p.evaluateFilesystem(in); matched {
			return assessment
		}
	}

	// Layer 7: general high-risk tool set.
	if contains(p.HighRiskTools, in.ToolName) {
		return Assessment{
			Decision:  AuthRequired,
			Level:     RiskHigh,
			Reason:    "tool '" + in.ToolName + "' is HIGH RISK",
			AuthClass: AuthStrong,
		}
	}

	// Layer 8: default.
	return Assessment{Decision: Allow, Level: RiskLow, Reason: "routine action", AuthClass: AuthNone}
}

func (p *Policy) evaluateFilesystem(in Input) (Assessment, bool) {
	path, _ := validator.FindPathArg(in.Args)

	// Layer 2: honeyfile.
	if hf, found := p.findHoneyfile(path); found {
		return Assessment{
			Decision:  Blocked,
			Level:     RiskCritical,
			Reason:    "INTRUSION ALERT: honeyfile '" + hf + "' accessed",
			AuthClass: AuthBiometric,
			Decoy:     decoyPayload,
			Panic:     true,
		}, true
	}

	// Layer 3: sandbox violation while unauthenticated.
	if !in.Authenticated && !isSafePath(in.SandboxRoot, path) {
		return Assessment{
			Decision:  Blocked,
			Level:     RiskCritical,
			Reason:    "SANDBOX VIOLATION: access to '" + path + "' blocked (unauthenticated)",
			AuthClass: AuthBiometric,
		}, true
	}

	// Layer 4: sensitive file.
	if sf, found := p.findSensitiveFile(path); found {
		return Assessment{
			Decision:  AuthRequired,
			Level:     RiskHigh,
			Reason:    "access to sensitive file '" + sf + "' detected",
			AuthClass: AuthStrong,
		}, true
	}

	// Layers 5/6: DLP on write/edit content.
	if contains(p.WriteTools, in.ToolName) {
		if content, ok := findContentArg(in.Args); ok && content != "" && p.Scanner != nil {
			if findings := p.Scanner.ScanSecrets(content); len(findings) > 0 {
				return Assessment{
					Decision:  Blocked,
					Level:     RiskCritical,
					Reason:    "DLP: secret detected in write content",
					AuthClass: AuthBiometric,
				}, true
			}
			if _, findings := p.Scanner.SanitizePII(content); len(findings) > 0 {
				return Assessment{
					Decision:  AuthRequired,
					Level:     RiskMedium,
					Reason:    "DLP: PII detected in write content",
					AuthClass: AuthSimple,
				}, true
			}
		}
	}

	return Assessment{}, false
}

func (p *Policy) findHoneytoken(args map[string]any) (string, bool) {
	haystack := flattenArgsForSearch(args)
	for _, tok := range p.HoneyTokens {
		if strings.Contains(haystack, tok) {
			return tok, true
		}
	}
	return "", false
}

func (p *Policy) findHoneyfile(path string) (string, bool) {
	for _, hf := range p.HoneyFiles {
		if path != "" && strings.Contains(path, hf) {
			return hf, true
		}
	}
	return "", false
}

func (p *Policy) findSensitiveFile(path string) (string, bool) {
	for _, sf := range p.SensitiveFiles {
		if path != "" && strings.Contains(path, sf) {
			return sf, true
		}
	}
	return "", false
}

// isSafePath enforces sandboxing directly via the validator's path rules;
// any error (outside sandbox, traversal, absolute, etc.) is "unsafe".
func isSafePath(sandboxRoot, path string) bool {
	if path == "" {
		return true
	}
	v := validator.New(sandboxRoot, nil)
	return v.ValidatePath(path) == nil
}

func findContentArg(args map[string]any) (string, bool) {
	for _, key := range []string{"content", "CodeContent", "ReplacementContent"} {
		if raw, ok := args[key]; ok {
			if s, ok := raw.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// flattenArgsForSearch concatenates every string-typed value found anywhere
// in args (including nested maps/slices) so honeytoken substrings are
// caught regardless of which argument field carries them, matching the
// original's coarse str(args) substring search.
func flattenArgsForSearch(v any) string {
	var b strings.Builder
	flattenInto(&b, v)
	return b.String()
}

func flattenInto(b *strings.Builder, v any) {
	switch val := v.(type) {
	case string:
		b.WriteString(val)
		b.WriteByte(' ')
	case map[string]any:
		for _, item := range val {
			flattenInto(b, item)
		}
	case []any:
		for _, item := range val {
			flattenInto(b, item)
		}
	}
}
