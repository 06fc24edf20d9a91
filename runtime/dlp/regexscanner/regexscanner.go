// Package regexscanner is a reference implementation of dlp.Scanner using
// standard-library regular expressions. It is grounded on the original
// DLPProcessor (security/dlp.py) PII patterns, translated to Go; the
// original's secret-detection side calls out to Python's detect-secrets
// library, for which no importable Go equivalent is present anywhere in the
// retrieved example corpus (see DESIGN.md), so scanSecrets here instead
// matches a small set of well-known credential shapes (AWS keys, GitHub
// tokens, generic bearer/API-key-looking assignments, PEM private key
// blocks) directly via regexp.
package regexscanner

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/zerotrust-agents/agentrt/runtime/dlp"
)

type piiPattern struct {
	kind    string
	pattern *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{"EMAIL", regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`)},
	{"PCI_PAN", regexp.MustCompile(`(?:\d[ -]*?){13,16}`)},
	{"IPV4", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
}

var digitsOnly = regexp.MustCompile(`\D`)

type secretPattern struct {
	kind    string
	pattern *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"AWS Access Key", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"GitHub Token", regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`)},
	{"Generic Private Key", regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |)PRIVATE KEY-----`)},
	{"Slack Token", regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`)},
	{"Generic Assigned Secret", regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|password)\b\s*[:=]\s*['"]?[A-Za-z0-9/+=_-]{16,}['"]?`)},
}

// Scanner is the default regexp-backed dlp.Scanner.
type Scanner struct{}

var _ dlp.Scanner = Scanner{}

// New constructs a Scanner. It has no configuration; the pattern tables
// above are fixed.
func New() Scanner { return Scanner{} }

// ScanSecrets matches content against secretPatterns.
func (Scanner) ScanSecrets(content string) []dlp.Finding {
	var findings []dlp.Finding
	for _, p := range secretPatterns {
		if loc := p.pattern.FindStringIndex(content); loc != nil {
			findings = append(findings, dlp.Finding{
				Kind:   p.kind,
				Detail: fmt.Sprintf("matched at byte offset %d", loc[0]),
			})
		}
	}
	return findings
}

// SanitizePII walks piiPatterns in the order the original DLPProcessor does,
// replacing matches in reverse span order within each pattern so indices
// stay valid across a single pattern's replacements.
func (Scanner) SanitizePII(text string) (string, []dlp.Finding) {
	sanitized := text
	var findings []dlp.Finding

	for _, p := range piiPatterns {
		matches := p.pattern.FindAllStringIndex(sanitized, -1)
		for i := len(matches) - 1; i >= 0; i-- {
			start, end := matches[i][0], matches[i][1]
			value := sanitized[start:end]

			if p.kind == "PCI_PAN" {
				digits := digitsOnly.ReplaceAllString(value, "")
				if n := len(digits); n < 13 || n > 16 {
					continue
				}
			}

			token := "[REDACTED_" + p.kind + "]"
			sanitized = sanitized[:start] + token + sanitized[end:]
			findings = append(findings, dlp.Finding{
				Kind:   p.kind,
				Detail: "redacted at byte offset " + strconv.Itoa(start),
			})
		}
	}
	return sanitized, findings
}
