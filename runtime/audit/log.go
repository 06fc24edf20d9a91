// Package audit implements the hash-chained security audit log consumed by
// RiskGate (and any other component recording a security-relevant
// decision). Grounded on the original AuditLogger (security/audit.py).
package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zerotrust-agents/agentrt/runtime/canonical"
)

// GenesisHash is the prev_hash value for the first record ever written: 64
// zero hex digits.
var GenesisHash = strings.Repeat("0", 64)

// Record is one audit log entry. Fields match spec.md §6 exactly.
type Record struct {
	Timestamp     float64        `json:"ts"`
	Event         string         `json:"event"`
	Details       map[string]any `json:"details"`
	Decision      string         `json:"decision"`
	Risk          string         `json:"risk"`
	PrevHash      string         `json:"prev_hash"`
	IntegrityHash string         `json:"integrity_hash"`
}

// Sink persists Records in append order. Sinks do not compute the hash
// chain themselves — Log does — they only durably store already-chained
// records and report the last one back on startup so the chain can resume.
type Sink interface {
	// Append durably stores r, which already has PrevHash/IntegrityHash set.
	Append(r Record) error
	// LastIntegrityHash returns the integrity_hash of the most recently
	// appended record, or GenesisHash if the sink is empty.
	LastIntegrityHash() (string, error)
}

// Log is the hash-chained audit logger (C3's collaborator). It is safe for
// concurrent use; appends are serialized by an internal mutex matching
// spec.md §5 ("single writer per process; the chain head is updated under a
// lock before each append").
type Log struct {
	mu       sync.Mutex
	sink     Sink
	lastHash string
	now      func() time.Time
}

// New constructs a Log over sink, recovering the chain head from the sink's
// last record (or GenesisHash if the sink is empty).
func New(sink Sink) (*Log, error) {
	last, err := sink.LastIntegrityHash()
	if err != nil {
		return nil, fmt.Errorf("audit: recovering chain head: %w", err)
	}
	if last == "" {
		last = GenesisHash
	}
	return &Log{sink: sink, lastHash: last, now: time.Now}, nil
}

// LogEvent appends one chained record. When redacted is true (the
// WorkingState.DoNotStore policy — see DESIGN.md's Open Question decision),
// details is replaced with {"redacted": true} before hashing and storage;
// event/decision/risk are always retained.
func (l *Log) LogEvent(event string, details map[string]any, decision, risk string, redacted bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if redacted {
		details = map[string]any{"redacted": true}
	}
	if details == nil {
		details = map[string]any{}
	}

	rec := Record{
		Timestamp: float64(l.now().UnixNano()) / 1e9,
		Event:     event,
		Details:   details,
		Decision:  decision,
		Risk:      risk,
		PrevHash:  l.lastHash,
	}

	hash, err := integrityHash(rec)
	if err != nil {
		return fmt.Errorf("audit: computing integrity hash: %w", err)
	}
	rec.IntegrityHash = hash

	if err := l.sink.Append(rec); err != nil {
		return fmt.Errorf("audit: appending record: %w", err)
	}
	l.lastHash = hash
	return nil
}

// integrityHash computes sha256 of the record with integrity_hash blanked,
// serialized as sorted-key JSON (canonical.Canonicalize), per spec.md §6.
func integrityHash(rec Record) (string, error) {
	rec.IntegrityHash = ""

	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return "", err
	}

	sorted, err := canonical.Canonicalize(asMap)
	if err != nil {
		return "", err
	}
	return canonical.Hash(sorted), nil
}

// VerifyChain re-derives every record's integrity hash and checks the
// prev_hash linkage, implementing invariant I6. It returns the index of the
// first broken record, or -1 if the whole chain verifies.
func VerifyChain(records []Record) int {
	prev := GenesisHash
	for i, rec := range records {
		if rec.PrevHash != prev {
			return i
		}
		want, err := integrityHash(rec)
		if err != nil || want != rec.IntegrityHash {
			return i
		}
		prev = rec.IntegrityHash
	}
	return -1
}
