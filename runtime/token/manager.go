// Package token implements the HITL approval token scheme (C4
// TokenManager): short-lived, single-use HMAC-signed bearer tokens bound to
// an opaque payload string.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DevSecretSentinel is the only secret value permitted in development mode
// to bypass the minimum-length policy; it is rejected outright everywhere
// else.
const DevSecretSentinel = "dev-insecure-secret-do-not-use-in-prod"

const minSecretLen = 32

const tokenVersion = "v1"

var (
	// ErrEmptySecret is returned by New when secret is empty.
	ErrEmptySecret = errors.New("token: secret must not be empty")
	// ErrWeakSecret is returned by New when secret is shorter than 32 bytes
	// and isn't the development sentinel in a development environment.
	ErrWeakSecret = errors.New("token: secret must be at least 32 characters (or the dev sentinel, in development mode)")
)

// UsedSet is the single-use consumption backend. The in-memory
// implementation in this package is correct for one process; a multi-process
// deployment must substitute a distributed implementation (see
// runtime/token/redisset) satisfying the same interface.
type UsedSet interface {
	// MarkIfAbsent atomically checks whether token is already present and,
	// if not, inserts it with the given expiry. It returns true if the
	// insert happened (i.e. the token was previously unused).
	MarkIfAbsent(token string, expiresAt time.Time) (inserted bool, err error)
}

// Manager signs and verifies approval tokens.
type Manager struct {
	secret    []byte
	maxAge    time.Duration
	usedSet   UsedSet
	now       func() time.Time
	randomHex func(nBytes int) (string, error)
}

// Config configures a Manager.
type Config struct {
	Secret string
	// MaxAge is the default token lifetime accepted by VerifyAndConsume and
	// VerifySignature when the caller doesn't override it. Defaults to
	// 300s (spec.md §4.4's approval_ttl_seconds default).
	MaxAge time.Duration
	// Development relaxes the secret-strength policy to accept
	// DevSecretSentinel regardless of length.
	Development bool
	// UsedSet overrides the default in-memory used-token set. Supply a
	// distributed implementation for multi-process deployments.
	UsedSet UsedSet
}

// New validates secret per the secret policy (spec.md §4.4) and constructs
// a Manager. An empty or weak secret is always rejected except the
// development-sentinel case.
func New(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	isDevSentinel := cfg.Secret == DevSecretSentinel
	if len(cfg.Secret) < minSecretLen && !(cfg.Development && isDevSentinel) {
		return nil, ErrWeakSecret
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 300 * time.Second
	}

	usedSet := cfg.UsedSet
	if usedSet == nil {
		usedSet = newInMemoryUsedSet()
	}

	return &Manager{
		secret:    []byte(cfg.Secret),
		maxAge:    maxAge,
		usedSet:   usedSet,
		now:       time.Now,
		randomHex: randomHex,
	}, nil
}

// Sign produces a fresh token bound to payload: `v1.<ts>.<nonce>.<hmac>`.
func (m *Manager) Sign(payload string) (string, error) {
	nonce, err := m.randomHex(8)
	if err != nil {
		return "", fmt.Errorf("token: generating nonce: %w", err)
	}
	ts := m.now().Unix()
	sig := m.sign(ts, nonce, payload)
	return fmt.Sprintf("%s.%d.%s.%s", tokenVersion, ts, nonce, sig), nil
}

// VerifyAndConsume performs the single atomic check-and-mark described in
// spec.md §4.4: parse, version check, age check, constant-time signature
// compare, then check-and-insert into the used set. Any failure at any step
// returns false without marking the token used.
func (m *Manager) VerifyAndConsume(token, payload string) bool {
	ts, nonce, sig, ok := parseToken(token)
	if !ok {
		return false
	}
	if !m.signatureValid(ts, nonce, payload, sig) {
		return false
	}
	if m.now().Unix()-ts > int64(m.maxAge.Seconds()) {
		return false
	}

	expiresAt := time.Unix(ts, 0).Add(m.maxAge)
	inserted, err := m.usedSet.MarkIfAbsent(token, expiresAt)
	if err != nil {
		return false
	}
	return inserted
}

// VerifySignature performs every check VerifyAndConsume does except the
// used-set mutation: it never marks the token consumed. This is a
// diagnostics-only operation (SPEC_FULL.md §12) — callers must never use it
// to gate an ALLOW transition, since repeated calls do not exhaust the
// token's single use.
func (m *Manager) VerifySignature(token, payload string) bool {
	ts, nonce, sig, ok := parseToken(token)
	if !ok {
		return false
	}
	if !m.signatureValid(ts, nonce, payload, sig) {
		return false
	}
	return m.now().Unix()-ts <= int64(m.maxAge.Seconds())
}

func (m *Manager) signatureValid(ts int64, nonce, payload, sig string) bool {
	expected := m.sign(ts, nonce, payload)
	return hmac.Equal([]byte(expected), []byte(sig)) && subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) == 1
}

func (m *Manager) sign(ts int64, nonce, payload string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(fmt.Sprintf("%d:%s:%s", ts, nonce, payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

// parseToken splits a token of the form v1.<ts>.<nonce>.<sig> and validates
// the version marker.
func parseToken(token string) (ts int64, nonce, sig string, ok bool) {
	parts := strings.SplitN(token, ".", 4)
	if len(parts) != 4 {
		return 0, "", "", false
	}
	if parts[0] != tokenVersion {
		return 0, "", "", false
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", "", false
	}
	return ts, parts[2], parts[3], true
}

func randomHex(nBytes int) (string, error) {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// inMemoryUsedSet is the default single-process UsedSet: a mutex-guarded map
// from token to expiry, with opportunistic sweep on every mutation.
type inMemoryUsedSet struct {
	mu     sync.Mutex
	used   map[string]time.Time
	nowFn  func() time.Time
}

func newInMemoryUsedSet() *inMemoryUsedSet {
	return &inMemoryUsedSet{used: make(map[string]time.Time), nowFn: time.Now}
}

func (s *inMemoryUsedSet) MarkIfAbsent(token string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	s.sweepLocked(now)

	if exp, exists := s.used[token]; exists && exp.After(now) {
		return false, nil
	}
	s.used[token] = expiresAt
	return true, nil
}

// sweepLocked removes expired entries. Callers must hold s.mu.
func (s *inMemoryUsedSet) sweepLocked(now time.Time) {
	for tok, exp := range s.used {
		if !exp.After(now) {
			delete(s.used, tok)
		}
	}
}
