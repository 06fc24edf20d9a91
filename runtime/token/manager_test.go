package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/token"
)

func newTestManager(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.New(token.Config{Secret: strings.Repeat("x", 32)})
	require.NoError(t, err)
	return m
}

func TestNewRejectsEmptySecret(t *testing.T) {
	_, err := token.New(token.Config{Secret: ""})
	require.ErrorIs(t, err, token.ErrEmptySecret)
}

func TestNewRejectsWeakSecret(t *testing.T) {
	_, err := token.New(token.Config{Secret: "tooshort"})
	require.ErrorIs(t, err, token.ErrWeakSecret)
}

func TestNewAllowsDevSentinelInDevelopment(t *testing.T) {
	_, err := token.New(token.Config{Secret: token.DevSecretSentinel, Development: true})
	require.NoError(t, err)
}

func TestNewRejectsDevSentinelOutsideDevelopment(t *testing.T) {
	_, err := token.New(token.Config{Secret: token.DevSecretSentinel})
	require.ErrorIs(t, err, token.ErrWeakSecret)
}

func TestSignAndVerifyAndConsumeRoundTrip(t *testing.T) {
	m := newTestManager(t)
	payload := "thread1:user1:abc123"

	tok, err := m.Sign(payload)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(tok, "v1."))

	require.True(t, m.VerifyAndConsume(tok, payload))
}

func TestVerifyAndConsumeIsSingleUse(t *testing.T) {
	m := newTestManager(t)
	payload := "thread1:user1:abc123"

	tok, err := m.Sign(payload)
	require.NoError(t, err)

	require.True(t, m.VerifyAndConsume(tok, payload))
	require.False(t, m.VerifyAndConsume(tok, payload), "second consumption of the same token must fail")
}

func TestVerifyAndConsumeRejectsWrongPayload(t *testing.T) {
	m := newTestManager(t)
	tok, err := m.Sign("thread1:user1:abc123")
	require.NoError(t, err)

	require.False(t, m.VerifyAndConsume(tok, "thread1:user1:WRONGHASH"))
}

func TestVerifyAndConsumeRejectsBitFlippedSignature(t *testing.T) {
	m := newTestManager(t)
	payload := "thread1:user1:abc123"
	tok, err := m.Sign(payload)
	require.NoError(t, err)

	// Flip the last hex character of the signature.
	flipped := tok[:len(tok)-1]
	if tok[len(tok)-1] == '0' {
		flipped += "1"
	} else {
		flipped += "0"
	}
	require.False(t, m.VerifyAndConsume(flipped, payload))
}

func TestVerifyAndConsumeRejectsExpiredToken(t *testing.T) {
	m, err := token.New(token.Config{Secret: strings.Repeat("x", 32), MaxAge: 1 * time.Nanosecond})
	require.NoError(t, err)

	payload := "thread1:user1:abc123"
	tok, err := m.Sign(payload)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	require.False(t, m.VerifyAndConsume(tok, payload))
}

func TestVerifySignatureDoesNotConsume(t *testing.T) {
	m := newTestManager(t)
	payload := "thread1:user1:abc123"
	tok, err := m.Sign(payload)
	require.NoError(t, err)

	require.True(t, m.VerifySignature(tok, payload))
	require.True(t, m.VerifySignature(tok, payload), "verify-only must be repeatable")
	require.True(t, m.VerifyAndConsume(tok, payload), "verify-only must not have burned the single use")
}

func TestVerifyAndConsumeRejectsMalformedToken(t *testing.T) {
	m := newTestManager(t)
	require.False(t, m.VerifyAndConsume("garbage", "payload"))
	require.False(t, m.VerifyAndConsume("v2.123.nonce.sig", "payload"))
}
