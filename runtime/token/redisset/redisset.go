// Package redisset provides a distributed implementation of
// token.UsedSet backed by Redis, satisfying spec.md §4.4's requirement that
// a multi-process deployment substitute a distributed single-use store with
// atomic set-if-absent + TTL.
package redisset

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zerotrust-agents/agentrt/runtime/token"
)

// Set implements token.UsedSet using Redis SETNX-with-TTL semantics
// (SET key value NX EX ttl), which is atomic server-side and therefore
// race-free across any number of processes sharing the same Redis instance.
type Set struct {
	client    *redis.Client
	keyPrefix string
}

var _ token.UsedSet = (*Set)(nil)

// New wraps an existing Redis client. keyPrefix namespaces tokens so the
// set can share a Redis instance with other consumers (e.g. the
// runtime/idempotency/redisstore package).
func New(client *redis.Client, keyPrefix string) *Set {
	if keyPrefix == "" {
		keyPrefix = "agentrt:token:used:"
	}
	return &Set{client: client, keyPrefix: keyPrefix}
}

// MarkIfAbsent issues SET key "1" NX EX ttl, which both checks presence and
// inserts atomically in a single Redis round trip.
func (s *Set) MarkIfAbsent(tok string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ok, err := s.client.SetNX(ctx, s.keyPrefix+tok, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
