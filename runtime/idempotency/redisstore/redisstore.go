// Package redisstore implements idempotency.Store backed by Redis for
// multi-process deployments, per spec.md §4.5's "interface is designed so a
// distributed kv ... can back it unchanged."
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zerotrust-agents/agentrt/runtime/idempotency"
)

// Store implements idempotency.Store against a shared Redis instance.
// Values are JSON-encoded since the cached value (a *graph.ToolResult) must
// survive a round trip to a separate process.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

var _ idempotency.Store = (*Store)(nil)

// New wraps an existing Redis client.
func New(client *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = "agentrt:idempotency:"
	}
	return &Store{client: client, keyPrefix: keyPrefix}
}

// Get fetches and JSON-decodes the value stored under key into a
// map[string]any envelope (callers that need a concrete type should
// re-marshal/unmarshal it themselves, matching how a distributed cache
// necessarily loses Go-specific type information).
func (s *Store) Get(ctx context.Context, key string) (any, bool, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set JSON-encodes value and stores it with the given TTL via Redis's
// native expiry, so the 60s sweep spec.md §4.5 mentions is simply Redis's
// own eviction rather than a goroutine this package must run.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keyPrefix+key, raw, ttl).Err()
}
