package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/idempotency"
)

func TestKeyIsDeterministic(t *testing.T) {
	k1 := idempotency.Key("thread1", 2, "hash1")
	k2 := idempotency.Key("thread1", 2, "hash1")
	require.Equal(t, k1, k2)

	k3 := idempotency.Key("thread1", 3, "hash1")
	require.NotEqual(t, k1, k3)
}

func TestInMemoryStoreGetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := idempotency.NewInMemoryStore()
	defer store.Close()

	key := idempotency.Key("t1", 0, "h1")

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, key, "cached-result", time.Minute))

	val, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "cached-result", val)
}

func TestInMemoryStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	store := idempotency.NewInMemoryStore()
	defer store.Close()

	key := idempotency.Key("t1", 0, "h1")
	require.NoError(t, store.Set(ctx, key, "v", time.Millisecond))

	time.Sleep(5 * time.Millisecond)

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, found)
}
