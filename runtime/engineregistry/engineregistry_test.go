package engineregistry_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zerotrust-agents/agentrt/runtime/agent"
	"github.com/zerotrust-agents/agentrt/runtime/engine"
	"github.com/zerotrust-agents/agentrt/runtime/engineregistry"
	"github.com/zerotrust-agents/agentrt/runtime/graph"
)

// stubEngine is a minimal engine.Engine that also tracks whether Close was
// called, so tests can assert eviction actually tears down the engine.
type stubEngine struct {
	id     int
	closed int32
}

var _ engine.Engine = (*stubEngine)(nil)

func (s *stubEngine) Run(_ context.Context, _ string, initial graph.WorkingState) (graph.WorkingState, error) {
	return initial, nil
}

func (s *stubEngine) Close() error {
	atomic.AddInt32(&s.closed, 1)
	return nil
}

func (s *stubEngine) isClosed() bool { return atomic.LoadInt32(&s.closed) > 0 }

// countingLoader returns a fresh *stubEngine on every call and records how
// many times it was invoked, so tests can assert the registry only builds
// one engine per agent per cache generation.
func countingLoader() (engineregistry.Loader, *int32) {
	var calls int32
	loader := func(_ context.Context, _ agent.Ident) (engine.Engine, error) {
		n := atomic.AddInt32(&calls, 1)
		return &stubEngine{id: int(n)}, nil
	}
	return loader, &calls
}

func TestGetEngineCachesAcrossCalls(t *testing.T) {
	loader, calls := countingLoader()
	reg := engineregistry.New(loader)

	first, err := reg.GetEngine(context.Background(), "support-agent")
	require.NoError(t, err)
	second, err := reg.GetEngine(context.Background(), "support-agent")
	require.NoError(t, err)

	require.Same(t, first, second)
	require.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestGetEngineBuildsSeparateEnginesPerAgent(t *testing.T) {
	loader, calls := countingLoader()
	reg := engineregistry.New(loader)

	a, err := reg.GetEngine(context.Background(), "agent-a")
	require.NoError(t, err)
	b, err := reg.GetEngine(context.Background(), "agent-b")
	require.NoError(t, err)

	require.NotSame(t, a, b)
	require.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestGetEngineSerializesConcurrentInitForSameAgent(t *testing.T) {
	var calls int32
	start := make(chan struct{})
	loader := func(_ context.Context, _ agent.Ident) (engine.Engine, error) {
		<-start
		atomic.AddInt32(&calls, 1)
		return &stubEngine{}, nil
	}
	reg := engineregistry.New(loader)

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := reg.GetEngine(context.Background(), "shared-agent")
			require.NoError(t, err)
		}()
	}

	// Give every goroutine a chance to block inside GetEngine before any
	// loader call is allowed to proceed; only one should ever reach it,
	// since the rest must be waiting on the per-agent mutex.
	time.Sleep(20 * time.Millisecond)
	close(start)
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGetEngineDoesNotCacheALoaderError(t *testing.T) {
	attempt := 0
	loader := func(_ context.Context, _ agent.Ident) (engine.Engine, error) {
		attempt++
		if attempt == 1 {
			return nil, errors.New("model unavailable")
		}
		return &stubEngine{}, nil
	}
	reg := engineregistry.New(loader)

	_, err := reg.GetEngine(context.Background(), "flaky-agent")
	require.Error(t, err)

	eng, err := reg.GetEngine(context.Background(), "flaky-agent")
	require.NoError(t, err)
	require.NotNil(t, eng)
	require.Equal(t, 2, attempt)
}

func TestPruneClosesIdleEngineAndForcesRebuild(t *testing.T) {
	loader, calls := countingLoader()
	now := time.Now()
	reg := engineregistry.New(loader, engineregistry.WithClock(func() time.Time { return now }))

	first, err := reg.GetEngine(context.Background(), "support-agent")
	require.NoError(t, err)
	firstStub := first.(*stubEngine)

	now = now.Add(10 * time.Minute)
	reg.Prune(5 * time.Minute)
	require.True(t, firstStub.isClosed())

	second, err := reg.GetEngine(context.Background(), "support-agent")
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestPruneLeavesRecentlyUsedEnginesAlone(t *testing.T) {
	loader, calls := countingLoader()
	now := time.Now()
	reg := engineregistry.New(loader, engineregistry.WithClock(func() time.Time { return now }))

	first, err := reg.GetEngine(context.Background(), "support-agent")
	require.NoError(t, err)

	now = now.Add(1 * time.Minute)
	reg.Prune(5 * time.Minute)

	second, err := reg.GetEngine(context.Background(), "support-agent")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestReloadAllClosesEveryEngineAndClearsCache(t *testing.T) {
	loader, calls := countingLoader()
	reg := engineregistry.New(loader)

	a, err := reg.GetEngine(context.Background(), "agent-a")
	require.NoError(t, err)
	b, err := reg.GetEngine(context.Background(), "agent-b")
	require.NoError(t, err)

	reg.ReloadAll()

	require.True(t, a.(*stubEngine).isClosed())
	require.True(t, b.(*stubEngine).isClosed())

	rebuiltA, err := reg.GetEngine(context.Background(), "agent-a")
	require.NoError(t, err)
	require.NotSame(t, a, rebuiltA)
	require.EqualValues(t, 3, atomic.LoadInt32(calls))
}
