// Package engineregistry implements C6: lifecycle management for per-agent
// execution engines (spec.md §4.6). An engine is expensive to build (it
// compiles a node registry and wires every collaborator in runtime/nodes.Deps
// for one agent), so the registry creates one lazily per agent name, caches
// it behind a per-agent mutex, and prunes it after a period of disuse.
//
// Grounded on itsneelabh-gomind/ai.ProviderRegistry's registry-level-lock
// pattern for map mutation, generalized with the per-agent mutex spec.md
// requires for safe concurrent create/prune/use (ProviderRegistry never
// closes a provider, so it gets away with a single RWMutex; an Engine can be
// expensive to tear down, so each one needs its own lock to serialize
// initialization against pruning).
package engineregistry

import (
	"context"
	"sync"
	"time"

	"github.com/zerotrust-agents/agentrt/runtime/agent"
	"github.com/zerotrust-agents/agentrt/runtime/engine"
)

// Loader constructs the Engine for agentName, collapsing spec.md's
// "agent-definition loader + engine initializer" pair into a single
// injected function: this module does not yet model agent definitions as a
// first-class type, so the caller's Loader is free to look one up from
// wherever agent definitions live and compile the resulting node registry.
type Loader func(ctx context.Context, agentName agent.Ident) (engine.Engine, error)

// closer is satisfied by engine backends that hold resources worth
// releasing on eviction (e.g. a temporalengine.Engine closing its client).
// inmemengine.Engine does not implement it; Registry treats that as a no-op
// close rather than requiring every backend to grow a stub method.
type closer interface {
	Close() error
}

// entry is the per-agent cache slot. Its mutex is the "per-agent mutex"
// spec.md refers to: GetEngine holds it across the check-construct-cache
// sequence, and Prune holds it across the check-close sequence, so the two
// can never observe or act on an engine mid-transition.
type entry struct {
	mu       sync.Mutex
	eng      engine.Engine
	lastUsed time.Time
	closed   bool
}

// Registry is the C6 EngineRegistry.
type Registry struct {
	loader Loader
	now    func() time.Time

	mu      sync.Mutex
	entries map[agent.Ident]*entry
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithClock overrides the registry's time source. Tests use this to make
// idle-time pruning deterministic.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New builds a Registry that constructs engines on demand via loader.
func New(loader Loader, opts ...Option) *Registry {
	r := &Registry{
		loader:  loader,
		now:     time.Now,
		entries: make(map[agent.Ident]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetEngine returns the cached engine for agentName, constructing it via the
// registry's Loader on first use (or after a prior one was pruned). A failed
// construction is propagated to the caller and never cached: the next call
// retries the loader from scratch.
//
// The registry-level mutex guards only map membership; the per-agent mutex
// on the resulting entry guards everything about that one agent's engine,
// so two concurrent GetEngine calls for the same agent block on each other
// rather than racing to construct two engines, and a concurrent Prune can
// never observe an engine half-constructed.
func (r *Registry) GetEngine(ctx context.Context, agentName agent.Ident) (engine.Engine, error) {
	for {
		e := r.entryFor(agentName)

		e.mu.Lock()
		if e.closed {
			// Pruned (or reloaded) between us fetching the pointer and
			// locking it; the map slot has already been, or is about to be,
			// discarded. Retry the lookup so we land on a fresh entry.
			e.mu.Unlock()
			continue
		}
		if e.eng == nil {
			eng, err := r.loader(ctx, agentName)
			if err != nil {
				e.mu.Unlock()
				return nil, err
			}
			e.eng = eng
		}
		e.lastUsed = r.now()
		eng := e.eng
		e.mu.Unlock()
		return eng, nil
	}
}

// entryFor returns the cache slot for agentName, creating one if absent.
func (r *Registry) entryFor(agentName agent.Ident) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[agentName]
	if !ok {
		e = &entry{}
		r.entries[agentName] = e
	}
	return e
}

// Prune evicts every engine whose last use is older than ttl, closing each
// one (if it supports Close) under its own per-agent mutex before dropping
// the entry from the map. A GetEngine call racing a prune either completes
// entirely before the prune locks that agent's entry, or blocks until the
// prune finishes and transparently reconstructs a fresh engine.
func (r *Registry) Prune(ttl time.Duration) {
	now := r.now()
	for _, name := range r.agentNames() {
		e := r.entryAt(name)
		if e == nil {
			continue
		}

		e.mu.Lock()
		if e.closed || e.eng == nil || now.Sub(e.lastUsed) <= ttl {
			e.mu.Unlock()
			continue
		}
		closeEngine(e.eng)
		e.eng = nil
		e.closed = true
		e.mu.Unlock()

		r.discardIfCurrent(name, e)
	}
}

// ReloadAll closes every currently cached engine and clears the registry, so
// the next GetEngine call for any agent reconstructs from scratch. Used when
// agent definitions are reloaded out from under a running process.
func (r *Registry) ReloadAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[agent.Ident]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		if !e.closed && e.eng != nil {
			closeEngine(e.eng)
			e.eng = nil
		}
		e.closed = true
		e.mu.Unlock()
	}
}

func (r *Registry) agentNames() []agent.Ident {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]agent.Ident, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

func (r *Registry) entryAt(name agent.Ident) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[name]
}

// discardIfCurrent removes name's map entry, but only if it still points at
// e: a concurrent GetEngine may have already raced past the closed entry,
// looped, and installed a brand new one under the same name, which must not
// be deleted here.
func (r *Registry) discardIfCurrent(name agent.Ident, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.entries[name]; ok && cur == e {
		delete(r.entries, name)
	}
}

func closeEngine(eng engine.Engine) {
	if c, ok := eng.(closer); ok {
		_ = c.Close()
	}
}
