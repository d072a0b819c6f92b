package locks

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// Canonical lock key builders. Every shared resource has exactly one key
// form; handlers never assemble key strings by hand.

func CharacterKey(characterID string) string { return "character:" + characterID }
func CreditKey(characterID string) string    { return "credit:" + characterID }
func KnowledgeKey(characterID string) string { return "knowledge:" + characterID }
func CombatKey(sectorID int) string          { return "combat:" + strconv.Itoa(sectorID) }
func PortKey(sectorID int) string            { return "port:" + strconv.Itoa(sectorID) }

// Manager is a keyed mutex registry. Locks are created on first use and
// reclaimed once the last waiter releases, so the registry stays bounded
// by the number of keys actually contended. There is no reentrance:
// double-acquiring a key from the same goroutine deadlocks by design of
// the callers' lock discipline, not of this type.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewManager creates an empty lock registry.
func NewManager() *Manager {
	return &Manager{entries: map[string]*entry{}}
}

// Guard is a scoped hold on one or more keys. Release is idempotent.
type Guard struct {
	once    sync.Once
	release func()
}

// Release frees every key held by the guard, in reverse acquisition order.
func (g *Guard) Release() {
	if g == nil {
		return
	}
	g.once.Do(g.release)
}

// Acquire blocks until the key is free or the context is done.
func (m *Manager) Acquire(ctx context.Context, key string) (*Guard, error) {
	return m.AcquireKeys(ctx, key)
}

// AcquireKeys takes a set of keys in canonical sort order, which keeps
// multi-key callers (credit transfers between two characters) free of
// lock-order deadlocks. Duplicate keys are collapsed.
func (m *Manager) AcquireKeys(ctx context.Context, keys ...string) (*Guard, error) {
	unique := dedupeSorted(keys)

	held := make([]string, 0, len(unique))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			m.unlock(held[i])
		}
	}

	for _, key := range unique {
		if err := m.lock(ctx, key); err != nil {
			releaseHeld()
			return nil, err
		}
		held = append(held, key)
	}
	return &Guard{release: releaseHeld}, nil
}

func (m *Manager) lock(ctx context.Context, key string) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return ctx.Err()
	}
}

func (m *Manager) unlock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	<-e.ch
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()
}

func dedupeSorted(keys []string) []string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, k := range sorted {
		if i == 0 || sorted[i-1] != k {
			out = append(out, k)
		}
	}
	return out
}
