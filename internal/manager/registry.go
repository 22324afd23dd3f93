package manager

import (
	"sync"

	"github.com/exclave-go/exclave/internal/unit"
)

// registry is a per-kind table from unit.Name to a shared handle on the
// loaded unit. The manager task is the only mutator; lookups return the
// same pointer every caller shares, which is what lets a scenario hold
// a stable reference to a test across concurrent status queries without
// the registry copying data on every read.
type registry[T any] struct {
	mu      sync.RWMutex
	entries map[unit.Name]*T
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{entries: make(map[unit.Name]*T)}
}

// insert replaces any prior entry for name. Callers (the manager's
// load_<kind> path) are responsible for deactivating/deselecting a
// prior occupant first.
func (r *registry[T]) insert(name unit.Name, v *T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = v
}

// get returns the handle for name, or nil if not loaded.
func (r *registry[T]) get(name unit.Name) *T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name]
}

// remove drops name from the registry. A no-op if absent.
func (r *registry[T]) remove(name unit.Name) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// has reports whether name is currently loaded.
func (r *registry[T]) has(name unit.Name) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// names returns every loaded name, order unspecified.
func (r *registry[T]) names() []unit.Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]unit.Name, 0, len(r.entries))
	for n := range r.entries {
		out = append(out, n)
	}
	return out
}

// count reports how many entries are currently loaded.
func (r *registry[T]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
