// Package index implements the append-only multi-value mapping the rewrite stages
// populate while files stream through.
//
// Every key holds its values in emission order. Lookups that need a single value take
// position 0, so the first emitted value wins regardless of how many follow.
package index

import (
	"slices"
	"sync"
)

// Index is a multi-value mapping supporting append-by-key and lookup-by-key.
//
// One goroutine writes; any number may read concurrently. Values are never removed.
type Index[V comparable] struct {
	name string
	mu   sync.RWMutex
	vals map[string][]V
	keys []string
}

// New creates an empty index. The name appears in log output and metrics labels.
func New[V comparable](name string) *Index[V] {
	return &Index[V]{name: name, vals: make(map[string][]V)}
}

// Name returns the index name.
func (ix *Index[V]) Name() string { return ix.name }

// Emit appends value under key. It returns the value already at position 0 and true
// when the key was present with a different first value.
func (ix *Index[V]) Emit(key string, value V) (V, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	existing, ok := ix.vals[key]
	if !ok {
		ix.keys = append(ix.keys, key)
	}
	ix.vals[key] = append(existing, value)

	if ok && existing[0] != value {
		return existing[0], true
	}
	var zero V
	return zero, false
}

// Lookup returns a copy of every value emitted for key, in emission order.
func (ix *Index[V]) Lookup(key string) ([]V, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	vals, ok := ix.vals[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(vals), true
}

// First returns the first value emitted for key.
func (ix *Index[V]) First(key string) (V, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	vals, ok := ix.vals[key]
	if !ok {
		var zero V
		return zero, false
	}
	return vals[0], true
}

// Len returns the number of distinct keys.
func (ix *Index[V]) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.keys)
}

// Entry is one key with its first-wins value.
type Entry[V comparable] struct {
	Key   string
	Value V
	// Extra counts values emitted after the first one.
	Extra int
}

// Entries returns a snapshot of all keys in first-emission order.
func (ix *Index[V]) Entries() []Entry[V] {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]Entry[V], 0, len(ix.keys))
	for _, k := range ix.keys {
		vals := ix.vals[k]
		out = append(out, Entry[V]{Key: k, Value: vals[0], Extra: len(vals) - 1})
	}
	return out
}
