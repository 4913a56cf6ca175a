// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package memo

import "sync"

// Cell memoizes outputs of type O computed from inputs of type I,
// keyed by K. Lookup is defined in spec §4.5:
//
//  1. k ← key(i)
//  2. if k ∈ storage and ¬invalid(k): return storage[k]
//  3. otherwise atomically compute o ← f(i), store storage[k] = o,
//     return o
//
// invalid is re-evaluated on every call, never cached — it is the
// hook that lets a Cell synchronize with externally driven removals
// (a request manager's index is the authority, not this cell).
type Cell[I any, K comparable, O any] struct {
	mu      sync.Mutex
	storage map[K]O
	guards  map[K]*sync.Mutex

	key     func(I) K
	compute func(I) (O, error)
	invalid func(K) bool
}

// New creates a memoization cell. key derives the cache key from an
// input; compute produces the output on a miss (and may fail, e.g.
// with a jdierr.NativeCreationFailedError); invalid is consulted
// before every cache hit.
func New[I any, K comparable, O any](
	key func(I) K,
	compute func(I) (O, error),
	invalid func(K) bool,
) *Cell[I, K, O] {
	return &Cell[I, K, O]{
		storage: make(map[K]O),
		guards:  make(map[K]*sync.Mutex),
		key:     key,
		compute: compute,
		invalid: invalid,
	}
}

// guardFor returns the per-key mutex used to serialize concurrent
// misses on the same key, creating it if absent.
func (c *Cell[I, K, O]) guardFor(k K) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	guard, ok := c.guards[k]
	if !ok {
		guard = &sync.Mutex{}
		c.guards[k] = guard
	}
	return guard
}

// lookup returns the cached value for k if present and not invalid.
func (c *Cell[I, K, O]) lookup(k K) (O, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, ok := c.storage[k]
	if !ok || c.invalid(k) {
		var zero O
		return zero, false
	}
	return out, true
}

// Get resolves the cell for input i, computing and storing a fresh
// output on a miss. Two concurrent misses on the same key serialize on
// a per-key guard so they observe a single, consistent computation
// (spec §4.5 concurrency requirement) rather than racing to create two
// native requests for the same key.
func (c *Cell[I, K, O]) Get(i I) (O, error) {
	k := c.key(i)

	if out, ok := c.lookup(k); ok {
		return out, nil
	}

	guard := c.guardFor(k)
	guard.Lock()
	defer guard.Unlock()

	// Another goroutine may have computed this key while we waited
	// for the guard.
	if out, ok := c.lookup(k); ok {
		return out, nil
	}

	out, err := c.compute(i)
	if err != nil {
		var zero O
		return zero, err
	}

	c.mu.Lock()
	c.storage[k] = out
	c.mu.Unlock()

	return out, nil
}

// Forget drops the cached entry and the per-key guard for key k, if
// any, without invoking invalid or compute; the next Get for k is a
// miss. lib/profile does not call it: a profile's entries stay stored
// and are recomputed once invalid reports the backing request gone.
func (c *Cell[I, K, O]) Forget(k K) {
	c.mu.Lock()
	delete(c.storage, k)
	delete(c.guards, k)
	c.mu.Unlock()
}
