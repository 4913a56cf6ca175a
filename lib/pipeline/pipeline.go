// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"sync"
	"sync/atomic"
)

// state tracks a pipeline's place in the OPEN → CLOSING → CLOSED
// machine (spec §4.7). CLOSING is transient: it exists only to make
// the compare-and-swap in Close atomic, so exactly one caller runs the
// teardown even when Close is invoked from multiple goroutines at
// once.
type state int32

const (
	stateOpen state = iota
	stateClosing
	stateClosed
)

// Closer is satisfied by any pipeline, regardless of item type. It is
// the type UnionOutput accepts, since the auxiliary pipeline being
// unioned in almost always carries a different (often empty) item
// type than the receiver.
type Closer interface {
	Close()
}

// Pipeline is a single stage in a push-stream graph. Items are typed;
// close callbacks and downstream links are not, so a Pipeline[T] can
// feed a Pipeline[O] of a different type (via Map) while still
// cascading Close calls correctly.
type Pipeline[T any] struct {
	mu sync.Mutex
	st atomic.Int32

	downstreamPush  []func(T)
	downstreamClose []func()
	closeCallbacks  []func()
}

// New creates an empty, open pipeline with no downstream stages and no
// close callbacks. Callers typically don't construct one directly;
// they get one back from New, Map, Filter, Noop, or a producer like
// lib/eventmgr's event-data stream.
func New[T any]() *Pipeline[T] {
	return &Pipeline[T]{}
}

// Push sends an item to every downstream stage, in registration order.
// A no-op once the pipeline has begun closing.
func (p *Pipeline[T]) Push(item T) {
	if state(p.st.Load()) != stateOpen {
		return
	}

	p.mu.Lock()
	downstream := make([]func(T), len(p.downstreamPush))
	copy(downstream, p.downstreamPush)
	p.mu.Unlock()

	for _, push := range downstream {
		push(item)
	}
}

// addDownstream registers a derived stage: push forwards (possibly
// transformed) items to it, and close cascades Close to it when this
// pipeline closes. Used by Map, Filter, and Noop.
func (p *Pipeline[T]) addDownstream(push func(T), close func()) {
	p.mu.Lock()
	p.downstreamPush = append(p.downstreamPush, push)
	p.downstreamClose = append(p.downstreamClose, close)
	p.mu.Unlock()
}

// OnClose registers a callback to run when this pipeline closes, after
// all downstream stages have finished closing (bottom-up order), in
// the order OnClose was called. Returns the receiver so calls can
// chain. This is the primitive teardown hook the spec's design notes
// recommend exposing directly (§9).
func (p *Pipeline[T]) OnClose(callback func()) *Pipeline[T] {
	p.mu.Lock()
	p.closeCallbacks = append(p.closeCallbacks, callback)
	p.mu.Unlock()
	return p
}

// UnionOutput merges another pipeline's close into this one: closing
// the receiver also closes other. other's items are never forwarded —
// this is a close-union, not a value-union (§4.4). Derived trivially
// from OnClose.
func (p *Pipeline[T]) UnionOutput(other Closer) *Pipeline[T] {
	return p.OnClose(other.Close)
}

// Close is idempotent and reentrancy-safe: only the first call runs
// the teardown (cascading to downstream stages, then running this
// stage's own close callbacks); every later call, from any goroutine,
// is a no-op. This is what makes Testable Property 5 (close
// idempotence) hold regardless of how many times a subscriber (or a
// terminal-VM sweep) calls Close.
func (p *Pipeline[T]) Close() {
	if !p.st.CompareAndSwap(int32(stateOpen), int32(stateClosing)) {
		return
	}

	p.mu.Lock()
	downstreamClose := make([]func(), len(p.downstreamClose))
	copy(downstreamClose, p.downstreamClose)
	closeCallbacks := make([]func(), len(p.closeCallbacks))
	copy(closeCallbacks, p.closeCallbacks)
	p.mu.Unlock()

	for _, close := range downstreamClose {
		close()
	}
	for _, callback := range closeCallbacks {
		callback()
	}

	p.st.Store(int32(stateClosed))
}

// Closed reports whether Close has been called (CLOSING or CLOSED).
func (p *Pipeline[T]) Closed() bool {
	return state(p.st.Load()) != stateOpen
}

// Map creates a derived stage that transforms each item with f. The
// derived stage has its own type parameter, so it must be a free
// function rather than a method (Go methods cannot introduce new type
// parameters).
func Map[T, O any](p *Pipeline[T], f func(T) O) *Pipeline[O] {
	out := New[O]()
	p.addDownstream(func(item T) { out.Push(f(item)) }, out.Close)
	return out
}

// Filter creates a derived stage that forwards only items for which
// keep returns true.
func Filter[T any](p *Pipeline[T], keep func(T) bool) *Pipeline[T] {
	out := New[T]()
	p.addDownstream(func(item T) {
		if keep(item) {
			out.Push(item)
		}
	}, out.Close)
	return out
}

// Noop creates a derived stage that observes every item (for logging,
// metrics, or triggering a side effect) without transforming it.
func Noop[T any](p *Pipeline[T], observe func(T)) *Pipeline[T] {
	out := New[T]()
	p.addDownstream(func(item T) {
		observe(item)
		out.Push(item)
	}, out.Close)
	return out
}
