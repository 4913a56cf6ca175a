// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package reqmgr

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/jdiarg"
	"github.com/jdi-foundation/jdipipeline/lib/jdierr"
)

// Record is a manager's bookkeeping for a single live request (spec
// §3 "RequestRecord"). Owned by the Manager; callers only ever see
// copies returned from Get/GetByID.
type Record[K comparable] struct {
	ID          RequestID
	Key         K
	Handle      jdi.NativeHandle
	RequestArgs []jdiarg.RequestArg
}

// CreateNativeFunc issues the kind-specific native create call. Bound
// per manager so Manager itself never needs a type switch over event
// kinds — the closure already knows which jdi.Connection method to
// call and how to unpack the natural key's fields into it.
type CreateNativeFunc[K comparable] func(key K, spec jdi.RequestSpec) (jdi.NativeHandle, error)

// DefaultsFunc applies a kind's own request-arg defaults onto a fresh
// spec, after buildSpec has set the defaults shared by every kind
// (enabled=true, suspend-policy=event-thread) and before the caller's
// own args are applied on top of it. The constructors in kinds.go add
// a class-inclusion filter for method-entry/exit and both watchpoint
// kinds and a thread filter for step; every other kind adds nothing.
type DefaultsFunc[K comparable] func(key K, spec *jdi.RequestSpec)

// Manager owns the two concurrent indices for one event kind: a
// natural-key→id map and an id→record map (spec §2 item 2, §3
// invariants I1–I4). All exported methods are safe for concurrent use
// from any caller goroutine, including the event manager's dispatcher
// goroutine, which calls MarkTerminal through its terminal observers
// and RemoveByID when a step subscription sees its first event or a
// subscription closes during a terminal sweep.
type Manager[K comparable] struct {
	mu     sync.RWMutex
	logger *slog.Logger
	kind   jdi.Kind

	keyIndex map[K]RequestID
	idIndex  map[RequestID]*Record[K]

	createNative  CreateNativeFunc[K]
	enableNative  func(jdi.NativeHandle) error
	deleteNative  func(jdi.NativeHandle) error
	applyDefaults DefaultsFunc[K]

	terminal atomic.Bool
}

// New creates a request manager for one event kind. create issues the
// kind's native create call; defaults applies that kind's request-arg
// defaults before the caller's args are layered on top.
func New[K comparable](
	logger *slog.Logger,
	kind jdi.Kind,
	conn jdi.Connection,
	create CreateNativeFunc[K],
	defaults DefaultsFunc[K],
) *Manager[K] {
	return &Manager[K]{
		logger:        logger,
		kind:          kind,
		keyIndex:      make(map[K]RequestID),
		idIndex:       make(map[RequestID]*Record[K]),
		createNative:  create,
		enableNative:  conn.Enable,
		deleteNative:  conn.Delete,
		applyDefaults: defaults,
	}
}

// MarkTerminal puts the manager into the terminal-VM state (spec §7
// TerminalVM): every subsequent create*/createWithId call fails fast
// without attempting a doomed native call. Idempotent. Called by the
// event manager's dispatcher loop when it observes vm-death or
// vm-disconnect (spec §5 "Terminal debuggee events").
func (m *Manager[K]) MarkTerminal(reason string) {
	if m.terminal.CompareAndSwap(false, true) {
		m.logger.Info("request manager marked terminal", "kind", m.kind, "reason", reason)
	}
}

func (m *Manager[K]) buildSpec(key K, args []jdiarg.RequestArg) jdi.RequestSpec {
	spec := jdi.RequestSpec{
		Enabled:       true,
		SuspendPolicy: jdi.SuspendEventThread,
		Properties:    make(map[string]string),
	}
	m.applyDefaults(key, &spec)
	for _, arg := range args {
		arg.ApplyToSpec(&spec)
	}
	return spec
}

// CreateWithID creates a request under a caller-chosen id. Used by the
// profile layer (spec §4.6 step 2), which generates the id itself so
// it can be stamped into the request's properties before creation.
//
// Atomic registration (spec §4.2): the native request is created and
// enabled, and both indices are written, before this returns
// successfully; if native creation fails, neither index is touched
// (crash safety).
func (m *Manager[K]) CreateWithID(id RequestID, key K, args []jdiarg.RequestArg) (RequestID, error) {
	if m.terminal.Load() {
		return "", &jdierr.TerminalVMError{Reason: "vm_death"}
	}

	spec := m.buildSpec(key, args)

	handle, err := m.createNative(key, spec)
	if err != nil {
		return "", &jdierr.NativeCreationFailedError{Kind: string(m.kind), Cause: err}
	}

	if err := m.enableNative(handle); err != nil {
		// Roll back: the native request exists but we never publish
		// it into either index, and we attempt to delete it so we
		// don't leak it in the debuggee. Best-effort: a failure here
		// is logged, not returned, since the caller already has a
		// NativeCreationFailed to react to.
		if delErr := m.deleteNative(handle); delErr != nil {
			m.logger.Warn("failed to roll back unenabled request",
				"kind", m.kind, "error", delErr)
		}
		return "", &jdierr.NativeCreationFailedError{Kind: string(m.kind), Cause: err}
	}

	m.mu.Lock()
	m.keyIndex[key] = id
	m.idIndex[id] = &Record[K]{ID: id, Key: key, Handle: handle, RequestArgs: args}
	m.mu.Unlock()

	m.logger.Info("request created", "kind", m.kind, "id", id)
	return id, nil
}

// Create generates a fresh id and creates a request under it.
func (m *Manager[K]) Create(key K, args []jdiarg.RequestArg) (RequestID, error) {
	id, err := NewRequestID()
	if err != nil {
		return "", err
	}
	return m.CreateWithID(id, key, args)
}

// Has reports whether a request is registered under the given natural
// key.
func (m *Manager[K]) Has(key K) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.keyIndex[key]
	return ok
}

// HasByID reports whether a request is registered under the given id.
func (m *Manager[K]) HasByID(id RequestID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.idIndex[id]
	return ok
}

// Get returns the native handle registered under key, if any.
func (m *Manager[K]) Get(key K) (jdi.NativeHandle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.keyIndex[key]
	if !ok {
		return jdi.NativeHandle{}, false
	}
	record := m.idIndex[id]
	if record == nil {
		return jdi.NativeHandle{}, false
	}
	return record.Handle, true
}

// GetByID returns the native handle registered under id, if any.
func (m *Manager[K]) GetByID(id RequestID) (jdi.NativeHandle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.idIndex[id]
	if !ok {
		return jdi.NativeHandle{}, false
	}
	return record.Handle, true
}

// RecordByID returns a copy of the full record registered under id, if
// any. lib/profile's memoization invalidation does not use it; that
// predicate only checks HasByID.
func (m *Manager[K]) RecordByID(id RequestID) (Record[K], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.idIndex[id]
	if !ok {
		return Record[K]{}, false
	}
	return *record, true
}

// List returns every natural key currently registered.
func (m *Manager[K]) List() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]K, 0, len(m.keyIndex))
	for key := range m.keyIndex {
		keys = append(keys, key)
	}
	return keys
}

// ListByID returns every request id currently registered.
func (m *Manager[K]) ListByID() []RequestID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]RequestID, 0, len(m.idIndex))
	for id := range m.idIndex {
		ids = append(ids, id)
	}
	return ids
}

// Remove deletes the request registered under key, tolerating a
// concurrent duplicate call (returns false the second time).
func (m *Manager[K]) Remove(key K) bool {
	m.mu.Lock()
	id, ok := m.keyIndex[key]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return m.removeByID(id, key)
}

// RemoveByID deletes the request registered under id, walking the key
// index to evict the matching entry (spec §4.2 "removal fan-out").
// Tolerates a concurrent duplicate call.
func (m *Manager[K]) RemoveByID(id RequestID) bool {
	m.mu.Lock()
	record, ok := m.idIndex[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return m.removeByID(id, record.Key)
}

func (m *Manager[K]) removeByID(id RequestID, key K) bool {
	m.mu.Lock()
	record, ok := m.idIndex[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.idIndex, id)
	delete(m.keyIndex, key)
	m.mu.Unlock()

	// Deletion of an already-gone native request is not an error
	// (spec §7 "removal failures are swallowed"); the remote VM may
	// already be dead (terminal-VM sweep).
	if err := m.deleteNative(record.Handle); err != nil {
		m.logger.Warn("native request deletion failed (ignored)",
			"kind", m.kind, "id", id, "error", err)
	}

	m.logger.Info("request removed", "kind", m.kind, "id", id)
	return true
}

// CheckConsistency verifies invariants I1/I2 (spec §3, §8 Testable
// Property 1): every id in the id index has exactly one key mapping to
// it in the key index, and vice versa. Used by tests; production code
// never calls this — the invariant is meant to hold unconditionally,
// not to be probed.
func (m *Manager[K]) CheckConsistency() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for key, id := range m.keyIndex {
		record, ok := m.idIndex[id]
		if !ok {
			return fmt.Errorf("reqmgr: key %v maps to id %s which is absent from id index", key, id)
		}
		if record.Key != key {
			return fmt.Errorf("reqmgr: id %s maps back to key %v, not %v", id, record.Key, key)
		}
	}
	for id, record := range m.idIndex {
		mappedID, ok := m.keyIndex[record.Key]
		if !ok || mappedID != id {
			return fmt.Errorf("reqmgr: id %s has no matching entry in key index", id)
		}
	}
	return nil
}
