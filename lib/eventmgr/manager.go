// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package eventmgr

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/jdiarg"
	"github.com/jdi-foundation/jdipipeline/lib/pipeline"
)

// AuxEntry is one (argumentIdentity, opaqueExtractedValue) pair (spec
// §6 Produced).
type AuxEntry struct {
	Identity string
	Value    any
}

// AuxData is the ordered sequence of AuxEntry handed back alongside an
// event from an on<Kind>WithData call. Order matches the order the
// corresponding event-args were supplied (spec §4 "Supplemented
// Features" item 3 — pinning an otherwise-unspecified order so the
// round-trip laws in §8 are actually testable).
type AuxData []AuxEntry

// EventData pairs a native event with the aux data its matching
// filters extracted. This is the item type of the pipeline returned by
// AddEventDataStream.
type EventData struct {
	Event jdi.Event
	Aux   AuxData
}

type handlerEntry struct {
	id       uint64
	kind     jdi.Kind
	filters  []jdiarg.EventArg
	push     func(jdi.Event, AuxData)
	pipeline *pipeline.Pipeline[EventData]
}

// TerminalObserver is notified once when the dispatcher observes
// vm-death or vm-disconnect. Request managers register MarkTerminal
// through this so that create*/createWithId calls start failing fast
// (spec §7 TerminalVM) the moment the connection is known to be gone.
type TerminalObserver func(reason string)

// Manager is the event dispatcher described in spec §4.3. It owns no
// request state — that lives in lib/reqmgr — and exists purely to
// route and filter raw events from a jdi.Connection.
//
// Manager is safe for concurrent use. AddEventDataStream/RemoveHandler
// may be called from any goroutine; Run's dispatch loop is the sole
// writer into any given handler's pipeline, matching the
// single-dispatcher-thread model in spec §5.
type Manager struct {
	mu       sync.Mutex
	logger   *slog.Logger
	conn     jdi.Connection
	handlers map[uint64]*handlerEntry
	nextID   uint64

	terminalObservers []TerminalObserver
	terminal          atomic.Bool
}

// New creates an event manager bound to conn. Run must be called
// (typically in its own goroutine) to start dispatching.
func New(logger *slog.Logger, conn jdi.Connection) *Manager {
	return &Manager{
		logger:   logger,
		conn:     conn,
		handlers: make(map[uint64]*handlerEntry),
	}
}

// OnTerminal registers a callback invoked exactly once, when the
// dispatcher first observes the connection has gone terminal (spec §5
// "Terminal debuggee events", §7 TerminalVM). Request managers pass
// their MarkTerminal method here at wiring time.
func (m *Manager) OnTerminal(observer TerminalObserver) {
	m.mu.Lock()
	m.terminalObservers = append(m.terminalObservers, observer)
	m.mu.Unlock()
}

// IsTerminal reports whether the connection has gone terminal.
func (m *Manager) IsTerminal() bool { return m.terminal.Load() }

// AddEventDataStream registers a handler for kind and returns a fresh
// pipeline of (event, auxData) pairs (spec §4.3). Closing the returned
// pipeline unregisters the handler — no further events will be pushed
// into it, even ones already in flight on the dispatcher goroutine at
// the moment of close (a closed pipeline's Push is a no-op).
func (m *Manager) AddEventDataStream(kind jdi.Kind, filters []jdiarg.EventArg) *pipeline.Pipeline[EventData] {
	out := pipeline.New[EventData]()

	entry := &handlerEntry{
		kind:    kind,
		filters: filters,
		push: func(event jdi.Event, aux AuxData) {
			out.Push(EventData{Event: event, Aux: aux})
		},
		pipeline: out,
	}

	m.mu.Lock()
	m.nextID++
	entry.id = m.nextID
	m.handlers[entry.id] = entry
	m.mu.Unlock()

	out.OnClose(func() {
		m.mu.Lock()
		delete(m.handlers, entry.id)
		m.mu.Unlock()
	})

	return out
}

// Run drains the connection's event queue on the calling goroutine
// until ctx is cancelled or the connection goes terminal. This is the
// module's one blocking loop (spec §5); callers run it in its own
// goroutine.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		events, err := m.conn.PollEvents()
		if err != nil {
			if errors.Is(err, jdi.ErrTerminal) {
				m.handleTerminal("connection_terminated")
				return
			}
			m.logger.Warn("event queue poll failed", "error", err)
			continue
		}

		for _, event := range events {
			if event.Kind == jdi.VMDeath || event.Kind == jdi.VMDisconnect {
				m.dispatch(event)
				m.handleTerminal(string(event.Kind))
				return
			}
			m.dispatch(event)
		}
	}
}

// dispatch evaluates every handler registered for event.Kind and
// pushes to the ones whose filters accept it. A panicking filter is
// recovered, logged, and treated as a non-match (spec §4 Supplemented
// Features item 4) — one malformed filter must not take down the
// dispatcher thread that every other subscriber depends on.
func (m *Manager) dispatch(event jdi.Event) {
	m.mu.Lock()
	var matching []*handlerEntry
	for _, entry := range m.handlers {
		if entry.kind == event.Kind {
			matching = append(matching, entry)
		}
	}
	m.mu.Unlock()

	for _, entry := range matching {
		m.dispatchOne(entry, event)
	}
}

func (m *Manager) dispatchOne(entry *handlerEntry, event jdi.Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("event handler panicked, dropping event for this subscriber",
				"kind", entry.kind, "panic", r)
		}
	}()

	accepted, aux := evaluateFilters(entry.filters, event)
	if !accepted {
		return
	}
	entry.push(event, aux)
}

// handleTerminal runs every registered terminal observer exactly once
// and closes every still-registered handler's pipeline (spec §5: "the
// event manager closes all registered streams in an unspecified
// order"). The handler map is drained as part of this so a second
// terminal event (there should not be one, but PollEvents' contract
// only promises ErrTerminal once we've stopped polling) is a no-op.
func (m *Manager) handleTerminal(reason string) {
	if !m.terminal.CompareAndSwap(false, true) {
		return
	}

	m.logger.Info("event manager observed terminal condition", "reason", reason)

	m.mu.Lock()
	observers := make([]TerminalObserver, len(m.terminalObservers))
	copy(observers, m.terminalObservers)
	handlers := make([]*handlerEntry, 0, len(m.handlers))
	for _, entry := range m.handlers {
		handlers = append(handlers, entry)
	}
	m.handlers = make(map[uint64]*handlerEntry)
	m.mu.Unlock()

	for _, observer := range observers {
		observer(reason)
	}

	// Pipeline.Close runs its own OnClose callback (the one registered
	// in AddEventDataStream, which re-deletes an already-removed id —
	// a harmless no-op) and cascades to every downstream stage, so a
	// profile's memoized request-teardown pipeline closes here too.
	for _, entry := range handlers {
		entry.pipeline.Close()
	}
}
