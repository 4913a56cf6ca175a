// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jdi-foundation/jdipipeline/lib/eventmgr"
	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/jdiarg"
	"github.com/jdi-foundation/jdipipeline/lib/memo"
	"github.com/jdi-foundation/jdipipeline/lib/pipeline"
	"github.com/jdi-foundation/jdipipeline/lib/reqmgr"
)

// createInput is the memoization cell's input type: the natural key
// plus the request-args partitioned out of a subscribe call.
type createInput[K comparable] struct {
	key  K
	args []jdiarg.RequestArg
}

// Profile is the generic per-event-kind subscription facade described
// in spec §4.6. One Profile[K] instance owns exactly one request
// manager, keyed by natural-key shape K, and shares one event
// dispatcher with every other profile wired against the same
// connection.
type Profile[K comparable] struct {
	logger *slog.Logger
	kind   jdi.Kind

	manager *reqmgr.Manager[K]
	events  *eventmgr.Manager

	cell *memo.Cell[createInput[K], string, reqmgr.RequestID]

	mu       sync.Mutex
	lastID   map[string]reqmgr.RequestID
	counters map[string]*atomic.Int64

	// singleShot marks step requests (spec §4.2: "single-shot — the
	// manager deletes the record automatically after the first
	// matching event is observed").
	singleShot bool
}

// New wires a profile around an already-constructed per-kind request
// manager. events is shared across every profile in a process; manager
// is specific to this event kind.
func New[K comparable](logger *slog.Logger, kind jdi.Kind, manager *reqmgr.Manager[K], events *eventmgr.Manager, singleShot bool) *Profile[K] {
	p := &Profile[K]{
		logger:     logger,
		kind:       kind,
		manager:    manager,
		events:     events,
		lastID:     make(map[string]reqmgr.RequestID),
		counters:   make(map[string]*atomic.Int64),
		singleShot: singleShot,
	}

	p.cell = memo.New(
		func(in createInput[K]) string { return p.memoKey(in) },
		p.compute,
		p.invalid,
	)

	return p
}

func (p *Profile[K]) memoKey(in createInput[K]) string {
	return fmt.Sprintf("%v|%s", in.key, jdiarg.Fingerprint(in.args))
}

// compute resolves a memoization miss per spec §4.6 step 2: generate
// (or honor a caller-supplied) unique id, prepend it to the request-
// args, and create the native request under it.
func (p *Profile[K]) compute(in createInput[K]) (reqmgr.RequestID, error) {
	id, args, err := p.withUniqueID(in.args)
	if err != nil {
		return "", err
	}

	createdID, err := p.manager.CreateWithID(id, in.key, args)
	if err != nil {
		return "", err
	}

	fp := p.memoKey(in)
	p.mu.Lock()
	p.lastID[fp] = createdID
	p.mu.Unlock()

	return createdID, nil
}

// withUniqueID honors a caller-supplied unique-id property if present
// (§9: "the caller's id takes precedence"), otherwise generates a
// fresh one, and returns the request-args with exactly one unique-id
// entry.
func (p *Profile[K]) withUniqueID(args []jdiarg.RequestArg) (reqmgr.RequestID, []jdiarg.RequestArg, error) {
	if existing, ok := jdiarg.HasUniqueID(args); ok {
		return reqmgr.RequestID(existing.ID), args, nil
	}

	id, err := reqmgr.NewRequestID()
	if err != nil {
		return "", nil, err
	}
	finalArgs := append([]jdiarg.RequestArg{jdiarg.UniqueID{ID: string(id)}}, jdiarg.StripUniqueID(args)...)
	return id, finalArgs, nil
}

// invalid is the memoization cell's invalidation predicate (spec §4.5,
// §4.6 step 2): "consults the request manager's listing". The last
// produced id for this fingerprint is looked up and checked against
// the manager's live index; a request that has been removed out from
// under this cell (e.g. by a terminal-VM sweep) is treated as a miss,
// forcing a fresh create on the next subscribe.
func (p *Profile[K]) invalid(fingerprint string) bool {
	p.mu.Lock()
	id, ok := p.lastID[fingerprint]
	p.mu.Unlock()
	if !ok {
		return true
	}
	return !p.manager.HasByID(id)
}

func (p *Profile[K]) counterFor(subscriberKey string) *atomic.Int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	counter, ok := p.counters[subscriberKey]
	if !ok {
		counter = &atomic.Int64{}
		p.counters[subscriberKey] = counter
	}
	return counter
}

// On subscribes to this profile's event kind under key, returning a
// pipeline of raw events. extraArgs is the heterogeneous argument
// sequence from spec §4.1; it is partitioned internally.
//
// Map only derives a downstream stage, and Close only cascades
// downstream (spec §4.4), so the mapped stage returned here is unioned
// back onto the (event, auxData) stream it derives from — otherwise
// closing it would never reach the teardown callbacks that live on
// the underlying subscription.
func (p *Profile[K]) On(key K, extraArgs ...jdiarg.Argument) (*pipeline.Pipeline[jdi.Event], error) {
	data, err := p.OnWithData(key, extraArgs...)
	if err != nil {
		return nil, err
	}
	mapped := pipeline.Map(data, func(d eventmgr.EventData) jdi.Event { return d.Event })
	mapped.UnionOutput(data)
	return mapped, nil
}

// OnWithData is the primary operation described in spec §4.6: it runs
// the full six-step subscribe protocol and returns a pipeline of
// (event, auxiliary-data) pairs.
func (p *Profile[K]) OnWithData(key K, extraArgs ...jdiarg.Argument) (*pipeline.Pipeline[eventmgr.EventData], error) {
	requestArgs, eventArgs, _ := jdiarg.Partition(extraArgs)

	// Step 2: resolve (or create) the backing native request via the
	// memoization cell.
	requestID, err := p.cell.Get(createInput[K]{key: key, args: requestArgs})
	if err != nil {
		return nil, err
	}

	// Step 3: prepend the unique-id filter so this subscriber only
	// sees events correlated to its own (possibly shared) request.
	filters := append([]jdiarg.EventArg{jdiarg.UniqueID{ID: string(requestID)}}, jdiarg.StripUniqueIDEvent(eventArgs)...)

	// Step 4: open the event stream. This pipeline — not any stage
	// derived from it — is what gets returned: the event manager's
	// handler-removal callback lives on it directly (registered inside
	// AddEventDataStream), and Close only cascades from a stage to its
	// downstream derivatives, never back up. Deriving a stage here and
	// handing that back instead would leave the handler registered
	// forever once the caller closes it.
	stream := p.events.AddEventDataStream(p.kind, filters)

	if p.singleShot {
		var once sync.Once
		// A derived stage purely for its side effect: every item
		// forwarded through stream also reaches this one, and the
		// first observation triggers removal. Its own Close (cascaded
		// from stream's) is otherwise unused.
		pipeline.Noop(stream, func(eventmgr.EventData) {
			once.Do(func() {
				p.manager.RemoveByID(requestID)
			})
		})
	}

	// Step 5: bump the subscriber-key counter (spec §3
	// "PipelineCounter"; keyed by (natural-key, event-arg-sequence),
	// distinct from the request memoization key since two subscribers
	// can share a request while installing different event filters).
	subscriberKey := fmt.Sprintf("%v|%s", key, jdiarg.FingerprintEvent(eventArgs))
	counter := p.counterFor(subscriberKey)
	counter.Add(1)

	// Step 6: union a close-only pipeline whose callback decrements
	// the counter and, on reaching zero, removes the native request.
	teardown := pipeline.New[struct{}]()
	teardown.OnClose(func() {
		if counter.Add(-1) == 0 {
			p.manager.RemoveByID(requestID)
		}
	})
	stream.UnionOutput(teardown)

	return stream, nil
}
