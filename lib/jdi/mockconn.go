// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdi

import (
	"fmt"
	"sync"

	"github.com/jdi-foundation/jdipipeline/lib/jdicodec"
)

// TapeEvent is the recorded shape of one raw debuggee event, before
// any request's properties have been stamped onto it — a real VM
// doesn't know which requests this module has installed, so a tape
// entry carries only what the VM itself would report. Purely internal
// (never serialized as JSON), so its fields use cbor tags.
type TapeEvent struct {
	Kind       Kind           `cbor:"kind"`
	ClassName  string         `cbor:"class_name,omitempty"`
	MethodName string         `cbor:"method_name,omitempty"`
	LineNumber int            `cbor:"line_number,omitempty"`
	Thread     ThreadID       `cbor:"thread,omitempty"`
	Object     ObjectID       `cbor:"object,omitempty"`
	Payload    map[string]any `cbor:"payload,omitempty"`
}

// EncodeTape renders a recorded event sequence to CBOR, the format
// MockConnection.LoadTape expects — this module's one on-wire encoding,
// used to let a demo session ship a canned recording as a byte blob
// rather than Go literals.
func EncodeTape(events []TapeEvent) ([]byte, error) {
	data, err := jdicodec.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("jdi: encode tape: %w", err)
	}
	return data, nil
}

// DecodeTape is EncodeTape's inverse.
func DecodeTape(data []byte) ([]TapeEvent, error) {
	var events []TapeEvent
	if err := jdicodec.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("jdi: decode tape: %w", err)
	}
	return events, nil
}

// mockRequest is one live request installed against a MockConnection.
type mockRequest struct {
	kind    Kind
	spec    RequestSpec
	enabled bool

	// matchNatural reports whether a tape event's natural-key fields
	// (file/line, class/method, class/field, exception class, ...)
	// correspond to this request. Captured as a closure at creation
	// time so MockConnection doesn't need a type switch per kind when
	// matching incoming events.
	matchNatural func(te TapeEvent) bool
}

func (r *mockRequest) matches(te TapeEvent) bool {
	if !r.enabled || r.kind != te.Kind {
		return false
	}
	if !r.matchNatural(te) {
		return false
	}
	if te.ClassName != "" && !MatchesClassFilter(te.ClassName, r.spec.ClassInclude, r.spec.ClassExclude) {
		return false
	}
	if r.spec.ThreadID != "" && r.spec.ThreadID != te.Thread {
		return false
	}
	if r.spec.InstanceID != "" && r.spec.InstanceID != te.Object {
		return false
	}
	return true
}

func (r *mockRequest) toEvent(te TapeEvent) Event {
	properties := make(map[string]string, len(r.spec.Properties))
	for k, v := range r.spec.Properties {
		properties[k] = v
	}

	var location *Location
	if te.ClassName != "" && (te.MethodName != "" || te.LineNumber != 0) {
		location = &Location{ClassName: te.ClassName, MethodName: te.MethodName, LineNumber: te.LineNumber}
	}

	return Event{
		Kind:              te.Kind,
		RequestProperties: properties,
		Location:          location,
		ClassName:         te.ClassName,
		Thread:            te.Thread,
		Payload:           te.Payload,
	}
}

// MockConnection is a deterministic in-memory Connection (spec.md
// supplemented feature 1): no bytecode, no real JVM, just enough
// bookkeeping to exercise the request/event pipeline against a
// recorded or hand-fed sequence of events.
type MockConnection struct {
	mu   sync.Mutex
	cond *sync.Cond

	nextHandle uint64
	requests   map[string]*mockRequest

	pending []TapeEvent
	closed  bool

	classes    []ClassInfo
	mainThread ThreadID

	// failCreate holds configurable, one-shot creation failures: the
	// next register call for a given kind fails with the mapped error
	// instead of succeeding. Exists so tests can exercise a request
	// manager's rollback path (spec §4.2 "crash safety") without a real
	// debuggee ever refusing a request.
	failCreate map[Kind]error

	// failEnable is failCreate's counterpart for the narrower rollback
	// branch where native creation succeeds but Enable fails: the
	// manager must delete the now-orphaned handle and publish neither
	// index entry.
	failEnable map[Kind]error
}

// NewMockConnection creates an empty mock connection. mainThread is
// the id MainThread() reports; classes seeds Classes().
func NewMockConnection(mainThread ThreadID, classes []ClassInfo) *MockConnection {
	c := &MockConnection{
		requests:   make(map[string]*mockRequest),
		mainThread: mainThread,
		classes:    classes,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Feed enqueues events to be reported on the next PollEvents call(s).
func (c *MockConnection) Feed(events ...TapeEvent) {
	c.mu.Lock()
	c.pending = append(c.pending, events...)
	c.mu.Unlock()
	c.cond.Broadcast()
}

// LoadTape decodes a CBOR-encoded recording and feeds it.
func (c *MockConnection) LoadTape(data []byte) error {
	events, err := DecodeTape(data)
	if err != nil {
		return err
	}
	c.Feed(events...)
	return nil
}

// Terminate simulates vm-death/vm-disconnect: the next PollEvents call
// (after draining anything already pending) returns ErrTerminal.
func (c *MockConnection) Terminate() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

// InjectCreateFailure makes the next native create call for kind fail
// with err instead of succeeding, simulating a debuggee that refuses a
// request (spec §4.2, §8 Scenario F). One-shot: consumed by the next
// matching register call and then cleared.
func (c *MockConnection) InjectCreateFailure(kind Kind, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failCreate == nil {
		c.failCreate = make(map[Kind]error)
	}
	c.failCreate[kind] = err
}

// InjectEnableFailure makes the next Enable call for a handle of the
// given kind fail with err, simulating a debuggee that accepts a
// request but then refuses to enable it — the narrower rollback branch
// where a native handle already exists and must be deleted again
// rather than never having been created. One-shot.
func (c *MockConnection) InjectEnableFailure(kind Kind, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failEnable == nil {
		c.failEnable = make(map[Kind]error)
	}
	c.failEnable[kind] = err
}

func (c *MockConnection) register(kind Kind, spec RequestSpec, matchNatural func(TapeEvent) bool) (NativeHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.failCreate[kind]; err != nil {
		delete(c.failCreate, kind)
		return NativeHandle{}, err
	}

	c.nextHandle++
	id := fmt.Sprintf("mock-%d", c.nextHandle)
	c.requests[id] = &mockRequest{kind: kind, spec: spec, matchNatural: matchNatural}
	return NewNativeHandle(id), nil
}

func (c *MockConnection) CreateBreakpointRequest(fileName string, lineNumber int, spec RequestSpec) (NativeHandle, error) {
	return c.register(Breakpoint, spec, func(te TapeEvent) bool {
		return te.ClassName == fileName && te.LineNumber == lineNumber
	})
}

func (c *MockConnection) CreateMethodEntryRequest(className, methodName string, spec RequestSpec) (NativeHandle, error) {
	return c.register(MethodEntry, spec, func(te TapeEvent) bool {
		return te.ClassName == className && te.MethodName == methodName
	})
}

func (c *MockConnection) CreateMethodExitRequest(className, methodName string, spec RequestSpec) (NativeHandle, error) {
	return c.register(MethodExit, spec, func(te TapeEvent) bool {
		return te.ClassName == className && te.MethodName == methodName
	})
}

func (c *MockConnection) CreateMonitorWaitRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(MonitorWait, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateMonitorWaitedRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(MonitorWaited, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateMonitorContendedEnterRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(MonitorContendedEnter, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateMonitorContendedEnteredRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(MonitorContendedEntered, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateClassPrepareRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(ClassPrepare, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateClassUnloadRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(ClassUnload, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateThreadStartRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(ThreadStart, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateThreadDeathRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(ThreadDeath, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateExceptionRequest(exceptionClassName string, notifyCaught, notifyUncaught bool, spec RequestSpec) (NativeHandle, error) {
	return c.register(Exception, spec, func(te TapeEvent) bool {
		return te.ClassName == exceptionClassName
	})
}

func (c *MockConnection) CreateAccessWatchpointRequest(className, fieldName string, spec RequestSpec) (NativeHandle, error) {
	return c.register(AccessWatchpoint, spec, func(te TapeEvent) bool {
		return te.ClassName == className && te.MethodName == fieldName
	})
}

func (c *MockConnection) CreateModificationWatchpointRequest(className, fieldName string, spec RequestSpec) (NativeHandle, error) {
	return c.register(ModificationWatchpoint, spec, func(te TapeEvent) bool {
		return te.ClassName == className && te.MethodName == fieldName
	})
}

func (c *MockConnection) CreateStepRequest(threadID ThreadID, size StepSize, depth StepDepth, spec RequestSpec) (NativeHandle, error) {
	return c.register(Step, spec, func(te TapeEvent) bool {
		return threadID == "" || te.Thread == threadID
	})
}

func (c *MockConnection) CreateVMStartRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(VMStart, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateVMDeathRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(VMDeath, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) CreateVMDisconnectRequest(spec RequestSpec) (NativeHandle, error) {
	return c.register(VMDisconnect, spec, func(TapeEvent) bool { return true })
}

func (c *MockConnection) Enable(handle NativeHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.requests[handle.String()]
	if !ok {
		return fmt.Errorf("jdi: enable: unknown handle %s", handle)
	}
	if err := c.failEnable[req.kind]; err != nil {
		delete(c.failEnable, req.kind)
		return err
	}
	req.enabled = true
	return nil
}

// SpecFor returns the RequestSpec a live request was created with —
// the fully-built spec the caller's native create call actually
// received, defaults included, not just the caller-supplied args.
// Exists for tests to assert that a manager's per-kind defaults (e.g.
// the method-entry class-inclusion filter, spec §4.2) actually reached
// the native layer, since Record.RequestArgs only ever holds what the
// caller passed in.
func (c *MockConnection) SpecFor(handle NativeHandle) (RequestSpec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.requests[handle.String()]
	if !ok {
		return RequestSpec{}, false
	}
	return req.spec, true
}

// Delete removes a request. Unknown/already-deleted handles are not an
// error (spec §4.2 "removal tolerates a concurrent duplicate call").
func (c *MockConnection) Delete(handle NativeHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.requests, handle.String())
	return nil
}

// PollEvents blocks until fed events are pending or Terminate has been
// called, matching spec §6's "eventQueue.poll()" contract.
func (c *MockConnection) PollEvents() ([]Event, error) {
	c.mu.Lock()
	for len(c.pending) == 0 && !c.closed {
		c.cond.Wait()
	}
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return nil, ErrTerminal
	}

	tapeEvents := c.pending
	c.pending = nil

	live := make([]*mockRequest, 0, len(c.requests))
	for _, req := range c.requests {
		live = append(live, req)
	}
	c.mu.Unlock()

	var out []Event
	for _, te := range tapeEvents {
		matched := false
		for _, req := range live {
			if req.matches(te) {
				out = append(out, req.toEvent(te))
				matched = true
			}
		}
		// VM lifecycle events are reported even when no request asked
		// for them, with no request properties attached.
		if !matched && (te.Kind == VMStart || te.Kind == VMDeath || te.Kind == VMDisconnect) {
			out = append(out, Event{Kind: te.Kind, Thread: te.Thread, Payload: te.Payload})
		}
	}
	return out, nil
}

func (c *MockConnection) MainThread() (ThreadID, error) {
	return c.mainThread, nil
}

func (c *MockConnection) Classes() ([]ClassInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ClassInfo, len(c.classes))
	copy(out, c.classes)
	return out, nil
}

var _ Connection = (*MockConnection)(nil)
