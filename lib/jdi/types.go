// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdi

import "fmt"

// Kind identifies one of the fixed categories of debuggee events. Every
// request manager, event handler, and profile is parameterized by
// exactly one Kind.
type Kind string

const (
	Breakpoint                Kind = "breakpoint"
	MethodEntry                Kind = "method_entry"
	MethodExit                 Kind = "method_exit"
	MonitorWait                Kind = "monitor_wait"
	MonitorWaited              Kind = "monitor_waited"
	MonitorContendedEnter      Kind = "monitor_contended_enter"
	MonitorContendedEntered    Kind = "monitor_contended_entered"
	ClassPrepare               Kind = "class_prepare"
	ClassUnload                Kind = "class_unload"
	ThreadStart                Kind = "thread_start"
	ThreadDeath                Kind = "thread_death"
	Exception                  Kind = "exception"
	AccessWatchpoint           Kind = "access_watchpoint"
	ModificationWatchpoint     Kind = "modification_watchpoint"
	Step                       Kind = "step"
	VMStart                    Kind = "vm_start"
	VMDeath                    Kind = "vm_death"
	VMDisconnect               Kind = "vm_disconnect"
)

// Kinds returns every event kind this module knows about, in a stable
// order. Used by lib/jdiconfig to validate disabled_kinds entries and
// by cmd/jdi-inspect's --list-kinds flag.
func Kinds() []Kind {
	return []Kind{
		Breakpoint, MethodEntry, MethodExit,
		MonitorWait, MonitorWaited, MonitorContendedEnter, MonitorContendedEntered,
		ClassPrepare, ClassUnload,
		ThreadStart, ThreadDeath,
		Exception,
		AccessWatchpoint, ModificationWatchpoint,
		Step,
		VMStart, VMDeath, VMDisconnect,
	}
}

// IsClassScoped reports whether events of this kind carry a declaring
// type name that class-inclusion/exclusion filters can match against.
// The request managers do not consult it; each per-kind constructor in
// lib/reqmgr decides its own class-inclusion default.
func (kind Kind) IsClassScoped() bool {
	switch kind {
	case Breakpoint, MethodEntry, MethodExit, Exception, AccessWatchpoint, ModificationWatchpoint, ClassPrepare, ClassUnload:
		return true
	default:
		return false
	}
}

// SuspendPolicy controls which threads the debuggee suspends when a
// matching event fires.
type SuspendPolicy string

const (
	// SuspendEventThread suspends only the thread that raised the
	// event. This is the default applied by every request manager
	// unless the caller overrides it.
	SuspendEventThread SuspendPolicy = "event_thread"
	SuspendAll         SuspendPolicy = "all"
	SuspendNone         SuspendPolicy = "none"
)

// StepSize and StepDepth mirror JDI's step-request granularity.
type StepSize string

const (
	StepMin  StepSize = "min"
	StepLine StepSize = "line"
)

type StepDepth string

const (
	StepInto StepDepth = "into"
	StepOver StepDepth = "over"
	StepOut  StepDepth = "out"
)

// ThreadID identifies a thread in the debuggee. The zero value means
// "unspecified" — not every request or event carries a thread.
type ThreadID string

// ObjectID identifies a heap object in the debuggee, used for instance
// filters and as the payload of field-access/modification events.
type ObjectID string

// NativeHandle is the opaque handle returned by a createXxxRequest
// call and passed back into Enable/Delete. Connections are free to
// embed whatever internal bookkeeping they need; this module never
// inspects the handle's contents.
type NativeHandle struct {
	id string
}

// NewNativeHandle wraps an implementation-defined handle id. Connection
// implementations call this when fabricating handles; callers of this
// module never construct one directly.
func NewNativeHandle(id string) NativeHandle { return NativeHandle{id: id} }

func (h NativeHandle) String() string { return h.id }

// IsZero reports whether the handle was never assigned.
func (h NativeHandle) IsZero() bool { return h.id == "" }

// RequestSpec is the flattened, native-level shape of a request's
// filters, after the argument model (lib/jdiarg) has been interpreted
// by a request manager. Connection implementations translate this into
// whatever wire format the real debugger protocol expects.
type RequestSpec struct {
	ClassInclude  []string
	ClassExclude  []string
	InstanceID    ObjectID // empty means "no instance filter"
	Count         int      // 0 means unlimited
	ThreadID      ThreadID // empty means "not thread-filtered"
	SuspendPolicy SuspendPolicy
	Enabled       bool
	// Properties are echoed verbatim onto the native request and onto
	// every event it produces. The reserved key UniqueIDProperty
	// carries the correlation id (§4.6); callers must not remove it
	// once a request manager has written it.
	Properties map[string]string
}

// UniqueIDProperty is the reserved property key carrying the
// correlation id a request manager stamps onto every request it
// creates. It must survive round-trip byte-for-byte (§6).
const UniqueIDProperty = "jdipipeline.unique_id"

// Location identifies a point in the debuggee's bytecode.
type Location struct {
	ClassName  string
	MethodName string
	LineNumber int
}

func (l Location) String() string {
	return fmt.Sprintf("%s.%s:%d", l.ClassName, l.MethodName, l.LineNumber)
}

// ClassInfo is the minimal reflection surface this module needs from
// the debuggee, sufficient for the out-of-core VM facade (§1) to
// enumerate classes; the request/event pipeline itself never calls
// this.
type ClassInfo struct {
	Name   string
	Status string
}

// Event is a single native event delivered by the debuggee, after the
// low-level connection has decoded it off the wire. The pipeline
// subsystem only ever reads from an Event; it never mutates one.
type Event struct {
	Kind Kind

	// RequestProperties echoes the properties of the native request
	// that produced this event, including UniqueIDProperty. Absent
	// for the VM lifecycle kinds, which are not tied to a specific
	// request.
	RequestProperties map[string]string

	// Location is set for location-bearing events (breakpoint,
	// method entry/exit, watchpoints, step, exception).
	Location *Location

	// ClassName is the declaring type name for class-scoped events,
	// used by class inclusion/exclusion filters. Mirrors
	// Location.ClassName when Location is set, but is also populated
	// for class-prepare/unload, which have no Location.
	ClassName string

	Thread ThreadID

	// Payload carries kind-specific extra fields (the watched
	// object id, the exception object, the new field value, the
	// monitor's timeout, ...). Keys are kind-specific; lib/jdiarg's
	// Data event-arg reads them by name.
	Payload map[string]any
}

// Property returns the named request property echoed on this event,
// and whether it was present.
func (e Event) Property(key string) (string, bool) {
	value, ok := e.RequestProperties[key]
	return value, ok
}

// Connection is the low-level debugger connection this module treats
// as an external collaborator (§6). It is assumed already attached to
// a debuggee; this module never dials or authenticates.
type Connection interface {
	CreateBreakpointRequest(fileName string, lineNumber int, spec RequestSpec) (NativeHandle, error)
	CreateMethodEntryRequest(className, methodName string, spec RequestSpec) (NativeHandle, error)
	CreateMethodExitRequest(className, methodName string, spec RequestSpec) (NativeHandle, error)
	CreateMonitorWaitRequest(spec RequestSpec) (NativeHandle, error)
	CreateMonitorWaitedRequest(spec RequestSpec) (NativeHandle, error)
	CreateMonitorContendedEnterRequest(spec RequestSpec) (NativeHandle, error)
	CreateMonitorContendedEnteredRequest(spec RequestSpec) (NativeHandle, error)
	CreateClassPrepareRequest(spec RequestSpec) (NativeHandle, error)
	CreateClassUnloadRequest(spec RequestSpec) (NativeHandle, error)
	CreateThreadStartRequest(spec RequestSpec) (NativeHandle, error)
	CreateThreadDeathRequest(spec RequestSpec) (NativeHandle, error)
	CreateExceptionRequest(exceptionClassName string, notifyCaught, notifyUncaught bool, spec RequestSpec) (NativeHandle, error)
	CreateAccessWatchpointRequest(className, fieldName string, spec RequestSpec) (NativeHandle, error)
	CreateModificationWatchpointRequest(className, fieldName string, spec RequestSpec) (NativeHandle, error)
	CreateStepRequest(threadID ThreadID, size StepSize, depth StepDepth, spec RequestSpec) (NativeHandle, error)
	CreateVMStartRequest(spec RequestSpec) (NativeHandle, error)
	CreateVMDeathRequest(spec RequestSpec) (NativeHandle, error)
	CreateVMDisconnectRequest(spec RequestSpec) (NativeHandle, error)

	// Enable installs a created-but-not-yet-active request. Real JDI
	// requests are enabled separately from creation; the request
	// managers in lib/reqmgr call this immediately after create,
	// before publishing the request into their indices (§4.2's atomic
	// registration contract).
	Enable(handle NativeHandle) error

	// Delete removes a native request. Idempotent: deleting an
	// already-deleted or unknown handle is not an error.
	Delete(handle NativeHandle) error

	// PollEvents blocks until at least one native event is available
	// or the connection is torn down, in which case it returns
	// ErrTerminal. This is the sole blocking point in
	// lib/eventmgr's dispatcher loop (§5).
	PollEvents() ([]Event, error)

	MainThread() (ThreadID, error)
	Classes() ([]ClassInfo, error)
}

// ErrTerminal is returned by PollEvents once the debuggee has
// disconnected or died. The event manager treats it as the trigger for
// closing every live pipeline (§5, §7 TerminalVM).
var ErrTerminal = fmt.Errorf("jdi: connection terminated")
