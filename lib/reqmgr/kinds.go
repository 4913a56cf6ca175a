// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package reqmgr

import (
	"log/slog"

	"github.com/jdi-foundation/jdipipeline/lib/jdi"
)

// Natural-key shapes, one per distinct shape in spec §3's RequestKey
// table. Several event kinds share a shape (method-entry/exit share
// MethodKey; access/modification watchpoint share WatchpointKey).

// BreakpointKey is the natural key for breakpoint requests.
type BreakpointKey struct {
	FileName   string
	LineNumber int
}

// MethodKey is the natural key for method-entry and method-exit
// requests.
type MethodKey struct {
	ClassName  string
	MethodName string
}

// ExceptionKey is the natural key for exception requests.
type ExceptionKey struct {
	ExceptionClassName string
	NotifyCaught       bool
	NotifyUncaught     bool
}

// WatchpointKey is the natural key for access- and
// modification-watchpoint requests.
type WatchpointKey struct {
	ClassName string
	FieldName string
}

// StepKey is the natural key for step requests.
type StepKey struct {
	ThreadID jdi.ThreadID
	Size     jdi.StepSize
	Depth    jdi.StepDepth
}

// UnitKey is the natural key for event kinds with no user-meaningful
// identifying fields of their own: class-prepare/unload, thread-
// start/death, every monitor kind, and the vm-lifecycle kinds. Spec §3
// calls this a "unit key" because, absent from natural fields,
// de-duplication is carried entirely by the argument set — so the key
// here IS the caller's request-arg fingerprint (jdiarg.Fingerprint),
// not a true unit/singleton value. Two subscribes with different
// request-args (e.g. two different CountFilter values, spec §8
// Scenario B) therefore land on different keys and get independent
// requests, while two subscribes with the same args share one.
type UnitKey = string

func noopDefaults[K comparable](K, *jdi.RequestSpec) {}

// --- Per-kind manager constructors ---
//
// Each wraps the generic Manager[K] with the kind's native create call
// and request-arg defaults (spec §9: "only the key shape and
// native-create call differ per kind"). logger and conn are shared
// across every manager a caller constructs; each manager logs with its
// own kind so log lines stay attributable.

func NewBreakpointManager(logger *slog.Logger, conn jdi.Connection) *Manager[BreakpointKey] {
	return New(logger, jdi.Breakpoint, conn,
		func(key BreakpointKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateBreakpointRequest(key.FileName, key.LineNumber, spec)
		},
		noopDefaults[BreakpointKey],
	)
}

func NewMethodEntryManager(logger *slog.Logger, conn jdi.Connection) *Manager[MethodKey] {
	return New(logger, jdi.MethodEntry, conn,
		func(key MethodKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateMethodEntryRequest(key.ClassName, key.MethodName, spec)
		},
		func(key MethodKey, spec *jdi.RequestSpec) {
			spec.ClassInclude = append(spec.ClassInclude, key.ClassName)
		},
	)
}

func NewMethodExitManager(logger *slog.Logger, conn jdi.Connection) *Manager[MethodKey] {
	return New(logger, jdi.MethodExit, conn,
		func(key MethodKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateMethodExitRequest(key.ClassName, key.MethodName, spec)
		},
		func(key MethodKey, spec *jdi.RequestSpec) {
			spec.ClassInclude = append(spec.ClassInclude, key.ClassName)
		},
	)
}

func NewMonitorWaitManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.MonitorWait, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateMonitorWaitRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewMonitorWaitedManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.MonitorWaited, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateMonitorWaitedRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewMonitorContendedEnterManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.MonitorContendedEnter, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateMonitorContendedEnterRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewMonitorContendedEnteredManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.MonitorContendedEntered, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateMonitorContendedEnteredRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewClassPrepareManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.ClassPrepare, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateClassPrepareRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewClassUnloadManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.ClassUnload, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateClassUnloadRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewThreadStartManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.ThreadStart, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateThreadStartRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewThreadDeathManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.ThreadDeath, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateThreadDeathRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewExceptionManager(logger *slog.Logger, conn jdi.Connection) *Manager[ExceptionKey] {
	return New(logger, jdi.Exception, conn,
		func(key ExceptionKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateExceptionRequest(key.ExceptionClassName, key.NotifyCaught, key.NotifyUncaught, spec)
		},
		noopDefaults[ExceptionKey],
	)
}

func NewAccessWatchpointManager(logger *slog.Logger, conn jdi.Connection) *Manager[WatchpointKey] {
	return New(logger, jdi.AccessWatchpoint, conn,
		func(key WatchpointKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateAccessWatchpointRequest(key.ClassName, key.FieldName, spec)
		},
		func(key WatchpointKey, spec *jdi.RequestSpec) {
			spec.ClassInclude = append(spec.ClassInclude, key.ClassName)
		},
	)
}

func NewModificationWatchpointManager(logger *slog.Logger, conn jdi.Connection) *Manager[WatchpointKey] {
	return New(logger, jdi.ModificationWatchpoint, conn,
		func(key WatchpointKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateModificationWatchpointRequest(key.ClassName, key.FieldName, spec)
		},
		func(key WatchpointKey, spec *jdi.RequestSpec) {
			spec.ClassInclude = append(spec.ClassInclude, key.ClassName)
		},
	)
}

func NewStepManager(logger *slog.Logger, conn jdi.Connection) *Manager[StepKey] {
	return New(logger, jdi.Step, conn,
		func(key StepKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateStepRequest(key.ThreadID, key.Size, key.Depth, spec)
		},
		func(key StepKey, spec *jdi.RequestSpec) {
			spec.ThreadID = key.ThreadID
		},
	)
}

func NewVMStartManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.VMStart, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateVMStartRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewVMDeathManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.VMDeath, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateVMDeathRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}

func NewVMDisconnectManager(logger *slog.Logger, conn jdi.Connection) *Manager[UnitKey] {
	return New(logger, jdi.VMDisconnect, conn,
		func(_ UnitKey, spec jdi.RequestSpec) (jdi.NativeHandle, error) {
			return conn.CreateVMDisconnectRequest(spec)
		},
		noopDefaults[UnitKey],
	)
}
