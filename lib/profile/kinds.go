// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"log/slog"

	"github.com/jdi-foundation/jdipipeline/lib/eventmgr"
	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/reqmgr"
)

// Per-kind constructors. Each pairs the matching lib/reqmgr manager
// constructor with this package's generic Profile, and flags the one
// kind (step) that deviates into single-shot behavior (spec §4.2).

func NewBreakpointProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.BreakpointKey] {
	return New(logger, jdi.Breakpoint, reqmgr.NewBreakpointManager(logger, conn), events, false)
}

func NewMethodEntryProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.MethodKey] {
	return New(logger, jdi.MethodEntry, reqmgr.NewMethodEntryManager(logger, conn), events, false)
}

func NewMethodExitProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.MethodKey] {
	return New(logger, jdi.MethodExit, reqmgr.NewMethodExitManager(logger, conn), events, false)
}

func NewMonitorWaitProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.MonitorWait, reqmgr.NewMonitorWaitManager(logger, conn), events, false)
}

func NewMonitorWaitedProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.MonitorWaited, reqmgr.NewMonitorWaitedManager(logger, conn), events, false)
}

func NewMonitorContendedEnterProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.MonitorContendedEnter, reqmgr.NewMonitorContendedEnterManager(logger, conn), events, false)
}

func NewMonitorContendedEnteredProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.MonitorContendedEntered, reqmgr.NewMonitorContendedEnteredManager(logger, conn), events, false)
}

func NewClassPrepareProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.ClassPrepare, reqmgr.NewClassPrepareManager(logger, conn), events, false)
}

func NewClassUnloadProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.ClassUnload, reqmgr.NewClassUnloadManager(logger, conn), events, false)
}

func NewThreadStartProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.ThreadStart, reqmgr.NewThreadStartManager(logger, conn), events, false)
}

func NewThreadDeathProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.ThreadDeath, reqmgr.NewThreadDeathManager(logger, conn), events, false)
}

func NewExceptionProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.ExceptionKey] {
	return New(logger, jdi.Exception, reqmgr.NewExceptionManager(logger, conn), events, false)
}

func NewAccessWatchpointProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.WatchpointKey] {
	return New(logger, jdi.AccessWatchpoint, reqmgr.NewAccessWatchpointManager(logger, conn), events, false)
}

func NewModificationWatchpointProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.WatchpointKey] {
	return New(logger, jdi.ModificationWatchpoint, reqmgr.NewModificationWatchpointManager(logger, conn), events, false)
}

// NewStepProfile is the one deviating kind: single-shot, per spec
// §4.2 ("the manager deletes the record automatically after the first
// matching event is observed").
func NewStepProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.StepKey] {
	return New(logger, jdi.Step, reqmgr.NewStepManager(logger, conn), events, true)
}

func NewVMStartProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.VMStart, reqmgr.NewVMStartManager(logger, conn), events, false)
}

func NewVMDeathProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.VMDeath, reqmgr.NewVMDeathManager(logger, conn), events, false)
}

func NewVMDisconnectProfile(logger *slog.Logger, conn jdi.Connection, events *eventmgr.Manager) *Profile[reqmgr.UnitKey] {
	return New(logger, jdi.VMDisconnect, reqmgr.NewVMDisconnectManager(logger, conn), events, false)
}
