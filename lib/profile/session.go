// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"log/slog"

	"github.com/jdi-foundation/jdipipeline/lib/eventmgr"
	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/reqmgr"
)

// terminalMarker is satisfied by every reqmgr.Manager[K] instantiation;
// Session registers each manager's MarkTerminal against the shared
// event dispatcher so a single vm-death/vm-disconnect observation
// fails fast every subsequent create* call across all eighteen kinds
// (spec §5 "Terminal debuggee events").
type terminalMarker interface {
	MarkTerminal(reason string)
}

// Session wires one jdi.Connection to all eighteen event-kind
// profiles sharing a single event dispatcher — the top-level
// correlation glue spec §4.6 describes as "profiles (per event kind)".
// Constructing a Session is the one place a caller needs to reach into
// this module; everything else is reached through its fields.
type Session struct {
	Events *eventmgr.Manager

	Breakpoint              *Profile[reqmgr.BreakpointKey]
	MethodEntry             *Profile[reqmgr.MethodKey]
	MethodExit              *Profile[reqmgr.MethodKey]
	MonitorWait             *Profile[reqmgr.UnitKey]
	MonitorWaited           *Profile[reqmgr.UnitKey]
	MonitorContendedEnter   *Profile[reqmgr.UnitKey]
	MonitorContendedEntered *Profile[reqmgr.UnitKey]
	ClassPrepare            *Profile[reqmgr.UnitKey]
	ClassUnload             *Profile[reqmgr.UnitKey]
	ThreadStart             *Profile[reqmgr.UnitKey]
	ThreadDeath             *Profile[reqmgr.UnitKey]
	Exception               *Profile[reqmgr.ExceptionKey]
	AccessWatchpoint        *Profile[reqmgr.WatchpointKey]
	ModificationWatchpoint  *Profile[reqmgr.WatchpointKey]
	Step                    *Profile[reqmgr.StepKey]
	VMStart                 *Profile[reqmgr.UnitKey]
	VMDeath                 *Profile[reqmgr.UnitKey]
	VMDisconnect            *Profile[reqmgr.UnitKey]
}

// NewSession constructs every profile against conn and registers each
// one's request manager for terminal notification.
func NewSession(logger *slog.Logger, conn jdi.Connection) *Session {
	events := eventmgr.New(logger, conn)

	s := &Session{
		Events:                  events,
		Breakpoint:              NewBreakpointProfile(logger, conn, events),
		MethodEntry:             NewMethodEntryProfile(logger, conn, events),
		MethodExit:              NewMethodExitProfile(logger, conn, events),
		MonitorWait:             NewMonitorWaitProfile(logger, conn, events),
		MonitorWaited:           NewMonitorWaitedProfile(logger, conn, events),
		MonitorContendedEnter:   NewMonitorContendedEnterProfile(logger, conn, events),
		MonitorContendedEntered: NewMonitorContendedEnteredProfile(logger, conn, events),
		ClassPrepare:            NewClassPrepareProfile(logger, conn, events),
		ClassUnload:             NewClassUnloadProfile(logger, conn, events),
		ThreadStart:             NewThreadStartProfile(logger, conn, events),
		ThreadDeath:             NewThreadDeathProfile(logger, conn, events),
		Exception:               NewExceptionProfile(logger, conn, events),
		AccessWatchpoint:        NewAccessWatchpointProfile(logger, conn, events),
		ModificationWatchpoint:  NewModificationWatchpointProfile(logger, conn, events),
		Step:                    NewStepProfile(logger, conn, events),
		VMStart:                 NewVMStartProfile(logger, conn, events),
		VMDeath:                 NewVMDeathProfile(logger, conn, events),
		VMDisconnect:            NewVMDisconnectProfile(logger, conn, events),
	}

	for _, m := range s.terminalMarkers() {
		events.OnTerminal(m.MarkTerminal)
	}

	return s
}

func (s *Session) terminalMarkers() []terminalMarker {
	return []terminalMarker{
		s.Breakpoint.manager, s.MethodEntry.manager, s.MethodExit.manager,
		s.MonitorWait.manager, s.MonitorWaited.manager,
		s.MonitorContendedEnter.manager, s.MonitorContendedEntered.manager,
		s.ClassPrepare.manager, s.ClassUnload.manager,
		s.ThreadStart.manager, s.ThreadDeath.manager,
		s.Exception.manager,
		s.AccessWatchpoint.manager, s.ModificationWatchpoint.manager,
		s.Step.manager,
		s.VMStart.manager, s.VMDeath.manager, s.VMDisconnect.manager,
	}
}

// Run starts the shared dispatcher loop and blocks until ctx is
// cancelled or the connection goes terminal.
func (s *Session) Run(ctx context.Context) {
	s.Events.Run(ctx)
}
