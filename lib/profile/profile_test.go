// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jdi-foundation/jdipipeline/lib/eventmgr"
	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/jdiarg"
	"github.com/jdi-foundation/jdipipeline/lib/jdierr"
	"github.com/jdi-foundation/jdipipeline/lib/pipeline"
	"github.com/jdi-foundation/jdipipeline/lib/reqmgr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Scenario A (spec §8): subscribing twice with identical args shares
// one native request.
func TestMemoizationSharesNativeRequestForIdenticalArgs(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewMethodEntryProfile(discardLogger(), conn, events)
	key := reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"}

	first, err := prof.On(key)
	if err != nil {
		t.Fatalf("On: %v", err)
	}
	defer first.Close()

	second, err := prof.On(key)
	if err != nil {
		t.Fatalf("On: %v", err)
	}
	defer second.Close()

	if len(prof.manager.ListByID()) != 1 {
		t.Errorf("native requests = %d, want exactly 1 (memoized)", len(prof.manager.ListByID()))
	}
}

// Scenario B (spec §8): subscribing with different request-args (here,
// a different CountFilter) creates independent requests even though the
// natural key is the same UnitKey kind.
func TestDifferentRequestArgsCreateDistinctRequests(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewThreadStartProfile(discardLogger(), conn, events)

	first, err := prof.On("", jdiarg.CountFilter{N: 1})
	if err != nil {
		t.Fatalf("On: %v", err)
	}
	defer first.Close()

	second, err := prof.On("", jdiarg.CountFilter{N: 2})
	if err != nil {
		t.Fatalf("On: %v", err)
	}
	defer second.Close()

	if len(prof.manager.ListByID()) != 2 {
		t.Errorf("native requests = %d, want 2 (distinct CountFilter values)", len(prof.manager.ListByID()))
	}
}

// Regression test for the pipeline close-cascade direction: On returns
// a Map-derived stage, and Close only cascades from a stage to its
// downstream children, never back to the parent it was derived from.
// Closing the returned (derived) pipeline must still tear down the
// underlying subscription — removing the native request — because On
// explicitly unions the derived stage's close back onto its parent.
func TestClosingDerivedOnPipelineRemovesNativeRequest(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewMethodEntryProfile(discardLogger(), conn, events)
	key := reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"}

	stream, err := prof.On(key)
	if err != nil {
		t.Fatalf("On: %v", err)
	}

	if !prof.manager.Has(key) {
		t.Fatal("expected a native request to exist right after subscribing")
	}

	stream.Close()

	if prof.manager.Has(key) {
		t.Error("closing the pipeline returned by On should remove the underlying native request")
	}
}

// Pipeline counter lifecycle (spec §3 invariant I5, §4.6 steps 5-6):
// the native request survives until every subscriber sharing its
// subscriber key has closed.
func TestPipelineCounterKeepsRequestAliveUntilLastClose(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewMethodEntryProfile(discardLogger(), conn, events)
	key := reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"}

	first, err := prof.On(key)
	if err != nil {
		t.Fatalf("On: %v", err)
	}
	second, err := prof.On(key)
	if err != nil {
		t.Fatalf("On: %v", err)
	}

	first.Close()
	if !prof.manager.Has(key) {
		t.Error("request should survive while a second subscriber is still open")
	}

	second.Close()
	if prof.manager.Has(key) {
		t.Error("request should be removed once the last subscriber sharing its key closes")
	}
}

// Scenario F (spec §8): a native creation failure propagates out of
// On/OnWithData as-is (profile.go:81-98's compute), and leaves no
// memoized entry behind for the next subscribe to find stale.
func TestCreationFailurePropagatesAndLeavesNothingMemoized(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewMethodEntryProfile(discardLogger(), conn, events)
	key := reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"}

	conn.InjectCreateFailure(jdi.MethodEntry, errors.New("debuggee refused"))

	_, err := prof.On(key)
	if !jdierr.IsNativeCreationFailed(err, string(jdi.MethodEntry)) {
		t.Fatalf("On = %v, want a NativeCreationFailedError", err)
	}
	if prof.manager.Has(key) {
		t.Error("a failed create should not have registered a native request")
	}

	// Retrying with no injected failure must succeed — proving the
	// failed attempt left nothing memoized that would have made this
	// retry reuse a bogus cached request id.
	stream, err := prof.On(key)
	if err != nil {
		t.Fatalf("On after failed create: %v", err)
	}
	defer stream.Close()
	if !prof.manager.Has(key) {
		t.Error("expected the retried On to succeed and register the key")
	}
}

// Caller-supplied unique ids take precedence over a generated one
// (§9 Open Question, resolved in this module's favor of the caller).
func TestCallerSuppliedUniqueIDTakesPrecedence(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewMethodEntryProfile(discardLogger(), conn, events)
	key := reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"}

	stream, err := prof.On(key, jdiarg.UniqueID{ID: "caller-chosen"})
	if err != nil {
		t.Fatalf("On: %v", err)
	}
	defer stream.Close()

	if !prof.manager.HasByID("caller-chosen") {
		t.Error("expected the request to be registered under the caller-supplied id")
	}
}

// Step requests are single-shot (spec §4.2): the manager removes the
// record automatically after the first matching event.
func TestStepProfileIsSingleShot(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewStepProfile(discardLogger(), conn, events)
	key := reqmgr.StepKey{ThreadID: "main", Size: jdi.StepLine, Depth: jdi.StepInto}

	stream, err := prof.On(key)
	if err != nil {
		t.Fatalf("On: %v", err)
	}
	defer stream.Close()

	if !prof.manager.Has(key) {
		t.Fatal("expected a native request to exist right after subscribing")
	}

	conn.Feed(jdi.TapeEvent{Kind: jdi.Step, Thread: "main"})
	conn.Terminate()
	events.Run(context.Background())

	if prof.manager.Has(key) {
		t.Error("step request should be auto-removed after its first matching event")
	}
}

// OnWithData delivers the extracted AuxData alongside the raw event.
func TestOnWithDataDeliversEventAndAuxData(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewMethodEntryProfile(discardLogger(), conn, events)
	key := reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"}

	stream, err := prof.OnWithData(key, jdiarg.Data{Key: "iteration"})
	if err != nil {
		t.Fatalf("OnWithData: %v", err)
	}
	defer stream.Close()

	var received []eventmgr.EventData
	pipeline.Noop(stream, func(d eventmgr.EventData) { received = append(received, d) })

	conn.Feed(jdi.TapeEvent{
		Kind: jdi.MethodEntry, ClassName: "demo.Main", MethodName: "run",
		Thread: "main", Payload: map[string]any{"iteration": 5},
	})
	conn.Terminate()
	events.Run(context.Background())

	if len(received) != 1 {
		t.Fatalf("received %d events, want 1", len(received))
	}
	if len(received[0].Aux) != 1 || received[0].Aux[0].Value != 5 {
		t.Errorf("aux = %v, want one entry with value 5", received[0].Aux)
	}
}

// On's returned pipeline forwards only the raw event, never the aux data.
func TestOnReturnsRawEvents(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewMethodEntryProfile(discardLogger(), conn, events)
	key := reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"}

	stream, err := prof.On(key)
	if err != nil {
		t.Fatalf("On: %v", err)
	}
	defer stream.Close()

	var received []jdi.Event
	pipeline.Noop(stream, func(e jdi.Event) { received = append(received, e) })

	conn.Feed(jdi.TapeEvent{Kind: jdi.MethodEntry, ClassName: "demo.Main", MethodName: "run", Thread: "main"})
	conn.Terminate()
	events.Run(context.Background())

	if len(received) != 1 || received[0].Kind != jdi.MethodEntry {
		t.Errorf("received = %v, want one method_entry event", received)
	}
}

// Terminal-VM events close every open profile subscription and stop
// accepting new creates (spec §5, §7 TerminalVM).
func TestSessionMarksAllManagersTerminalOnVMDeath(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	session := NewSession(discardLogger(), conn)

	conn.Feed(jdi.TapeEvent{Kind: jdi.VMDeath})
	session.Run(context.Background())

	_, err := session.MethodEntry.On(reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"})
	if err == nil {
		t.Error("expected subscribing after vm-death to fail")
	}
}

// Scenario E (spec §8): a live pipeline, opened before vm-death, must
// actually close when the event manager observes the terminal
// condition — and its native request must be removed, draining the
// profile's counter map to empty.
func TestVMDeathClosesLiveSubscriptionAndDrainsRequest(t *testing.T) {
	conn := jdi.NewMockConnection("main", nil)
	events := eventmgr.New(discardLogger(), conn)
	prof := NewMethodEntryProfile(discardLogger(), conn, events)
	key := reqmgr.MethodKey{ClassName: "demo.Main", MethodName: "run"}

	stream, err := prof.On(key)
	if err != nil {
		t.Fatalf("On: %v", err)
	}

	if !prof.manager.Has(key) {
		t.Fatal("expected a native request to exist right after subscribing")
	}

	conn.Feed(jdi.TapeEvent{Kind: jdi.VMDeath})
	events.Run(context.Background())

	if !stream.Closed() {
		t.Error("expected the live subscription to close once vm-death is observed")
	}
	if prof.manager.Has(key) {
		t.Error("expected the native request to be removed once its last subscriber's pipeline closes")
	}
}
