// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdiarg

import "github.com/jdi-foundation/jdipipeline/lib/jdi"

// Argument is the sealed sum type over every filter this module
// recognizes. Concrete variants satisfy RequestArg, EventArg, or both
// (UniqueID is the sole dual variant — see §3). An Argument satisfying
// neither marker interface is an implementation-defined user
// extension: Partition returns it in its own bucket, and lib/profile's
// subscribe path discards that bucket, so such an argument does not
// reach the low-level layer.
type Argument interface {
	// argumentLabel names the variant for diagnostics only; it carries
	// no behavior.
	argumentLabel() string
}

// RequestArg is implemented by variants that carry creation-time
// semantics: filters installed on the native request.
type RequestArg interface {
	Argument
	ApplyToSpec(spec *jdi.RequestSpec)
}

// EventArg is implemented by variants that carry dispatch-time
// semantics: filters applied to in-flight events.
type EventArg interface {
	Argument
	// isEventArg is a marker; eventmgr interprets concrete EventArg
	// values via a type switch, not through this interface.
	isEventArg()
}

// DataExtractor is implemented by event-args that opt into populating
// AuxData on *WithData profile calls (§6 Produced). Identity names the
// pair's first element; Extract pulls the value out of a matched
// event, reporting false if the event does not carry it.
type DataExtractor interface {
	EventArg
	Identity() string
	Extract(event jdi.Event) (any, bool)
}

// --- Request-arg variants ---

// ClassInclude restricts a request to classes whose name matches the
// given pattern. Patterns may carry a leading or trailing '*'. Several
// may be supplied; a class matching any included pattern passes.
type ClassInclude struct{ Pattern string }

func (ClassInclude) argumentLabel() string { return "class_include" }
func (a ClassInclude) ApplyToSpec(spec *jdi.RequestSpec) {
	spec.ClassInclude = append(spec.ClassInclude, a.Pattern)
}

// ClassExclude excludes classes whose name matches the given pattern.
type ClassExclude struct{ Pattern string }

func (ClassExclude) argumentLabel() string { return "class_exclude" }
func (a ClassExclude) ApplyToSpec(spec *jdi.RequestSpec) {
	spec.ClassExclude = append(spec.ClassExclude, a.Pattern)
}

// InstanceFilter restricts a request to events raised on a specific
// heap object.
type InstanceFilter struct{ Object jdi.ObjectID }

func (InstanceFilter) argumentLabel() string { return "instance" }
func (a InstanceFilter) ApplyToSpec(spec *jdi.RequestSpec) { spec.InstanceID = a.Object }

// CountFilter causes the request to auto-disable after N matching
// events have been reported by the debuggee (JDI count filter
// semantics, not this module's single-shot step behavior).
type CountFilter struct{ N int }

func (CountFilter) argumentLabel() string { return "count" }
func (a CountFilter) ApplyToSpec(spec *jdi.RequestSpec) { spec.Count = a.N }

// ThreadFilter restricts a request to events raised on a specific
// thread.
type ThreadFilter struct{ Thread jdi.ThreadID }

func (ThreadFilter) argumentLabel() string { return "thread" }
func (a ThreadFilter) ApplyToSpec(spec *jdi.RequestSpec) { spec.ThreadID = a.Thread }

// SuspendPolicyArg overrides the default suspend policy
// (jdi.SuspendEventThread) for this request.
type SuspendPolicyArg struct{ Policy jdi.SuspendPolicy }

func (SuspendPolicyArg) argumentLabel() string { return "suspend_policy" }
func (a SuspendPolicyArg) ApplyToSpec(spec *jdi.RequestSpec) { spec.SuspendPolicy = a.Policy }

// EnabledArg overrides the default enabled=true (§4.2).
type EnabledArg struct{ Enabled bool }

func (EnabledArg) argumentLabel() string { return "enabled" }
func (a EnabledArg) ApplyToSpec(spec *jdi.RequestSpec) { spec.Enabled = a.Enabled }

// Property attaches a user-defined property to the request. The
// request managers apply it as given; they do not check Key against
// the reserved jdi.UniqueIDProperty.
type Property struct {
	Key   string
	Value string
}

func (Property) argumentLabel() string { return "property" }
func (a Property) ApplyToSpec(spec *jdi.RequestSpec) {
	if spec.Properties == nil {
		spec.Properties = make(map[string]string)
	}
	spec.Properties[a.Key] = a.Value
}

// --- Event-arg variants ---

// MethodNameFilter accepts an event iff its location's method name
// equals Name.
type MethodNameFilter struct{ Name string }

func (MethodNameFilter) argumentLabel() string { return "method_name" }
func (MethodNameFilter) isEventArg()            {}

// EventProperty accepts an event iff its source request carries the
// named property with the given value. General-purpose counterpart to
// the unique-id filter, for user-defined properties echoed by
// Property.
type EventProperty struct {
	Key   string
	Value string
}

func (EventProperty) argumentLabel() string { return "event_property" }
func (EventProperty) isEventArg()            {}

// Data opts an event-arg into AuxData extraction: the named payload
// key is copied into the (argumentIdentity, value) pair returned
// alongside the event from an on<Kind>WithData call (§6). Data itself
// imposes no filter — every event of the subscribed kind passes it.
type Data struct{ Key string }

func (Data) argumentLabel() string       { return "data" }
func (Data) isEventArg()                 {}
func (d Data) Identity() string          { return d.Key }
func (d Data) Extract(event jdi.Event) (any, bool) {
	value, ok := event.Payload[d.Key]
	return value, ok
}

// --- Dual variant ---

// UniqueID is written into the request's properties at creation time
// and, as a twin filter, matched against every event the request
// produces (§4.6 correlation rationale). Partition places it in both
// buckets. A profile method generates one automatically on a
// memoization miss unless the caller supplies their own, in which case
// the caller's id takes precedence (§9 open question, resolved in
// favor of "user's takes precedence").
type UniqueID struct{ ID string }

func (UniqueID) argumentLabel() string { return "unique_id" }
func (UniqueID) isEventArg()           {}
func (a UniqueID) ApplyToSpec(spec *jdi.RequestSpec) {
	if spec.Properties == nil {
		spec.Properties = make(map[string]string)
	}
	spec.Properties[jdi.UniqueIDProperty] = a.ID
}

var (
	_ RequestArg    = ClassInclude{}
	_ RequestArg    = ClassExclude{}
	_ RequestArg    = InstanceFilter{}
	_ RequestArg    = CountFilter{}
	_ RequestArg    = ThreadFilter{}
	_ RequestArg    = SuspendPolicyArg{}
	_ RequestArg    = EnabledArg{}
	_ RequestArg    = Property{}
	_ RequestArg    = UniqueID{}
	_ EventArg      = MethodNameFilter{}
	_ EventArg      = EventProperty{}
	_ EventArg      = Data{}
	_ EventArg      = UniqueID{}
	_ DataExtractor = Data{}
)
