// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdiarg

import (
	"fmt"
	"sort"
	"strings"
)

// Fingerprint renders a request-arg set as a canonical, order-
// independent string suitable for use as a memoization map key or for
// equality comparison. The unique-id property is always excluded
// first (§9 "Memoization invalidation": equality of request-arg sets
// is modulo the unique-id property).
func Fingerprint(args []RequestArg) string {
	stripped := StripUniqueID(args)
	parts := make([]string, 0, len(stripped))
	for _, arg := range stripped {
		parts = append(parts, fingerprintOne(arg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func fingerprintOne(arg RequestArg) string {
	switch a := arg.(type) {
	case ClassInclude:
		return "class_include:" + a.Pattern
	case ClassExclude:
		return "class_exclude:" + a.Pattern
	case InstanceFilter:
		return "instance:" + string(a.Object)
	case CountFilter:
		return fmt.Sprintf("count:%d", a.N)
	case ThreadFilter:
		return "thread:" + string(a.Thread)
	case SuspendPolicyArg:
		return "suspend_policy:" + string(a.Policy)
	case EnabledArg:
		return fmt.Sprintf("enabled:%v", a.Enabled)
	case Property:
		return "property:" + a.Key + "=" + a.Value
	default:
		// Unknown RequestArg implementations (user extensions that
		// also happen to satisfy RequestArg) still need a stable
		// fingerprint; fall back to the label plus a pointer-free
		// %#v, which is stable for the comparable, field-only structs
		// this module expects arguments to be.
		return fmt.Sprintf("%s:%#v", a.argumentLabel(), a)
	}
}

// EqualRequestArgs reports whether two request-arg sets are equal
// modulo the unique-id property and argument order.
func EqualRequestArgs(a, b []RequestArg) bool {
	return Fingerprint(a) == Fingerprint(b)
}

// FingerprintEvent is Fingerprint's event-arg counterpart, used by
// lib/profile to derive the per-kind subscriber key that
// PipelineCounter is indexed by (§3 "PipelineCounter").
func FingerprintEvent(args []EventArg) string {
	stripped := StripUniqueIDEvent(args)
	parts := make([]string, 0, len(stripped))
	for _, arg := range stripped {
		parts = append(parts, fingerprintOneEvent(arg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func fingerprintOneEvent(arg EventArg) string {
	switch a := arg.(type) {
	case MethodNameFilter:
		return "method_name:" + a.Name
	case EventProperty:
		return "event_property:" + a.Key + "=" + a.Value
	case Data:
		return "data:" + a.Key
	default:
		return fmt.Sprintf("%s:%#v", a.argumentLabel(), a)
	}
}
