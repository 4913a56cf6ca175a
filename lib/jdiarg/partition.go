// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdiarg

// Partition splits a heterogeneous argument sequence into three
// ordered sequences: request-arguments, event-arguments, and unknown
// (implementation-defined user extensions that satisfy neither
// marker interface). Ordering within each bucket is preserved from the
// input, since some filter combinations are order-sensitive at the
// native layer (§4.1). UniqueID, the dual variant, is appended to both
// the request-arg and event-arg buckets.
func Partition(args []Argument) (requestArgs []RequestArg, eventArgs []EventArg, unknown []Argument) {
	for _, arg := range args {
		matched := false

		if requestArg, ok := arg.(RequestArg); ok {
			requestArgs = append(requestArgs, requestArg)
			matched = true
		}
		if eventArg, ok := arg.(EventArg); ok {
			eventArgs = append(eventArgs, eventArg)
			matched = true
		}
		if !matched {
			unknown = append(unknown, arg)
		}
	}
	return requestArgs, eventArgs, unknown
}

// HasUniqueID reports whether args already contains a caller-supplied
// UniqueID, and returns it. Profiles use this to decide whether to
// generate a fresh id or honor the caller's (§9: the caller's id takes
// precedence over generation).
func HasUniqueID(args []RequestArg) (UniqueID, bool) {
	for _, arg := range args {
		if id, ok := arg.(UniqueID); ok {
			return id, true
		}
	}
	return UniqueID{}, false
}

// StripUniqueID returns a copy of args with any UniqueID entries
// removed. Used when comparing request-arg sets for memoization
// invalidation, which is defined modulo the unique-id property (§9
// "Memoization invalidation"), and when echoing a request's argument
// set back to callers without leaking the synthesized id (§9 "Unique-id
// property plumbing").
func StripUniqueID(args []RequestArg) []RequestArg {
	stripped := make([]RequestArg, 0, len(args))
	for _, arg := range args {
		if _, ok := arg.(UniqueID); ok {
			continue
		}
		stripped = append(stripped, arg)
	}
	return stripped
}

// StripUniqueIDEvent is StripUniqueID's event-arg counterpart, used
// when building the filter list for an event stream: the unique-id
// filter is prepended explicitly by the profile (§4.6 step 3), so any
// copy riding along in the caller's own event-args would be redundant
// at best and, if it names a different id, would wrongly narrow the
// stream.
func StripUniqueIDEvent(args []EventArg) []EventArg {
	stripped := make([]EventArg, 0, len(args))
	for _, arg := range args {
		if _, ok := arg.(UniqueID); ok {
			continue
		}
		stripped = append(stripped, arg)
	}
	return stripped
}
