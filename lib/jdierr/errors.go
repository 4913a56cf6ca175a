// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package jdierr defines the structured error kinds this module
// surfaces to callers (spec §7). There are exactly four: a request the
// debuggee refused to create, a value-facade precondition violation, an
// unrecognized value category, and the terminal-VM condition. Callers
// use errors.As to recover the structured form.
package jdierr

import (
	"errors"
	"fmt"
)

// NativeCreationFailedError wraps the underlying cause when the
// debuggee refuses to create a native request. Request managers return
// this from createWithId/create without writing to either index
// (§4.2's crash-safety contract).
type NativeCreationFailedError struct {
	Kind  string // the event kind being requested, e.g. "breakpoint"
	Cause error
}

func (e *NativeCreationFailedError) Error() string {
	return fmt.Sprintf("jdi: native creation failed for %s request: %v", e.Kind, e.Cause)
}

func (e *NativeCreationFailedError) Unwrap() error { return e.Cause }

// IsNativeCreationFailed reports whether err is a
// *NativeCreationFailedError, optionally for a specific kind.
func IsNativeCreationFailed(err error, kind string) bool {
	var creationErr *NativeCreationFailedError
	if !errors.As(err, &creationErr) {
		return false
	}
	return kind == "" || creationErr.Kind == kind
}

// NotAnXError signals a hard precondition violation in the value
// facade (out-of-core, but observable at the boundary this module
// hands events across): code asked a profile's payload for a value of
// a kind it is not. This is a programmer error, not a recoverable
// condition — callers should not retry.
type NotAnXError struct {
	Want string // "array", "object", "primitive"
	Got  string
}

func (e *NotAnXError) Error() string {
	return fmt.Sprintf("jdi: not a%s %s: got %s", article(e.Want), e.Want, e.Got)
}

func article(word string) string {
	if len(word) == 0 {
		return ""
	}
	switch word[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "n"
	default:
		return ""
	}
}

// UnknownValueError marks a value category the wrapper does not
// recognize. Unlike NotAnXError, this is non-fatal: the caller should
// log it and drop the value, mirroring the source's tolerance for
// unexpected intermediate debuggee objects.
type UnknownValueError struct {
	Category string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("jdi: unknown value category %q", e.Category)
}

// TerminalVMError is returned once vm-death or vm-disconnect has been
// observed. Every create* call made after that point fails fast with
// this error rather than attempting a doomed native call.
type TerminalVMError struct {
	Reason string // "vm_death" or "vm_disconnect"
}

func (e *TerminalVMError) Error() string {
	return fmt.Sprintf("jdi: connection terminal (%s)", e.Reason)
}

// IsTerminal reports whether err is a *TerminalVMError.
func IsTerminal(err error) bool {
	var terminalErr *TerminalVMError
	return errors.As(err, &terminalErr)
}
