// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventmgr dispatches native debuggee events to registered
// handlers after applying event-argument filters (spec §4.3). It is
// single-writer: one dispatcher goroutine drains the low-level
// connection's event queue and runs every handler callback on that
// goroutine, so handlers must not block (spec §5).
package eventmgr
