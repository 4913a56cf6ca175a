// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package memo implements the memoizing cache described in spec §3/§4.5:
// a key→output mapping plus an invalidation predicate consulted on
// every lookup, never cached. This is what lets a Cell stay in sync
// with request removals driven from outside it — the request manager's
// index remains the single source of truth; the cell just avoids
// recomputing (re-creating a native request) when nothing has changed.
package memo
