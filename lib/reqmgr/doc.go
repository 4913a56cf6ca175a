// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package reqmgr implements the generic request-manager contract from
// spec §4.2: one Manager per event kind, each owning a natural-key→id
// index and an id→record index, created/removed atomically and kept
// mutually consistent (invariants I1–I4).
//
// A single generic Manager[K] type serves every event kind; only the
// natural-key shape K and the kind-specific native create call differ,
// and those are supplied at construction (spec §9's "capability set
// per event kind" re-architecture, instead of one hand-written manager
// type per kind).
package reqmgr
