// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile implements the per-event-kind subscription facade
// (spec §4.6): it wires a natural-key request manager (lib/reqmgr), a
// memoization cell (lib/memo), the event dispatcher (lib/eventmgr),
// and reference-counted pipeline teardown into the single On/OnWithData
// operation callers actually use.
package profile
