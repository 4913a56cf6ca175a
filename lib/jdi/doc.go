// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package jdi describes the low-level debugger connection this module
// builds on top of, plus the native event payload shapes it correlates
// against. Nothing in this package resolves source-level symbols,
// evaluates expressions, or owns a transport — it is the boundary
// contract a real JDI-backed connection (or, for tests and the demo
// CLI, MockConnection) must satisfy.
//
// The request/event pipeline in lib/reqmgr, lib/eventmgr, and
// lib/profile treats everything here as an opaque, already-connected
// collaborator.
package jdi
