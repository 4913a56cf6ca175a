// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline implements the lazy, composable, closable push-
// stream primitive described in spec §3/§4.4: a graph of stages, each
// holding downstream stages and close callbacks. Pushing an item walks
// downstream in registration order; closing propagates to downstream
// stages and runs close callbacks bottom-up, exactly once.
//
// Design note (spec §9 "Pipeline close-union"): rather than modeling
// unionOutput as a primitive that builds a new stage, this package
// exposes OnClose directly and derives UnionOutput from it — attaching
// another pipeline's Close as one more close callback on the receiver.
// This is the "cleaner systems design" the spec's design notes call
// for; unionOutput becomes a one-line wrapper instead of its own
// graph-construction path.
package pipeline
