// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package jdiarg implements the argument model described in spec §3
// and §4.1: a sum type over request-time filters (installed on the
// native request at creation) and event-time filters (applied to
// in-flight events at dispatch), plus the partitioner that splits a
// heterogeneous argument sequence into the two buckets.
//
// The unique-id property (UniqueID) is the one variant that belongs to
// both buckets at once: it is written into the request's properties
// and, as a twin filter, matched against every event the request
// produces. Partition emits it into both the request-arg and event-arg
// buckets, in the order it was supplied.
package jdiarg
