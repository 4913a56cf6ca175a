// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdiarg

import "testing"

func TestFingerprintOrderIndependent(t *testing.T) {
	a := []RequestArg{ClassInclude{Pattern: "demo.*"}, ThreadFilter{Thread: "main"}}
	b := []RequestArg{ThreadFilter{Thread: "main"}, ClassInclude{Pattern: "demo.*"}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Errorf("Fingerprint(a) = %q, Fingerprint(b) = %q, want equal regardless of order", Fingerprint(a), Fingerprint(b))
	}
}

func TestFingerprintIgnoresUniqueID(t *testing.T) {
	a := []RequestArg{ClassInclude{Pattern: "demo.*"}}
	b := []RequestArg{ClassInclude{Pattern: "demo.*"}, UniqueID{ID: "abc"}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Errorf("Fingerprint should be modulo UniqueID: got %q vs %q", Fingerprint(a), Fingerprint(b))
	}
}

func TestFingerprintDistinguishesDifferentArgs(t *testing.T) {
	a := []RequestArg{CountFilter{N: 1}}
	b := []RequestArg{CountFilter{N: 2}}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("distinct CountFilter values should fingerprint differently")
	}
}

func TestEqualRequestArgs(t *testing.T) {
	a := []RequestArg{ClassInclude{Pattern: "demo.*"}, UniqueID{ID: "abc"}}
	b := []RequestArg{UniqueID{ID: "xyz"}, ClassInclude{Pattern: "demo.*"}}

	if !EqualRequestArgs(a, b) {
		t.Error("EqualRequestArgs should ignore UniqueID and argument order")
	}
}

func TestFingerprintEventOrderIndependent(t *testing.T) {
	a := []EventArg{MethodNameFilter{Name: "run"}, EventProperty{Key: "k", Value: "v"}}
	b := []EventArg{EventProperty{Key: "k", Value: "v"}, MethodNameFilter{Name: "run"}}

	if FingerprintEvent(a) != FingerprintEvent(b) {
		t.Errorf("FingerprintEvent(a) = %q, FingerprintEvent(b) = %q, want equal", FingerprintEvent(a), FingerprintEvent(b))
	}
}

func TestFingerprintEventIgnoresUniqueID(t *testing.T) {
	a := []EventArg{MethodNameFilter{Name: "run"}}
	b := []EventArg{MethodNameFilter{Name: "run"}, UniqueID{ID: "abc"}}

	if FingerprintEvent(a) != FingerprintEvent(b) {
		t.Errorf("FingerprintEvent should be modulo UniqueID: got %q vs %q", FingerprintEvent(a), FingerprintEvent(b))
	}
}

func TestFingerprintEventDistinguishesDataKey(t *testing.T) {
	a := []EventArg{Data{Key: "iteration"}}
	b := []EventArg{Data{Key: "count"}}

	if FingerprintEvent(a) == FingerprintEvent(b) {
		t.Error("different Data keys should fingerprint differently — they identify distinct subscriber filter sets")
	}
}
