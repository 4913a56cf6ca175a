// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdiarg

import "testing"

func TestPartition(t *testing.T) {
	args := []Argument{
		ClassInclude{Pattern: "demo.*"},
		MethodNameFilter{Name: "run"},
		UniqueID{ID: "abc"},
		Data{Key: "iteration"},
	}

	requestArgs, eventArgs, unknown := Partition(args)

	if len(requestArgs) != 2 {
		t.Fatalf("requestArgs = %v, want 2 entries (ClassInclude, UniqueID)", requestArgs)
	}
	if _, ok := requestArgs[0].(ClassInclude); !ok {
		t.Errorf("requestArgs[0] = %T, want ClassInclude", requestArgs[0])
	}
	if _, ok := requestArgs[1].(UniqueID); !ok {
		t.Errorf("requestArgs[1] = %T, want UniqueID", requestArgs[1])
	}

	if len(eventArgs) != 3 {
		t.Fatalf("eventArgs = %v, want 3 entries (MethodNameFilter, UniqueID, Data)", eventArgs)
	}

	if len(unknown) != 0 {
		t.Errorf("unknown = %v, want none", unknown)
	}
}

func TestHasUniqueID(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		args := []RequestArg{ClassInclude{Pattern: "x"}, UniqueID{ID: "abc"}}
		id, ok := HasUniqueID(args)
		if !ok || id.ID != "abc" {
			t.Errorf("HasUniqueID = (%v, %v), want (abc, true)", id, ok)
		}
	})

	t.Run("absent", func(t *testing.T) {
		args := []RequestArg{ClassInclude{Pattern: "x"}}
		_, ok := HasUniqueID(args)
		if ok {
			t.Error("HasUniqueID = true, want false")
		}
	})
}

func TestStripUniqueID(t *testing.T) {
	args := []RequestArg{ClassInclude{Pattern: "x"}, UniqueID{ID: "abc"}, ThreadFilter{Thread: "main"}}
	stripped := StripUniqueID(args)

	if len(stripped) != 2 {
		t.Fatalf("stripped = %v, want 2 entries", stripped)
	}
	for _, arg := range stripped {
		if _, ok := arg.(UniqueID); ok {
			t.Error("stripped still contains a UniqueID entry")
		}
	}
}

func TestStripUniqueIDEvent(t *testing.T) {
	args := []EventArg{MethodNameFilter{Name: "run"}, UniqueID{ID: "abc"}}
	stripped := StripUniqueIDEvent(args)

	if len(stripped) != 1 {
		t.Fatalf("stripped = %v, want 1 entry", stripped)
	}
	if _, ok := stripped[0].(MethodNameFilter); !ok {
		t.Errorf("stripped[0] = %T, want MethodNameFilter", stripped[0])
	}
}
