// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package eventmgr

import (
	"testing"

	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/jdiarg"
)

func TestEvaluateFiltersMethodName(t *testing.T) {
	event := jdi.Event{Location: &jdi.Location{ClassName: "demo.Main", MethodName: "run"}}

	accepted, _ := evaluateFilters([]jdiarg.EventArg{jdiarg.MethodNameFilter{Name: "run"}}, event)
	if !accepted {
		t.Error("matching method name should be accepted")
	}

	accepted, _ = evaluateFilters([]jdiarg.EventArg{jdiarg.MethodNameFilter{Name: "other"}}, event)
	if accepted {
		t.Error("non-matching method name should be rejected")
	}
}

func TestEvaluateFiltersUniqueID(t *testing.T) {
	event := jdi.Event{RequestProperties: map[string]string{jdi.UniqueIDProperty: "abc"}}

	accepted, _ := evaluateFilters([]jdiarg.EventArg{jdiarg.UniqueID{ID: "abc"}}, event)
	if !accepted {
		t.Error("matching unique id should be accepted")
	}

	accepted, _ = evaluateFilters([]jdiarg.EventArg{jdiarg.UniqueID{ID: "xyz"}}, event)
	if accepted {
		t.Error("non-matching unique id should be rejected")
	}
}

func TestEvaluateFiltersEventProperty(t *testing.T) {
	event := jdi.Event{RequestProperties: map[string]string{"tag": "v1"}}

	accepted, _ := evaluateFilters([]jdiarg.EventArg{jdiarg.EventProperty{Key: "tag", Value: "v1"}}, event)
	if !accepted {
		t.Error("matching event property should be accepted")
	}

	accepted, _ = evaluateFilters([]jdiarg.EventArg{jdiarg.EventProperty{Key: "tag", Value: "v2"}}, event)
	if accepted {
		t.Error("non-matching event property should be rejected")
	}
}

func TestEvaluateFiltersExtractsAuxData(t *testing.T) {
	event := jdi.Event{Payload: map[string]any{"iteration": 3}}

	accepted, aux := evaluateFilters([]jdiarg.EventArg{jdiarg.Data{Key: "iteration"}}, event)
	if !accepted {
		t.Fatal("Data imposes no filter; should always accept")
	}
	if len(aux) != 1 || aux[0].Identity != "iteration" || aux[0].Value != 3 {
		t.Errorf("aux = %v, want one entry (iteration, 3)", aux)
	}
}

func TestEvaluateFiltersAuxDataOrderMatchesFilterOrder(t *testing.T) {
	event := jdi.Event{Payload: map[string]any{"a": 1, "b": 2}}

	_, aux := evaluateFilters([]jdiarg.EventArg{jdiarg.Data{Key: "b"}, jdiarg.Data{Key: "a"}}, event)
	if len(aux) != 2 || aux[0].Identity != "b" || aux[1].Identity != "a" {
		t.Errorf("aux = %v, want [b a] matching the supplied filter order", aux)
	}
}

func TestEvaluateFiltersMissingPayloadKeySkipsAuxEntry(t *testing.T) {
	event := jdi.Event{Payload: map[string]any{}}

	accepted, aux := evaluateFilters([]jdiarg.EventArg{jdiarg.Data{Key: "missing"}}, event)
	if !accepted {
		t.Fatal("Data imposes no filter; should always accept")
	}
	if len(aux) != 0 {
		t.Errorf("aux = %v, want none when the payload key is absent", aux)
	}
}

func TestEvaluateFiltersNoFiltersAlwaysAccepts(t *testing.T) {
	accepted, aux := evaluateFilters(nil, jdi.Event{})
	if !accepted {
		t.Error("empty filter list should always accept")
	}
	if len(aux) != 0 {
		t.Errorf("aux = %v, want none", aux)
	}
}
