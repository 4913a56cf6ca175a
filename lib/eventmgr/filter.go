// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package eventmgr

import (
	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/jdiarg"
)

// evaluateFilters reports whether event passes every filter in
// filters, and collects AuxData from any filter that also implements
// jdiarg.DataExtractor (spec §4.3 Produced — "(event, auxiliary-data)
// pairs"). AuxData is built in filter order regardless of whether that
// filter also gated acceptance, matching the "Supplemented Features"
// ordering decision recorded for this package.
func evaluateFilters(filters []jdiarg.EventArg, event jdi.Event) (bool, AuxData) {
	var aux AuxData

	for _, filter := range filters {
		switch f := filter.(type) {
		case jdiarg.MethodNameFilter:
			if event.Location == nil || event.Location.MethodName != f.Name {
				return false, nil
			}
		case jdiarg.UniqueID:
			value, ok := event.Property(jdi.UniqueIDProperty)
			if !ok || value != f.ID {
				return false, nil
			}
		case jdiarg.EventProperty:
			value, ok := event.Property(f.Key)
			if !ok || value != f.Value {
				return false, nil
			}
		}

		if extractor, ok := filter.(jdiarg.DataExtractor); ok {
			if value, ok := extractor.Extract(event); ok {
				aux = append(aux, AuxEntry{Identity: extractor.Identity(), Value: value})
			}
		}
	}

	return true, aux
}
