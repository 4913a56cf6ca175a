// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package jdicodec provides this module's standard CBOR encoding
// configuration for internal, on-disk artifacts — specifically the
// recorded event tape MockConnection.LoadTape consumes. It exists so a
// demo session can ship a canned recording as a byte blob rather than
// Go literals, without every caller tuning its own encoder/decoder.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical tape always produces identical bytes, which keeps recorded
// fixtures diffable in version control.
package jdicodec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to accept standard CBOR.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("jdicodec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// TapeEvent.Payload is map[string]any; without this the decoder
		// would pick CBOR's default map[interface{}]interface{} for an
		// any-typed target, which is incompatible with the rest of this
		// module's code that type-asserts payload values by string key.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("jdicodec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
