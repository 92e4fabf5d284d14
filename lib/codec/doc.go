// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides capshim's CBOR encoding configuration.
//
// capshim speaks JSON on every user-facing surface: command-line
// arguments, standard output, and configuration files. CBOR is offered
// as an alternative envelope encoding between the exec module host and
// the delegated program (see lib/capability/execmodule), where a binary
// encoding avoids escaping and number round-trip issues.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Decoding into an any-typed target yields map[string]any for maps so
// that decoded envelopes can be handed straight to encoding/json.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Struct types carry `json` tags only; fxamacker/cbor reads `json` tags
// when `cbor` tags are absent, so one tag controls both encodings.
package codec
