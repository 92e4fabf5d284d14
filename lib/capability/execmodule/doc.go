// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package execmodule hosts a delegated module as an external program.
//
// Every capability call starts the program once, writes one request
// envelope to its stdin, closes stdin, and reads one response envelope
// from stdout:
//
//	request:  {"capability": "sign", "token_id": "...", "path": "...", "body": "..."}
//	          {"capability": "decode", "input": <any, null included>}
//	          {"capability": "fingerprint"}
//	response: {"result": <any>} or {"error": "message"}
//
// Envelopes are JSON by default or Core Deterministic CBOR (see
// lib/codec). A non-empty "error", a non-zero exit status, or an
// undecodable response all fail the call; the program's stderr is
// carried in the error text.
package execmodule
