// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Capshim-decode passes one JSON document to the delegated module's
// decode capability and prints the result as compact JSON.
//
//	capshim-decode [--config file] '<json-string>'
//
// An argument that is not exactly one JSON value prints
// "Invalid JSON input" and exits 1. A failure inside the module prints
// "Execution failed: <detail>" and exits 1. Flags are read only up to
// the first argument that is not a known flag, so "capshim-decode -1"
// decodes -1.
package main
