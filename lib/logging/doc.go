// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the structured logger used by capshim
// binaries.
//
// Stderr doubles as the diagnostic channel of the shim contract
// ("Execution failed: ..."), so the logger defaults to warn level and
// stays silent on the success path. Raising the level to debug records
// which module backend served a call and how long it took.
package logging
