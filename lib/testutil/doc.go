// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for capshim packages.
//
// [WriteFile] and [WriteScript] place delegated module fixtures (Lua
// scripts, shell programs speaking the exec envelope protocol) in a
// per-test temporary directory.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, for example distinct payloads in concurrent runs.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no capshim-internal dependencies.
package testutil
