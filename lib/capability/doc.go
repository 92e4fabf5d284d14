// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capability defines the delegated capabilities the capshim
// binaries forward to, and the asynchronous call primitive they use.
//
// A delegated module exports up to three capabilities:
//
//   - [Decoder] -- decode(value) for an arbitrary JSON value
//   - [Fingerprinter] -- fingerprint() returning a pre-formatted string
//   - [Signer] -- sign(tokenId, path, body) over three opaque strings
//
// What a capability computes is the module's business; capshim only
// carries values in and out. [Module] bundles all three with Close.
// Backends live in subpackages (luamodule, execmodule) and are selected
// from configuration by lib/delegate. [Funcs] adapts plain functions to
// a Module so programs and tests can inject a substitute.
//
// Every delegated call runs through [Go], which starts the call on its
// own goroutine and returns a [Future] that settles exactly once. The
// caller suspends in [Future.Wait] and resumes on either the success or
// the failure path.
//
// Backend failures are reported as [*ExecutionError], which names the
// capability and wraps the cause. A module that does not export a
// capability fails with an error matching [ErrUnsupported].
package capability
