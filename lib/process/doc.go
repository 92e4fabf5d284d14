// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for capshim
// binaries. These functions centralize the raw I/O and termination that
// happen outside the shim contracts:
//
//   - Error reporting ("error: <err>") for failures that precede the
//     shim contract (flag parsing, configuration loading).
//   - Mapping an error to its exit status ([ExitCode]).
//   - Process exit with the status code a shim runner returned.
//
// Shim runners in lib/shim never terminate the process themselves.
// They return a status code and main passes it to [Exit], so the
// terminate-with-status step is an explicit action at the end of every
// path rather than an unwind reaching the top level.
package process
