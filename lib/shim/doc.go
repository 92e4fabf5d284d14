// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package shim implements the argument, output, and exit-status
// contracts of the capshim binaries, independent of how the delegated
// module is hosted.
//
// Each runner takes the positional arguments left after flag parsing,
// makes exactly one delegated call through [capability.Go], and
// returns the process exit code. Runners never call os.Exit and never
// write to stdout on a failure path, so they can be tested (and run
// concurrently) in-process.
//
// Failure output is fixed per binary:
//
//	capshim-decode       Invalid JSON input            (argument problems)
//	                     Execution failed: <detail>    (delegated failure)
//	capshim-fingerprint  JS Error: <detail>
//	capshim-session      usage: capshim-session <tokenId> <path> <body>
//	                     Execution failed: <detail>
package shim
