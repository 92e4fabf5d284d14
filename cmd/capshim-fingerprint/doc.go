// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Capshim-fingerprint prints the string produced by the delegated
// module's fingerprint capability. Positional arguments are ignored.
// Failures print "JS Error: <detail>" and exit 1; the prefix is kept
// for compatibility with callers that match on it.
package main
