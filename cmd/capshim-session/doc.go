// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Capshim-session passes a token ID, a request path, and a request
// body to the delegated module's sign capability and prints the result
// as compact JSON. The three arguments are opaque and forwarded as
// given.
//
//	capshim-session [--config file] <tokenId> <path> <body>
package main
