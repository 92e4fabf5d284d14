// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Capshim-digest prints the module digest of a file, the value to put
// in module.digest (or CAPSHIM_MODULE_DIGEST) to pin that exact module.
//
//	capshim-digest <module-file>
//	capshim-digest --check <hex> <module-file>
//
// With --check it verifies the file instead and exits 1 on mismatch.
package main
