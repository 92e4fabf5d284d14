// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package modulehash pins delegated modules to an exact file content.
//
// A delegated module is opaque to capshim, so the only guarantee the
// shims can offer about it is that the bytes about to run are the bytes
// an operator approved. Configuration may carry a module digest; before
// opening the module, capshim hashes the file and refuses to run on a
// mismatch.
//
// Digests are BLAKE3 keyed hashes under the "capshim.module" domain
// key, so a module digest never collides with a plain BLAKE3 hash of
// the same file computed for another purpose.
//
// The API surface:
//
//   - [HashFile] -- streams a file through the keyed hasher with
//     constant memory usage
//   - [FormatDigest] / [ParseDigest] -- canonical lowercase hex form
//   - [Verify] -- hashes a file and compares against an expected digest
//
// The capshim-digest binary prints the digest to paste into config.
package modulehash
