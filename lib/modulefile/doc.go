// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package modulefile reads delegated module sources from disk,
// transparently decompressing them when the file name ends in ".zst"
// (zstd frame) or ".lz4" (LZ4 frame). Digests (lib/modulehash) always
// cover the file as stored, not the decompressed source.
package modulefile
