// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package modulehash

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed digest of a module file.
type Digest [32]byte

// domainKey is the BLAKE3 key for module digests: the ASCII domain
// name, zero-padded to 32 bytes. Changing it invalidates every digest
// stored in configuration.
var domainKey = [32]byte{
	'c', 'a', 'p', 's', 'h', 'i', 'm', '.', 'm', 'o', 'd', 'u', 'l', 'e',
}

// ErrMismatch is returned by [Verify] when the file content does not
// match the expected digest.
var ErrMismatch = errors.New("module digest mismatch")

// HashReader computes the module digest of everything read from r.
func HashReader(r io.Reader) (Digest, error) {
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("modulehash: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	if _, err := io.Copy(hasher, r); err != nil {
		return Digest{}, err
	}
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// HashFile computes the module digest of the file at path.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	digest, err := HashReader(file)
	if err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}

// FormatDigest returns the lowercase hex encoding of digest.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// String implements fmt.Stringer.
func (d Digest) String() string {
	return FormatDigest(d)
}

// ParseDigest parses a 64-character hex string into a Digest.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing module digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("module digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// Verify hashes the file at path and compares it with expected, a hex
// digest. Returns an error wrapping [ErrMismatch] when they differ.
func Verify(path, expected string) error {
	want, err := ParseDigest(expected)
	if err != nil {
		return err
	}
	got, err := HashFile(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: %w (got %s, want %s)", path, ErrMismatch, got, want)
	}
	return nil
}
