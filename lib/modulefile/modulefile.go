// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package modulefile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MaxSize bounds the decompressed size of a module source.
const MaxSize = 64 << 20

// Compression identifies how a module file is stored.
type Compression uint8

const (
	// CompressionNone is a plain source file.
	CompressionNone Compression = iota
	// CompressionZstd is a zstd frame (".zst").
	CompressionZstd
	// CompressionLZ4 is an LZ4 frame (".lz4").
	CompressionLZ4
)

// String returns the human-readable name of a compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// CompressionFor returns the compression implied by path's extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// SourceName strips a compression extension, so "module.lua.zst"
// reports as "module.lua" in Lua error positions.
func SourceName(path string) string {
	if CompressionFor(path) == CompressionNone {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// Read returns the decompressed contents of the module file at path.
func Read(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening module: %w", err)
	}
	defer file.Close()

	data, err := Decompress(file, CompressionFor(path))
	if err != nil {
		return nil, fmt.Errorf("reading module %s: %w", path, err)
	}
	return data, nil
}

// Decompress reads all of r, decoding it per compression. Output
// beyond MaxSize is an error.
func Decompress(r io.Reader, compression Compression) ([]byte, error) {
	var source io.Reader
	switch compression {
	case CompressionNone:
		source = r
	case CompressionZstd:
		decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer decoder.Close()
		source = decoder
	case CompressionLZ4:
		source = lz4.NewReader(r)
	default:
		return nil, fmt.Errorf("unsupported compression: %s", compression)
	}

	data, err := io.ReadAll(io.LimitReader(source, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", compression, err)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("module source exceeds %d bytes", MaxSize)
	}
	return data, nil
}

// Compress encodes data per compression, producing the bytes of a
// ".zst" or ".lz4" module file.
func Compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		defer encoder.Close()
		return encoder.EncodeAll(data, nil), nil

	case CompressionLZ4:
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buffer.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported compression: %s", compression)
	}
}
