// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the compression layer of a file export.
type Compression string

const (
	CompressionNone Compression = "none"

	// CompressionZstd is the better ratio for JSON (typically 8-15x on
	// reports dominated by resource snapshots).
	CompressionZstd Compression = "zstd"

	// CompressionLZ4 is faster to write and read, at roughly half the
	// ratio of zstd.
	CompressionLZ4 Compression = "lz4"
)

// Frame magic numbers, little-endian on the wire.
var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// ParseCompression validates a compression name. The empty string
// selects CompressionNone.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "":
		return CompressionNone, nil
	case CompressionNone, CompressionZstd, CompressionLZ4:
		return Compression(name), nil
	}
	return "", fmt.Errorf("unknown compression %q (want none, zstd, or lz4)", name)
}

// Extension returns the file suffix for the compression, with the dot,
// or "" for none.
func (c Compression) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionLZ4:
		return ".lz4"
	}
	return ""
}

// Package-level zstd encoder and decoder. Both are safe for concurrent
// use through EncodeAll/DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(fmt.Sprintf("zstd encoder initialization failed: %v", err))
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("zstd decoder initialization failed: %v", err))
	}
}

func compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone, "":
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
	case CompressionLZ4:
		// Frame format rather than raw blocks: the frame records its own
		// length and checksum, so a reader needs nothing but the file.
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buffer.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown compression %q", compression)
}

// decompress undoes whichever compression data's magic bytes announce.
// Data with neither magic is returned unchanged.
func decompress(data []byte) ([]byte, Compression, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		output, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, "", fmt.Errorf("zstd decompress: %w", err)
		}
		return output, CompressionZstd, nil
	case bytes.HasPrefix(data, lz4Magic):
		output, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, "", fmt.Errorf("lz4 decompress: %w", err)
		}
		return output, CompressionLZ4, nil
	}
	return data, CompressionNone, nil
}
