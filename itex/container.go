// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package itex implements the generic decoded-image loader and the
// `.itex` compressed container codec (C8).
//
// Covers generic decode, HDR/RGBE, and alpha dilation, plus the
// .itex container format itself, compressed with
// github.com/klauspost/compress/zlib.
package itex

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/gogpu/assetcore/assetcoreerrs"
)

const (
	// Magic is the ASCII bytes 'I','T','E','X' read as a little-endian u32.
	Magic uint32 = 0x58455449
	// Version is the only supported container version.
	Version uint16 = 1
	// HeaderSize is the fixed, packed header length in bytes.
	HeaderSize uint16 = 56
)

// Header is the 56-byte little-endian packed .itex header.
type Header struct {
	Magic             uint32
	Version           uint16
	HeaderSizeField   uint16
	Width             uint32
	Height            uint32
	Channels          uint32
	IsFloat           uint32
	HasAlpha          uint32
	HasSmoothAlpha    uint32
	UncompressedSize  uint32
	CompressedSize    uint32
	HandleValue       uint32
	HandleType        uint16
	HandleMeta        uint16
	Reserved0         uint32
	Reserved1         uint32
}

// Encode zlib-compresses pixels (a tightly packed, row-major,
// top-to-bottom base-level buffer) and writes a complete .itex file:
// header followed immediately by the compressed payload.
func Encode(w Header, pixels []byte) ([]byte, error) {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(pixels); err != nil {
		return nil, fmt.Errorf("itex: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("itex: compress: %w", err)
	}

	w.Magic = Magic
	w.Version = Version
	w.HeaderSizeField = HeaderSize
	w.UncompressedSize = uint32(len(pixels)) //nolint:gosec // image dimensions are bounded well under 2^32 bytes
	w.CompressedSize = uint32(compressed.Len())

	out := make([]byte, 0, int(HeaderSize)+compressed.Len())
	buf := bytes.NewBuffer(out)
	if err := writeHeader(buf, w); err != nil {
		return nil, err
	}
	buf.Write(compressed.Bytes())
	return buf.Bytes(), nil
}

// Decode parses a complete .itex file, validating the header and
// inflating the payload. Returns the header and the decompressed
// tightly-packed pixel buffer.
func Decode(data []byte) (Header, []byte, error) {
	if len(data) < int(HeaderSize) {
		return Header{}, nil, assetcoreerrs.NewCorruptionError("header", "file shorter than header size")
	}
	h, err := readHeader(bytes.NewReader(data[:HeaderSize]))
	if err != nil {
		return Header{}, nil, err
	}
	if h.Magic != Magic {
		return Header{}, nil, assetcoreerrs.NewRejectedInput("magic", "not an .itex file")
	}
	if h.Version != Version {
		return Header{}, nil, assetcoreerrs.NewRejectedInput("version", fmt.Sprintf("unsupported version %d", h.Version))
	}
	if h.HeaderSizeField != HeaderSize {
		return Header{}, nil, assetcoreerrs.NewCorruptionError("header_size", "mismatched header size field")
	}
	if h.Channels != 1 && h.Channels != 3 && h.Channels != 4 {
		return Header{}, nil, assetcoreerrs.NewRejectedInput("channels", "channels must be 1, 3, or 4")
	}

	payload := data[HeaderSize:]
	if uint32(len(payload)) < h.CompressedSize { //nolint:gosec // file sizes bounded well under 2^32 in practice
		return Header{}, nil, assetcoreerrs.NewCorruptionError("compressed_size", "payload shorter than declared compressed size")
	}
	payload = payload[:h.CompressedSize]

	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return Header{}, nil, assetcoreerrs.NewDecodeError("itex", err)
	}
	defer zr.Close()

	pixels := make([]byte, 0, h.UncompressedSize)
	buf := bytes.NewBuffer(pixels)
	if _, err := buf.ReadFrom(zr); err != nil {
		return Header{}, nil, assetcoreerrs.NewDecodeError("itex", err)
	}
	if uint32(buf.Len()) != h.UncompressedSize { //nolint:gosec // bounded well under 2^32 in practice
		return Header{}, nil, assetcoreerrs.NewCorruptionError("uncompressed_size", "decompressed length does not match header")
	}
	return h, buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, h Header) error {
	fields := []any{
		h.Magic, h.Version, h.HeaderSizeField,
		h.Width, h.Height, h.Channels,
		h.IsFloat, h.HasAlpha, h.HasSmoothAlpha,
		h.UncompressedSize, h.CompressedSize,
		h.HandleValue, h.HandleType, h.HandleMeta,
		h.Reserved0, h.Reserved1,
	}
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("itex: write header: %w", err)
		}
	}
	return nil
}

func readHeader(r *bytes.Reader) (Header, error) {
	var h Header
	fields := []any{
		&h.Magic, &h.Version, &h.HeaderSizeField,
		&h.Width, &h.Height, &h.Channels,
		&h.IsFloat, &h.HasAlpha, &h.HasSmoothAlpha,
		&h.UncompressedSize, &h.CompressedSize,
		&h.HandleValue, &h.HandleType, &h.HandleMeta,
		&h.Reserved0, &h.Reserved1,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return Header{}, fmt.Errorf("itex: read header: %w", err)
		}
	}
	return h, nil
}
