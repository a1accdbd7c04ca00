// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package itex

import (
	"testing"

	"github.com/gogpu/assetcore/assetcoreerrs"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pixels := make([]byte, 4*4*4)
	for i := range pixels {
		pixels[i] = byte(i % 251)
	}
	h := Header{Width: 4, Height: 4, Channels: 4, HasAlpha: 1}

	data, err := Encode(h, pixels)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, gotPixels, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 4 || got.Height != 4 || got.Channels != 4 {
		t.Fatalf("dimensions mismatch: %+v", got)
	}
	if string(gotPixels) != string(pixels) {
		t.Fatalf("pixel round trip mismatch")
	}
	if len(data) < int(HeaderSize) {
		t.Fatalf("encoded file shorter than header")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := make([]byte, HeaderSize)
	_, _, err := Decode(data)
	if !assetcoreerrs.IsRejectedInput(err) {
		t.Fatalf("expected rejected-input error, got %v", err)
	}
}

func TestDecodeRejectsTruncatedFile(t *testing.T) {
	_, _, err := Decode([]byte{1, 2, 3})
	if !assetcoreerrs.IsCorruption(err) {
		t.Fatalf("expected corruption error, got %v", err)
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	pixels := make([]byte, 64)
	h := Header{Width: 4, Height: 4, Channels: 4}
	data, err := Encode(h, pixels)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	truncated := data[:len(data)-4]
	_, _, err = Decode(truncated)
	if err == nil {
		t.Fatalf("expected error decoding truncated payload")
	}
}
