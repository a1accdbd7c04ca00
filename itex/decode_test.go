// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package itex

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestDecodeImagePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(1, 1, color.RGBA{R: 1, G: 2, B: 3, A: 128})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	d, err := decodeImage(buf.Bytes(), ".png")
	if err != nil {
		t.Fatalf("decodeImage: %v", err)
	}
	if d.Width != 2 || d.Height != 2 || d.Channels != 4 {
		t.Fatalf("unexpected decoded shape: %+v", d)
	}
}

func TestDecodeTGAUncompressed24(t *testing.T) {
	// 2x1 uncompressed truecolor, bottom-left origin (descriptor bit 5 unset).
	header := make([]byte, 18)
	header[2] = 2 // image type: uncompressed truecolor
	header[12], header[13] = 2, 0
	header[14], header[15] = 1, 0
	header[16] = 24
	pixels := []byte{
		0, 0, 255, // BGR pixel 0: pure red
		255, 0, 0, // BGR pixel 1: pure blue
	}
	data := append(header, pixels...)

	d, err := decodeTGA(data)
	if err != nil {
		t.Fatalf("decodeTGA: %v", err)
	}
	if d.Width != 2 || d.Height != 1 || d.Channels != 4 {
		t.Fatalf("unexpected shape: %+v", d)
	}
	if d.Bytes[0] != 255 || d.Bytes[1] != 0 || d.Bytes[2] != 0 {
		t.Fatalf("pixel 0 BGR->RGB conversion wrong: %v", d.Bytes[0:4])
	}
	if d.Bytes[4] != 0 || d.Bytes[5] != 0 || d.Bytes[6] != 255 {
		t.Fatalf("pixel 1 BGR->RGB conversion wrong: %v", d.Bytes[4:8])
	}
}

func TestDecodeNetpbmBinaryPPM(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("P6\n2 1\n255\n")
	buf.Write([]byte{255, 0, 0, 0, 255, 0})

	d, err := decodeImage(buf.Bytes(), ".ppm")
	if err != nil {
		t.Fatalf("decodeImage: %v", err)
	}
	if d.Width != 2 || d.Height != 1 {
		t.Fatalf("unexpected shape: %+v", d)
	}
	if d.Bytes[0] != 255 || d.Bytes[1] != 0 || d.Bytes[2] != 0 {
		t.Fatalf("pixel 0 mismatch: %v", d.Bytes[0:4])
	}
	if d.Bytes[4] != 0 || d.Bytes[5] != 255 || d.Bytes[6] != 0 {
		t.Fatalf("pixel 1 mismatch: %v", d.Bytes[4:8])
	}
}

func TestDecodeImageRejectsUnknownFormat(t *testing.T) {
	if _, err := decodeImage([]byte{0, 1, 2, 3}, ".psd"); err == nil {
		t.Fatalf("expected rejection for .psd")
	}
}
