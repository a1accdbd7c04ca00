// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package stl

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

const sampleASCII = `solid triangle
facet normal 0 0 1
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 1 0
endloop
endfacet
endsolid triangle
`

func TestDecodeASCII(t *testing.T) {
	model, err := Decode([]byte(sampleASCII))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	lod := model.Submeshes[0].LODs[0]
	if len(lod.Vertices) != 3 || len(lod.Indices) != 3 {
		t.Fatalf("expected 3 vertices/indices, got %d/%d", len(lod.Vertices), len(lod.Indices))
	}
	if lod.Vertices[0].Normal[2] != 1 {
		t.Fatalf("expected facet normal to carry through, got %+v", lod.Vertices[0].Normal)
	}
}

func buildBinarySample(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, binaryHeaderSize))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(1))
	for i := 0; i < 12; i++ { // normal + 3 vertices = 4 vec3s
		_ = binary.Write(&buf, binary.LittleEndian, float32(0))
	}
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

func TestDecodeBinary(t *testing.T) {
	data := buildBinarySample(t)
	model, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(model.Submeshes[0].LODs[0].Indices) != 3 {
		t.Fatalf("expected one triangle")
	}
}

func TestLooksASCIIDisambiguatesBinaryHeaderStartingWithSolid(t *testing.T) {
	data := buildBinarySample(t)
	copy(data, "solid ")
	if looksASCII(data) {
		t.Fatalf("expected a binary file whose header happens to start with 'solid' to be detected as binary")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	model, err := Decode([]byte(sampleASCII))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, model); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("re-Decode: %v", err)
	}
	if len(again.Submeshes[0].LODs[0].Indices) != 3 {
		t.Fatalf("expected round trip to preserve one triangle")
	}
}

func TestDecodeASCIIRejectsUnbalancedFacet(t *testing.T) {
	bad := strings.Replace(sampleASCII, "vertex 0 1 0\n", "", 1)
	if _, err := Decode([]byte(bad)); err == nil {
		t.Fatalf("expected an error for a facet missing a vertex")
	}
}
