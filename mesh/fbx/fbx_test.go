// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package fbx

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// testNode is a writer-side mirror of node, used only to build fixture
// byte streams for the reader tests below.
type testNode struct {
	name       string
	properties []testProp
	children   []testNode
}

type testProp struct {
	kind byte // 'i' or 'd' array kinds used by these fixtures
	ints []int32
	dbls []float64
}

// encodeNode encodes n as if it starts at file offset start, since a
// node's end offset is an absolute file position.
func encodeNode(n testNode, start int) []byte {
	headerLen := 4 + 4 + 4 + 1 + len(n.name)
	var body bytes.Buffer
	for _, p := range n.properties {
		body.Write(encodeArrayProp(p))
	}
	for _, c := range n.children {
		body.Write(encodeNode(c, start+headerLen+body.Len()))
	}
	if len(n.children) > 0 {
		body.Write(make([]byte, 13)) // null sentinel record (non-wide)
	}

	var out bytes.Buffer
	headerPlaceholder := make([]byte, headerLen)
	out.Write(headerPlaceholder)
	out.Write(body.Bytes())

	full := out.Bytes()
	endOffset := uint32(start + len(full)) //nolint:gosec // test fixtures are tiny
	binary.LittleEndian.PutUint32(full[0:], endOffset)
	binary.LittleEndian.PutUint32(full[4:], uint32(len(n.properties)))
	binary.LittleEndian.PutUint32(full[8:], 0)
	full[12] = byte(len(n.name))
	copy(full[13:], n.name)
	return full
}

func encodeArrayProp(p testProp) []byte {
	var buf bytes.Buffer
	buf.WriteByte(p.kind)
	switch p.kind {
	case 'i':
		var data bytes.Buffer
		for _, v := range p.ints {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(v)) //nolint:gosec // test fixture values are small
			data.Write(b[:])
		}
		writeArrayHeader(&buf, len(p.ints), data.Bytes())
	case 'd':
		var data bytes.Buffer
		for _, v := range p.dbls {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
			data.Write(b[:])
		}
		writeArrayHeader(&buf, len(p.dbls), data.Bytes())
	}
	return buf.Bytes()
}

func writeArrayHeader(buf *bytes.Buffer, count int, data []byte) {
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(count)) //nolint:gosec // test fixture sizes are tiny
	binary.LittleEndian.PutUint32(hdr[4:], 0)              // encoding: raw
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(data)))
	buf.Write(hdr[:])
	buf.Write(data)
}

func buildFBXFixture(t *testing.T) []byte {
	t.Helper()
	geometry := testNode{
		name: "Geometry",
		children: []testNode{
			{name: "Vertices", properties: []testProp{{kind: 'd', dbls: []float64{
				0, 0, 0,
				1, 0, 0,
				0, 1, 0,
			}}}},
			{name: "PolygonVertexIndex", properties: []testProp{{kind: 'i', ints: []int32{0, 1, ^int32(2)}}}},
		},
	}
	objects := testNode{name: "Objects", children: []testNode{geometry}}

	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write([]byte{0, 0}) // padding before version
	var ver [4]byte
	binary.LittleEndian.PutUint32(ver[:], 7400)
	buf.Write(ver[:])
	buf.Write(encodeNode(objects, buf.Len()))
	buf.Write(make([]byte, 13)) // top-level null sentinel
	return buf.Bytes()
}

func TestDecodeSingleTriangleGeometry(t *testing.T) {
	data := buildFBXFixture(t)
	model, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(model.Submeshes) != 1 {
		t.Fatalf("expected 1 submesh, got %d", len(model.Submeshes))
	}
	lod := model.Submeshes[0].LODs[0]
	if len(lod.Vertices) != 3 || len(lod.Indices) != 3 {
		t.Fatalf("expected 3 vertices/indices, got %d/%d", len(lod.Vertices), len(lod.Indices))
	}
}

func TestDecodeRejectsMissingHeader(t *testing.T) {
	if _, err := Decode([]byte("not an fbx file")); err == nil {
		t.Fatalf("expected an error for a file without the binary FBX header")
	}
}
