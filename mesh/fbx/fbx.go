// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package fbx implements a minimal binary-FBX format adapter. No FBX
// parsing library is available, so this is
// a hand-written reader of the binary node-tree container covering
// only the Geometry/Vertices/PolygonVertexIndex chunks; Normals and UV
// chunks are not read, and ASCII FBX is out of scope. Array property decompression
// reuses github.com/klauspost/compress/zlib, already wired for the
// .itex container.
package fbx

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/mesh"
)

// Magic is the fixed 21-byte header every binary FBX file starts with.
var Magic = []byte("Kaydara FBX Binary  \x00")

type node struct {
	name       string
	properties []any
	children   []node
}

// Decode parses a binary FBX document into a RawModel, one submesh
// per top-level Geometry node found under Objects.
func Decode(data []byte) (mesh.RawModel, error) {
	if len(data) < 27 || !bytes.Equal(data[:len(Magic)], Magic) {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("fbx", "missing binary FBX header")
	}
	version := binary.LittleEndian.Uint32(data[23:27])
	r := &reader{data: data, pos: 27, wide: version >= 7500}

	minRecordSize := 13
	if r.wide {
		minRecordSize = 25
	}
	var roots []node
	for r.pos+minRecordSize <= len(r.data) {
		n, end, err := r.readNode()
		if err != nil {
			return mesh.RawModel{}, err
		}
		if end {
			break
		}
		roots = append(roots, n)
	}

	var model mesh.RawModel
	for _, top := range roots {
		if top.name != "Objects" {
			continue
		}
		for _, child := range top.children {
			if child.name != "Geometry" {
				continue
			}
			lod, err := buildGeometry(child)
			if err != nil {
				return mesh.RawModel{}, err
			}
			model.Submeshes = append(model.Submeshes, mesh.RawSubmesh{LODs: []mesh.RawLod{lod}})
		}
	}
	if len(model.Submeshes) == 0 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("fbx", "no Geometry nodes found")
	}
	return model, nil
}

type reader struct {
	data []byte
	pos  int
	wide bool
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, assetcoreerrs.NewCorruptionError("fbx", "truncated record")
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, assetcoreerrs.NewCorruptionError("fbx", "truncated record")
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *reader) uint(wide bool) (uint64, error) {
	if wide {
		return r.u64()
	}
	v, err := r.u32()
	return uint64(v), err
}

func (r *reader) bytesOf(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, assetcoreerrs.NewCorruptionError("fbx", "truncated record")
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// readNode reads one node record. end is true when a null/sentinel
// record (marking "no more siblings") was consumed instead.
func (r *reader) readNode() (node, bool, error) {
	endOffset, err := r.uint(r.wide)
	if err != nil {
		return node{}, false, err
	}
	numProps, err := r.uint(r.wide)
	if err != nil {
		return node{}, false, err
	}
	if _, err := r.uint(r.wide); err != nil { // property list byte length, unused
		return node{}, false, err
	}
	nameLenB, err := r.bytesOf(1)
	if err != nil {
		return node{}, false, err
	}
	nameLen := int(nameLenB[0])

	if endOffset == 0 && numProps == 0 && nameLen == 0 {
		return node{}, true, nil
	}

	nameBytes, err := r.bytesOf(nameLen)
	if err != nil {
		return node{}, false, err
	}
	n := node{name: string(nameBytes)}

	for i := uint64(0); i < numProps; i++ {
		v, err := r.readProperty()
		if err != nil {
			return node{}, false, err
		}
		n.properties = append(n.properties, v)
	}

	for uint64(r.pos) < endOffset {
		child, end, err := r.readNode()
		if err != nil {
			return node{}, false, err
		}
		if end {
			break
		}
		n.children = append(n.children, child)
	}
	if endOffset != 0 {
		r.pos = int(endOffset) //nolint:gosec // FBX offsets are bounded by file size, checked by callers
	}
	return n, false, nil
}

func (r *reader) readProperty() (any, error) {
	typeB, err := r.bytesOf(1)
	if err != nil {
		return nil, err
	}
	switch typeB[0] {
	case 'Y':
		b, err := r.bytesOf(2)
		if err != nil {
			return nil, err
		}
		return int16(binary.LittleEndian.Uint16(b)), nil
	case 'C':
		b, err := r.bytesOf(1)
		if err != nil {
			return nil, err
		}
		return b[0] != 0, nil
	case 'I':
		v, err := r.u32()
		return int32(v), err
	case 'F':
		v, err := r.u32()
		return math.Float32frombits(v), err
	case 'D':
		v, err := r.u64()
		return math.Float64frombits(v), err
	case 'L':
		v, err := r.u64()
		return int64(v), err
	case 'S', 'R':
		length, err := r.u32()
		if err != nil {
			return nil, err
		}
		data, err := r.bytesOf(int(length))
		if err != nil {
			return nil, err
		}
		return string(data), nil
	case 'f', 'd', 'l', 'i', 'b':
		return r.readArray(typeB[0])
	default:
		return nil, assetcoreerrs.NewRejectedInput("fbx", "unknown property type code")
	}
}

func (r *reader) readArray(kind byte) (any, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	encoding, err := r.u32()
	if err != nil {
		return nil, err
	}
	compressedLen, err := r.u32()
	if err != nil {
		return nil, err
	}
	raw, err := r.bytesOf(int(compressedLen))
	if err != nil {
		return nil, err
	}
	if encoding != 0 {
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, assetcoreerrs.NewDecodeError("fbx", err)
		}
		decoded, err := io.ReadAll(zr)
		if err != nil {
			return nil, assetcoreerrs.NewDecodeError("fbx", err)
		}
		raw = decoded
	}
	return decodeArray(kind, raw, int(count))
}

func decodeArray(kind byte, raw []byte, count int) (any, error) {
	switch kind {
	case 'd':
		out := make([]float64, count)
		for i := 0; i < count; i++ {
			if (i+1)*8 > len(raw) {
				return nil, assetcoreerrs.NewCorruptionError("fbx", "double array truncated")
			}
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	case 'f':
		out := make([]float32, count)
		for i := 0; i < count; i++ {
			if (i+1)*4 > len(raw) {
				return nil, assetcoreerrs.NewCorruptionError("fbx", "float array truncated")
			}
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case 'i':
		out := make([]int32, count)
		for i := 0; i < count; i++ {
			if (i+1)*4 > len(raw) {
				return nil, assetcoreerrs.NewCorruptionError("fbx", "int array truncated")
			}
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case 'l':
		out := make([]int64, count)
		for i := 0; i < count; i++ {
			if (i+1)*8 > len(raw) {
				return nil, assetcoreerrs.NewCorruptionError("fbx", "long array truncated")
			}
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	case 'b':
		out := make([]bool, count)
		for i := 0; i < count; i++ {
			if i >= len(raw) {
				return nil, assetcoreerrs.NewCorruptionError("fbx", "bool array truncated")
			}
			out[i] = raw[i] != 0
		}
		return out, nil
	default:
		return nil, assetcoreerrs.NewRejectedInput("fbx", "unsupported array type")
	}
}

func findChild(n node, name string) (node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return node{}, false
}

func firstProperty(n node) (any, bool) {
	if len(n.properties) == 0 {
		return nil, false
	}
	return n.properties[0], true
}

// buildGeometry extracts positions from a single Geometry node's
// Vertices/PolygonVertexIndex children. Normals are computed flat per
// face and UVs are left zero; the node's Normals/UV children are not
// read. FBX stores polygons as a flat index stream with each polygon's
// last index bitwise-complemented to mark its end; each polygon is
// fan-triangulated from its first vertex.
func buildGeometry(geom node) (mesh.RawLod, error) {
	vertsNode, ok := findChild(geom, "Vertices")
	if !ok {
		return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("fbx", "Geometry node missing Vertices")
	}
	rawVerts, ok := firstProperty(vertsNode)
	if !ok {
		return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("fbx", "Vertices node has no data")
	}
	coords, ok := rawVerts.([]float64)
	if !ok || len(coords)%3 != 0 {
		return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("fbx", "Vertices must be a flat double array, multiple of 3")
	}
	positions := make([][3]float32, len(coords)/3)
	for i := range positions {
		positions[i] = [3]float32{
			float32(coords[i*3]), float32(coords[i*3+1]), float32(coords[i*3+2]),
		}
	}

	polyNode, ok := findChild(geom, "PolygonVertexIndex")
	if !ok {
		return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("fbx", "Geometry node missing PolygonVertexIndex")
	}
	rawPoly, ok := firstProperty(polyNode)
	if !ok {
		return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("fbx", "PolygonVertexIndex node has no data")
	}
	polyIdx, ok := rawPoly.([]int32)
	if !ok {
		return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("fbx", "PolygonVertexIndex must be an int array")
	}

	var vertices []mesh.Vertex
	var indices []uint32
	var polygon []int
	for _, raw := range polyIdx {
		v := raw
		last := false
		if v < 0 {
			v = ^v
			last = true
		}
		if int(v) >= len(positions) {
			return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("fbx", "polygon vertex index out of range")
		}
		polygon = append(polygon, int(v))
		if last {
			for i := 1; i+1 < len(polygon); i++ {
				tri := [3]int{polygon[0], polygon[i], polygon[i+1]}
				for _, pIdx := range tri {
					idx := uint32(len(vertices)) //nolint:gosec // vertex counts fit well under 2^32
					vertices = append(vertices, mesh.Vertex{Position: positions[pIdx]})
					indices = append(indices, idx)
				}
			}
			polygon = polygon[:0]
		}
	}
	if len(vertices) == 0 {
		return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("fbx", "no triangles produced from polygon stream")
	}

	lod := mesh.RawLod{Vertices: vertices, Indices: indices}
	mesh.ComputeFlatNormals(lod.Vertices, lod.Indices)
	mesh.SynthesizeTangents(lod.Vertices, lod.Indices)
	return lod, nil
}
