// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package gltf implements the glTF/GLB format adapter: stdlib
// encoding/json for the JSON document (both the .gltf and
// embedded-in-.glb forms) plus a hand-written GLB chunk reader, since
// no glTF-specific parsing library is available.
package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/mesh"
)

// GLBMagic is the 4-byte signature at the start of every .glb file.
const GLBMagic = 0x46546C67 // "glTF" little-endian

const (
	componentByte          = 5120
	componentUnsignedByte  = 5121
	componentShort         = 5122
	componentUnsignedShort = 5123
	componentUnsignedInt   = 5125
	componentFloat         = 5126
)

type document struct {
	Buffers     []docBuffer     `json:"buffers"`
	BufferViews []docBufferView `json:"bufferViews"`
	Accessors   []docAccessor   `json:"accessors"`
	Meshes      []docMesh       `json:"meshes"`
}

type docBuffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

type docBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

type docAccessor struct {
	BufferView    int    `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

type docMesh struct {
	Primitives []docPrimitive `json:"primitives"`
}

type docPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Mode       *int           `json:"mode"`
}

// Decode parses a .gltf JSON document (json plus an optional sibling
// binary file resolved relative to baseDir) into a RawModel, one
// submesh per mesh primitive.
func Decode(data []byte, baseDir string) (mesh.RawModel, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewDecodeError("gltf", err)
	}
	buffers, err := loadBuffers(doc.Buffers, baseDir, nil)
	if err != nil {
		return mesh.RawModel{}, err
	}
	return build(doc, buffers)
}

// DecodeGLB parses a .glb binary container: a 12-byte header followed
// by a JSON chunk and an optional binary (BIN) chunk.
func DecodeGLB(data []byte) (mesh.RawModel, error) {
	if len(data) < 20 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("glb", "file too small for a GLB header")
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != GLBMagic {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("glb", "bad GLB magic")
	}
	total := binary.LittleEndian.Uint32(data[8:12])
	if int(total) > len(data) {
		return mesh.RawModel{}, assetcoreerrs.NewCorruptionError("length", "exceeds file size")
	}

	offset := 12
	var jsonChunk, binChunk []byte
	for offset+8 <= len(data) {
		chunkLen := int(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])
		start := offset + 8
		end := start + chunkLen
		if end > len(data) {
			return mesh.RawModel{}, assetcoreerrs.NewCorruptionError("chunk", "exceeds file size")
		}
		switch chunkType {
		case 0x4E4F534A: // "JSON"
			jsonChunk = data[start:end]
		case 0x004E4942: // "BIN\0"
			binChunk = data[start:end]
		}
		offset = end
	}
	if jsonChunk == nil {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("glb", "missing JSON chunk")
	}

	var doc document
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewDecodeError("glb", err)
	}
	buffers, err := loadBuffers(doc.Buffers, "", binChunk)
	if err != nil {
		return mesh.RawModel{}, err
	}
	return build(doc, buffers)
}

// loadBuffers resolves every glTF buffer: a data URI (embedded
// base64), an external file relative to baseDir, or (buffer 0 with no
// uri) the GLB's own binary chunk.
func loadBuffers(bufs []docBuffer, baseDir string, glbBin []byte) ([][]byte, error) {
	out := make([][]byte, len(bufs))
	for i, b := range bufs {
		switch {
		case b.URI == "" && glbBin != nil:
			out[i] = glbBin
		case strings.HasPrefix(b.URI, "data:"):
			idx := strings.Index(b.URI, ",")
			if idx < 0 {
				return nil, assetcoreerrs.NewRejectedInput("gltf", "malformed data URI")
			}
			decoded, err := base64.StdEncoding.DecodeString(b.URI[idx+1:])
			if err != nil {
				return nil, assetcoreerrs.NewDecodeError("gltf", err)
			}
			out[i] = decoded
		case b.URI != "":
			p := b.URI
			if baseDir != "" {
				p = filepath.Join(baseDir, b.URI)
			}
			raw, err := os.ReadFile(p)
			if err != nil {
				return nil, assetcoreerrs.NewDecodeError("gltf", err)
			}
			out[i] = raw
		default:
			return nil, assetcoreerrs.NewRejectedInput("gltf", "buffer has no uri and no embedded binary chunk")
		}
	}
	return out, nil
}

func build(doc document, buffers [][]byte) (mesh.RawModel, error) {
	var model mesh.RawModel
	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != nil && *prim.Mode != 4 {
				continue // only triangle-list primitives are supported
			}
			lod, err := buildPrimitive(doc, buffers, prim)
			if err != nil {
				return mesh.RawModel{}, err
			}
			model.Submeshes = append(model.Submeshes, mesh.RawSubmesh{LODs: []mesh.RawLod{lod}})
		}
	}
	if len(model.Submeshes) == 0 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("gltf", "no triangle-list primitives found")
	}
	return model, nil
}

func buildPrimitive(doc document, buffers [][]byte, prim docPrimitive) (mesh.RawLod, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("gltf", "primitive missing POSITION attribute")
	}
	positions, err := readVec3Accessor(doc, buffers, posIdx)
	if err != nil {
		return mesh.RawLod{}, err
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err = readVec3Accessor(doc, buffers, idx)
		if err != nil {
			return mesh.RawLod{}, err
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err = readVec2Accessor(doc, buffers, idx)
		if err != nil {
			return mesh.RawLod{}, err
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = readIndexAccessor(doc, buffers, *prim.Indices)
		if err != nil {
			return mesh.RawLod{}, err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i) //nolint:gosec // vertex counts fit well under 2^32
		}
	}

	vertices := make([]mesh.Vertex, len(positions))
	for i, p := range positions {
		v := mesh.Vertex{Position: p}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.UV = [2]float32{uvs[i][0], 1 - uvs[i][1]}
		}
		vertices[i] = v
	}
	lod := mesh.RawLod{Vertices: vertices, Indices: indices}
	if len(normals) == 0 {
		mesh.ComputeFlatNormals(lod.Vertices, lod.Indices)
	}
	mesh.SynthesizeTangents(lod.Vertices, lod.Indices)
	return lod, nil
}

func accessorBytes(doc document, buffers [][]byte, accIdx int) (docAccessor, []byte, int, error) {
	if accIdx < 0 || accIdx >= len(doc.Accessors) {
		return docAccessor{}, nil, 0, assetcoreerrs.NewRejectedInput("gltf", "accessor index out of range")
	}
	acc := doc.Accessors[accIdx]
	if acc.BufferView < 0 || acc.BufferView >= len(doc.BufferViews) {
		return docAccessor{}, nil, 0, assetcoreerrs.NewRejectedInput("gltf", "bufferView index out of range")
	}
	bv := doc.BufferViews[acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(buffers) {
		return docAccessor{}, nil, 0, assetcoreerrs.NewRejectedInput("gltf", "buffer index out of range")
	}
	buf := buffers[bv.Buffer]
	start := bv.ByteOffset + acc.ByteOffset
	if start < 0 || start > len(buf) {
		return docAccessor{}, nil, 0, assetcoreerrs.NewCorruptionError("bufferView", "offset exceeds buffer size")
	}
	stride := bv.ByteStride
	return acc, buf[start:], stride, nil
}

func readVec3Accessor(doc document, buffers [][]byte, accIdx int) ([][3]float32, error) {
	acc, buf, stride, err := accessorBytes(doc, buffers, accIdx)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != componentFloat || acc.Type != "VEC3" {
		return nil, assetcoreerrs.NewRejectedInput("gltf", "unsupported VEC3 accessor encoding")
	}
	if stride == 0 {
		stride = 12
	}
	out := make([][3]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := i * stride
		if off+12 > len(buf) {
			return nil, assetcoreerrs.NewCorruptionError("accessor", "data runs past buffer end")
		}
		out[i] = [3]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8:])),
		}
	}
	return out, nil
}

func readVec2Accessor(doc document, buffers [][]byte, accIdx int) ([][2]float32, error) {
	acc, buf, stride, err := accessorBytes(doc, buffers, accIdx)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != componentFloat || acc.Type != "VEC2" {
		return nil, assetcoreerrs.NewRejectedInput("gltf", "unsupported VEC2 accessor encoding")
	}
	if stride == 0 {
		stride = 8
	}
	out := make([][2]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := i * stride
		if off+8 > len(buf) {
			return nil, assetcoreerrs.NewCorruptionError("accessor", "data runs past buffer end")
		}
		out[i] = [2]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:])),
		}
	}
	return out, nil
}

func readIndexAccessor(doc document, buffers [][]byte, accIdx int) ([]uint32, error) {
	acc, buf, stride, err := accessorBytes(doc, buffers, accIdx)
	if err != nil {
		return nil, err
	}
	if acc.Type != "SCALAR" {
		return nil, assetcoreerrs.NewRejectedInput("gltf", "index accessor must be SCALAR")
	}
	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case componentUnsignedShort, componentShort:
		if stride == 0 {
			stride = 2
		}
		for i := 0; i < acc.Count; i++ {
			off := i * stride
			if off+2 > len(buf) {
				return nil, assetcoreerrs.NewCorruptionError("accessor", "data runs past buffer end")
			}
			out[i] = uint32(binary.LittleEndian.Uint16(buf[off:]))
		}
	case componentUnsignedInt:
		if stride == 0 {
			stride = 4
		}
		for i := 0; i < acc.Count; i++ {
			off := i * stride
			if off+4 > len(buf) {
				return nil, assetcoreerrs.NewCorruptionError("accessor", "data runs past buffer end")
			}
			out[i] = binary.LittleEndian.Uint32(buf[off:])
		}
	case componentByte, componentUnsignedByte:
		if stride == 0 {
			stride = 1
		}
		for i := 0; i < acc.Count; i++ {
			off := i * stride
			if off+1 > len(buf) {
				return nil, assetcoreerrs.NewCorruptionError("accessor", "data runs past buffer end")
			}
			out[i] = uint32(buf[off])
		}
	default:
		return nil, assetcoreerrs.NewRejectedInput("gltf", "unsupported index component type")
	}
	return out, nil
}
