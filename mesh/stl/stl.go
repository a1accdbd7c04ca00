// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package stl implements the STL format adapter, both binary and
// ASCII variants: hand-written, since STL's layout is simple and fully
// specified and no pack library targets it.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/mesh"
)

const binaryHeaderSize = 80

// Decode parses an STL document (auto-detecting ASCII vs binary) into
// a single-submesh RawModel. STL carries per-triangle normals and no
// UVs or vertex sharing; every triangle's 3 corners become distinct
// vertices.
func Decode(data []byte) (mesh.RawModel, error) {
	if looksASCII(data) {
		return decodeASCII(data)
	}
	return decodeBinary(data)
}

// looksASCII checks the "solid" prefix sniff, with a
// fallback to the binary triangle-count/size check to handle binary
// files whose 80-byte header happens to start with "solid" (a known
// STL interop pitfall).
func looksASCII(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return false
	}
	if len(data) < binaryHeaderSize+4 {
		return true
	}
	triCount := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	expected := binaryHeaderSize + 4 + int(triCount)*50
	return expected != len(data)
}

func decodeBinary(data []byte) (mesh.RawModel, error) {
	if len(data) < binaryHeaderSize+4 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("stl", "file too small for a binary STL header")
	}
	triCount := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	offset := binaryHeaderSize + 4
	need := offset + int(triCount)*50
	if need > len(data) {
		return mesh.RawModel{}, assetcoreerrs.NewCorruptionError("triangle_count", "exceeds file size")
	}

	vertices := make([]mesh.Vertex, 0, triCount*3)
	indices := make([]uint32, 0, triCount*3)
	for i := uint32(0); i < triCount; i++ {
		rec := data[offset+int(i)*50 : offset+int(i)*50+50]
		normal := readVec3(rec[0:12])
		for c := 0; c < 3; c++ {
			p := readVec3(rec[12+c*12 : 24+c*12])
			idx := uint32(len(vertices)) //nolint:gosec // triangle counts fit well under 2^32
			vertices = append(vertices, mesh.Vertex{Position: p, Normal: normal})
			indices = append(indices, idx)
		}
	}
	if len(vertices) == 0 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("stl", "no triangles found")
	}
	lod := mesh.RawLod{Vertices: vertices, Indices: indices}
	mesh.SynthesizeTangents(lod.Vertices, lod.Indices)
	return mesh.RawModel{Submeshes: []mesh.RawSubmesh{{LODs: []mesh.RawLod{lod}}}}, nil
}

func readVec3(b []byte) [3]float32 {
	return [3]float32{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}
}

func decodeASCII(data []byte) (mesh.RawModel, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var vertices []mesh.Vertex
	var indices []uint32
	var normal [3]float32
	var facetVerts [][3]float32
	inFacet := false

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := parseFloat3(fields[2:5])
				if err != nil {
					return mesh.RawModel{}, assetcoreerrs.NewDecodeError("stl", err)
				}
				normal = n
			}
			inFacet = true
			facetVerts = nil
		case "vertex":
			if !inFacet || len(fields) < 4 {
				return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("stl", "vertex outside facet")
			}
			p, err := parseFloat3(fields[1:4])
			if err != nil {
				return mesh.RawModel{}, assetcoreerrs.NewDecodeError("stl", err)
			}
			facetVerts = append(facetVerts, p)
		case "endfacet":
			if len(facetVerts) != 3 {
				return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("stl", "facet did not have exactly 3 vertices")
			}
			for _, p := range facetVerts {
				idx := uint32(len(vertices)) //nolint:gosec // ascii STL files are small
				vertices = append(vertices, mesh.Vertex{Position: p, Normal: normal})
				indices = append(indices, idx)
			}
			inFacet = false
		}
	}
	if err := scanner.Err(); err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewDecodeError("stl", err)
	}
	if len(vertices) == 0 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("stl", "no triangles found")
	}
	lod := mesh.RawLod{Vertices: vertices, Indices: indices}
	mesh.SynthesizeTangents(lod.Vertices, lod.Indices)
	return mesh.RawModel{Submeshes: []mesh.RawSubmesh{{LODs: []mesh.RawLod{lod}}}}, nil
}

func parseFloat3(fields []string) ([3]float32, error) {
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// Encode writes model's first submesh/LOD back out as binary STL.
func Encode(w io.Writer, model mesh.RawModel) error {
	var header [binaryHeaderSize]byte
	copy(header[:], "assetcore binary STL export")
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(model.Submeshes) == 0 {
		return binary.Write(w, binary.LittleEndian, uint32(0))
	}
	lod := model.Submeshes[0].LODs[0]
	triCount := uint32(len(lod.Indices) / 3) //nolint:gosec // triangle counts fit well under 2^32
	if err := binary.Write(w, binary.LittleEndian, triCount); err != nil {
		return err
	}
	for i := 0; i+2 < len(lod.Indices); i += 3 {
		a := lod.Vertices[lod.Indices[i]]
		b := lod.Vertices[lod.Indices[i+1]]
		c := lod.Vertices[lod.Indices[i+2]]
		if err := writeVec3(w, a.Normal); err != nil {
			return err
		}
		for _, v := range []mesh.Vertex{a, b, c} {
			if err := writeVec3(w, v.Position); err != nil {
				return err
			}
		}
		if _, err := w.Write([]byte{0, 0}); err != nil {
			return err
		}
	}
	return nil
}

func writeVec3(w io.Writer, v [3]float32) error {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(v[2]))
	_, err := w.Write(b[:])
	return err
}
