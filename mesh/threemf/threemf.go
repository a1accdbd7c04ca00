// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package threemf implements the 3MF format adapter: 3MF is a ZIP
// archive containing an XML model document, so this
// adapter is built on the standard library's archive/zip and
// encoding/xml rather than a third-party library — no 3MF-specific
// library is available, and both container formats are already
// stdlib-native.
package threemf

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/mesh"
)

// ZipMagic is the local file header signature every 3MF archive
// starts with, used by the module's content-sniff check.
var ZipMagic = []byte{'P', 'K', 0x03, 0x04}

type xmlModel struct {
	Resources xmlResources `xml:"resources"`
}

type xmlResources struct {
	Objects []xmlObject `xml:"object"`
}

type xmlObject struct {
	ID   string  `xml:"id,attr"`
	Mesh xmlMesh `xml:"mesh"`
}

type xmlMesh struct {
	Vertices  []xmlVertex  `xml:"vertices>vertex"`
	Triangles []xmlTriangle `xml:"triangles>triangle"`
}

type xmlVertex struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
	Z string `xml:"z,attr"`
}

type xmlTriangle struct {
	V1 string `xml:"v1,attr"`
	V2 string `xml:"v2,attr"`
	V3 string `xml:"v3,attr"`
}

// Decode parses a 3MF archive (as raw bytes) into a RawModel, one
// submesh per <object><mesh> resource.
func Decode(data []byte) (mesh.RawModel, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("3mf", "not a valid zip archive")
	}

	var modelFile *zip.File
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, "3D/3dmodel.model") {
			modelFile = f
			break
		}
	}
	if modelFile == nil {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("3mf", "archive has no 3D/3dmodel.model entry")
	}

	rc, err := modelFile.Open()
	if err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewDecodeError("3mf", err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewDecodeError("3mf", err)
	}

	var doc xmlModel
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewDecodeError("3mf", err)
	}

	var model mesh.RawModel
	for _, obj := range doc.Resources.Objects {
		if len(obj.Mesh.Vertices) == 0 || len(obj.Mesh.Triangles) == 0 {
			continue
		}
		lod, err := buildLod(obj.Mesh)
		if err != nil {
			return mesh.RawModel{}, err
		}
		model.Submeshes = append(model.Submeshes, mesh.RawSubmesh{LODs: []mesh.RawLod{lod}})
	}
	if len(model.Submeshes) == 0 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("3mf", "no mesh objects with geometry found")
	}
	return model, nil
}

func buildLod(m xmlMesh) (mesh.RawLod, error) {
	vertices := make([]mesh.Vertex, len(m.Vertices))
	for i, v := range m.Vertices {
		p, err := parseVec3(v.X, v.Y, v.Z)
		if err != nil {
			return mesh.RawLod{}, assetcoreerrs.NewDecodeError("3mf", err)
		}
		vertices[i] = mesh.Vertex{Position: p}
	}
	indices := make([]uint32, 0, len(m.Triangles)*3)
	for _, tri := range m.Triangles {
		for _, tok := range []string{tri.V1, tri.V2, tri.V3} {
			n, err := strconv.Atoi(tok)
			if err != nil || n < 0 || n >= len(vertices) {
				return mesh.RawLod{}, assetcoreerrs.NewRejectedInput("3mf", "triangle index out of range")
			}
			indices = append(indices, uint32(n)) //nolint:gosec // bounds-checked above
		}
	}
	lod := mesh.RawLod{Vertices: vertices, Indices: indices}
	mesh.ComputeFlatNormals(lod.Vertices, lod.Indices)
	mesh.SynthesizeTangents(lod.Vertices, lod.Indices)
	return lod, nil
}

func parseVec3(xs, ys, zs string) ([3]float32, error) {
	x, err := strconv.ParseFloat(xs, 32)
	if err != nil {
		return [3]float32{}, err
	}
	y, err := strconv.ParseFloat(ys, 32)
	if err != nil {
		return [3]float32{}, err
	}
	z, err := strconv.ParseFloat(zs, 32)
	if err != nil {
		return [3]float32{}, err
	}
	return [3]float32{float32(x), float32(y), float32(z)}, nil
}
