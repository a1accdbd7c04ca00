// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mesh

import "github.com/gogpu/assetcore/lod"

// generateOne decimates base to the given ratio via the lod package,
// translating between the adapter-facing Vertex layout and lod.Mesh's
// plain position/normal/uv arrays.
func generateOne(base RawLod, ratio float32) (RawLod, error) {
	m := toLodMesh(base)
	out, err := lod.Generate(m, ratio)
	if err != nil {
		return RawLod{}, err
	}
	return fromLodMesh(out), nil
}

func toLodMesh(l RawLod) lod.Mesh {
	positions := make([][3]float32, len(l.Vertices))
	normals := make([][3]float32, len(l.Vertices))
	uvs := make([][2]float32, len(l.Vertices))
	for i, v := range l.Vertices {
		positions[i] = v.Position
		normals[i] = v.Normal
		uvs[i] = v.UV
	}
	indices := make([]uint32, len(l.Indices))
	copy(indices, l.Indices)
	return lod.Mesh{Positions: positions, Normals: normals, UVs: uvs, Indices: indices}
}

func fromLodMesh(m lod.Mesh) RawLod {
	vertices := make([]Vertex, len(m.Positions))
	for i := range vertices {
		v := Vertex{Position: m.Positions[i]}
		if i < len(m.Normals) {
			v.Normal = m.Normals[i]
		}
		if i < len(m.UVs) {
			v.UV = m.UVs[i]
		}
		vertices[i] = v
	}
	out := RawLod{Vertices: vertices, Indices: m.Indices}
	SynthesizeTangents(out.Vertices, out.Indices)
	return out
}
