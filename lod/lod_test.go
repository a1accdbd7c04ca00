// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package lod

import "testing"

// gridMesh builds an n x n grid of unit quads (2 triangles each),
// flat on the XY plane, with matching UVs whose per-quad step (1/128)
// stays under the UV-seam threshold — a mesh with both interior
// triangles (droppable) and boundary triangles (protected).
func gridMesh(n int) Mesh {
	var positions [][3]float32
	var normals [][3]float32
	var uvs [][2]float32
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			positions = append(positions, [3]float32{float32(x), float32(y), 0})
			normals = append(normals, [3]float32{0, 0, 1})
			uvs = append(uvs, [2]float32{float32(x) / 128, float32(y) / 128})
		}
	}
	var indices []uint32
	stride := uint32(n + 1)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i0 := uint32(y)*stride + uint32(x)
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			indices = append(indices, i0, i2, i1, i1, i2, i3)
		}
	}
	return Mesh{Positions: positions, Normals: normals, UVs: uvs, Indices: indices}
}

func TestGenerateFullRatioIsSanitizedCopy(t *testing.T) {
	base := gridMesh(4)
	out, err := Generate(base, 1.0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out.Indices) != len(base.Indices) {
		t.Fatalf("expected unchanged triangle count at ratio 1.0, got %d want %d", len(out.Indices)/3, len(base.Indices)/3)
	}
}

func TestGenerateReducesTriangleCount(t *testing.T) {
	base := gridMesh(8)
	origTris := len(base.Indices) / 3
	out, err := Generate(base, 0.5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	gotTris := len(out.Indices) / 3
	if gotTris >= origTris {
		t.Fatalf("expected fewer triangles after decimation: got %d, original %d", gotTris, origTris)
	}
	if gotTris == 0 {
		t.Fatalf("expected at least one triangle to remain")
	}
}

func TestGenerateRejectsDegenerateMesh(t *testing.T) {
	base := Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}},
		Indices:   []uint32{0, 0, 1}, // degenerate: repeated index
	}
	_, err := Generate(base, 0.5)
	if err == nil {
		t.Fatalf("expected an error for a mesh with no valid triangles")
	}
}

func TestCompactRemapsIndicesContiguously(t *testing.T) {
	m := Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	}
	tris := []triangle{{1, 2, 3}} // vertex 0 is unreferenced
	out := compact(m, tris)
	if len(out.Positions) != 3 {
		t.Fatalf("expected 3 referenced vertices, got %d", len(out.Positions))
	}
	for _, idx := range out.Indices {
		if int(idx) >= len(out.Positions) {
			t.Fatalf("remapped index %d out of bounds for %d vertices", idx, len(out.Positions))
		}
	}
}

func TestWrapDistanceHandlesSeam(t *testing.T) {
	if d := wrapDistance(0.005, 0.995); d > uvSeamThreshold {
		t.Fatalf("expected wrap-aware distance near 0, got %f", d)
	}
	if d := wrapDistance(0.1, 0.9); d < uvSeamThreshold {
		t.Fatalf("expected a large wrap distance for 0.1 vs 0.9, got %f", d)
	}
}

// TestProtectedSetUsesEdgeEndpointNormalsNotFaceNormals exercises crease
// detection on a closed, boundary-free mesh (a welded tetrahedron) so
// the only way a triangle gets protected is through the crease check
// itself. Vertex 3 carries a normal pointing in a very different
// direction from vertices 0-2, so every edge touching it must read as
// sharp; none of the edges among 0, 1, 2 (all sharing one normal)
// should.
func TestProtectedSetUsesEdgeEndpointNormalsNotFaceNormals(t *testing.T) {
	m := Mesh{
		Positions: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		},
		Normals: [][3]float32{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {-1, 0, 0},
		},
	}
	tris := []triangle{
		{0, 1, 2}, // touches only vertices 0-2: every edge smooth
		{0, 1, 3}, // touches vertex 3 twice over: sharp
		{0, 2, 3}, // touches vertex 3: sharp
		{1, 2, 3}, // touches vertex 3: sharp
	}
	protected := protectedSet(m, tris)
	want := []bool{false, true, true, true}
	for i, w := range want {
		if protected[i] != w {
			t.Fatalf("triangle %d: got protected=%v, want %v", i, protected[i], w)
		}
	}
}

// TestProtectedSetWeldedCubeHasNoSpuriousCreases reproduces the case
// that motivates edge-endpoint crease detection: a 12-triangle welded
// cube (every edge shared by exactly two triangles, so nothing is
// boundary-protected) with every vertex carrying the same normal.
// Comparing adjacent triangles' face normals would flag every one of
// the cube's 90-degree dihedral edges as sharp and protect all 12
// triangles, making the mesh impossible to ever reduce; comparing the
// edges' own endpoint vertex normals (all identical here) flags none
// of them, leaving every triangle free for area-based selection.
func TestProtectedSetWeldedCubeHasNoSpuriousCreases(t *testing.T) {
	positions := [][3]float32{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	normals := make([][3]float32, len(positions))
	for i := range normals {
		normals[i] = [3]float32{0, 0, 1}
	}
	indices := []uint32{
		0, 1, 2, 0, 2, 3, // bottom
		4, 6, 5, 4, 7, 6, // top
		0, 4, 5, 0, 5, 1, // front
		1, 5, 6, 1, 6, 2, // right
		2, 6, 7, 2, 7, 3, // back
		3, 7, 4, 3, 4, 0, // left
	}
	base := Mesh{Positions: positions, Normals: normals, Indices: indices}
	tris := sanitize(base)
	if len(tris) != 12 {
		t.Fatalf("expected 12 sanitized triangles, got %d", len(tris))
	}

	protected := protectedSet(base, tris)
	for i, p := range protected {
		if p {
			t.Fatalf("triangle %d: unexpectedly protected on a uniformly-smooth closed cube", i)
		}
	}
}
