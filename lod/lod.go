// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package lod implements the boundary-preserving progressive mesh
// decimation algorithm (C10): given a base LOD and a target ratio, it
// produces a reduced triangle list that keeps mesh borders, sharp
// creases, and UV seams intact.
//
// The pipeline runs in fixed stages: sanitize -> rank-by-area ->
// protect -> target -> select -> patch-holes -> compact.
package lod

import "math"

// Mesh is the plain position/normal/uv/index representation the
// decimator operates on; format adapters translate to and from their
// own vertex layout around a call to Generate. Normals and UVs must
// be fully populated (one entry per position) before calling Generate
// — adapters synthesize missing attributes before requesting LODs.
type Mesh struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

const (
	creaseDotThreshold = 0.35
	uvSeamThreshold    = 1.0 / 64.0
	maxBoundarySamples = 24
)

// Generate produces one decimated LOD from base at the given ratio,
// r in (0, 1]. r >= 1 returns a sanitized copy of base unchanged.
func Generate(base Mesh, r float32) (Mesh, error) {
	if r <= 0 {
		r = 1
	}

	tris := sanitize(base)
	if len(tris) == 0 {
		return Mesh{}, errEmptyMesh
	}
	if r >= 1 {
		return compact(base, tris), nil
	}

	areas := triangleAreas(base, tris)
	protected := protectedSet(base, tris)

	target := int(math.Floor(float64(len(tris)) * float64(r)))
	if target < 1 {
		target = 1
	}
	protectedCount := 0
	for _, p := range protected {
		if p {
			protectedCount++
		}
	}
	if target < protectedCount {
		target = protectedCount
	}
	if target > len(tris) {
		target = len(tris)
	}

	kept := selectTriangles(tris, areas, protected, target)
	patched := patchHoles(base, kept)
	return compact(patched.mesh, patched.tris), nil
}

var errEmptyMesh = meshError("lod: no valid triangles after sanitizing")

type meshError string

func (e meshError) Error() string { return string(e) }

type triangle [3]uint32

// sanitize keeps only triangles whose three indices are distinct and
// reference valid vertices.
func sanitize(m Mesh) []triangle {
	n := uint32(len(m.Positions)) //nolint:gosec // vertex counts are bounded well under 2^32
	out := make([]triangle, 0, len(m.Indices)/3)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a == b || b == c || a == c {
			continue
		}
		if a >= n || b >= n || c >= n {
			continue
		}
		out = append(out, triangle{a, b, c})
	}
	return out
}

func triangleAreas(m Mesh, tris []triangle) []float32 {
	areas := make([]float32, len(tris))
	for i, t := range tris {
		a, b, c := m.Positions[t[0]], m.Positions[t[1]], m.Positions[t[2]]
		cr := cross(sub(b, a), sub(c, a))
		area := 0.5 * float32(math.Sqrt(float64(dot(cr, cr))))
		if math.IsNaN(float64(area)) || math.IsInf(float64(area), 0) {
			area = 0
		}
		areas[i] = area
	}
	return areas
}

type edgeKey struct{ a, b uint32 }

func makeEdge(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// protectedSet marks triangles that must not be dropped: those with a
// boundary edge (used exactly once), a sharp-crease edge, or an edge
// crossing a UV seam.
func protectedSet(m Mesh, tris []triangle) []bool {
	edgeCount := make(map[edgeKey]int, len(tris)*3)

	for _, t := range tris {
		edges := [3]edgeKey{makeEdge(t[0], t[1]), makeEdge(t[1], t[2]), makeEdge(t[2], t[0])}
		for _, e := range edges {
			edgeCount[e]++
		}
	}

	protected := make([]bool, len(tris))
	for i, t := range tris {
		edges := [3]edgeKey{makeEdge(t[0], t[1]), makeEdge(t[1], t[2]), makeEdge(t[2], t[0])}
		for _, e := range edges {
			if edgeCount[e] == 1 {
				protected[i] = true
			}
		}
		if protected[i] {
			continue
		}
		if hasUVSeam(m, t) {
			protected[i] = true
		}
	}

	// Sharp-crease pass: for every edge shared by exactly two
	// triangles, dot the edge's two endpoint vertex normals rather than
	// the two triangles' face normals — a 90° dihedral at an edge whose
	// endpoint normals are nearly parallel (e.g. a smoothed cylinder
	// cap) must not be treated as sharp, and this is checked per edge,
	// not per adjacent-face pair.
	if len(m.Normals) > 0 {
		edgeTriangles := make(map[edgeKey][]int, len(tris)*3)
		for i, t := range tris {
			edges := [3]edgeKey{makeEdge(t[0], t[1]), makeEdge(t[1], t[2]), makeEdge(t[2], t[0])}
			for _, e := range edges {
				edgeTriangles[e] = append(edgeTriangles[e], i)
			}
		}
		for e, idxs := range edgeTriangles {
			if len(idxs) != 2 {
				continue
			}
			if int(e.a) >= len(m.Normals) || int(e.b) >= len(m.Normals) {
				continue
			}
			if dot(m.Normals[e.a], m.Normals[e.b]) < creaseDotThreshold {
				protected[idxs[0]] = true
				protected[idxs[1]] = true
			}
		}
	}

	return protected
}

func hasUVSeam(m Mesh, t triangle) bool {
	if len(m.UVs) == 0 {
		return false
	}
	pairs := [3][2]uint32{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
	for _, p := range pairs {
		u0, u1 := m.UVs[p[0]], m.UVs[p[1]]
		if wrapDistance(u0[0], u1[0]) > uvSeamThreshold || wrapDistance(u0[1], u1[1]) > uvSeamThreshold {
			return true
		}
	}
	return false
}

func wrapDistance(a, b float32) float32 {
	d := a - b
	if d < 0 {
		d = -d
	}
	alt := 1 - d
	if alt < d {
		return alt
	}
	return d
}

// selectTriangles keeps every protected triangle, then fills the
// remaining budget with the highest-area non-protected triangles,
// dropping the lowest-area ones first.
func selectTriangles(tris []triangle, areas []float32, protected []bool, target int) []triangle {
	type entry struct {
		idx  int
		area float32
	}
	var nonProtected []entry
	kept := make([]triangle, 0, target)
	for i, t := range tris {
		if protected[i] {
			kept = append(kept, t)
		} else {
			nonProtected = append(nonProtected, entry{idx: i, area: areas[i]})
		}
	}

	// Ascending by area; we keep the tail (highest-area) entries.
	for i := 1; i < len(nonProtected); i++ {
		j := i
		for j > 0 && nonProtected[j-1].area > nonProtected[j].area {
			nonProtected[j-1], nonProtected[j] = nonProtected[j], nonProtected[j-1]
			j--
		}
	}

	budget := target - len(kept)
	if budget < 0 {
		budget = 0
	}
	if budget > len(nonProtected) {
		budget = len(nonProtected)
	}
	start := len(nonProtected) - budget
	for _, e := range nonProtected[start:] {
		kept = append(kept, tris[e.idx])
	}
	return kept
}

type patchedMesh struct {
	mesh Mesh
	tris []triangle
}

// patchHoles finds boundary loops left behind by triangle removal and
// fans each one around a synthesized centroid vertex.
func patchHoles(base Mesh, tris []triangle) patchedMesh {
	// Edges used once in the source mesh are its own open border, not
	// holes left by removal.
	origCount := make(map[edgeKey]int, len(base.Indices))
	for _, t := range sanitize(base) {
		origCount[makeEdge(t[0], t[1])]++
		origCount[makeEdge(t[1], t[2])]++
		origCount[makeEdge(t[2], t[0])]++
	}

	edgeCount := make(map[edgeKey]int, len(tris)*3)
	edgeEndpoints := make(map[edgeKey][2]uint32, len(tris)*3)
	for _, t := range tris {
		edges := [3][2]uint32{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
		for _, e := range edges {
			k := makeEdge(e[0], e[1])
			edgeCount[k]++
			edgeEndpoints[k] = e
		}
	}

	adjacency := make(map[uint32][]uint32)
	boundary := make(map[edgeKey]bool)
	for k, c := range edgeCount {
		if c != 1 || origCount[k] == 1 {
			continue
		}
		boundary[k] = true
		e := edgeEndpoints[k]
		adjacency[e[0]] = append(adjacency[e[0]], e[1])
		adjacency[e[1]] = append(adjacency[e[1]], e[0])
	}

	visited := make(map[edgeKey]bool)
	positions := append([][3]float32{}, base.Positions...)
	normals := append([][3]float32{}, base.Normals...)
	uvs := append([][2]float32{}, base.UVs...)
	out := append([]triangle{}, tris...)

	for k := range boundary {
		if visited[k] {
			continue
		}
		loop := walkLoop(k, adjacency, boundary, visited)
		if len(loop) < 3 {
			continue
		}
		sampled := sampleLoop(loop, maxBoundarySamples)

		var centroidPos, centroidNormal [3]float32
		var centroidUV [2]float32
		for _, vi := range sampled {
			centroidPos = add(centroidPos, positions[vi])
			if int(vi) < len(normals) {
				centroidNormal = add(centroidNormal, normals[vi])
			}
			if int(vi) < len(uvs) {
				centroidUV[0] += uvs[vi][0]
				centroidUV[1] += uvs[vi][1]
			}
		}
		n := float32(len(sampled))
		centroidPos = scale(centroidPos, 1/n)
		centroidNormal = normalize(centroidNormal)
		centroidUV = [2]float32{centroidUV[0] / n, centroidUV[1] / n}

		centroidIdx := uint32(len(positions)) //nolint:gosec // vertex counts stay well under 2^32
		positions = append(positions, centroidPos)
		normals = append(normals, centroidNormal)
		uvs = append(uvs, centroidUV)

		for i := 0; i < len(sampled); i++ {
			a := sampled[i]
			b := sampled[(i+1)%len(sampled)]
			out = append(out, triangle{centroidIdx, a, b})
		}
	}

	return patchedMesh{
		mesh: Mesh{Positions: positions, Normals: normals, UVs: uvs, Indices: nil},
		tris: out,
	}
}

// walkLoop follows degree-two boundary vertices starting from one
// edge's endpoint until it returns to the start or runs out of
// unvisited boundary edges.
func walkLoop(start edgeKey, adjacency map[uint32][]uint32, boundary map[edgeKey]bool, visited map[edgeKey]bool) []uint32 {
	loop := []uint32{start.a}
	prev := start.a
	cur := start.b
	visited[start] = true
	for {
		loop = append(loop, cur)
		next := uint32(0)
		found := false
		for _, n := range adjacency[cur] {
			if n == prev {
				continue
			}
			k := makeEdge(cur, n)
			if boundary[k] && !visited[k] {
				next = n
				found = true
				visited[k] = true
				break
			}
		}
		if !found || next == loop[0] {
			break
		}
		prev = cur
		cur = next
		if len(loop) > len(adjacency)+1 {
			break // defensive: avoid infinite loops on malformed input
		}
	}
	return loop
}

func sampleLoop(loop []uint32, maxSamples int) []uint32 {
	if len(loop) <= maxSamples {
		return loop
	}
	out := make([]uint32, 0, maxSamples)
	for i := 0; i < maxSamples; i++ {
		idx := i * len(loop) / maxSamples
		out = append(out, loop[idx])
	}
	return out
}

// compact removes vertices unreferenced by tris and remaps indices.
func compact(m Mesh, tris []triangle) Mesh {
	remap := make(map[uint32]uint32)
	var positions [][3]float32
	var normals [][3]float32
	var uvs [][2]float32

	remapVertex := func(old uint32) uint32 {
		if nv, ok := remap[old]; ok {
			return nv
		}
		nv := uint32(len(positions)) //nolint:gosec // vertex counts stay well under 2^32
		remap[old] = nv
		positions = append(positions, m.Positions[old])
		if int(old) < len(m.Normals) {
			normals = append(normals, m.Normals[old])
		}
		if int(old) < len(m.UVs) {
			uvs = append(uvs, m.UVs[old])
		}
		return nv
	}

	indices := make([]uint32, 0, len(tris)*3)
	for _, t := range tris {
		indices = append(indices, remapVertex(t[0]), remapVertex(t[1]), remapVertex(t[2]))
	}

	return Mesh{Positions: positions, Normals: normals, UVs: uvs, Indices: indices}
}

func sub(a, b [3]float32) [3]float32 { return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func add(a, b [3]float32) [3]float32 { return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func scale(a [3]float32, s float32) [3]float32 {
	return [3]float32{a[0] * s, a[1] * s, a[2] * s}
}
func dot(a, b [3]float32) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
func normalize(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(dot(v, v))))
	if l < 1e-12 {
		return [3]float32{0, 0, 0}
	}
	return scale(v, 1/l)
}
