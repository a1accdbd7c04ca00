// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mesh

import "math"

// ComputeFlatNormals assigns each vertex the normal of the (single)
// triangle it belongs to, for sources that carry no normal data.
// Vertices shared across triangles are expected to already be
// duplicated per-triangle by the caller; this does not average.
func ComputeFlatNormals(vertices []Vertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		if int(ia) >= len(vertices) || int(ib) >= len(vertices) || int(ic) >= len(vertices) {
			continue
		}
		a, b, c := vertices[ia].Position, vertices[ib].Position, vertices[ic].Position
		n := normalize(cross(sub(b, a), sub(c, a)))
		vertices[ia].Normal = n
		vertices[ib].Normal = n
		vertices[ic].Normal = n
	}
}

// SynthesizeTangents computes per-vertex tangent+handedness from
// position/UV/normal using the standard averaged-per-vertex formula,
// with a right-handed correction sign in the w component.
func SynthesizeTangents(vertices []Vertex, indices []uint32) {
	tan1 := make([][3]float32, len(vertices))
	tan2 := make([][3]float32, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		if int(ia) >= len(vertices) || int(ib) >= len(vertices) || int(ic) >= len(vertices) {
			continue
		}
		v0, v1, v2 := vertices[ia], vertices[ib], vertices[ic]

		x1 := v1.Position[0] - v0.Position[0]
		x2 := v2.Position[0] - v0.Position[0]
		y1 := v1.Position[1] - v0.Position[1]
		y2 := v2.Position[1] - v0.Position[1]
		z1 := v1.Position[2] - v0.Position[2]
		z2 := v2.Position[2] - v0.Position[2]

		s1 := v1.UV[0] - v0.UV[0]
		s2 := v2.UV[0] - v0.UV[0]
		t1 := v1.UV[1] - v0.UV[1]
		t2 := v2.UV[1] - v0.UV[1]

		denom := s1*t2 - s2*t1
		if denom == 0 {
			continue
		}
		r := 1.0 / denom

		sdir := [3]float32{(t2*x1 - t1*x2) * r, (t2*y1 - t1*y2) * r, (t2*z1 - t1*z2) * r}
		tdir := [3]float32{(s1*x2 - s2*x1) * r, (s1*y2 - s2*y1) * r, (s1*z2 - s2*z1) * r}

		for _, idx := range [3]uint32{ia, ib, ic} {
			tan1[idx] = add(tan1[idx], sdir)
			tan2[idx] = add(tan2[idx], tdir)
		}
	}

	for i := range vertices {
		n := vertices[i].Normal
		t := tan1[i]
		// Gram-Schmidt orthogonalize against the normal.
		tangent := normalize(sub(t, scale(n, dot(n, t))))
		handedness := float32(1.0)
		if dot(cross(n, t), tan2[i]) < 0 {
			handedness = -1.0
		}
		vertices[i].Tangent = [4]float32{tangent[0], tangent[1], tangent[2], handedness}
	}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func add(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func scale(a [3]float32, s float32) [3]float32 {
	return [3]float32{a[0] * s, a[1] * s, a[2] * s}
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

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
