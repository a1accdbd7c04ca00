// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package mesh defines the common CPU-side mesh representation shared
// by every format adapter (C9), the `.imesh` binary container codec,
// and the vertex-attribute synthesis helpers (flat normals, averaged
// tangents) every adapter calls into.
//
// RawModel/RawSubmesh/RawLod hold the attribute synthesis results
// (flat normals, averaged tangents) and the .imesh container layout
// every format adapter converges on.
package mesh

import "github.com/gogpu/assetcore/handle"

// Vertex is the common per-vertex layout every format adapter
// produces, matching the attribute locations every format adapter uses:
// position (0), normal (1), uv (2, V flipped), tangent+handedness (3).
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
	Tangent  [4]float32
}

// RawLod is one level of detail: a flat vertex array and a flat,
// triangle-list 32-bit index array. Both must be non-empty.
type RawLod struct {
	Vertices []Vertex
	Indices  []uint32
}

// RawSubmesh is one renderable piece of a RawModel.
type RawSubmesh struct {
	LODs         []RawLod
	MaterialName string // deferred binding by sibling path; empty if unused
	Material     handle.Handle
	AABBMin      [3]float32
	AABBMax      [3]float32
	HasAABB      bool
}

// RawModel is the format-agnostic CPU mesh a loader produces before
// LOD generation and GPU upload.
type RawModel struct {
	Submeshes []RawSubmesh
}
