// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mesh

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/gpuhal"
)

// UploadModel implements the common half of every mesh adapter's init
// hook: upload each LOD's vertex/index data into GPU
// buffers, compute per-submesh local AABBs when the source did not
// already provide one, and flag LOD0/all-LODs readiness.
func UploadModel(ctx context.Context, dev gpuhal.Device, raw RawModel) (*assettypes.Model, error) {
	model := &assettypes.Model{Submeshes: make([]assettypes.Submesh, len(raw.Submeshes))}

	for i, sm := range raw.Submeshes {
		out := assettypes.Submesh{
			Material: sm.Material,
			HasAABB:  sm.HasAABB,
		}
		if sm.HasAABB {
			out.LocalAABB = assettypes.AABB{
				Min: assettypes.Vec3{X: sm.AABBMin[0], Y: sm.AABBMin[1], Z: sm.AABBMin[2]},
				Max: assettypes.Vec3{X: sm.AABBMax[0], Y: sm.AABBMax[1], Z: sm.AABBMax[2]},
			}
		} else {
			min, max, ok := computeAABB(sm.LODs)
			if ok {
				out.LocalAABB = assettypes.AABB{Min: min, Max: max}
				out.HasAABB = true
			}
		}

		out.LODs = make([]assettypes.GPULOD, len(sm.LODs))
		for j, lodData := range sm.LODs {
			vb, err := dev.CreateBuffer(ctx, gpuhal.BufferDesc{
				Label: "mesh.vertices",
				Size:  uint64(len(lodData.Vertices)) * vertexByteSize, //nolint:gosec // bounded well under 2^64
				Data:  encodeVertices(lodData.Vertices),
			})
			if err != nil {
				return nil, assetcoreerrs.NewInitError("vertex_buffer", err)
			}
			ib, err := dev.CreateBuffer(ctx, gpuhal.BufferDesc{
				Label: "mesh.indices",
				Size:  uint64(len(lodData.Indices)) * 4, //nolint:gosec // bounded well under 2^64
				Data:  encodeIndices(lodData.Indices),
			})
			if err != nil {
				return nil, assetcoreerrs.NewInitError("index_buffer", err)
			}
			out.LODs[j] = assettypes.GPULOD{
				VertexBuffer: vb,
				IndexBuffer:  ib,
				IndexCount:   uint32(len(lodData.Indices)), //nolint:gosec // index counts fit well under 2^32
			}
		}
		model.Submeshes[i] = out
	}

	model.LOD0Ready = true
	model.AllLODsReady = true
	for _, sm := range model.Submeshes {
		if len(sm.LODs) == 0 {
			model.LOD0Ready = false
			model.AllLODsReady = false
		}
	}
	return model, nil
}

// ReleaseModel releases every GPU buffer a Model owns.
func ReleaseModel(ctx context.Context, dev gpuhal.Device, model *assettypes.Model) {
	if model == nil {
		return
	}
	for _, sm := range model.Submeshes {
		for _, l := range sm.LODs {
			dev.DestroyBuffer(ctx, l.VertexBuffer)
			dev.DestroyBuffer(ctx, l.IndexBuffer)
		}
	}
}

const vertexByteSize = 12 + 12 + 8 + 16

// DefaultLODRatios is the LOD chain format adapters request when a
// caller does not specify one of its own: three generated levels
// beyond LOD0, halving roughly each step.
var DefaultLODRatios = []float32{0.5, 0.25, 0.1}

func encodeVertices(vertices []Vertex) []byte {
	out := make([]byte, 0, len(vertices)*vertexByteSize)
	for _, v := range vertices {
		out = appendFloats(out, v.Position[:])
		out = appendFloats(out, v.Normal[:])
		out = appendFloats(out, v.UV[:])
		out = appendFloats(out, v.Tangent[:])
	}
	return out
}

func appendFloats(dst []byte, fs []float32) []byte {
	for _, f := range fs {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
		dst = append(dst, b[:]...)
	}
	return dst
}

func encodeIndices(indices []uint32) []byte {
	out := make([]byte, len(indices)*4)
	for i, v := range indices {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func computeAABB(lods []RawLod) (min, max assettypes.Vec3, ok bool) {
	if len(lods) == 0 || len(lods[0].Vertices) == 0 {
		return assettypes.Vec3{}, assettypes.Vec3{}, false
	}
	first := lods[0].Vertices[0].Position
	min = assettypes.Vec3{X: first[0], Y: first[1], Z: first[2]}
	max = min
	for _, v := range lods[0].Vertices {
		p := v.Position
		if p[0] < min.X {
			min.X = p[0]
		}
		if p[1] < min.Y {
			min.Y = p[1]
		}
		if p[2] < min.Z {
			min.Z = p[2]
		}
		if p[0] > max.X {
			max.X = p[0]
		}
		if p[1] > max.Y {
			max.Y = p[1]
		}
		if p[2] > max.Z {
			max.Z = p[2]
		}
	}
	return min, max, true
}

// GenerateLODs appends decimated LODs to sm beyond its existing LOD0,
// one per ratio in ratios, using the lod package. Any generation
// failure clones the previous accepted LOD so the requested LOD count
// is still met.
func GenerateLODs(sm *RawSubmesh, ratios []float32) {
	if len(sm.LODs) == 0 {
		return
	}
	base := sm.LODs[0]
	for _, r := range ratios {
		decimated, err := generateOne(base, r)
		if err != nil {
			sm.LODs = append(sm.LODs, cloneLod(sm.LODs[len(sm.LODs)-1]))
			continue
		}
		sm.LODs = append(sm.LODs, decimated)
	}
}

func cloneLod(l RawLod) RawLod {
	v := make([]Vertex, len(l.Vertices))
	copy(v, l.Vertices)
	idx := make([]uint32, len(l.Indices))
	copy(idx, l.Indices)
	return RawLod{Vertices: v, Indices: idx}
}
