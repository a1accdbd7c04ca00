// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mesh

import (
	"context"
	"testing"

	"github.com/gogpu/assetcore/gpuhal"
)

func sampleRawModel() RawModel {
	return RawModel{
		Submeshes: []RawSubmesh{
			{
				LODs: []RawLod{
					{
						Vertices: []Vertex{
							{Position: [3]float32{-1, -1, 0}},
							{Position: [3]float32{1, -1, 0}},
							{Position: [3]float32{0, 1, 0}},
						},
						Indices: []uint32{0, 1, 2},
					},
				},
			},
		},
	}
}

func TestUploadModelCreatesBuffersAndAABB(t *testing.T) {
	dev := gpuhal.NewNull()
	model, err := UploadModel(context.Background(), dev, sampleRawModel())
	if err != nil {
		t.Fatalf("UploadModel: %v", err)
	}
	if !model.LOD0Ready || !model.AllLODsReady {
		t.Fatalf("expected both readiness flags set: %+v", model)
	}
	sm := model.Submeshes[0]
	if !sm.HasAABB {
		t.Fatalf("expected a computed AABB")
	}
	if sm.LocalAABB.Min.X != -1 || sm.LocalAABB.Max.Y != 1 {
		t.Fatalf("unexpected AABB: %+v", sm.LocalAABB)
	}
	if len(dev.Buffers) != 2 {
		t.Fatalf("expected one vertex and one index buffer, got %d", len(dev.Buffers))
	}
}

func TestReleaseModelDestroysBuffers(t *testing.T) {
	dev := gpuhal.NewNull()
	model, err := UploadModel(context.Background(), dev, sampleRawModel())
	if err != nil {
		t.Fatalf("UploadModel: %v", err)
	}
	ReleaseModel(context.Background(), dev, model)
	if len(dev.Buffers) != 0 {
		t.Fatalf("expected all buffers released, got %d remaining", len(dev.Buffers))
	}
}

func TestGenerateLODsAppendsRequestedCount(t *testing.T) {
	sm := &RawSubmesh{LODs: []RawLod{
		{
			Vertices: []Vertex{
				{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}},
				{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}},
				{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}},
			},
			Indices: []uint32{0, 1, 2},
		},
	}}
	GenerateLODs(sm, []float32{0.5})
	if len(sm.LODs) != 2 {
		t.Fatalf("expected LOD0 plus one generated LOD, got %d", len(sm.LODs))
	}
}
