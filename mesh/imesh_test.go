// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mesh

import (
	"testing"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/handle"
)

func sampleModel() RawModel {
	return RawModel{
		Submeshes: []RawSubmesh{
			{
				MaterialName: "body.imat",
				AABBMin:      [3]float32{-1, -1, -1},
				AABBMax:      [3]float32{1, 1, 1},
				LODs: []RawLod{
					{
						Vertices: []Vertex{
							{Position: [3]float32{0, 0, 0}},
							{Position: [3]float32{1, 0, 0}},
							{Position: [3]float32{0, 1, 0}},
						},
						Indices: []uint32{0, 1, 2},
					},
				},
			},
			{
				Material: handle.Make(2, 7, 3),
				LODs: []RawLod{
					{
						Vertices: []Vertex{
							{Position: [3]float32{2, 0, 0}},
							{Position: [3]float32{3, 0, 0}},
							{Position: [3]float32{2, 1, 0}},
						},
						Indices: []uint32{0, 1, 2},
					},
				},
			},
		},
	}
}

func TestEncodeDecodeImeshRoundTrip(t *testing.T) {
	model := sampleModel()
	modelHandle := handle.Make(3, 1, 1)

	data, err := EncodeImesh(model, modelHandle)
	if err != nil {
		t.Fatalf("EncodeImesh: %v", err)
	}

	got, gotHandle, err := DecodeImesh(data)
	if err != nil {
		t.Fatalf("DecodeImesh: %v", err)
	}
	if gotHandle != modelHandle {
		t.Fatalf("handle mismatch: got %v want %v", gotHandle, modelHandle)
	}
	if len(got.Submeshes) != 2 {
		t.Fatalf("expected 2 submeshes, got %d", len(got.Submeshes))
	}
	if got.Submeshes[0].MaterialName != "body.imat" {
		t.Fatalf("material name mismatch: %q", got.Submeshes[0].MaterialName)
	}
	if got.Submeshes[1].Material != handle.Make(2, 7, 3) {
		t.Fatalf("material handle mismatch: %v", got.Submeshes[1].Material)
	}
	if len(got.Submeshes[0].LODs) != 1 || len(got.Submeshes[0].LODs[0].Vertices) != 3 {
		t.Fatalf("unexpected LOD shape: %+v", got.Submeshes[0].LODs)
	}
	if got.Submeshes[0].LODs[0].Vertices[1].Position != [3]float32{1, 0, 0} {
		t.Fatalf("vertex data mismatch: %+v", got.Submeshes[0].LODs[0].Vertices[1])
	}
}

func TestDecodeImeshRejectsBadMagic(t *testing.T) {
	_, _, err := DecodeImesh(make([]byte, 64))
	if !assetcoreerrs.IsRejectedInput(err) {
		t.Fatalf("expected rejected-input error, got %v", err)
	}
}

func TestEncodeImeshRejectsEmptyLod(t *testing.T) {
	model := RawModel{Submeshes: []RawSubmesh{{LODs: []RawLod{{}}}}}
	_, err := EncodeImesh(model, handle.Invalid())
	if !assetcoreerrs.IsRejectedInput(err) {
		t.Fatalf("expected rejected-input error for an empty LOD, got %v", err)
	}
}
