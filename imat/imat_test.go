// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package imat

import (
	"testing"

	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/handle"
)

func TestDecodeRequiredFields(t *testing.T) {
	doc := []byte(`
shader_id: 3
flags: 7
albedo: {x: 1, y: 0.5, z: 0.25}
emissive: {x: 0, y: 0, z: 0}
roughness: 0.8
metallic: 0.1
opacity: 1
normal_strength: 1.5
height_scale: 0.02
height_steps: 4
albedo_tex: {type: 1, meta: 0, index: 5, generation: 1}
`)
	m, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.ShaderID != 3 || m.Flags != 7 {
		t.Fatalf("unexpected scalar fields: %+v", m)
	}
	if m.Albedo.X != 1 || m.Albedo.Y != 0.5 || m.Albedo.Z != 0.25 {
		t.Fatalf("unexpected albedo: %+v", m.Albedo)
	}
	if !m.AlbedoTex.IsValid() {
		t.Fatalf("expected a valid albedo texture handle")
	}
	if m.AlbedoTex.Index() != 5 || m.AlbedoTex.Generation() != 1 {
		t.Fatalf("unexpected albedo handle fields: %v", m.AlbedoTex)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := assettypes.Material{
		ShaderID:  2,
		Flags:     1,
		Albedo:    assettypes.Vec3{X: 1, Y: 1, Z: 1},
		Roughness: 0.4,
		Metallic:  0.9,
		Opacity:   1,
		AlbedoTex: handle.Make(1, 3, 5),
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ShaderID != original.ShaderID || got.Roughness != original.Roughness {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, original)
	}
	if got.AlbedoTex != original.AlbedoTex {
		t.Fatalf("handle round trip mismatch: %v vs %v", got.AlbedoTex, original.AlbedoTex)
	}
}

func TestEncodeOmittedHandleStaysInvalid(t *testing.T) {
	data, err := Encode(assettypes.Material{ShaderID: 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.AlbedoTex.IsValid() {
		t.Fatalf("expected an invalid albedo handle for an unset field")
	}
}
