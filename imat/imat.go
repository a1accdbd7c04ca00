// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package imat implements the `.imat` material text format: a
// structured key/value document carrying every scalar, vector, and
// texture-handle field of a Material.
//
// Uses gopkg.in/yaml.v3 in place of a hand-rolled key/value parser —
// a text material document is exactly what that library is for.
package imat

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/handle"
)

// vec3Doc mirrors assettypes.Vec3 with YAML field names.
type vec3Doc struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// handleDoc is a handle's four fields spelled out, rather than the
// packed uint64 — a material document is meant to be
// hand-edited.
type handleDoc struct {
	Type       uint16 `yaml:"type"`
	Meta       uint16 `yaml:"meta"`
	Index      uint16 `yaml:"index"`
	Generation uint16 `yaml:"generation"`
}

func (h handleDoc) toHandle() handle.Handle {
	if h == (handleDoc{}) {
		return handle.Invalid()
	}
	return handle.Make(h.Type, h.Index, h.Generation).WithMeta(h.Meta)
}

func fromHandle(h handle.Handle) handleDoc {
	if !h.IsValid() {
		return handleDoc{}
	}
	return handleDoc{Type: h.Type(), Meta: h.Meta(), Index: h.Index(), Generation: h.Generation()}
}

// doc is the on-disk shape of a .imat file. Decode does not check that
// every field is present: a missing scalar decodes as zero and a
// missing texture handle as the invalid handle.
type doc struct {
	ShaderID       uint8     `yaml:"shader_id"`
	Flags          uint32    `yaml:"flags"`
	Albedo         vec3Doc   `yaml:"albedo"`
	Emissive       vec3Doc   `yaml:"emissive"`
	Roughness      float32   `yaml:"roughness"`
	Metallic       float32   `yaml:"metallic"`
	Opacity        float32   `yaml:"opacity"`
	NormalStrength float32   `yaml:"normal_strength"`
	HeightScale    float32   `yaml:"height_scale"`
	HeightSteps    int       `yaml:"height_steps"`
	AlbedoTex      handleDoc `yaml:"albedo_tex"`
	NormalTex      handleDoc `yaml:"normal_tex"`
	MetallicTex    handleDoc `yaml:"metallic_tex"`
	RoughnessTex   handleDoc `yaml:"roughness_tex"`
	EmissiveTex    handleDoc `yaml:"emissive_tex"`
	OcclusionTex   handleDoc `yaml:"occlusion_tex"`
	HeightTex      handleDoc `yaml:"height_tex"`
	ARMTex         handleDoc `yaml:"arm_tex"`
}

// Decode parses a .imat document into a Material.
func Decode(data []byte) (assettypes.Material, error) {
	var d doc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return assettypes.Material{}, assetcoreerrs.NewDecodeError("imat", err)
	}

	return assettypes.Material{
		ShaderID:       d.ShaderID,
		Flags:          d.Flags,
		Albedo:         assettypes.Vec3{X: d.Albedo.X, Y: d.Albedo.Y, Z: d.Albedo.Z},
		Emissive:       assettypes.Vec3{X: d.Emissive.X, Y: d.Emissive.Y, Z: d.Emissive.Z},
		Roughness:      d.Roughness,
		Metallic:       d.Metallic,
		Opacity:        d.Opacity,
		NormalStrength: d.NormalStrength,
		HeightScale:    d.HeightScale,
		HeightSteps:    d.HeightSteps,
		AlbedoTex:      d.AlbedoTex.toHandle(),
		NormalTex:      d.NormalTex.toHandle(),
		MetallicTex:    d.MetallicTex.toHandle(),
		RoughnessTex:   d.RoughnessTex.toHandle(),
		EmissiveTex:    d.EmissiveTex.toHandle(),
		OcclusionTex:   d.OcclusionTex.toHandle(),
		HeightTex:      d.HeightTex.toHandle(),
		ARMTex:         d.ARMTex.toHandle(),
	}, nil
}

// Encode serializes a Material to its .imat document form.
func Encode(m assettypes.Material) ([]byte, error) {
	d := doc{
		ShaderID:       m.ShaderID,
		Flags:          m.Flags,
		Albedo:         vec3Doc{X: m.Albedo.X, Y: m.Albedo.Y, Z: m.Albedo.Z},
		Emissive:       vec3Doc{X: m.Emissive.X, Y: m.Emissive.Y, Z: m.Emissive.Z},
		Roughness:      m.Roughness,
		Metallic:       m.Metallic,
		Opacity:        m.Opacity,
		NormalStrength: m.NormalStrength,
		HeightScale:    m.HeightScale,
		HeightSteps:    m.HeightSteps,
		AlbedoTex:      fromHandle(m.AlbedoTex),
		NormalTex:      fromHandle(m.NormalTex),
		MetallicTex:    fromHandle(m.MetallicTex),
		RoughnessTex:   fromHandle(m.RoughnessTex),
		EmissiveTex:    fromHandle(m.EmissiveTex),
		OcclusionTex:   fromHandle(m.OcclusionTex),
		HeightTex:      fromHandle(m.HeightTex),
		ARMTex:         fromHandle(m.ARMTex),
	}
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("imat: marshal: %w", err)
	}
	return out, nil
}
