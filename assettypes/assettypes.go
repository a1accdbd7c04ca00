// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package assettypes defines the data contracts (C11) the asset core
// publishes through handles: Image, Material, Model, and Scene,
// wrapped in the tagged variant AssetAny.
package assettypes

import (
	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/handle"
	"github.com/gogpu/assetcore/mips"
)

// Type is the asset type tag. Stable numeric values; None reserves zero.
type Type uint16

const (
	None Type = iota
	Image
	Material
	Model
	Scene

	numTypes
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Image:
		return "Image"
	case Material:
		return "Material"
	case Model:
		return "Model"
	case Scene:
		return "Scene"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is one of the enumerated variants (including None).
func (t Type) Valid() bool { return t < numTypes }

// State is the lifecycle state of a slot's contents.
type State uint8

const (
	Empty State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Vec3 is a plain 3-component vector, used by Material's color/vector fields.
type Vec3 struct{ X, Y, Z float32 }

// StreamInfo carries the streaming subsystem's opaque residency state
// through the core without any behavior attached to it — the data
// shape exists for a future streaming layer to attach to, but nothing
// in this core reads or writes it yet.
type StreamInfo struct {
	TopMip        int
	ResidencyBits uint64
	Priority      int
}

// Image is the CPU/GPU payload for an Image asset.
type Image struct {
	Width, Height, Channels uint32
	IsFloat                 bool
	HasAlpha                bool
	HasSmoothAlpha          bool

	// Pixels holds the base-level decoded buffer. Present for
	// CPU-resident images and for images not yet uploaded to the GPU.
	Pixels []byte

	// Texture is set once init (GPU upload) has run.
	Texture gpuhal.TextureHandle

	// Mips is the owned mip chain built per §4.7, or nil if not yet built.
	Mips *mips.Chain

	Stream StreamInfo
}

// Material is the payload for a Material asset.
type Material struct {
	ShaderID uint8
	Flags    uint32

	Albedo, Emissive Vec3

	Roughness float32
	Metallic  float32
	Opacity   float32

	NormalStrength float32
	HeightScale    float32
	HeightSteps    int

	AlbedoTex    handle.Handle
	NormalTex    handle.Handle
	MetallicTex  handle.Handle
	RoughnessTex handle.Handle
	EmissiveTex  handle.Handle
	OcclusionTex handle.Handle
	HeightTex    handle.Handle
	ARMTex       handle.Handle
}

// DefaultMaterial returns a plausible default for a newly created
// material of the given shader.
func DefaultMaterial(shaderID uint8) Material {
	return Material{
		ShaderID:    shaderID,
		Albedo:      Vec3{X: 1, Y: 1, Z: 1},
		Roughness:   0.5,
		Metallic:    0,
		Opacity:     1,
		HeightScale: 0,
		HeightSteps: 0,
	}
}

// AABB is an axis-aligned bounding box in local space.
type AABB struct{ Min, Max Vec3 }

// GPULOD is the GPU-side mirror of one LOD's vertex/index buffers.
type GPULOD struct {
	VertexBuffer gpuhal.BufferHandle
	IndexBuffer  gpuhal.BufferHandle
	IndexCount   uint32
}

// Submesh is one renderable piece of a Model, with one GPULOD per LOD level.
type Submesh struct {
	LODs      []GPULOD
	Material  handle.Handle
	LocalAABB AABB
	HasAABB   bool
}

// Model is the payload for a Model asset.
type Model struct {
	Submeshes    []Submesh
	LOD0Ready    bool
	AllLODsReady bool
}

// Scene is the payload for a Scene asset: opaque UTF-8 text, NUL-terminated.
type Scene struct {
	Text []byte
}

// AssetAny is the tagged variant stored in each slot.
type AssetAny struct {
	Type  Type
	State State

	Image    *Image
	Material *Material
	Model    *Model
	Scene    *Scene
}

// Zero returns an empty AssetAny tagged with the given type, in Empty state.
func Zero(t Type) AssetAny {
	return AssetAny{Type: t, State: Empty}
}
