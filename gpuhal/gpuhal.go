// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package gpuhal defines the narrow GPU collaborator interface the
// asset core calls into from module init/cleanup hooks. The
// renderer/GPU device itself is out of scope for this core; Device is
// deliberately small — just enough surface for uploading decoded
// textures and mesh buffers.
package gpuhal

import "context"

// TextureHandle and BufferHandle are opaque references returned by a
// Device. Their zero value denotes "no resource".
type TextureHandle uint64
type BufferHandle uint64

// TextureDesc describes a texture upload request.
type TextureDesc struct {
	Label    string
	Width    uint32
	Height   uint32
	Channels uint32
	IsFloat  bool
	MipCount uint32
	Pixels   []byte // base mip level only
}

// BufferDesc describes a buffer upload request (vertex or index data).
type BufferDesc struct {
	Label string
	Size  uint64
	Data  []byte
}

// Device is the GPU collaborator the asset core's module init/cleanup
// hooks call into. It is satisfied by gpuhal.Wrap over a real
// github.com/gogpu/wgpu hal.Device, or by Null for tests.
type Device interface {
	CreateTexture(ctx context.Context, desc TextureDesc) (TextureHandle, error)
	DestroyTexture(ctx context.Context, h TextureHandle)
	CreateBuffer(ctx context.Context, desc BufferDesc) (BufferHandle, error)
	DestroyBuffer(ctx context.Context, h BufferHandle)
	WriteBuffer(ctx context.Context, h BufferHandle, offset int, data []byte) error
}
