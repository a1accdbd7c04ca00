// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpuhal

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Wrap adapts a real github.com/gogpu/wgpu hal.Device/hal.Queue pair
// to the narrow Device interface this package needs, so module init/
// cleanup hooks exercise the real GPU backend stack without the asset
// core importing any backend-specific package directly.
type Wrap struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	textures map[TextureHandle]hal.Texture
	buffers  map[BufferHandle]hal.Buffer
	nextID   uint64
}

// NewWrap builds a Device backed by a real hal.Device/hal.Queue.
func NewWrap(device hal.Device, queue hal.Queue) *Wrap {
	return &Wrap{
		device:   device,
		queue:    queue,
		textures: make(map[TextureHandle]hal.Texture),
		buffers:  make(map[BufferHandle]hal.Buffer),
	}
}

func (w *Wrap) allocID() uint64 {
	w.nextID++
	return w.nextID
}

// CreateTexture uploads desc.Pixels into a new 2D texture and records
// it under a fresh TextureHandle.
func (w *Wrap) CreateTexture(ctx context.Context, desc TextureDesc) (TextureHandle, error) {
	format := gputypes.TextureFormatRGBA8Unorm
	if desc.IsFloat {
		format = gputypes.TextureFormatRGBA32Float
	}

	tex, err := w.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:  desc.Width,
			Height: desc.Height,
			Depth:  1,
		},
		MipLevelCount: maxu32(1, desc.MipCount),
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("gpuhal: create texture %q: %w", desc.Label, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	id := TextureHandle(w.allocID())
	w.textures[id] = tex

	w.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex},
		desc.Pixels,
		&hal.ImageDataLayout{BytesPerRow: desc.Width * desc.Channels},
		&hal.Extent3D{Width: desc.Width, Height: desc.Height, Depth: 1},
	)
	return id, nil
}

// DestroyTexture releases a previously created texture. Unknown
// handles are ignored — cleanup must be total.
func (w *Wrap) DestroyTexture(ctx context.Context, h TextureHandle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tex, ok := w.textures[h]
	if !ok {
		return
	}
	delete(w.textures, h)
	w.device.DestroyTexture(tex)
}

// CreateBuffer uploads desc.Data into a new GPU buffer.
func (w *Wrap) CreateBuffer(ctx context.Context, desc BufferDesc) (BufferHandle, error) {
	buf, err := w.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("gpuhal: create buffer %q: %w", desc.Label, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	id := BufferHandle(w.allocID())
	w.buffers[id] = buf

	if len(desc.Data) > 0 {
		w.queue.WriteBuffer(buf, 0, desc.Data)
	}
	return id, nil
}

// DestroyBuffer releases a previously created buffer.
func (w *Wrap) DestroyBuffer(ctx context.Context, h BufferHandle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	buf, ok := w.buffers[h]
	if !ok {
		return
	}
	delete(w.buffers, h)
	w.device.DestroyBuffer(buf)
}

// WriteBuffer updates a region of a previously created buffer.
func (w *Wrap) WriteBuffer(ctx context.Context, h BufferHandle, offset int, data []byte) error {
	w.mu.Lock()
	buf, ok := w.buffers[h]
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("gpuhal: write to unknown buffer handle %d", h)
	}
	//nolint:gosec // G115: offset is caller-controlled and non-negative by contract
	w.queue.WriteBuffer(buf, uint64(offset), data)
	return nil
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
