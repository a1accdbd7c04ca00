// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpuhal

import (
	"context"
	"sync"
)

// Null is a no-op Device: it records calls and hands out monotonically increasing
// handles without touching any real GPU. Used by tests that exercise
// pump/init/cleanup without a graphics context.
type Null struct {
	mu       sync.Mutex
	next     uint64
	Textures map[TextureHandle]TextureDesc
	Buffers  map[BufferHandle]BufferDesc
}

// NewNull builds a ready-to-use Null device.
func NewNull() *Null {
	return &Null{
		Textures: make(map[TextureHandle]TextureDesc),
		Buffers:  make(map[BufferHandle]BufferDesc),
	}
}

func (n *Null) allocID() uint64 {
	n.next++
	return n.next
}

func (n *Null) CreateTexture(ctx context.Context, desc TextureDesc) (TextureHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	h := TextureHandle(n.allocID())
	n.Textures[h] = desc
	return h, nil
}

func (n *Null) DestroyTexture(ctx context.Context, h TextureHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.Textures, h)
}

func (n *Null) CreateBuffer(ctx context.Context, desc BufferDesc) (BufferHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	h := BufferHandle(n.allocID())
	n.Buffers[h] = desc
	return h, nil
}

func (n *Null) DestroyBuffer(ctx context.Context, h BufferHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.Buffers, h)
}

func (n *Null) WriteBuffer(ctx context.Context, h BufferHandle, offset int, data []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.Buffers[h]
	if !ok {
		return nil
	}
	end := offset + len(data)
	if end > len(b.Data) {
		grown := make([]byte, end)
		copy(grown, b.Data)
		b.Data = grown
	}
	copy(b.Data[offset:], data)
	n.Buffers[h] = b
	return nil
}

var _ Device = (*Null)(nil)
