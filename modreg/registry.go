// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package modreg implements the module registry (C4): a read-after-
// init, insertion-ordered table of per-asset-type plugins dispatched
// by load/init/cleanup/save_blob/blob_free/can_load hooks.
//
// A concurrency-safe, map-keyed lookup table for pluggable backends,
// generalized from
// "exactly one implementation per key" to "an ordered list of
// candidates per asset type, first success wins", which is what a
// multi-module type like Model requires.
package modreg

import (
	"context"
	"sync"

	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/handle"
)

// LoadInput is what a module's Load hook receives: either an owned
// path string or a caller-allocated pointer descriptor (the same
// shape as a queued Job, minus the fields the queue itself owns).
type LoadInput struct {
	Path      string
	PathIsPtr bool
	Ptr       any
}

// LoadFunc parses an asset from input, producing CPU-side data only;
// it must never touch the GPU.
type LoadFunc func(ctx context.Context, in LoadInput) (assettypes.AssetAny, error)

// InitFunc runs on the GPU-affine thread: it uploads CPU data produced
// by Load into GPU resources via dev, mutating asset in place.
type InitFunc func(ctx context.Context, dev gpuhal.Device, asset *assettypes.AssetAny) error

// CleanupFunc releases every resource (GPU and CPU) owned by asset. It
// must be total: cleanup errors are absorbed, never propagated.
type CleanupFunc func(ctx context.Context, dev gpuhal.Device, asset *assettypes.AssetAny)

// SaveBlobFunc serializes asset's current contents to a byte blob
// (e.g. pulling CPU pixels back from the GPU when none are resident).
type SaveBlobFunc func(ctx context.Context, dev gpuhal.Device, asset *assettypes.AssetAny) ([]byte, error)

// BlobFreeFunc releases resources retained by a prior SaveBlobFunc call.
type BlobFreeFunc func(blob []byte)

// CanLoadFunc is a cheap, non-destructive check of whether Load would
// likely accept in. Used to pick among several candidate modules for
// the same asset type before committing to a full parse.
type CanLoadFunc func(in LoadInput) bool

// Descriptor is one registered module.
type Descriptor struct {
	Type      assettypes.Type
	Name      string
	Load      LoadFunc
	Init      InitFunc
	Cleanup   CleanupFunc
	SaveBlob  SaveBlobFunc
	BlobFree  BlobFreeFunc
	CanLoad   CanLoadFunc
	ModelHint handle.Handle // reserved for future hot-reload bookkeeping; unused by this core
}

// usable reports whether a descriptor has at least one lifecycle hook set.
func (d Descriptor) usable() bool {
	return d.Load != nil || d.Init != nil || d.Cleanup != nil
}

// Registry stores module descriptors in registration order. Read-only
// after every built-in module has been registered at manager init
// time, but Register itself is safe for concurrent use to keep the
// door open for runtime plugin replacement.
type Registry struct {
	mu          sync.RWMutex
	descriptors []Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register appends a module descriptor. Rejects modules with
// Type == None or with all three primary lifecycle hooks
// (Load/Init/Cleanup) unset.
func (r *Registry) Register(d Descriptor) bool {
	if d.Type == assettypes.None {
		return false
	}
	if !d.usable() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors = append(r.descriptors, d)
	return true
}

// FirstIndexOf returns the registration-order index of the first
// module of the given type, or -1 if none is registered.
func (r *Registry) FirstIndexOf(t assettypes.Type) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, d := range r.descriptors {
		if d.Type == t {
			return i
		}
	}
	return -1
}

// ByIndex returns the descriptor at the given registration index.
func (r *Registry) ByIndex(i int) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.descriptors) {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// Count returns the number of registered modules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// TryLoad walks registered modules of type t in registration order.
// For each candidate, CanLoad is consulted first when present;
// otherwise Load is attempted directly. The first module whose Load
// succeeds wins — its index and the produced asset are returned.
func (r *Registry) TryLoad(ctx context.Context, t assettypes.Type, in LoadInput) (moduleIndex int, asset assettypes.AssetAny, ok bool) {
	r.mu.RLock()
	candidates := make([]Descriptor, 0, 2)
	indices := make([]int, 0, 2)
	for i, d := range r.descriptors {
		if d.Type == t && d.Load != nil {
			candidates = append(candidates, d)
			indices = append(indices, i)
		}
	}
	r.mu.RUnlock()

	for n, d := range candidates {
		if d.CanLoad != nil && !d.CanLoad(in) {
			continue
		}
		a, err := d.Load(ctx, in)
		if err != nil {
			continue
		}
		return indices[n], a, true
	}
	return 0, assettypes.AssetAny{}, false
}
