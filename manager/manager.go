// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package manager implements the Asset Manager (C6): the public API
// that orchestrates submit -> load -> init -> publish, with an
// ordered shutdown drain.
//
// Request/RequestPtr/SubmitRaw/Pump/Get/Shutdown implement that
// control flow and its failure semantics using Go's goroutines,
// channels, and mutexes (see internal/conc).
package manager

import (
	"context"
	"sync/atomic"

	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/config"
	"github.com/gogpu/assetcore/handle"
	"github.com/gogpu/assetcore/internal/conc"
	"github.com/gogpu/assetcore/internal/obslog"
	"github.com/gogpu/assetcore/modreg"
	"github.com/gogpu/assetcore/queue"
	"github.com/gogpu/assetcore/slottable"
)

// Manager is the asset core's public entry point.
type Manager struct {
	cfg      config.Options
	registry *modreg.Registry
	slots    *slottable.Table
	jobs     *queue.JobQueue
	done     *queue.DoneQueue
	pool     *conc.Pool

	shuttingDown atomic.Bool
}

// New constructs a Manager: it initializes the queues with the given
// capacity, registers every built-in module, and spawns the worker
// pool. Workers never touch the GPU; submit_raw, Pump, and every
// module Init/Cleanup call must be invoked by the caller from a single
// consistent (GPU-affine) goroutine.
func New(opts ...config.Option) *Manager {
	cfg := config.Defaults()
	for _, o := range opts {
		o(&cfg)
	}

	m := &Manager{
		cfg:      cfg,
		registry: modreg.New(),
		slots:    slottable.New(cfg.HandleType, 64),
	}
	m.jobs = queue.NewJobQueue(cfg.MaxInflightJobs, m.shuttingDown.Load)
	m.done = queue.NewDoneQueue(cfg.MaxInflightJobs)

	registerBuiltins(m.registry, m)

	m.pool = conc.NewPool(cfg.WorkerCount, m.workerLoop)
	obslog.Logger().Info("asset manager started",
		"workers", cfg.WorkerCount, "max_inflight_jobs", cfg.MaxInflightJobs)
	return m
}

// Request submits a path-based load. Fails (returns an invalid
// handle) when path is empty or the manager is shutting down.
func (m *Manager) Request(t assettypes.Type, path string) handle.Handle {
	if path == "" || m.shuttingDown.Load() {
		return handle.Invalid()
	}
	return m.enqueue(t, modreg.LoadInput{Path: path})
}

// RequestPtr submits a load for a caller-allocated descriptor. The
// descriptor is never copied; ownership transfers to whichever
// module's Load accepts it.
func (m *Manager) RequestPtr(t assettypes.Type, ptr any) handle.Handle {
	if ptr == nil || m.shuttingDown.Load() {
		return handle.Invalid()
	}
	return m.enqueue(t, modreg.LoadInput{PathIsPtr: true, Ptr: ptr})
}

func (m *Manager) enqueue(t assettypes.Type, in modreg.LoadInput) handle.Handle {
	h, _ := m.slots.Alloc(t)
	if !m.jobs.Push(queue.Job{Handle: h, Type: t, Input: in}) {
		m.slots.Mutate(h, func(s *slottable.Slot) {
			s.Asset.State = assettypes.Failed
			s.ModuleIndex = slottable.NoModule
		})
		obslog.Logger().Warn("job queue full", "type", t.String())
		return handle.Invalid()
	}
	return h
}

// SubmitRaw is the synchronous path for in-memory producers: it
// bypasses the worker pool and calls Init directly, so it must be
// called from the GPU thread.
func (m *Manager) SubmitRaw(t assettypes.Type, raw assettypes.AssetAny) handle.Handle {
	idx := m.registry.FirstIndexOf(t)
	if idx < 0 {
		return handle.Invalid()
	}
	desc, ok := m.registry.ByIndex(idx)
	if !ok {
		return handle.Invalid()
	}

	asset := raw
	asset.Type = t
	asset.State = assettypes.Loading

	h, _ := m.slots.Alloc(t)

	ctx := context.Background()
	if desc.Init != nil {
		if err := desc.Init(ctx, m.cfg.GPU, &asset); err != nil {
			obslog.Logger().Error("submit_raw init failed", "type", t.String(), "err", err)
			m.slots.Mutate(h, func(s *slottable.Slot) {
				s.Asset.State = assettypes.Failed
				s.ModuleIndex = slottable.NoModule
			})
			return h
		}
	}

	m.slots.Mutate(h, func(s *slottable.Slot) {
		s.Asset = asset
		s.Asset.State = assettypes.Ready
		s.ModuleIndex = uint16(idx) //nolint:gosec // registry is bounded well under 2^16 entries
	})
	return h
}

// workerLoop is run by every goroutine in the worker pool. It pops
// jobs until PopBlocking reports shutdown, walking the module registry
// for the first successful Load.
func (m *Manager) workerLoop(stop <-chan struct{}) {
	ctx := context.Background()
	for {
		job, ok := m.jobs.PopBlocking()
		if !ok {
			return
		}

		idx, asset, loaded := m.registry.TryLoad(ctx, job.Type, job.Input)
		result := queue.Result{Handle: job.Handle}
		if loaded {
			result.OK = true
			result.ModuleIndex = idx
			result.Asset = asset
		}
		if !m.done.Push(result) {
			obslog.Logger().Warn("done queue full, dropping result", "type", job.Type.String())
		}
	}
}

// Pump drains the done queue on the calling (GPU) thread: for each
// result it re-validates the handle, runs Init, and either publishes
// the asset as Ready or marks the slot Failed. Pump is idempotent when
// the done queue is empty.
func (m *Manager) Pump() {
	ctx := context.Background()
	for {
		result, ok := m.done.Pop()
		if !ok {
			return
		}
		m.pumpOne(ctx, result)
	}
}

func (m *Manager) pumpOne(ctx context.Context, result queue.Result) {
	handled := m.slots.Mutate(result.Handle, func(s *slottable.Slot) {
		if !result.OK {
			m.cleanupSlotContentsLocked(s)
			s.Asset.State = assettypes.Failed
			s.ModuleIndex = slottable.NoModule
			return
		}

		desc, _ := m.registry.ByIndex(result.ModuleIndex)
		asset := result.Asset
		var err error
		if desc.Init != nil {
			err = desc.Init(ctx, m.cfg.GPU, &asset)
		}
		if err != nil {
			obslog.Logger().Error("init failed", "type", asset.Type.String(), "err", err)
			if desc.Cleanup != nil {
				desc.Cleanup(ctx, m.cfg.GPU, &asset)
			}
			s.Asset.State = assettypes.Failed
			s.ModuleIndex = slottable.NoModule
			return
		}

		m.cleanupSlotContentsLocked(s)
		s.Asset = asset
		s.Asset.State = assettypes.Ready
		s.ModuleIndex = uint16(result.ModuleIndex) //nolint:gosec // registry is bounded well under 2^16 entries
	})

	if !handled && result.OK {
		// The handle was recycled or mutated out from under us; the
		// delivered asset is still ours to release via its producing
		// module.
		desc, _ := m.registry.ByIndex(result.ModuleIndex)
		if desc.Cleanup != nil {
			asset := result.Asset
			desc.Cleanup(ctx, m.cfg.GPU, &asset)
		}
	}
}

// cleanupSlotContentsLocked releases a slot's current contents (if
// any) via the module that produced them, falling back to the first
// module of the asset's type if the recorded module_index is stale.
// Caller must already hold the table's write lock (i.e. be inside a
// Mutate callback).
func (m *Manager) cleanupSlotContentsLocked(s *slottable.Slot) {
	if s.ModuleIndex == slottable.NoModule {
		return
	}
	m.cleanupAsset(int(s.ModuleIndex), &s.Asset)
	s.ModuleIndex = slottable.NoModule
}

func (m *Manager) cleanupAsset(moduleIndex int, asset *assettypes.AssetAny) {
	if asset.State == assettypes.Empty {
		return
	}
	desc, ok := m.registry.ByIndex(moduleIndex)
	if !ok || desc.Type != asset.Type {
		fallback := m.registry.FirstIndexOf(asset.Type)
		if fallback < 0 {
			return
		}
		desc, ok = m.registry.ByIndex(fallback)
		if !ok {
			return
		}
	}
	if desc.Cleanup != nil {
		desc.Cleanup(context.Background(), m.cfg.GPU, asset)
	}
	asset.State = assettypes.Empty
}

// Get returns the published asset for h, or (nil, false) if the
// handle is invalid or the slot is Loading/Failed/Empty. The returned
// value is a shallow copy taken under the table's lock; it reflects
// the fully-published state after the most recent Pump.
func (m *Manager) Get(h handle.Handle) (*assettypes.AssetAny, bool) {
	var out assettypes.AssetAny
	found := false
	m.slots.View(h, func(s *slottable.Slot) {
		if s.Asset.State == assettypes.Ready {
			out = s.Asset
			found = true
		}
	})
	if !found {
		return nil, false
	}
	return &out, true
}

// Shutdown stops accepting new work, drains both queues, joins every
// worker, and releases all live slot contents through their producing
// module. Safe to call exactly once.
func (m *Manager) Shutdown() {
	m.shuttingDown.Store(true)
	m.jobs.Broadcast()
	m.jobs.Drain() // pointer-style jobs are deliberately abandoned here
	m.pool.Stop()

	for {
		r, ok := m.done.Pop()
		if !ok {
			break
		}
		if r.OK {
			asset := r.Asset
			m.cleanupAsset(r.ModuleIndex, &asset)
		}
	}

	m.slots.ForEach(func(_ int, s *slottable.Slot) {
		if s.ModuleIndex != slottable.NoModule {
			m.cleanupAsset(int(s.ModuleIndex), &s.Asset)
			s.ModuleIndex = slottable.NoModule
		}
	})

	obslog.Logger().Info("asset manager shut down")
}

// Registry exposes the module registry for callers that need to
// register additional modules before the first Request (e.g. a host
// application adding a project-specific mesh format).
func (m *Manager) Registry() *modreg.Registry { return m.registry }

var _ modreg.Requester = (*Manager)(nil)
