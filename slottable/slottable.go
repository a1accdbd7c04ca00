// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package slottable implements the slot table (C5): an append-only
// table of {generation, module_index, asset} slots addressed by
// Handle, with generation-checked lookup to reject stale handles.
//
// Generalized from a generic-marker-per-resource-type design to a single concrete
// table keyed by the four-field Handle, since this core has
// exactly one slot table shared by every asset type rather than one
// table per GPU resource kind.
package slottable

import (
	"sync"

	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/handle"
)

// NoModule marks a slot whose contents were not produced by any
// registered module (e.g. still Loading, or never populated).
const NoModule uint16 = 0xFFFF

// Slot is one cell of the table. Slots are never removed; once
// allocated, a slot's index is stable for the table's lifetime.
type Slot struct {
	Generation  uint16
	ModuleIndex uint16
	Asset       assettypes.AssetAny
}

// Table is the append-only, generation-checked slot table.
type Table struct {
	mu         sync.RWMutex
	handleType uint16
	slots      []Slot
}

// New creates an empty table. handleType is the manager-wide constant
// stored in every handle's type field: it identifies
// handles as belonging to this table, distinct from the asset's own
// type tag carried inside the slot.
func New(handleType uint16, capacityHint int) *Table {
	if capacityHint <= 0 {
		capacityHint = 64
	}
	return &Table{
		handleType: handleType,
		slots:      make([]Slot, 0, capacityHint),
	}
}

// Alloc appends a new slot tagged with the given asset type, in
// Loading state, generation 1 (odd: live), and returns its handle. The
// returned index is 1-based.
func (t *Table) Alloc(assetType assettypes.Type) (handle.Handle, *Slot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.slots = append(t.slots, Slot{
		Generation:  1,
		ModuleIndex: NoModule,
		Asset:       assettypes.Zero(assetType),
	})
	index := len(t.slots) // 1-based
	t.slots[index-1].Asset.State = assettypes.Loading

	h := handle.Make(t.handleType, uint16(index), 1) //nolint:gosec // table capped well under 2^16 by queue/job backpressure in practice
	return h, &t.slots[index-1]
}

// validateLocked checks h against the table: its type must match the
// table's handleType, its index must be in range, and the slot's
// current generation must equal h's generation. Caller must hold mu.
func (t *Table) validateLocked(h handle.Handle) (*Slot, bool) {
	if h.Type() != t.handleType {
		return nil, false
	}
	idx := int(h.Index())
	if idx < 1 || idx > len(t.slots) {
		return nil, false
	}
	s := &t.slots[idx-1]
	if s.Generation != h.Generation() {
		return nil, false
	}
	return s, true
}

// View calls fn with the slot h refers to, holding a read lock, and
// returns true. If h does not validate, fn is not called and View
// returns false.
func (t *Table) View(h handle.Handle, fn func(*Slot)) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.validateLocked(h)
	if !ok {
		return false
	}
	fn(s)
	return true
}

// Mutate calls fn with the slot h refers to, holding the write lock.
func (t *Table) Mutate(h handle.Handle, fn func(*Slot)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.validateLocked(h)
	if !ok {
		return false
	}
	fn(s)
	return true
}

// ForEach visits every slot in index order under the write lock. fn
// receives the 1-based index and the slot; ForEach does not
// reconstruct a handle since a caller iterating all slots (e.g.
// shutdown cleanup) does not need generation-checked access.
func (t *Table) ForEach(fn func(index int, s *Slot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		fn(i+1, &t.slots[i])
	}
}

// Len returns the number of allocated slots (including ones in any state).
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots)
}
