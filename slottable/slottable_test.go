// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slottable

import (
	"testing"

	"github.com/gogpu/assetcore/assettypes"
)

func TestAllocProducesLiveHandle(t *testing.T) {
	tbl := New(1, 0)
	h, slot := tbl.Alloc(assettypes.Image)

	if !h.IsValid() {
		t.Fatal("Alloc should return a valid handle")
	}
	if h.Generation()%2 == 0 {
		t.Error("a freshly allocated slot's generation must be odd (live)")
	}
	if slot.Asset.State != assettypes.Loading {
		t.Errorf("fresh slot state = %v, want Loading", slot.Asset.State)
	}
	if slot.ModuleIndex != NoModule {
		t.Errorf("fresh slot module index = %d, want NoModule", slot.ModuleIndex)
	}
}

func TestViewRejectsWrongType(t *testing.T) {
	tbl := New(1, 0)
	h, _ := tbl.Alloc(assettypes.Image)

	wrongType := h.WithMeta(h.Meta()) // same value; now corrupt the type bits manually
	corrupted := wrongType ^ (1 << 32)
	if tbl.View(corrupted, func(*Slot) {}) {
		t.Error("View should reject a handle whose type bits don't match the table")
	}
	if !tbl.View(h, func(*Slot) {}) {
		t.Error("View should accept the original handle")
	}
}

func TestMutateRejectsStaleGeneration(t *testing.T) {
	tbl := New(1, 0)
	h, slot := tbl.Alloc(assettypes.Image)
	slot.Generation++ // simulate a recycle bumping the generation

	if tbl.Mutate(h, func(*Slot) {}) {
		t.Error("Mutate should reject a handle with a stale generation")
	}
}

func TestForEachVisitsAllSlots(t *testing.T) {
	tbl := New(1, 0)
	for i := 0; i < 5; i++ {
		tbl.Alloc(assettypes.Material)
	}

	seen := 0
	tbl.ForEach(func(index int, s *Slot) {
		seen++
		if index < 1 || index > 5 {
			t.Errorf("unexpected index %d", index)
		}
	})
	if seen != 5 {
		t.Errorf("visited %d slots, want 5", seen)
	}
}

func TestLen(t *testing.T) {
	tbl := New(1, 0)
	if tbl.Len() != 0 {
		t.Fatal("new table should be empty")
	}
	tbl.Alloc(assettypes.Scene)
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}
