// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mesh

import (
	"sync"

	"github.com/gogpu/assetcore/assettypes"
)

// staging holds CPU-side RawModel payloads between a format adapter's
// Load (which must never touch the GPU) and its Init (which runs on
// the GPU-affine thread and needs the raw vertex/index data to upload
// and to run LOD generation against). Keyed by the *assettypes.Model
// pointer Load allocates and Init receives back through the slot
// table, so there is never more than one pending entry per in-flight
// asset and no adapter needs its own bookkeeping for this.
var staging sync.Map // map[*assettypes.Model]RawModel

// Stage records raw mesh data for model, to be retrieved by Take
// during Init.
func Stage(model *assettypes.Model, raw RawModel) {
	staging.Store(model, raw)
}

// Take retrieves and clears the raw mesh data staged for model.
func Take(model *assettypes.Model) (RawModel, bool) {
	v, ok := staging.LoadAndDelete(model)
	if !ok {
		return RawModel{}, false
	}
	return v.(RawModel), true //nolint:forcetypeassert // only this package ever stores into staging
}
