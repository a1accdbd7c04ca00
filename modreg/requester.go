// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package modreg

import (
	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/handle"
)

// Requester is the narrow view of the asset manager that format
// adapters need to synthesize sub-requests (e.g. a mesh adapter
// requesting the materials or textures it references) without
// importing the manager package directly — which would create an
// import cycle, since the manager registers these adapters at
// construction time.
type Requester interface {
	Request(t assettypes.Type, path string) handle.Handle
	RequestPtr(t assettypes.Type, ptr any) handle.Handle
	SubmitRaw(t assettypes.Type, raw assettypes.AssetAny) handle.Handle
}
