// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package manager

import (
	"github.com/gogpu/assetcore/imat"
	"github.com/gogpu/assetcore/itex"
	"github.com/gogpu/assetcore/mesh/fbx"
	"github.com/gogpu/assetcore/mesh/gltf"
	"github.com/gogpu/assetcore/mesh/obj"
	"github.com/gogpu/assetcore/mesh/ply"
	"github.com/gogpu/assetcore/mesh/stl"
	"github.com/gogpu/assetcore/mesh/threemf"
	"github.com/gogpu/assetcore/modreg"
)

// registerBuiltins wires every format adapter shipped with this core
// into reg, in the fixed order below. Registration order is load
// priority within a type (modreg.Registry.TryLoad walks candidates in
// registration order, first successful CanLoad+Load wins). The obj
// adapter is registered first among the mesh adapters; each mesh
// adapter's CanLoad accepts only its own extensions, so no two of them
// accept the same path and the order does not change which one loads
// a given file.
func registerBuiltins(reg *modreg.Registry, requester modreg.Requester) {
	itex.Register(reg, requester)
	imat.Register(reg, requester)

	obj.Register(reg, requester)
	ply.Register(reg, requester)
	stl.Register(reg, requester)
	threemf.Register(reg, requester)
	gltf.Register(reg, requester)
	fbx.Register(reg, requester)
}
