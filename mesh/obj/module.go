// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package obj

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/mesh"
	"github.com/gogpu/assetcore/modreg"
)

// Register adds the OBJ Model module to reg. requester is accepted
// for symmetry with other mesh adapters; OBJ's materials bind by name
// only (resolved lazily by the host), so this adapter never issues
// sub-requests itself.
func Register(reg *modreg.Registry, requester modreg.Requester) {
	_ = requester
	reg.Register(modreg.Descriptor{
		Type:    assettypes.Model,
		Name:    "mesh.obj",
		Load:    load,
		Init:    initGPU,
		Cleanup: cleanup,
		CanLoad: canLoad,
	})
}

func canLoad(in modreg.LoadInput) bool {
	if in.PathIsPtr {
		return false
	}
	return strings.HasSuffix(strings.ToLower(in.Path), ".obj")
}

func load(_ context.Context, in modreg.LoadInput) (assettypes.AssetAny, error) {
	if in.PathIsPtr || in.Path == "" {
		return assettypes.AssetAny{}, assetcoreerrs.NewRejectedInput("path", "obj module requires a file path")
	}
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return assettypes.AssetAny{}, assetcoreerrs.NewDecodeError(in.Path, err)
	}
	raw, err := Decode(bytes.NewReader(data))
	if err != nil {
		return assettypes.AssetAny{}, err
	}
	asset := assettypes.Zero(assettypes.Model)
	asset.Model = &assettypes.Model{}
	mesh.Stage(asset.Model, raw)
	return asset, nil
}

func initGPU(ctx context.Context, dev gpuhal.Device, asset *assettypes.AssetAny) error {
	raw, ok := mesh.Take(asset.Model)
	if !ok {
		return assetcoreerrs.NewInitError("model", assetcoreerrs.NewRejectedInput("model", "no staged raw mesh for this asset"))
	}
	for i := range raw.Submeshes {
		mesh.GenerateLODs(&raw.Submeshes[i], mesh.DefaultLODRatios)
	}
	model, err := mesh.UploadModel(ctx, dev, raw)
	if err != nil {
		return err
	}
	*asset.Model = *model
	return nil
}

func cleanup(ctx context.Context, dev gpuhal.Device, asset *assettypes.AssetAny) {
	if asset.Model == nil {
		return
	}
	mesh.ReleaseModel(ctx, dev, asset.Model)
	asset.Model = nil
}
