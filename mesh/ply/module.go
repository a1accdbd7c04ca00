// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ply

import (
	"bufio"
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

// Register adds the ASCII PLY Model module to reg.
func Register(reg *modreg.Registry, requester modreg.Requester) {
	_ = requester
	reg.Register(modreg.Descriptor{
		Type:    assettypes.Model,
		Name:    "mesh.ply",
		Load:    load,
		Init:    initGPU,
		Cleanup: cleanup,
		CanLoad: canLoad,
	})
}

// canLoad checks the .ply extension plus the "ply" magic line.
func canLoad(in modreg.LoadInput) bool {
	if in.PathIsPtr {
		return false
	}
	if !strings.HasSuffix(strings.ToLower(in.Path), ".ply") {
		return false
	}
	f, err := os.Open(in.Path)
	if err != nil {
		return false
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	return sc.Scan() && strings.TrimSpace(sc.Text()) == "ply"
}

func load(_ context.Context, in modreg.LoadInput) (assettypes.AssetAny, error) {
	if in.PathIsPtr || in.Path == "" {
		return assettypes.AssetAny{}, assetcoreerrs.NewRejectedInput("path", "ply module requires a file path")
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
