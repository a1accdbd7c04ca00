// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gltf

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/mesh"
	"github.com/gogpu/assetcore/modreg"
)

// Register adds the glTF/GLB Model module to reg. requester is
// accepted for symmetry with other mesh adapters; external image/
// buffer references are resolved as plain files relative to the
// source document rather than routed through sub-requests, since
// glTF's own material system is out of this core's scope (materials
// bind by the core's .imat/name convention, not glTF PBR metallic-
// roughness JSON).
func Register(reg *modreg.Registry, requester modreg.Requester) {
	_ = requester
	reg.Register(modreg.Descriptor{
		Type:    assettypes.Model,
		Name:    "mesh.gltf",
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
	ext := strings.ToLower(filepath.Ext(in.Path))
	if ext == ".gltf" {
		return true
	}
	if ext != ".glb" {
		return false
	}
	f, err := os.Open(in.Path)
	if err != nil {
		return false
	}
	defer f.Close()
	var magic [4]byte
	n, _ := f.Read(magic[:])
	return n == 4 && binary.LittleEndian.Uint32(magic[:]) == GLBMagic
}

func load(_ context.Context, in modreg.LoadInput) (assettypes.AssetAny, error) {
	if in.PathIsPtr || in.Path == "" {
		return assettypes.AssetAny{}, assetcoreerrs.NewRejectedInput("path", "gltf module requires a file path")
	}
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return assettypes.AssetAny{}, assetcoreerrs.NewDecodeError(in.Path, err)
	}

	var raw mesh.RawModel
	if strings.EqualFold(filepath.Ext(in.Path), ".glb") {
		raw, err = DecodeGLB(data)
	} else {
		raw, err = Decode(data, filepath.Dir(in.Path))
	}
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
