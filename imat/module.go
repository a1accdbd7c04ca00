// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package imat

import (
	"context"
	"os"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/modreg"
)

// Register adds the built-in Material module to reg.
func Register(reg *modreg.Registry, requester modreg.Requester) {
	_ = requester
	reg.Register(modreg.Descriptor{
		Type:     assettypes.Material,
		Name:     "imat.text",
		Load:     load,
		SaveBlob: save,
		CanLoad:  canLoad,
	})
}

func canLoad(in modreg.LoadInput) bool {
	if in.PathIsPtr {
		return false
	}
	return strings.HasSuffix(strings.ToLower(in.Path), ".imat")
}

// load parses a .imat document. Materials carry no owned GPU resource
// of their own (their texture fields are handles into the Image
// table), so the module has no Init/Cleanup hooks.
func load(_ context.Context, in modreg.LoadInput) (assettypes.AssetAny, error) {
	if in.PathIsPtr || in.Path == "" {
		return assettypes.AssetAny{}, assetcoreerrs.NewRejectedInput("path", "material module requires a file path")
	}
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return assettypes.AssetAny{}, assetcoreerrs.NewDecodeError(in.Path, err)
	}
	mat, err := Decode(data)
	if err != nil {
		return assettypes.AssetAny{}, err
	}
	asset := assettypes.Zero(assettypes.Material)
	asset.Material = &mat
	return asset, nil
}

// save re-serializes the live Material back to its .imat text form, so
// a host application can persist in-memory edits.
func save(_ context.Context, _ gpuhal.Device, asset *assettypes.AssetAny) ([]byte, error) {
	if asset.Material == nil {
		return nil, assetcoreerrs.NewRejectedInput("material", "asset has no material payload")
	}
	return Encode(*asset.Material)
}
