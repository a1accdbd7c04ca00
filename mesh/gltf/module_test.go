// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gltf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/modreg"
)

func TestCanLoadGltfExtension(t *testing.T) {
	if !canLoad(modreg.LoadInput{Path: "model.gltf"}) {
		t.Fatalf("expected .gltf to pass canLoad unconditionally")
	}
	if canLoad(modreg.LoadInput{Path: "model.obj"}) {
		t.Fatalf("expected .obj to be rejected")
	}
}

func TestCanLoadGlbSniffsMagic(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.glb")
	if err := os.WriteFile(good, buildGLB(t, []byte(`{}`)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !canLoad(modreg.LoadInput{Path: good}) {
		t.Fatalf("expected a real glb file to pass canLoad")
	}

	bad := filepath.Join(dir, "b.glb")
	if err := os.WriteFile(bad, []byte("not a glb"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if canLoad(modreg.LoadInput{Path: bad}) {
		t.Fatalf("expected a non-glb file to fail canLoad despite the extension")
	}
}

func TestLoadInitCleanupLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.gltf")
	if err := os.WriteFile(path, buildTriangleGLTF(t), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	asset, err := load(context.Background(), modreg.LoadInput{Path: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	dev := gpuhal.NewNull()
	if err := initGPU(context.Background(), dev, &asset); err != nil {
		t.Fatalf("initGPU: %v", err)
	}
	if !asset.Model.LOD0Ready {
		t.Fatalf("expected LOD0Ready after init")
	}
	cleanup(context.Background(), dev, &asset)
	if asset.Model != nil {
		t.Fatalf("expected cleanup to nil the Model field")
	}
}
