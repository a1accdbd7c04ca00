// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package obj

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/modreg"
)

func TestCanLoadChecksExtension(t *testing.T) {
	if canLoad(modreg.LoadInput{Path: "model.gltf"}) {
		t.Fatalf("expected .gltf to be rejected")
	}
	if !canLoad(modreg.LoadInput{Path: "Model.OBJ"}) {
		t.Fatalf("expected case-insensitive .obj match")
	}
	if canLoad(modreg.LoadInput{PathIsPtr: true}) {
		t.Fatalf("expected pointer input to be rejected")
	}
}

func TestLoadInitCleanupLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(path, []byte(sampleOBJ), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	asset, err := load(context.Background(), modreg.LoadInput{Path: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if asset.Model == nil {
		t.Fatalf("expected a staged Model payload")
	}

	dev := gpuhal.NewNull()
	if err := initGPU(context.Background(), dev, &asset); err != nil {
		t.Fatalf("initGPU: %v", err)
	}
	if !asset.Model.LOD0Ready {
		t.Fatalf("expected LOD0Ready after init")
	}
	if len(asset.Model.Submeshes[0].LODs) == 0 {
		t.Fatalf("expected at least one uploaded LOD")
	}

	cleanup(context.Background(), dev, &asset)
	if asset.Model != nil {
		t.Fatalf("expected cleanup to nil the Model field")
	}
}
