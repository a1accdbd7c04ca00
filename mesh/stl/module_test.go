// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package stl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/modreg"
)

func TestCanLoadChecksExtension(t *testing.T) {
	if !canLoad(modreg.LoadInput{Path: "part.stl"}) {
		t.Fatalf("expected .stl to pass canLoad")
	}
	if canLoad(modreg.LoadInput{Path: "part.obj"}) {
		t.Fatalf("expected .obj to be rejected")
	}
}

func TestLoadInitCleanupLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.stl")
	if err := os.WriteFile(path, []byte(sampleASCII), 0o644); err != nil {
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
