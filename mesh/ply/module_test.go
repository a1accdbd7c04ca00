// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ply

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/modreg"
)

func TestCanLoadSniffsMagicLine(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.ply")
	_ = os.WriteFile(good, []byte(sampleTriangle), 0o644)
	if !canLoad(modreg.LoadInput{Path: good}) {
		t.Fatalf("expected a real ply file to pass canLoad")
	}

	bad := filepath.Join(dir, "b.ply")
	_ = os.WriteFile(bad, []byte("not ply at all\n"), 0o644)
	if canLoad(modreg.LoadInput{Path: bad}) {
		t.Fatalf("expected a file without the ply magic line to fail canLoad")
	}

	if canLoad(modreg.LoadInput{Path: "model.obj"}) {
		t.Fatalf("expected .obj extension to be rejected outright")
	}
}

func TestLoadInitCleanupLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.ply")
	if err := os.WriteFile(path, []byte(sampleTriangle), 0o644); err != nil {
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
