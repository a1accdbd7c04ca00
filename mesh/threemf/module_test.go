// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package threemf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/modreg"
)

func TestCanLoadChecksExtensionAndZipMagic(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "part.3mf")
	if err := os.WriteFile(good, buildArchiveStandalone(t), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !canLoad(modreg.LoadInput{Path: good}) {
		t.Fatalf("expected a real 3mf archive to pass canLoad")
	}

	bad := filepath.Join(dir, "fake.3mf")
	if err := os.WriteFile(bad, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if canLoad(modreg.LoadInput{Path: bad}) {
		t.Fatalf("expected non-zip content to fail canLoad despite the extension")
	}
}

func buildArchiveStandalone(t *testing.T) []byte {
	t.Helper()
	return buildArchive(t)
}

func TestLoadInitCleanupLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.3mf")
	if err := os.WriteFile(path, buildArchive(t), 0o644); err != nil {
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
