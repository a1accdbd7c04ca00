// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package imat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/modreg"
)

func TestRegisterAddsMaterialModule(t *testing.T) {
	reg := modreg.New()
	Register(reg, nil)
	if reg.FirstIndexOf(assettypes.Material) != 0 {
		t.Fatalf("expected material module registered at index 0")
	}
}

func TestCanLoadRequiresImatExtension(t *testing.T) {
	if canLoad(modreg.LoadInput{Path: "foo.obj"}) {
		t.Fatalf("should not accept non-.imat paths")
	}
	if !canLoad(modreg.LoadInput{Path: "foo.imat"}) {
		t.Fatalf("should accept .imat paths")
	}
}

func TestLoadParsesFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.imat")
	doc := "shader_id: 1\nflags: 0\nalbedo: {x: 1, y: 1, z: 1}\nemissive: {x: 0, y: 0, z: 0}\n" +
		"roughness: 0.5\nmetallic: 0\nopacity: 1\nnormal_strength: 1\nheight_scale: 0\nheight_steps: 0\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	asset, err := load(context.Background(), modreg.LoadInput{Path: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if asset.Material == nil || asset.Material.ShaderID != 1 {
		t.Fatalf("unexpected material: %+v", asset.Material)
	}
}

func TestSaveRequiresMaterialPayload(t *testing.T) {
	asset := assettypes.Zero(assettypes.Material)
	if _, err := save(context.Background(), nil, &asset); err == nil {
		t.Fatalf("expected an error saving an empty asset")
	}
}
