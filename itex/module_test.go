// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package itex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/modreg"
)

func TestRegisterAddsImageModule(t *testing.T) {
	reg := modreg.New()
	Register(reg, nil)
	if reg.FirstIndexOf(assettypes.Image) != 0 {
		t.Fatalf("expected image module registered at index 0")
	}
}

func TestCanLoadRejectsPointerInput(t *testing.T) {
	if canLoad(modreg.LoadInput{PathIsPtr: true, Ptr: struct{}{}}) {
		t.Fatalf("pointer input should not be loadable by the image module")
	}
}

func TestLoadAndInitRoundTripItexFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.itex")

	pixels := make([]byte, 2*2*4)
	for i := range pixels {
		pixels[i] = byte(i * 7)
	}
	data, err := Encode(Header{Width: 2, Height: 2, Channels: 4}, pixels)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	asset, err := load(context.Background(), modreg.LoadInput{Path: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if asset.Image == nil || asset.Image.Width != 2 || asset.Image.Height != 2 {
		t.Fatalf("unexpected loaded image: %+v", asset.Image)
	}

	dev := gpuhal.NewNull()
	if err := initGPU(context.Background(), dev, &asset); err != nil {
		t.Fatalf("initGPU: %v", err)
	}
	if asset.Image.Texture == 0 {
		t.Fatalf("expected a non-zero texture handle after init")
	}

	cleanup(context.Background(), dev, &asset)
	if asset.Image != nil {
		t.Fatalf("expected cleanup to clear the image payload")
	}
	if len(dev.Textures) != 0 {
		t.Fatalf("expected cleanup to release the GPU texture")
	}
}

func TestLoadRejectsPointerInput(t *testing.T) {
	_, err := load(context.Background(), modreg.LoadInput{PathIsPtr: true, Ptr: 1})
	if err == nil {
		t.Fatalf("expected an error for pointer input")
	}
}
