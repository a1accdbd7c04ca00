// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package itex

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/gpuhal"
	"github.com/gogpu/assetcore/mips"
	"github.com/gogpu/assetcore/modreg"
)

// Register adds the built-in Image module to reg. requester is
// accepted for symmetry with other format adapters even though image
// loading never needs to issue sub-requests.
func Register(reg *modreg.Registry, requester modreg.Requester) {
	_ = requester
	reg.Register(modreg.Descriptor{
		Type:    assettypes.Image,
		Name:    "itex.generic",
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
	return in.Path != ""
}

// load decodes a path into CPU-resident Image contents. It accepts
// both raw formats (png/jpg/bmp/gif/hdr/tga/pnm) dispatched through
// decodeImage, and the core's own pre-compressed .itex container.
func load(_ context.Context, in modreg.LoadInput) (assettypes.AssetAny, error) {
	if in.PathIsPtr || in.Path == "" {
		return assettypes.AssetAny{}, assetcoreerrs.NewRejectedInput("path", "image module requires a file path")
	}

	data, err := os.ReadFile(in.Path)
	if err != nil {
		return assettypes.AssetAny{}, assetcoreerrs.NewDecodeError(in.Path, err)
	}

	var img *assettypes.Image
	if strings.EqualFold(filepath.Ext(in.Path), ".itex") {
		img, err = fromContainer(data)
	} else {
		img, err = fromRaw(data, strings.ToLower(filepath.Ext(in.Path)))
	}
	if err != nil {
		return assettypes.AssetAny{}, err
	}

	asset := assettypes.Zero(assettypes.Image)
	asset.Image = img
	return asset, nil
}

func fromContainer(data []byte) (*assettypes.Image, error) {
	h, pixels, err := Decode(data)
	if err != nil {
		return nil, err
	}
	img := &assettypes.Image{
		Width:          h.Width,
		Height:         h.Height,
		Channels:       h.Channels,
		IsFloat:        h.IsFloat != 0,
		HasAlpha:       h.HasAlpha != 0,
		HasSmoothAlpha: h.HasSmoothAlpha != 0,
		Pixels:         pixels,
	}
	return img, nil
}

func fromRaw(data []byte, ext string) (*assettypes.Image, error) {
	d, err := decodeImage(data, ext)
	if err != nil {
		return nil, err
	}

	img := &assettypes.Image{
		Width:    uint32(d.Width),  //nolint:gosec // decoded image dimensions are well under 2^32
		Height:   uint32(d.Height), //nolint:gosec // decoded image dimensions are well under 2^32
		Channels: uint32(d.Channels),
		IsFloat:  d.IsFloat,
	}

	if d.IsFloat {
		img.Pixels = nil
		chain, err := mips.BuildF32(d.Floats, img.Width, img.Height, img.Channels)
		if err != nil {
			return nil, err
		}
		img.Mips = chain
		img.Pixels = floatsToBytes(d.Floats)
		return img, nil
	}

	if d.Channels == 4 {
		img.HasAlpha = hasAnyAlphaBelowMax(d.Bytes)
		if img.HasAlpha {
			img.HasSmoothAlpha = hasSmoothAlpha(d.Bytes)
			if !img.HasSmoothAlpha {
				dilateRGBIntoZeroAlpha(d.Bytes, d.Width, d.Height)
			}
		}
	}

	img.Pixels = d.Bytes
	chain, err := mips.BuildU8(d.Bytes, img.Width, img.Height, img.Channels)
	if err != nil {
		return nil, err
	}
	img.Mips = chain
	return img, nil
}

func hasAnyAlphaBelowMax(rgba []byte) bool {
	for i := 3; i < len(rgba); i += 4 {
		if rgba[i] != 255 {
			return true
		}
	}
	return false
}

// floatsToBytes reinterprets a float32 pixel buffer as its raw
// little-endian byte representation, matching the .itex container's
// on-disk layout for IsFloat images.
func floatsToBytes(f []float32) []byte {
	out := make([]byte, len(f)*4)
	for i, v := range f {
		bits := math.Float32bits(v)
		o := i * 4
		out[o] = byte(bits)
		out[o+1] = byte(bits >> 8)
		out[o+2] = byte(bits >> 16)
		out[o+3] = byte(bits >> 24)
	}
	return out
}

// initGPU uploads the decoded base level (and mip chain, once the GPU
// collaborator supports multi-level uploads) to a texture resource.
func initGPU(ctx context.Context, dev gpuhal.Device, asset *assettypes.AssetAny) error {
	img := asset.Image
	mipCount := uint32(1)
	if img.Mips != nil {
		mipCount = uint32(len(img.Mips.Levels)) //nolint:gosec // mip chains are capped at mips.MaxLevels
	}
	tex, err := dev.CreateTexture(ctx, gpuhal.TextureDesc{
		Label:    "image",
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
		IsFloat:  img.IsFloat,
		MipCount: mipCount,
		Pixels:   img.Pixels,
	})
	if err != nil {
		return assetcoreerrs.NewInitError("texture", err)
	}
	img.Texture = tex
	return nil
}

func cleanup(ctx context.Context, dev gpuhal.Device, asset *assettypes.AssetAny) {
	if asset.Image == nil {
		return
	}
	if asset.Image.Texture != 0 {
		dev.DestroyTexture(ctx, asset.Image.Texture)
	}
	asset.Image = nil
}
