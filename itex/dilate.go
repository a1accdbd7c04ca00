// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package itex

// hasSmoothAlpha reports whether any alpha value in [1,254] is present
// — i.e. the image has partially transparent pixels, not just a hard
// opaque/transparent cutout.
func hasSmoothAlpha(rgba []byte) bool {
	for i := 3; i < len(rgba); i += 4 {
		a := rgba[i]
		if a >= 1 && a <= 254 {
			return true
		}
	}
	return false
}

// dilateRGBIntoZeroAlpha performs a 6-pass, 3x3-neighborhood dilation:
// each pass copies the RGB of the highest-alpha 3x3 neighbor
// into any pixel whose own alpha is 0, leaving that pixel's alpha
// unchanged. Used to reduce bilinear-sampling seam artifacts at hard
// alpha cutouts.
func dilateRGBIntoZeroAlpha(rgba []byte, w, h int) {
	const passes = 6
	for p := 0; p < passes; p++ {
		changed := false
		// Operate on a snapshot so each pass sees a consistent source.
		src := make([]byte, len(rgba))
		copy(src, rgba)

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := (y*w + x) * 4
				if src[i+3] != 0 {
					continue
				}
				bestAlpha := byte(0)
				var bestRGB [3]byte
				found := false
				for dy := -1; dy <= 1; dy++ {
					ny := y + dy
					if ny < 0 || ny >= h {
						continue
					}
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx := x + dx
						if nx < 0 || nx >= w {
							continue
						}
						ni := (ny*w + nx) * 4
						if src[ni+3] > bestAlpha {
							bestAlpha = src[ni+3]
							bestRGB = [3]byte{src[ni], src[ni+1], src[ni+2]}
							found = true
						}
					}
				}
				if found {
					rgba[i] = bestRGB[0]
					rgba[i+1] = bestRGB[1]
					rgba[i+2] = bestRGB[2]
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}
