// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package itex

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
)

// Radiance HDR / RGBE hard limits: dimensions must fit a 16-bit
// resolution line, and the total pixel count is capped well below
// what a runtime texture atlas would ever need.
const (
	hdrMaxDimension = 16384
	hdrMaxPixels    = 60_000_000
)

// decodeRGBE parses a minimal Radiance .hdr/.pic file: a line-oriented
// ASCII header terminated by a blank line, a "-Y H +X W" resolution
// line, then either flat or new-style RLE-compressed RGBE scanlines.
// Output is 3-channel (RGB, no alpha) float32 data, each channel
// scaled by 2^(exponent-128)/256.
func decodeRGBE(data []byte) (width, height int, pixels []float32, err error) {
	r := bufio.NewReader(bytes.NewReader(data))

	line, err := r.ReadString('\n')
	if err != nil {
		return 0, 0, nil, assetcoreerrs.NewRejectedInput("hdr_magic", "empty file")
	}
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "#?RADIANCE") && !strings.HasPrefix(line, "#?RGBE") {
		return 0, 0, nil, assetcoreerrs.NewRejectedInput("hdr_magic", "missing Radiance signature")
	}

	// Skip header lines up to the blank separator.
	for {
		line, err = r.ReadString('\n')
		if err != nil {
			return 0, 0, nil, assetcoreerrs.NewDecodeError("hdr", err)
		}
		if strings.TrimRight(line, "\r\n") == "" {
			break
		}
	}

	resLine, err := r.ReadString('\n')
	if err != nil {
		return 0, 0, nil, assetcoreerrs.NewDecodeError("hdr", err)
	}
	w, h, err := parseResolution(strings.TrimRight(resLine, "\r\n"))
	if err != nil {
		return 0, 0, nil, err
	}
	if w <= 0 || h <= 0 || w > hdrMaxDimension || h > hdrMaxDimension {
		return 0, 0, nil, assetcoreerrs.NewRejectedInput("hdr_dimensions", "out of supported range")
	}
	if w*h > hdrMaxPixels {
		return 0, 0, nil, assetcoreerrs.NewRejectedInput("hdr_dimensions", "exceeds pixel budget")
	}

	// The RGBE wire format is always 4 bytes per pixel (R, G, B, shared
	// exponent); scan stays 4-wide regardless of the 3-channel float
	// output below.
	out := make([]float32, w*h*3)
	scan := make([]byte, w*4)
	for y := 0; y < h; y++ {
		if err := readRGBEScanline(r, scan, w); err != nil {
			return 0, 0, nil, err
		}
		base := y * w * 3
		for x := 0; x < w; x++ {
			r8, g8, b8, e8 := scan[x*4], scan[x*4+1], scan[x*4+2], scan[x*4+3]
			rf, gf, bf := rgbeToFloat(r8, g8, b8, e8)
			o := base + x*3
			out[o], out[o+1], out[o+2] = rf, gf, bf
		}
	}
	return w, h, out, nil
}

func parseResolution(line string) (w, h int, err error) {
	// Only the common "-Y H +X W" orientation is supported; anything
	// else (rotated/flipped images) is rejected rather than silently
	// misread.
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "-Y" || fields[2] != "+X" {
		return 0, 0, assetcoreerrs.NewRejectedInput("hdr_resolution", "unsupported orientation")
	}
	hv, e1 := strconv.Atoi(fields[1])
	wv, e2 := strconv.Atoi(fields[3])
	if e1 != nil || e2 != nil {
		return 0, 0, assetcoreerrs.NewRejectedInput("hdr_resolution", "non-numeric dimensions")
	}
	return wv, hv, nil
}

func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	f := ldexp(1.0, int(e)-128-8)
	return float32(float64(r) * f), float32(float64(g) * f), float32(float64(b) * f)
}

// ldexp avoids importing math just for this one call site pattern used
// repeatedly; kept local for clarity at the call site.
func ldexp(frac float64, exp int) float64 {
	for exp > 0 {
		frac *= 2
		exp--
	}
	for exp < 0 {
		frac /= 2
		exp++
	}
	return frac
}

// readRGBEScanline reads one scanline into dst (w*4 bytes, RGBE
// interleaved), handling both the flat per-pixel format and the
// new-style per-channel RLE format identified by a sentinel pixel
// (2,2,hi,lo).
func readRGBEScanline(r *bufio.Reader, dst []byte, w int) error {
	if w < 8 || w > 0x7fff {
		return readFlatScanline(r, dst, w)
	}

	head := make([]byte, 4)
	if _, err := fullRead(r, head); err != nil {
		return assetcoreerrs.NewDecodeError("hdr", err)
	}
	if head[0] != 2 || head[1] != 2 || (int(head[2])<<8|int(head[3])) != w {
		// Not new-style RLE; treat head as the first flat pixel and fall back.
		copy(dst[0:4], head)
		return readFlatScanline(r, dst[4:], w-1)
	}

	for c := 0; c < 4; c++ {
		x := 0
		for x < w {
			b, err := r.ReadByte()
			if err != nil {
				return assetcoreerrs.NewDecodeError("hdr", err)
			}
			if b > 128 {
				count := int(b) - 128
				v, err := r.ReadByte()
				if err != nil {
					return assetcoreerrs.NewDecodeError("hdr", err)
				}
				if x+count > w {
					return assetcoreerrs.NewCorruptionError("hdr_rle", "run exceeds scanline width")
				}
				for i := 0; i < count; i++ {
					dst[(x+i)*4+c] = v
				}
				x += count
			} else {
				count := int(b)
				if x+count > w {
					return assetcoreerrs.NewCorruptionError("hdr_rle", "literal run exceeds scanline width")
				}
				for i := 0; i < count; i++ {
					v, err := r.ReadByte()
					if err != nil {
						return assetcoreerrs.NewDecodeError("hdr", err)
					}
					dst[(x+i)*4+c] = v
				}
				x += count
			}
		}
	}
	return nil
}

func readFlatScanline(r *bufio.Reader, dst []byte, w int) error {
	need := w * 4
	if len(dst) < need {
		return assetcoreerrs.NewCorruptionError("hdr_scanline", "destination too small")
	}
	_, err := fullRead(r, dst[:need])
	if err != nil {
		return assetcoreerrs.NewDecodeError("hdr", err)
	}
	return nil
}

func fullRead(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
