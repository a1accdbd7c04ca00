// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package itex

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"

	"golang.org/x/image/bmp"

	"github.com/gogpu/assetcore/assetcoreerrs"
)

// decoded is the common shape every format-specific decoder produces,
// before alpha dilation / smooth-alpha detection / mip generation run
// over it uniformly.
type decoded struct {
	Width, Height, Channels int
	IsFloat                 bool
	Bytes                   []byte    // valid when !IsFloat: tightly packed, row-major, top-down
	Floats                  []float32 // valid when IsFloat
}

// decodeImage sniffs data's magic bytes and dispatches to the matching
// decoder. Extension is used only as a tiebreaker for formats with no
// reliable magic (PSD/PIC are routed straight to a rejected-input
// error rather than guessed at).
func decodeImage(data []byte, ext string) (decoded, error) {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}):
		return decodeStd(bytes.NewReader(data), png.Decode)
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return decodeStd(bytes.NewReader(data), jpeg.Decode)
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return decodeStd(bytes.NewReader(data), gif.Decode)
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return decodeStd(bytes.NewReader(data), bmp.Decode)
	case len(data) >= 10 && (bytes.HasPrefix(data, []byte("#?RADIANCE")) || bytes.HasPrefix(data, []byte("#?RGBE"))):
		w, h, px, err := decodeRGBE(data)
		if err != nil {
			return decoded{}, err
		}
		return decoded{Width: w, Height: h, Channels: 3, IsFloat: true, Floats: px}, nil
	case len(data) >= 2 && data[0] == 'P' && data[1] >= '1' && data[1] <= '6':
		return decodeNetpbm(data)
	case ext == ".tga":
		return decodeTGA(data)
	case ext == ".psd" || ext == ".pic":
		return decoded{}, assetcoreerrs.NewRejectedInput("format", fmt.Sprintf("%s is not supported", ext))
	default:
		// Last resort: a truecolor TGA has no reliable magic byte, so
		// give it a shot before giving up.
		if d, err := decodeTGA(data); err == nil {
			return d, nil
		}
		return decoded{}, assetcoreerrs.NewRejectedInput("format", "unrecognized image format")
	}
}

func decodeStd(r io.Reader, fn func(io.Reader) (image.Image, error)) (decoded, error) {
	img, err := fn(r)
	if err != nil {
		return decoded{}, assetcoreerrs.NewDecodeError("image", err)
	}
	return rgbaFromImage(img), nil
}

func rgbaFromImage(img image.Image) decoded {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return decoded{Width: w, Height: h, Channels: 4, Bytes: rgba.Pix}
}

// decodeNetpbm handles the plain-ASCII PBM/PGM/PPM variants (P1-P3)
// and the binary variants (P4-P6); only P2/P3/P5/P6 (gray/RGB) are
// meaningful for texture content, P1/P4 (bitmap) are rejected.
func decodeNetpbm(data []byte) (decoded, error) {
	s := &pnmScanner{data: data}
	magic := s.token()
	switch magic {
	case "P2", "P5":
		return decodePGM(s, magic == "P5")
	case "P3", "P6":
		return decodePPM(s, magic == "P6")
	default:
		return decoded{}, assetcoreerrs.NewRejectedInput("format", "unsupported netpbm variant "+magic)
	}
}

func decodePGM(s *pnmScanner, binary bool) (decoded, error) {
	w, h, maxVal, err := s.header()
	if err != nil {
		return decoded{}, err
	}
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		v, err := s.sample(binary, maxVal)
		if err != nil {
			return decoded{}, err
		}
		o := i * 4
		out[o], out[o+1], out[o+2], out[o+3] = v, v, v, 255
	}
	return decoded{Width: w, Height: h, Channels: 4, Bytes: out}, nil
}

func decodePPM(s *pnmScanner, binary bool) (decoded, error) {
	w, h, maxVal, err := s.header()
	if err != nil {
		return decoded{}, err
	}
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		r, err := s.sample(binary, maxVal)
		if err != nil {
			return decoded{}, err
		}
		g, err := s.sample(binary, maxVal)
		if err != nil {
			return decoded{}, err
		}
		b, err := s.sample(binary, maxVal)
		if err != nil {
			return decoded{}, err
		}
		o := i * 4
		out[o], out[o+1], out[o+2], out[o+3] = r, g, b, 255
	}
	return decoded{Width: w, Height: h, Channels: 4, Bytes: out}, nil
}

// pnmScanner tokenizes the whitespace-delimited ASCII header shared by
// every netpbm variant, then switches to raw byte reads for binary
// sample data.
type pnmScanner struct {
	data []byte
	pos  int
}

func (s *pnmScanner) token() string {
	s.skipWhitespaceAndComments()
	start := s.pos
	for s.pos < len(s.data) && !isPnmSpace(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

func (s *pnmScanner) skipWhitespaceAndComments() {
	for s.pos < len(s.data) {
		if isPnmSpace(s.data[s.pos]) {
			s.pos++
			continue
		}
		if s.data[s.pos] == '#' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' {
				s.pos++
			}
			continue
		}
		break
	}
}

func isPnmSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func (s *pnmScanner) header() (w, h, maxVal int, err error) {
	w, err = strconv.Atoi(s.token())
	if err != nil {
		return 0, 0, 0, assetcoreerrs.NewRejectedInput("netpbm_width", "not numeric")
	}
	h, err = strconv.Atoi(s.token())
	if err != nil {
		return 0, 0, 0, assetcoreerrs.NewRejectedInput("netpbm_height", "not numeric")
	}
	maxVal, err = strconv.Atoi(s.token())
	if err != nil {
		return 0, 0, 0, assetcoreerrs.NewRejectedInput("netpbm_maxval", "not numeric")
	}
	// One mandatory whitespace byte separates the header from binary
	// sample data; the token scan already consumed it for ASCII data.
	if s.pos < len(s.data) && isPnmSpace(s.data[s.pos]) {
		s.pos++
	}
	return w, h, maxVal, nil
}

func (s *pnmScanner) sample(binary bool, maxVal int) (byte, error) {
	if binary {
		if s.pos >= len(s.data) {
			return 0, assetcoreerrs.NewCorruptionError("netpbm_samples", "truncated pixel data")
		}
		v := s.data[s.pos]
		s.pos++
		return v, nil
	}
	tok := s.token()
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, assetcoreerrs.NewRejectedInput("netpbm_sample", "not numeric")
	}
	if maxVal <= 0 {
		return 0, nil
	}
	return byte(n * 255 / maxVal), nil
}

// decodeTGA handles uncompressed (type 2) and RLE (type 10) truecolor
// targa images at 24 or 32 bits per pixel; indexed and grayscale
// variants are rejected.
func decodeTGA(data []byte) (decoded, error) {
	if len(data) < 18 {
		return decoded{}, assetcoreerrs.NewRejectedInput("tga", "file shorter than header")
	}
	idLen := int(data[0])
	imageType := data[2]
	w := int(data[12]) | int(data[13])<<8
	h := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	if imageType != 2 && imageType != 10 {
		return decoded{}, assetcoreerrs.NewRejectedInput("tga", "only truecolor targa is supported")
	}
	if bpp != 24 && bpp != 32 {
		return decoded{}, assetcoreerrs.NewRejectedInput("tga", "only 24/32 bpp targa is supported")
	}
	if w <= 0 || h <= 0 {
		return decoded{}, assetcoreerrs.NewRejectedInput("tga", "invalid dimensions")
	}

	pixelData := data[18+idLen:]
	bytesPerPixel := bpp / 8
	out := make([]byte, w*h*4)

	writePixel := func(i int, px []byte) {
		o := i * 4
		out[o], out[o+1], out[o+2] = px[2], px[1], px[0] // BGR(A) -> RGB
		if bytesPerPixel == 4 {
			out[o+3] = px[3]
		} else {
			out[o+3] = 255
		}
	}

	if imageType == 2 {
		need := w * h * bytesPerPixel
		if len(pixelData) < need {
			return decoded{}, assetcoreerrs.NewCorruptionError("tga_pixels", "truncated pixel data")
		}
		for i := 0; i < w*h; i++ {
			writePixel(i, pixelData[i*bytesPerPixel:])
		}
	} else {
		pos := 0
		i := 0
		for i < w*h {
			if pos >= len(pixelData) {
				return decoded{}, assetcoreerrs.NewCorruptionError("tga_rle", "truncated run header")
			}
			header := pixelData[pos]
			pos++
			count := int(header&0x7f) + 1
			if header&0x80 != 0 {
				if pos+bytesPerPixel > len(pixelData) {
					return decoded{}, assetcoreerrs.NewCorruptionError("tga_rle", "truncated packet")
				}
				px := pixelData[pos : pos+bytesPerPixel]
				pos += bytesPerPixel
				for n := 0; n < count && i < w*h; n++ {
					writePixel(i, px)
					i++
				}
			} else {
				for n := 0; n < count && i < w*h; n++ {
					if pos+bytesPerPixel > len(pixelData) {
						return decoded{}, assetcoreerrs.NewCorruptionError("tga_rle", "truncated packet")
					}
					writePixel(i, pixelData[pos:pos+bytesPerPixel])
					pos += bytesPerPixel
					i++
				}
			}
		}
	}

	// TGA's origin bit (image descriptor byte) determines scan order;
	// bit 5 set means top-left origin, unset means bottom-left.
	if data[17]&0x20 == 0 {
		flipVertical(out, w, h, 4)
	}

	return decoded{Width: w, Height: h, Channels: 4, Bytes: out}, nil
}

func flipVertical(buf []byte, w, h, channels int) {
	stride := w * channels
	row := make([]byte, stride)
	for y := 0; y < h/2; y++ {
		top := buf[y*stride : y*stride+stride]
		bot := buf[(h-1-y)*stride : (h-1-y)*stride+stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
}
