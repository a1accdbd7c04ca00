// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ply implements the ASCII PLY format adapter: a hand-written
// header/body parser, since no general-purpose mesh library covers
// this format.
package ply

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/mesh"
)

type property struct {
	name     string
	isList   bool
	countTy  string
	elemTy   string
}

type element struct {
	name       string
	count      int
	properties []property
}

// Decode parses an ASCII PLY document ("format ascii 1.0") into a
// single-submesh RawModel from its "vertex" and "face" elements.
func Decode(r io.Reader) (mesh.RawModel, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "ply" {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "missing 'ply' magic line")
	}

	var elements []element
	sawASCII := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || !strings.HasPrefix(fields[1], "ascii") {
				return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "only ascii PLY is supported")
			}
			sawASCII = true
		case "comment", "obj_info":
			continue
		case "element":
			if len(fields) < 3 {
				return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "malformed element header")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "malformed element count")
			}
			elements = append(elements, element{name: fields[1], count: n})
		case "property":
			if len(elements) == 0 {
				return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "property outside any element")
			}
			cur := &elements[len(elements)-1]
			if fields[1] == "list" {
				cur.properties = append(cur.properties, property{
					name: fields[4], isList: true, countTy: fields[2], elemTy: fields[3],
				})
			} else {
				cur.properties = append(cur.properties, property{name: fields[2], elemTy: fields[1]})
			}
		case "end_header":
			goto parsedHeader
		}
	}
parsedHeader:
	if !sawASCII {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "missing format line")
	}

	var positions [][3]float32
	var normals [][3]float32
	var uvs [][2]float32
	var indices []uint32
	haveNormals, haveUVs := false, false

	for _, el := range elements {
		switch el.name {
		case "vertex":
			xi, yi, zi := propIndex(el.properties, "x"), propIndex(el.properties, "y"), propIndex(el.properties, "z")
			nxi, nyi, nzi := propIndex(el.properties, "nx"), propIndex(el.properties, "ny"), propIndex(el.properties, "nz")
			ui, vi := propIndexAny(el.properties, "u", "s"), propIndexAny(el.properties, "v", "t")
			haveNormals = nxi >= 0 && nyi >= 0 && nzi >= 0
			haveUVs = ui >= 0 && vi >= 0
			for i := 0; i < el.count; i++ {
				if !scanner.Scan() {
					return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "truncated vertex data")
				}
				vals := strings.Fields(scanner.Text())
				p, err := floatAt(vals, xi, yi, zi)
				if err != nil {
					return mesh.RawModel{}, assetcoreerrs.NewDecodeError("ply", err)
				}
				positions = append(positions, p)
				if haveNormals {
					n, err := floatAt(vals, nxi, nyi, nzi)
					if err != nil {
						return mesh.RawModel{}, assetcoreerrs.NewDecodeError("ply", err)
					}
					normals = append(normals, n)
				}
				if haveUVs {
					u, err1 := strconv.ParseFloat(vals[ui], 32)
					v, err2 := strconv.ParseFloat(vals[vi], 32)
					if err1 != nil || err2 != nil {
						return mesh.RawModel{}, assetcoreerrs.NewDecodeError("ply", assetcoreerrs.NewRejectedInput("ply", "malformed uv"))
					}
					uvs = append(uvs, [2]float32{float32(u), 1 - float32(v)})
				}
			}
		case "face":
			for i := 0; i < el.count; i++ {
				if !scanner.Scan() {
					return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "truncated face data")
				}
				vals := strings.Fields(scanner.Text())
				if len(vals) < 1 {
					return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "empty face record")
				}
				n, err := strconv.Atoi(vals[0])
				if err != nil || n < 3 || len(vals) < n+1 {
					return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "malformed face vertex count")
				}
				idx := make([]uint32, n)
				for j := 0; j < n; j++ {
					v, err := strconv.Atoi(vals[1+j])
					if err != nil || v < 0 || v >= len(positions) {
						return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "face index out of range")
					}
					idx[j] = uint32(v) //nolint:gosec // bounds-checked against len(positions) above
				}
				for j := 1; j+1 < n; j++ {
					indices = append(indices, idx[0], idx[j], idx[j+1])
				}
			}
		default:
			// skip unknown elements' data lines
			for i := 0; i < el.count; i++ {
				if !scanner.Scan() {
					return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "truncated element data")
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewDecodeError("ply", err)
	}
	if len(positions) == 0 || len(indices) == 0 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("ply", "no geometry found")
	}

	vertices := make([]mesh.Vertex, len(positions))
	for i, p := range positions {
		v := mesh.Vertex{Position: p}
		if haveNormals {
			v.Normal = normals[i]
		}
		if haveUVs {
			v.UV = uvs[i]
		}
		vertices[i] = v
	}
	lod := mesh.RawLod{Vertices: vertices, Indices: indices}
	if !haveNormals {
		mesh.ComputeFlatNormals(lod.Vertices, lod.Indices)
	}
	mesh.SynthesizeTangents(lod.Vertices, lod.Indices)

	return mesh.RawModel{Submeshes: []mesh.RawSubmesh{{LODs: []mesh.RawLod{lod}}}}, nil
}

func propIndex(props []property, name string) int {
	for i, p := range props {
		if p.name == name {
			return i
		}
	}
	return -1
}

func propIndexAny(props []property, names ...string) int {
	for _, n := range names {
		if i := propIndex(props, n); i >= 0 {
			return i
		}
	}
	return -1
}

func floatAt(vals []string, xi, yi, zi int) ([3]float32, error) {
	if xi < 0 || yi < 0 || zi < 0 || xi >= len(vals) || yi >= len(vals) || zi >= len(vals) {
		return [3]float32{}, assetcoreerrs.NewRejectedInput("ply", "vertex record too short")
	}
	x, err1 := strconv.ParseFloat(vals[xi], 32)
	y, err2 := strconv.ParseFloat(vals[yi], 32)
	z, err3 := strconv.ParseFloat(vals[zi], 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return [3]float32{}, assetcoreerrs.NewRejectedInput("ply", "malformed float field")
	}
	return [3]float32{float32(x), float32(y), float32(z)}, nil
}
