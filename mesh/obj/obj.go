// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package obj implements the OBJ text format adapter: a hand-written
// line-oriented parser, since no general-purpose mesh library covers
// this simple, fully specified text format.
package obj

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/mesh"
)

// faceIndex is one OBJ face vertex reference: v/vt/vn, 1-based with 0
// meaning absent.
type faceIndex struct {
	v, vt, vn int
}

// Decode parses an OBJ document into a RawModel. OBJ has no native
// sub-mesh boundary other than "usemtl" groups; each distinct material
// name encountered starts a new submesh.
func Decode(r io.Reader) (mesh.RawModel, error) {
	var positions [][3]float32
	var uvs [][2]float32
	var normals [][3]float32

	type group struct {
		materialName string
		faces        [][3]faceIndex
	}
	var groups []group
	cur := -1
	ensureGroup := func(name string) {
		if cur >= 0 && groups[cur].materialName == name {
			return
		}
		for i, g := range groups {
			if g.materialName == name {
				cur = i
				return
			}
		}
		groups = append(groups, group{materialName: name})
		cur = len(groups) - 1
	}
	ensureGroup("")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseFloat3(fields[1:])
			if err != nil {
				return mesh.RawModel{}, assetcoreerrs.NewDecodeError("obj", err)
			}
			positions = append(positions, p)
		case "vt":
			if len(fields) < 3 {
				return mesh.RawModel{}, assetcoreerrs.NewDecodeError("obj", errBadRecord("vt", lineNo))
			}
			u, err1 := strconv.ParseFloat(fields[1], 32)
			v, err2 := strconv.ParseFloat(fields[2], 32)
			if err1 != nil || err2 != nil {
				return mesh.RawModel{}, assetcoreerrs.NewDecodeError("obj", errBadRecord("vt", lineNo))
			}
			uvs = append(uvs, [2]float32{float32(u), 1 - float32(v)})
		case "vn":
			n, err := parseFloat3(fields[1:])
			if err != nil {
				return mesh.RawModel{}, assetcoreerrs.NewDecodeError("obj", err)
			}
			normals = append(normals, n)
		case "usemtl":
			if len(fields) < 2 {
				continue
			}
			ensureGroup(fields[1])
		case "f":
			if len(fields) < 4 {
				return mesh.RawModel{}, assetcoreerrs.NewDecodeError("obj", errBadRecord("f", lineNo))
			}
			refs := make([]faceIndex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fi, err := parseFaceIndex(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return mesh.RawModel{}, assetcoreerrs.NewDecodeError("obj", err)
				}
				refs = append(refs, fi)
			}
			// Fan-triangulate polygons beyond a triangle.
			for i := 1; i+1 < len(refs); i++ {
				groups[cur].faces = append(groups[cur].faces, [3]faceIndex{refs[0], refs[i], refs[i+1]})
			}
		default:
			// mtllib, o, g, s and anything else: not needed for geometry.
		}
	}
	if err := scanner.Err(); err != nil {
		return mesh.RawModel{}, assetcoreerrs.NewDecodeError("obj", err)
	}
	if len(positions) == 0 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("obj", "no vertex positions found")
	}

	model := mesh.RawModel{}
	for _, g := range groups {
		if len(g.faces) == 0 {
			continue
		}
		lod := buildLod(g.faces, positions, uvs, normals)
		sm := mesh.RawSubmesh{LODs: []mesh.RawLod{lod}, MaterialName: g.materialName}
		model.Submeshes = append(model.Submeshes, sm)
	}
	if len(model.Submeshes) == 0 {
		return mesh.RawModel{}, assetcoreerrs.NewRejectedInput("obj", "no faces found")
	}
	return model, nil
}

// buildLod expands OBJ's shared v/vt/vn index triples into a flat,
// non-indexed-by-attribute vertex buffer (one unique vertex per
// distinct v/vt/vn combination, per the common RawLod contract).
func buildLod(faces [][3]faceIndex, positions [][3]float32, uvs [][2]float32, normals [][3]float32) mesh.RawLod {
	seen := make(map[faceIndex]uint32)
	var vertices []mesh.Vertex
	var indices []uint32
	needsNormals := false
	for _, tri := range faces {
		for _, fi := range tri {
			if idx, ok := seen[fi]; ok {
				indices = append(indices, idx)
				continue
			}
			v := mesh.Vertex{Position: positions[fi.v-1]}
			if fi.vt > 0 {
				v.UV = uvs[fi.vt-1]
			}
			if fi.vn > 0 {
				v.Normal = normals[fi.vn-1]
			} else {
				needsNormals = true
			}
			idx := uint32(len(vertices)) //nolint:gosec // vertex counts fit well under 2^32
			vertices = append(vertices, v)
			indices = append(indices, idx)
			seen[fi] = idx
		}
	}
	lod := mesh.RawLod{Vertices: vertices, Indices: indices}
	if needsNormals {
		mesh.ComputeFlatNormals(lod.Vertices, lod.Indices)
	}
	mesh.SynthesizeTangents(lod.Vertices, lod.Indices)
	return lod
}

func parseFloat3(fields []string) ([3]float32, error) {
	if len(fields) < 3 {
		return [3]float32{}, assetcoreerrs.NewRejectedInput("obj", "expected 3 components")
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return [3]float32{}, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseFaceIndex(tok string, nv, nvt, nvn int) (faceIndex, error) {
	parts := strings.Split(tok, "/")
	fi := faceIndex{}
	idx, err := resolveIndex(parts[0], nv)
	if err != nil {
		return fi, err
	}
	fi.v = idx
	if len(parts) > 1 && parts[1] != "" {
		idx, err := resolveIndex(parts[1], nvt)
		if err != nil {
			return fi, err
		}
		fi.vt = idx
	}
	if len(parts) > 2 && parts[2] != "" {
		idx, err := resolveIndex(parts[2], nvn)
		if err != nil {
			return fi, err
		}
		fi.vn = idx
	}
	return fi, nil
}

// resolveIndex converts an OBJ 1-based or negative-relative index
// into a 1-based absolute index, validating it against count.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, assetcoreerrs.NewRejectedInput("obj", "face index out of range")
	}
	return n, nil
}

func errBadRecord(kind string, line int) error {
	return assetcoreerrs.NewRejectedInput("obj", "malformed "+kind+" record at line "+strconv.Itoa(line))
}

// Encode writes a RawModel back out as OBJ text, merging all submeshes
// into a single shared vertex pool with per-group usemtl markers.
func Encode(w io.Writer, model mesh.RawModel) error {
	bw := bufio.NewWriter(w)
	vOffset := 1
	for _, sm := range model.Submeshes {
		if len(sm.LODs) == 0 {
			continue
		}
		lod := sm.LODs[0]
		if sm.MaterialName != "" {
			if _, err := bw.WriteString("usemtl " + sm.MaterialName + "\n"); err != nil {
				return err
			}
		}
		for _, v := range lod.Vertices {
			writeVec3(bw, "v", v.Position)
			writeVec2(bw, "vt", v.UV[0], 1-v.UV[1])
			writeVec3(bw, "vn", v.Normal)
		}
		for i := 0; i+2 < len(lod.Indices); i += 3 {
			a := int(lod.Indices[i]) + vOffset
			b := int(lod.Indices[i+1]) + vOffset
			c := int(lod.Indices[i+2]) + vOffset
			if _, err := bw.WriteString(
				"f " + idxTok(a) + " " + idxTok(b) + " " + idxTok(c) + "\n"); err != nil {
				return err
			}
		}
		vOffset += len(lod.Vertices)
	}
	return bw.Flush()
}

func idxTok(i int) string {
	s := strconv.Itoa(i)
	return s + "/" + s + "/" + s
}

func writeVec3(w *bufio.Writer, tag string, v [3]float32) {
	_, _ = w.WriteString(tag + " " +
		strconv.FormatFloat(float64(v[0]), 'f', -1, 32) + " " +
		strconv.FormatFloat(float64(v[1]), 'f', -1, 32) + " " +
		strconv.FormatFloat(float64(v[2]), 'f', -1, 32) + "\n")
}

func writeVec2(w *bufio.Writer, tag string, a, b float32) {
	_, _ = w.WriteString(tag + " " +
		strconv.FormatFloat(float64(a), 'f', -1, 32) + " " +
		strconv.FormatFloat(float64(b), 'f', -1, 32) + "\n")
}
