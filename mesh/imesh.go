// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mesh

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/assetcore/assetcoreerrs"
	"github.com/gogpu/assetcore/handle"
)

const (
	imeshMagic   = "IMSH"
	imeshVersion = uint32(2)
	align16      = 16
)

// EncodeImesh serializes a RawModel into the .imesh binary container:
// a fixed header, a submesh table, per-submesh LOD
// tables, and 16-byte-aligned vertex/index blobs.
func EncodeImesh(model RawModel, modelHandle handle.Handle) ([]byte, error) {
	var buf bytes.Buffer

	// Reserve the fixed-size header; it is patched in at the end once
	// submesh_table_offset is known (always 40, the header's own size,
	// but computed explicitly to keep the layout self-documenting).
	headerSize := 4 + 4 + 4 + 4 + 4 + 12 + 8
	buf.Write(make([]byte, headerSize))

	submeshTableOffset := uint64(buf.Len())

	type lodTableRecord struct {
		vertexCount, indexCount uint32
		verticesOffset          uint64
		indicesOffset           uint64
	}

	// Submesh table entries are fixed size; reserve them all up front,
	// then append LOD tables and blobs after, patching offsets back in.
	type submeshRecord struct {
		flags              uint32
		materialNameLen    uint32
		materialNameOffset uint64
		materialHandle     handle.Handle
		aabbMin, aabbMax   [3]float32
		lodCount           uint32
		lodsOffset         uint64
	}
	records := make([]submeshRecord, len(model.Submeshes))

	const submeshRecordSize = 4 + 4 + 8 + 16 + 12 + 12 + 4 + 4 + 8
	buf.Write(make([]byte, submeshRecordSize*len(model.Submeshes)))

	var nameBlob bytes.Buffer
	for i, sm := range model.Submeshes {
		rec := submeshRecord{
			materialHandle: sm.Material,
			aabbMin:        sm.AABBMin,
			aabbMax:        sm.AABBMax,
			lodCount:       uint32(len(sm.LODs)), //nolint:gosec // LOD counts are bounded well under 2^32
		}
		if sm.MaterialName != "" {
			rec.materialNameLen = uint32(len(sm.MaterialName)) //nolint:gosec // path lengths are bounded well under 2^32
			rec.materialNameOffset = uint64(nameBlob.Len())
			nameBlob.WriteString(sm.MaterialName)
		}
		records[i] = rec
	}

	namesOffset := uint64(buf.Len())
	buf.Write(nameBlob.Bytes())
	padTo16(&buf)

	for i, sm := range model.Submeshes {
		records[i].lodsOffset = uint64(buf.Len())
		lodRecords := make([]lodTableRecord, len(sm.LODs))
		const lodRecordSize = 4 + 4 + 8 + 8
		buf.Write(make([]byte, lodRecordSize*len(sm.LODs)))

		for j, lod := range sm.LODs {
			if len(lod.Vertices) == 0 || len(lod.Indices) == 0 {
				return nil, assetcoreerrs.NewRejectedInput("lod", "vertex/index arrays must be non-empty")
			}
			padTo16(&buf)
			lodRecords[j].verticesOffset = uint64(buf.Len())
			lodRecords[j].vertexCount = uint32(len(lod.Vertices)) //nolint:gosec // vertex counts fit well under 2^32
			writeVertices(&buf, lod.Vertices)

			padTo16(&buf)
			lodRecords[j].indicesOffset = uint64(buf.Len())
			lodRecords[j].indexCount = uint32(len(lod.Indices)) //nolint:gosec // index counts fit well under 2^32
			for _, idx := range lod.Indices {
				_ = binary.Write(&buf, binary.LittleEndian, idx)
			}
		}

		// Patch this submesh's LOD table now that offsets are known.
		out := buf.Bytes()
		lodTableStart := records[i].lodsOffset
		w := bytes.NewBuffer(nil)
		for _, lr := range lodRecords {
			_ = binary.Write(w, binary.LittleEndian, lr.vertexCount)
			_ = binary.Write(w, binary.LittleEndian, lr.indexCount)
			_ = binary.Write(w, binary.LittleEndian, lr.verticesOffset)
			_ = binary.Write(w, binary.LittleEndian, lr.indicesOffset)
		}
		copy(out[lodTableStart:], w.Bytes())
	}

	// Patch the submesh table and fix up material name offsets to be
	// relative to the file start (they were recorded relative to
	// nameBlob above).
	for i := range records {
		if records[i].materialNameLen > 0 {
			records[i].materialNameOffset += namesOffset
		}
	}
	out := buf.Bytes()
	w := bytes.NewBuffer(nil)
	for _, rec := range records {
		_ = binary.Write(w, binary.LittleEndian, rec.flags)
		_ = binary.Write(w, binary.LittleEndian, rec.materialNameLen)
		_ = binary.Write(w, binary.LittleEndian, rec.materialNameOffset)
		_ = binary.Write(w, binary.LittleEndian, uint32(rec.materialHandle.Type()))
		_ = binary.Write(w, binary.LittleEndian, uint32(rec.materialHandle.Index()))
		_ = binary.Write(w, binary.LittleEndian, uint32(rec.materialHandle.Generation()))
		_ = binary.Write(w, binary.LittleEndian, uint32(rec.materialHandle.Meta()))
		_ = binary.Write(w, binary.LittleEndian, rec.aabbMin)
		_ = binary.Write(w, binary.LittleEndian, rec.aabbMax)
		_ = binary.Write(w, binary.LittleEndian, rec.lodCount)
		_ = binary.Write(w, binary.LittleEndian, uint32(0))
		_ = binary.Write(w, binary.LittleEndian, rec.lodsOffset)
	}
	copy(out[submeshTableOffset:], w.Bytes())

	// Finally patch the header.
	header := bytes.NewBuffer(nil)
	header.WriteString(imeshMagic)
	_ = binary.Write(header, binary.LittleEndian, imeshVersion)
	_ = binary.Write(header, binary.LittleEndian, uint32(0)) // flags
	_ = binary.Write(header, binary.LittleEndian, uint32(len(model.Submeshes)))
	_ = binary.Write(header, binary.LittleEndian, uint32(0)) // reserved0
	_ = binary.Write(header, binary.LittleEndian, uint32(modelHandle.Type()))
	_ = binary.Write(header, binary.LittleEndian, uint32(modelHandle.Index()))
	_ = binary.Write(header, binary.LittleEndian, uint32(modelHandle.Generation()))
	_ = binary.Write(header, binary.LittleEndian, submeshTableOffset)
	copy(out[:header.Len()], header.Bytes())

	return out, nil
}

func writeVertices(buf *bytes.Buffer, vertices []Vertex) {
	for _, v := range vertices {
		_ = binary.Write(buf, binary.LittleEndian, v.Position)
		_ = binary.Write(buf, binary.LittleEndian, v.Normal)
		_ = binary.Write(buf, binary.LittleEndian, v.UV)
		_ = binary.Write(buf, binary.LittleEndian, v.Tangent)
	}
}

func padTo16(buf *bytes.Buffer) {
	if r := buf.Len() % align16; r != 0 {
		buf.Write(make([]byte, align16-r))
	}
}

// DecodeImesh parses an .imesh container, validating every offset and
// region against the file length.
func DecodeImesh(data []byte) (RawModel, handle.Handle, error) {
	const headerSize = 4 + 4 + 4 + 4 + 4 + 12 + 8
	if len(data) < headerSize {
		return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("header", "file shorter than header size")
	}
	if string(data[:4]) != imeshMagic {
		return RawModel{}, handle.Handle(0), assetcoreerrs.NewRejectedInput("magic", "not an .imesh file")
	}
	r := bytes.NewReader(data[4:headerSize])
	var version, flags, submeshCount, reserved0, handleType, handleIndex, handleGen uint32
	var submeshTableOffset uint64
	for _, f := range []any{&version, &flags, &submeshCount, &reserved0, &handleType} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("header", err.Error())
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &handleIndex); err != nil {
		return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("header", err.Error())
	}
	if err := binary.Read(r, binary.LittleEndian, &handleGen); err != nil {
		return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("header", err.Error())
	}
	if err := binary.Read(r, binary.LittleEndian, &submeshTableOffset); err != nil {
		return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("header", err.Error())
	}
	if version != imeshVersion {
		return RawModel{}, handle.Handle(0), assetcoreerrs.NewRejectedInput("version", fmt.Sprintf("unsupported version %d", version))
	}
	modelHandle := handle.Make(uint16(handleType), uint16(handleIndex), uint16(handleGen)) //nolint:gosec // container fields are u16-range by construction

	model := RawModel{Submeshes: make([]RawSubmesh, submeshCount)}

	const submeshRecordSize = 4 + 4 + 8 + 16 + 12 + 12 + 4 + 4 + 8
	for i := uint32(0); i < submeshCount; i++ {
		off := submeshTableOffset + uint64(i)*submeshRecordSize
		if off+submeshRecordSize > uint64(len(data)) {
			return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("submesh_table", "record exceeds file bounds")
		}
		rr := bytes.NewReader(data[off : off+submeshRecordSize])
		var flagsField, nameLen uint32
		var nameOffset uint64
		var matType, matIndex, matGen, matMeta uint32
		var aabbMin, aabbMax [3]float32
		var lodCount, lodReserved uint32
		var lodsOffset uint64
		for _, f := range []any{&flagsField, &nameLen, &nameOffset, &matType, &matIndex, &matGen, &matMeta} {
			if err := binary.Read(rr, binary.LittleEndian, f); err != nil {
				return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("submesh_record", err.Error())
			}
		}
		if err := binary.Read(rr, binary.LittleEndian, &aabbMin); err != nil {
			return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("submesh_record", err.Error())
		}
		if err := binary.Read(rr, binary.LittleEndian, &aabbMax); err != nil {
			return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("submesh_record", err.Error())
		}
		if err := binary.Read(rr, binary.LittleEndian, &lodCount); err != nil {
			return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("submesh_record", err.Error())
		}
		if err := binary.Read(rr, binary.LittleEndian, &lodReserved); err != nil {
			return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("submesh_record", err.Error())
		}
		if err := binary.Read(rr, binary.LittleEndian, &lodsOffset); err != nil {
			return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("submesh_record", err.Error())
		}
		if lodCount < 1 {
			return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("lod_count", "must be at least 1")
		}

		sm := RawSubmesh{
			AABBMin: aabbMin,
			AABBMax: aabbMax,
			HasAABB: aabbMin != aabbMax,
			LODs:    make([]RawLod, lodCount),
		}
		if nameLen > 0 {
			if nameOffset+uint64(nameLen) > uint64(len(data)) {
				return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("material_name", "exceeds file bounds")
			}
			sm.MaterialName = string(data[nameOffset : nameOffset+uint64(nameLen)])
		} else {
			sm.Material = handle.Make(uint16(matType), uint16(matIndex), uint16(matGen)).WithMeta(uint16(matMeta)) //nolint:gosec // container fields are u16-range
		}

		const lodRecordSize = 4 + 4 + 8 + 8
		for j := uint32(0); j < lodCount; j++ {
			loff := lodsOffset + uint64(j)*lodRecordSize
			if loff+lodRecordSize > uint64(len(data)) {
				return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("lod_table", "record exceeds file bounds")
			}
			lr := bytes.NewReader(data[loff : loff+lodRecordSize])
			var vertexCount, indexCount uint32
			var verticesOffset, indicesOffset uint64
			_ = binary.Read(lr, binary.LittleEndian, &vertexCount)
			_ = binary.Read(lr, binary.LittleEndian, &indexCount)
			_ = binary.Read(lr, binary.LittleEndian, &verticesOffset)
			_ = binary.Read(lr, binary.LittleEndian, &indicesOffset)

			if vertexCount < 1 || indexCount < 1 || indexCount%3 != 0 {
				return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("lod_record", "invalid vertex/index count")
			}

			const vertexSize = 12 + 12 + 8 + 16
			vEnd := verticesOffset + uint64(vertexCount)*vertexSize
			iEnd := indicesOffset + uint64(indexCount)*4
			if vEnd > uint64(len(data)) || iEnd > uint64(len(data)) {
				return RawModel{}, handle.Handle(0), assetcoreerrs.NewCorruptionError("lod_blob", "exceeds file bounds")
			}

			lod := RawLod{
				Vertices: make([]Vertex, vertexCount),
				Indices:  make([]uint32, indexCount),
			}
			vr := bytes.NewReader(data[verticesOffset:vEnd])
			for k := range lod.Vertices {
				var v Vertex
				_ = binary.Read(vr, binary.LittleEndian, &v.Position)
				_ = binary.Read(vr, binary.LittleEndian, &v.Normal)
				_ = binary.Read(vr, binary.LittleEndian, &v.UV)
				_ = binary.Read(vr, binary.LittleEndian, &v.Tangent)
				lod.Vertices[k] = v
			}
			ir := bytes.NewReader(data[indicesOffset:iEnd])
			_ = binary.Read(ir, binary.LittleEndian, &lod.Indices)
			sm.LODs[j] = lod
		}
		model.Submeshes[i] = sm
	}

	return model, modelHandle, nil
}
