// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package threemf

import (
	"archive/zip"
	"bytes"
	"testing"
)

const sampleModelXML = `<?xml version="1.0" encoding="UTF-8"?>
<model xmlns="http://schemas.microsoft.com/3dmanufacturing/core/2015/02">
  <resources>
    <object id="1" type="model">
      <mesh>
        <vertices>
          <vertex x="0" y="0" z="0"/>
          <vertex x="1" y="0" z="0"/>
          <vertex x="0" y="1" z="0"/>
        </vertices>
        <triangles>
          <triangle v1="0" v2="1" v3="2"/>
        </triangles>
      </mesh>
    </object>
  </resources>
</model>
`

func buildArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("3D/3dmodel.model")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.Write([]byte(sampleModelXML)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeSingleTriangleObject(t *testing.T) {
	data := buildArchive(t)
	model, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(model.Submeshes) != 1 {
		t.Fatalf("expected 1 submesh, got %d", len(model.Submeshes))
	}
	lod := model.Submeshes[0].LODs[0]
	if len(lod.Vertices) != 3 || len(lod.Indices) != 3 {
		t.Fatalf("expected 3 vertices/indices, got %d/%d", len(lod.Vertices), len(lod.Indices))
	}
}

func TestDecodeRejectsNonZip(t *testing.T) {
	if _, err := Decode([]byte("not a zip file")); err == nil {
		t.Fatalf("expected an error for non-zip data")
	}
}

func TestDecodeRejectsMissingModelEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("other.txt")
	_, _ = w.Write([]byte("hello"))
	_ = zw.Close()
	if _, err := Decode(buf.Bytes()); err == nil {
		t.Fatalf("expected an error for an archive missing 3D/3dmodel.model")
	}
}
