// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mesh

import (
	"testing"

	"github.com/gogpu/assetcore/assettypes"
)

func TestStageTakeRoundTrip(t *testing.T) {
	model := &assettypes.Model{}
	raw := sampleRawModel()
	Stage(model, raw)

	got, ok := Take(model)
	if !ok {
		t.Fatalf("expected a staged entry to be present")
	}
	if len(got.Submeshes) != len(raw.Submeshes) {
		t.Fatalf("staged payload mismatch")
	}

	if _, ok := Take(model); ok {
		t.Fatalf("expected Take to clear the entry after the first read")
	}
}
