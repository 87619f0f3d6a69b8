// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package graph

import (
	"bytes"
	"testing"

	"github.com/dsnet/webgraph/bitio"
)

func TestStandardOffsetsRoundTrip(t *testing.T) {
	offsets := []int64{0, 17, 17, 40, 41, 1000, 1000, 1001}
	w := bitio.NewWriter()
	WriteOffsets(w, offsets)

	o, err := NewStandardOffsets(w.Bytes(), int64(len(offsets)-1))
	if err != nil {
		t.Fatalf("NewStandardOffsets: %v", err)
	}
	if o.Len() != int64(len(offsets)-1) {
		t.Fatalf("Len() = %d, want %d", o.Len(), len(offsets)-1)
	}
	for i := int64(0); i < o.Len(); i++ {
		got, err := o.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != offsets[i] {
			t.Errorf("Get(%d) = %d, want %d", i, got, offsets[i])
		}
	}
	if _, err := o.Get(o.Len()); err == nil {
		t.Error("expected an error for an out-of-range id")
	}
}

func TestMappedOffsetsMatchesStandard(t *testing.T) {
	offsets := []int64{0, 5, 200, 4096, 4097, 1 << 20}
	w := bitio.NewWriter()
	WriteOffsets(w, offsets)
	data := w.Bytes()

	mo, err := NewMappedOffsets(bytes.NewReader(data), int64(len(data)), int64(len(offsets)-1))
	if err != nil {
		t.Fatalf("NewMappedOffsets: %v", err)
	}
	for i := int64(0); i < mo.Len(); i++ {
		got, err := mo.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != offsets[i] {
			t.Errorf("Get(%d) = %d, want %d", i, got, offsets[i])
		}
	}
}
