// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package batch

import (
	"errors"
	"io"
	"testing"

	"github.com/dsnet/webgraph/graph"
)

func drain(t *testing.T, sg *graph.SequentialGraph) [][]int64 {
	t.Helper()
	var out [][]int64
	for {
		_, succ, err := sg.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, succ)
	}
}

// TestPipelineIDRemapping matches scenario S3: opaque ids (including
// negative ones) are remapped to dense ids in order of first appearance.
func TestPipelineIDRemapping(t *testing.T) {
	p := NewPipeline(Config{TempDir: t.TempDir(), BatchSize: 1024})
	arcs := [][2]int64{{-1, 15}, {15, 2}, {2, -1}, {-1, 2}}
	for _, a := range arcs {
		if err := p.PushArc(a[0], a[1]); err != nil {
			t.Fatalf("PushArc: %v", err)
		}
	}
	sg, err := p.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}

	wantIDs := []int64{-1, 15, 2}
	if len(p.IDs()) != len(wantIDs) {
		t.Fatalf("IDs() = %v, want %v", p.IDs(), wantIDs)
	}
	for i, v := range wantIDs {
		if p.IDs()[i] != v {
			t.Errorf("IDs()[%d] = %d, want %d", i, p.IDs()[i], v)
		}
	}

	got := drain(t, sg)
	want := [][]int64{{1, 2}, {2}, {0}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !equalI64(got[i], want[i]) {
			t.Errorf("node %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPipelineSymmetrizeAndNoLoops(t *testing.T) {
	p := NewPipeline(Config{TempDir: t.TempDir(), BatchSize: 1024, Symmetrize: true, NoLoops: true})
	for _, a := range [][2]int64{{0, 1}, {1, 2}, {2, 2}} {
		if err := p.PushArc(a[0], a[1]); err != nil {
			t.Fatal(err)
		}
	}
	sg, err := p.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	got := drain(t, sg)
	want := [][]int64{{1}, {0, 2}, {1}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !equalI64(got[i], want[i]) {
			t.Errorf("node %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPipelineTranspose(t *testing.T) {
	p := NewPipeline(Config{TempDir: t.TempDir(), BatchSize: 1024, Transpose: true})
	for _, a := range [][2]int64{{0, 1}, {1, 2}, {2, 0}} {
		if err := p.PushArc(a[0], a[1]); err != nil {
			t.Fatal(err)
		}
	}
	sg, err := p.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	got := drain(t, sg)
	want := [][]int64{{2}, {0}, {1}}
	for i := range want {
		if !equalI64(got[i], want[i]) {
			t.Errorf("node %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

// TestPipelineMergeAcrossBatches forces two arcs that collapse to the
// same pair to land in different flushed batches, exercising the k-way
// merge's duplicate handling rather than the in-batch dedup path.
func TestPipelineMergeAcrossBatches(t *testing.T) {
	merge := func(a, b []byte) ([]byte, error) { return append(append([]byte{}, a...), b...), nil }
	p := NewPipeline(Config{TempDir: t.TempDir(), BatchSize: 1, Labeled: true, Merge: merge})
	if err := p.PushLabeledArc(0, 1, []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := p.PushLabeledArc(0, 1, []byte("b")); err != nil {
		t.Fatal(err)
	}
	sg, err := p.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	got := drain(t, sg)
	want := [][]int64{{1}, nil}
	for i := range want {
		if !equalI64(got[i], want[i]) {
			t.Errorf("node %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPipelineMergeConflictWithoutStrategy(t *testing.T) {
	p := NewPipeline(Config{TempDir: t.TempDir(), BatchSize: 1, Labeled: true})
	if err := p.PushLabeledArc(0, 1, []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := p.PushLabeledArc(0, 1, []byte("b")); err != nil {
		t.Fatal(err)
	}
	_, err := p.Close()
	if err == nil {
		t.Fatal("expected a MergeConflict error")
	}
	var berr *Error
	if !errors.As(err, &berr) || berr.Kind != MergeConflict {
		t.Errorf("got %v, want a MergeConflict", err)
	}
}

func TestPipelineCompressedTemp(t *testing.T) {
	p := NewPipeline(Config{TempDir: t.TempDir(), BatchSize: 2, CompressTemp: true})
	for i := int64(0); i < 20; i++ {
		if err := p.PushArc(i, (i+1)%20); err != nil {
			t.Fatal(err)
		}
	}
	sg, err := p.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	got := drain(t, sg)
	if len(got) != 20 {
		t.Fatalf("got %d nodes, want 20", len(got))
	}
	for i, succ := range got {
		want := []int64{int64((i + 1) % 20)}
		if !equalI64(succ, want) {
			t.Errorf("node %d: got %v, want %v", i, succ, want)
		}
	}
}

func equalI64(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
