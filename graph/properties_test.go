// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package graph

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPropertiesRoundTrip(t *testing.T) {
	p := DefaultProperties()
	p.Nodes = 1000
	p.Arcs = 5000
	p.Stats = newWriteStats()
	p.Stats.BitsForOutdegrees = 123
	p.Stats.CopiedArcs = 42
	p.Stats.SuccessorAvgGap = 3.5
	p.Stats.observeGap(17)

	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadProperties(&buf)
	if err != nil {
		t.Fatalf("ReadProperties: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("ReadProperties(WriteTo(p)) mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPropertiesRejectsBadVersion(t *testing.T) {
	_, err := ReadProperties(bytes.NewBufferString("graphclass=BVGraph\nversion=7\n"))
	if err == nil {
		t.Fatal("expected an error for an unsupported version")
	}
}

func TestFlagsTokenRoundTrip(t *testing.T) {
	f := Flags{Outdegrees: CodeZeta, Blocks: CodeDelta, References: CodeGamma, Residuals: CodeDelta}
	got, err := parseFlags(f.tokens())
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if got != f {
		t.Errorf("parseFlags(tokens()) = %+v, want %+v", got, f)
	}
}
