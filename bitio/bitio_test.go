// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitio

import "testing"

// TestCodeLaws checks property 5 from the specification: for every legal
// value x, read(write(x)) == x for each supported code.
func TestCodeLaws(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 4, 7, 8, 15, 16, 31, 32, 63, 64, 127, 128,
		255, 256, 1000, 1023, 1024, 65535, 65536, 1 << 20, 1<<32 - 1, 1 << 40}

	t.Run("gamma", func(t *testing.T) {
		for _, x := range values {
			w := NewWriter()
			w.WriteGamma(x)
			r := NewReader(w.Bytes())
			if got := r.ReadGamma(); got != x {
				t.Errorf("gamma(%d): got %d", x, got)
			}
		}
	})
	t.Run("delta", func(t *testing.T) {
		for _, x := range values {
			w := NewWriter()
			w.WriteDelta(x)
			r := NewReader(w.Bytes())
			if got := r.ReadDelta(); got != x {
				t.Errorf("delta(%d): got %d", x, got)
			}
		}
	})
	t.Run("zeta", func(t *testing.T) {
		for k := uint(1); k <= 7; k++ {
			for _, x := range values {
				w := NewWriter()
				w.WriteZeta(x, k)
				r := NewReader(w.Bytes())
				if got := r.ReadZeta(k); got != x {
					t.Errorf("zeta_%d(%d): got %d", k, x, got)
				}
			}
		}
	})
	t.Run("golomb", func(t *testing.T) {
		for _, b := range []uint64{1, 2, 3, 5, 7, 8, 100, 257} {
			for _, x := range values {
				if x > 1<<24 {
					continue // keep quotient small for the larger moduli
				}
				w := NewWriter()
				w.WriteGolomb(x, b)
				r := NewReader(w.Bytes())
				if got := r.ReadGolomb(b); got != x {
					t.Errorf("golomb_%d(%d): got %d", b, x, got)
				}
			}
		}
	})
	t.Run("unary", func(t *testing.T) {
		for _, x := range values {
			if x > 1<<16 {
				continue
			}
			w := NewWriter()
			w.WriteUnary(x)
			r := NewReader(w.Bytes())
			if got := r.ReadUnary(); got != x {
				t.Errorf("unary(%d): got %d", x, got)
			}
		}
	})
	t.Run("fixed", func(t *testing.T) {
		for k := uint(0); k <= 63; k++ {
			x := mask64(k)
			w := NewWriter()
			w.WriteInt(x, k)
			r := NewReader(w.Bytes())
			if got := r.ReadInt(k); got != x {
				t.Errorf("int_%d(%d): got %d", k, x, got)
			}
		}
	})
	t.Run("signed", func(t *testing.T) {
		signed := []int64{0, 1, -1, 2, -2, 1000, -1000, 1 << 30, -(1 << 30)}
		for _, x := range signed {
			w := NewWriter()
			w.WriteSignedGamma(x)
			r := NewReader(w.Bytes())
			if got := r.ReadSignedGamma(); got != x {
				t.Errorf("signedGamma(%d): got %d", x, got)
			}

			w2 := NewWriter()
			w2.WriteSignedDelta(x)
			r2 := NewReader(w2.Bytes())
			if got := r2.ReadSignedDelta(); got != x {
				t.Errorf("signedDelta(%d): got %d", x, got)
			}
		}
	})
}

// TestSequentialCodes checks that a sequence of mixed codes written in order
// can be read back in the same order, which is what the compressed codec
// relies on within a single node's record.
func TestSequentialCodes(t *testing.T) {
	w := NewWriter()
	w.WriteGamma(5)
	w.WriteDelta(1000)
	w.WriteZeta(42, 3)
	w.WriteGolomb(17, 5)
	w.WriteInt(0x2a, 7)
	w.WriteUnary(9)
	w.WriteSignedGamma(-13)

	r := NewReader(w.Bytes())
	if got := r.ReadGamma(); got != 5 {
		t.Fatalf("gamma: got %d", got)
	}
	if got := r.ReadDelta(); got != 1000 {
		t.Fatalf("delta: got %d", got)
	}
	if got := r.ReadZeta(3); got != 42 {
		t.Fatalf("zeta: got %d", got)
	}
	if got := r.ReadGolomb(5); got != 17 {
		t.Fatalf("golomb: got %d", got)
	}
	if got := r.ReadInt(7); got != 0x2a {
		t.Fatalf("int: got %d", got)
	}
	if got := r.ReadUnary(); got != 9 {
		t.Fatalf("unary: got %d", got)
	}
	if got := r.ReadSignedGamma(); got != -13 {
		t.Fatalf("signedGamma: got %d", got)
	}
}

// TestSeek checks that Seek lands exactly on bit boundaries written earlier,
// including non-byte-aligned ones.
func TestSeek(t *testing.T) {
	w := NewWriter()
	var positions []int64
	var values []uint64
	for i := uint64(0); i < 50; i++ {
		positions = append(positions, w.BitLength())
		values = append(values, i)
		w.WriteGamma(i)
	}

	data := w.Bytes()
	r := NewReader(data)
	for i := len(positions) - 1; i >= 0; i-- {
		r.Seek(positions[i])
		if got := r.ReadGamma(); got != values[i] {
			t.Errorf("seek %d: got %d, want %d", positions[i], got, values[i])
		}
	}
}

// TestEOF checks that reading past the end of the buffer fails instead of
// silently returning zero bits.
func TestEOF(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading past end of buffer")
		}
	}()
	r := NewReader([]byte{0xff})
	r.ReadInt(32)
}
