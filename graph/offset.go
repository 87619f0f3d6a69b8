// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package graph

import (
	"io"
	"math/bits"

	"github.com/dsnet/webgraph/bitio"
)

// Offsets maps a node id to the bit offset of its record in the compressed
// graph stream. Implementations differ only in their space/time tradeoff;
// all of them answer Get(n) with the same value for the same underlying
// graph.
type Offsets interface {
	// Get returns the bit offset of node id's record.
	Get(id int64) (int64, error)
	// Len returns the number of nodes (not counting the trailing sentinel
	// offset, which marks the end of the last record).
	Len() int64
}

// WriteOffsets encodes bitOffsets (one entry per node, non-decreasing,
// plus a trailing sentinel equal to the total bit length of the graph
// stream) as a sequence of Elias gamma-coded deltas, the B.offsets format.
func WriteOffsets(w *bitio.Writer, bitOffsets []int64) {
	var prev int64
	for _, off := range bitOffsets {
		w.WriteGamma(uint64(off - prev))
		prev = off
	}
}

// sequentialOffsets decodes the gamma-delta offsets stream forward-only,
// one node at a time, using O(1) memory regardless of graph size. It
// satisfies Offsets only nominally: Get always fails with Unsupported,
// since this representation cannot answer a random lookup without
// rescanning from the start. Its purpose is streaming verification (see
// cmd/graphinfo's -check pass), which only ever needs the offsets in
// increasing order and never seeks backward.
type sequentialOffsets struct {
	r     *bitio.Reader
	nodes int64
	pos   int64
	last  int64
}

// OffsetsScanner is the forward-only view returned by NewOffsetsScanner,
// for a caller (cmd/graphinfo's -check pass) that wants to walk every
// offset in order without decoding the whole stream into memory.
type OffsetsScanner interface {
	Offsets
	// Next returns the bit offset at the current forward position and
	// advances past it.
	Next() (int64, error)
}

// NewOffsetsScanner returns a forward-only offsets reader over the
// gamma-delta stream r, for a graph of the given node count.
func NewOffsetsScanner(r *bitio.Reader, nodes int64) OffsetsScanner {
	return &sequentialOffsets{r: r, nodes: nodes}
}

// Next returns the bit offset of the node at the current forward position
// and advances past it. It returns an OutOfRange error once every node
// (including the trailing sentinel) has been consumed.
func (s *sequentialOffsets) Next() (int64, error) {
	if s.pos > s.nodes {
		return 0, newErr(OutOfRange, s.pos, "no more offsets to scan")
	}
	s.last += int64(s.r.ReadGamma())
	s.pos++
	return s.last, nil
}

func (s *sequentialOffsets) Get(id int64) (int64, error) {
	return 0, newErr(Unsupported, id, "sequential offsets do not support random access")
}

func (s *sequentialOffsets) Len() int64 { return s.nodes }

// eliasFano is a monotone non-decreasing sequence of n uint64 values,
// represented in the classic two-level Elias-Fano layout: each value's
// high bits are unary-coded in a bit vector, its low bits packed at a
// fixed width. Select scans the high-bit words from the start with a
// word-at-a-time popcount and keeps no sampled select index, so get(i)
// costs time proportional to the number of words before the i-th value,
// not constant time. This is the representation behind standardOffsets:
// a random access offset index whose size is close to the
// information-theoretic minimum for a monotone sequence bounded by the
// graph's total bit length.
type eliasFano struct {
	n       int64
	lowBits uint
	low     *bitio.Reader
	high    []uint64
}

func newEliasFano(values []int64) *eliasFano {
	n := int64(len(values))
	ef := &eliasFano{n: n}
	if n == 0 {
		ef.high = []uint64{1}
		return ef
	}
	max := values[n-1]

	l := uint(0)
	for avg := uint64(max) / uint64(n); avg > 0; avg >>= 1 {
		l++
	}
	ef.lowBits = l

	lw := bitio.NewWriter()
	for _, v := range values {
		lw.WriteInt(uint64(v)&lowMask(l), l)
	}
	ef.low = bitio.NewReader(lw.Bytes())

	highLen := n + (max >> l) + 1
	words := make([]uint64, highLen/64+1)
	for i, v := range values {
		pos := (v >> l) + int64(i)
		words[pos/64] |= 1 << uint(pos%64)
	}
	ef.high = words
	return ef
}

func lowMask(l uint) uint64 {
	if l >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << l) - 1
}

// get returns the i-th value, 0 <= i < n.
func (ef *eliasFano) get(i int64) int64 {
	pos := selectBit(ef.high, i)
	high := pos - i
	var low uint64
	if ef.lowBits > 0 {
		ef.low.Seek(i * int64(ef.lowBits))
		low = ef.low.ReadInt(ef.lowBits)
	}
	return high<<ef.lowBits | int64(low)
}

// selectBit returns the bit position of the k-th (0-indexed) set bit
// across words, scanning whole words via popcount and only inspecting
// individual bits within the word that contains the answer.
func selectBit(words []uint64, k int64) int64 {
	for wi, w := range words {
		c := int64(bits.OnesCount64(w))
		if k < c {
			for w != 0 {
				b := bits.TrailingZeros64(w)
				if k == 0 {
					return int64(wi)*64 + int64(b)
				}
				k--
				w &= w - 1
			}
		}
		k -= c
	}
	panic(internalOutOfRangeSelect)
}

const internalOutOfRangeSelect = offsetsError("select index out of range")

type offsetsError string

func (e offsetsError) Error() string { return string(e) }

// standardOffsets holds the entire offset array in memory using the
// eliasFano encoding, giving random access independent of how the graph
// is scanned (each Get pays the linear select scan described on
// eliasFano).
type standardOffsets struct {
	ef *eliasFano
}

// NewStandardOffsets decodes the gamma-delta offsets stream r (n+1
// entries: one per node plus the trailing sentinel) fully into an
// Elias-Fano array.
func NewStandardOffsets(data []byte, n int64) (Offsets, error) {
	r := bitio.NewReader(data)
	values := make([]int64, n+1)
	var last int64
	for i := range values {
		last += int64(r.ReadGamma())
		values[i] = last
	}
	return &standardOffsets{ef: newEliasFano(values)}, nil
}

func (s *standardOffsets) Get(id int64) (int64, error) {
	if id < 0 || id >= s.ef.n-1 {
		return 0, newErr(OutOfRange, id, "node id out of range")
	}
	return s.ef.get(id), nil
}

func (s *standardOffsets) Len() int64 { return s.ef.n - 1 }

// mappedOffsets decodes the offsets stream from an io.ReaderAt (typically
// an *os.File) rather than a caller-supplied in-memory slice, for use
// when the caller would rather not hold the raw offsets bytes themselves.
// The decoded array is still held as an eliasFano in memory: at one
// entry per node, even a billion-node graph's offset index is a small
// fraction of the graph stream it indexes, so there is no memory benefit
// in re-decoding it lazily per lookup.
type mappedOffsets struct {
	*standardOffsets
}

// NewMappedOffsets reads size bytes from ra and decodes them as an
// offsets stream for an n-node graph.
func NewMappedOffsets(ra io.ReaderAt, size int64, n int64) (Offsets, error) {
	buf := make([]byte, size)
	if _, err := ra.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, newErr(IOErrorKind, -1, err.Error())
	}
	off, err := NewStandardOffsets(buf, n)
	if err != nil {
		return nil, err
	}
	return &mappedOffsets{standardOffsets: off.(*standardOffsets)}, nil
}
