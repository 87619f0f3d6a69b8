// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package graph

import (
	"io"

	"github.com/dsnet/webgraph/bitio"
)

// View is the common surface of Graph and SequentialGraph: size queries
// and random successor access. SequentialGraph implements it but returns
// Unsupported from Successors/Outdegree, since a forward-only view cannot
// satisfy an arbitrary node id without rescanning from the start.
type View interface {
	NumNodes() int64
	NumArcs() int64
	Successors(u int64) ([]int64, error)
	Outdegree(u int64) (int, error)
}

// Graph is a random-access view over a compressed graph stream: given an
// offset index, it can decode any single node's successor array without
// decoding its neighbours, recursively resolving copy references as
// needed.
//
// A Graph keeps one mutable cursor caching the most recently decoded
// node, so that a caller scanning node ids in increasing order (the
// common case) only pays the decode cost once per node even though
// Successors can be called for the same node repeatedly. This cursor
// makes a *Graph unsafe for concurrent use; call Copy to hand each
// goroutine its own independent view over the same underlying data.
type Graph struct {
	data    []byte
	offsets Offsets
	props   Properties
	dec     *Decoder

	cursor struct {
		valid bool
		node  int64
		succ  []int64
	}
}

var (
	_ View = (*Graph)(nil)
	_ View = (*SequentialGraph)(nil)
)

// Load builds a random-access Graph over an encoded node stream and its
// offset index.
func Load(props Properties, data []byte, offsets Offsets) *Graph {
	return &Graph{data: data, offsets: offsets, props: props, dec: NewDecoder(props)}
}

// Copy returns an independent view of g: same underlying data and offset
// index, but its own decode cursor, safe to hand to another goroutine.
func (g *Graph) Copy() *Graph {
	return &Graph{data: g.data, offsets: g.offsets, props: g.props, dec: NewDecoder(g.props)}
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int64 { return g.props.Nodes }

// NumArcs returns the number of arcs in the graph, as recorded in its
// properties at encode time.
func (g *Graph) NumArcs() int64 { return g.props.Arcs }

func (g *Graph) fetch(ref int64, depth int) ([]int64, error) {
	bitPos, err := g.offsets.Get(ref)
	if err != nil {
		return nil, err
	}
	r := bitio.NewReader(g.data)
	r.Seek(bitPos)
	return g.dec.DecodeNode(r, ref, depth, g.fetch)
}

// Successors returns the ascending successor array of node u.
func (g *Graph) Successors(u int64) ([]int64, error) {
	if u < 0 || u >= g.props.Nodes {
		return nil, newErr(OutOfRange, u, "node id out of range")
	}
	if g.cursor.valid && g.cursor.node == u {
		return g.cursor.succ, nil
	}
	succ, err := g.fetch(u, 0)
	if err != nil {
		return nil, err
	}
	g.cursor.valid = true
	g.cursor.node = u
	g.cursor.succ = succ
	return succ, nil
}

// Outdegree returns the out-degree of node u.
func (g *Graph) Outdegree(u int64) (int, error) {
	succ, err := g.Successors(u)
	if err != nil {
		return 0, err
	}
	return len(succ), nil
}

// RangeIterator walks a contiguous block of node ids in increasing order
// through a Graph's random-access path, exposing the same Next shape as
// SequentialGraph so that a caller does not need to distinguish between
// the two when consuming a partitioned scan.
type RangeIterator struct {
	g        *Graph
	lo, hi   int64
	cur      int64
}

// Next returns the next (node, successors) pair in the iterator's range,
// or io.EOF once the range is exhausted.
func (it *RangeIterator) Next() (int64, []int64, error) {
	if it.cur >= it.hi {
		return 0, nil, io.EOF
	}
	node := it.cur
	succ, err := it.g.Successors(node)
	if err != nil {
		return 0, nil, err
	}
	it.cur++
	return node, succ, nil
}

// SplitNodeIterators partitions the node range [0, NumNodes) into k
// contiguous blocks of roughly equal size and returns one RangeIterator
// per block, each backed by its own Graph.Copy so the iterators can be
// driven concurrently from separate goroutines.
func (g *Graph) SplitNodeIterators(k int) []*RangeIterator {
	if k < 1 {
		k = 1
	}
	n := g.props.Nodes
	size := (n + int64(k) - 1) / int64(k)
	if size < 1 {
		size = 1
	}
	var out []*RangeIterator
	for lo := int64(0); lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		out = append(out, &RangeIterator{g: g.Copy(), lo: lo, hi: hi, cur: lo})
	}
	return out
}

// seqWindowEntry is one slot of SequentialGraph's in-memory reference
// window.
type seqWindowEntry struct {
	node int64
	succ []int64
}

// SequentialGraph is a forward-only iterator over a compressed graph
// stream. Unlike Graph, it needs no offset index: reference resolution is
// satisfied from an in-memory window of the last WindowSize decoded
// nodes, which is always sufficient because encoding never references a
// node more than WindowSize back.
type SequentialGraph struct {
	r      *bitio.Reader
	dec    *Decoder
	props  Properties
	cur    int64
	window []seqWindowEntry
}

// NewSequentialGraph returns a SequentialGraph reading from the start of
// data.
func NewSequentialGraph(props Properties, data []byte) *SequentialGraph {
	return &SequentialGraph{r: bitio.NewReader(data), dec: NewDecoder(props), props: props}
}

func (g *SequentialGraph) fetch(ref int64, depth int) ([]int64, error) {
	for _, e := range g.window {
		if e.node == ref {
			return e.succ, nil
		}
	}
	return nil, newErr(InvalidFormat, ref, "reference points outside the sequential decode window")
}

// Next decodes and returns the next node in id order, or io.EOF once every
// node has been returned.
func (g *SequentialGraph) Next() (node int64, succ []int64, err error) {
	if g.cur >= g.props.Nodes {
		return 0, nil, io.EOF
	}
	node = g.cur
	succ, err = g.dec.DecodeNode(g.r, node, 0, g.fetch)
	if err != nil {
		return 0, nil, err
	}
	g.window = append(g.window, seqWindowEntry{node: node, succ: succ})
	if len(g.window) > g.props.WindowSize {
		g.window = g.window[1:]
	}
	g.cur++
	return node, succ, nil
}

// NumNodes returns the number of nodes in the graph.
func (g *SequentialGraph) NumNodes() int64 { return g.props.Nodes }

// NumArcs returns the number of arcs in the graph, as recorded in its
// properties at encode time.
func (g *SequentialGraph) NumArcs() int64 { return g.props.Arcs }

// Successors always fails on a SequentialGraph: random access requires an
// offset index, which a forward-only view does not have.
func (g *SequentialGraph) Successors(u int64) ([]int64, error) {
	return nil, newErr(Unsupported, u, "random successor access unavailable on a sequential-only view")
}

// Outdegree always fails on a SequentialGraph, for the same reason as
// Successors.
func (g *SequentialGraph) Outdegree(u int64) (int, error) {
	return 0, newErr(Unsupported, u, "random outdegree access unavailable on a sequential-only view")
}

// Skip advances past the next n nodes without returning their successor
// arrays to the caller. Each node is still fully decoded and pushed onto
// the window, since a later node may reference it.
func (g *SequentialGraph) Skip(n int64) error {
	for i := int64(0); i < n; i++ {
		if _, _, err := g.Next(); err != nil {
			return err
		}
	}
	return nil
}
