// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package label

import (
	"github.com/dsnet/webgraph/bitio"
	"github.com/dsnet/webgraph/graph"
)

// Graph overlays an underlying structural graph.View with per-arc labels.
// The label bitstream concatenates, in node order, one block of exactly
// Outdegree(u) labels per node; offsets gives each node's block's bit
// position, either loaded from a stored B.labeloffsets file or (for a
// fixed-width codec) derived from out-degrees at Load time.
type Graph struct {
	g       graph.View
	codec   Codec
	data    []byte
	offsets graph.Offsets
}

// Load builds a label Graph from an explicit offset index, the shape
// used whenever the codec's labels vary in length.
func Load(g graph.View, codec Codec, data []byte, offsets graph.Offsets) *Graph {
	return &Graph{g: g, codec: codec, data: data, offsets: offsets}
}

// LoadFixedWidth builds a label Graph for a fixed-width codec directly
// from a degree sequence, skipping the stored offset index: the bit
// offset of node u's block is the running sum of degrees[:u] times
// codec.FixedWidth().
func LoadFixedWidth(g graph.View, codec Codec, data []byte, degrees []int32) (*Graph, error) {
	w := codec.FixedWidth()
	if w < 0 {
		return nil, newErr(InvalidFormat, "LoadFixedWidth requires a codec with a non-negative FixedWidth")
	}
	offs := make([]int64, len(degrees)+1)
	for i, d := range degrees {
		offs[i+1] = offs[i] + int64(d)*w
	}
	return &Graph{g: g, codec: codec, data: data, offsets: degreeOffsets(offs)}, nil
}

// degreeOffsets is the derived, in-memory Offsets backing LoadFixedWidth:
// a plain prefix-sum slice rather than graph's Elias-Fano representation,
// since it is rebuilt from degrees on every Load rather than persisted.
type degreeOffsets []int64

func (d degreeOffsets) Get(id int64) (int64, error) {
	if id < 0 || id >= int64(len(d))-1 {
		return 0, newErr(InvalidFormat, "node index out of range for derived label offsets")
	}
	return d[id], nil
}

func (d degreeOffsets) Len() int64 { return int64(len(d)) - 1 }

// Codec returns the label codec this graph was loaded with.
func (lg *Graph) Codec() Codec { return lg.codec }

// Labels returns node u's labels, one per successor, in the same order
// Successors(u) returns its targets.
func (lg *Graph) Labels(u int64) (labels []Label, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(bitio.Error)
			if !ok {
				panic(r)
			}
			labels, err = nil, newErr(InvalidFormat, e.Error())
		}
	}()
	d, err := lg.g.Outdegree(u)
	if err != nil {
		return nil, err
	}
	if d == 0 {
		return nil, nil
	}
	pos, err := lg.offsets.Get(u)
	if err != nil {
		return nil, err
	}
	r := bitio.NewReader(lg.data)
	r.Seek(pos)
	labels = make([]Label, d)
	for i := range labels {
		l, err := lg.codec.FromBits(r, u)
		if err != nil {
			return nil, err
		}
		labels[i] = l
	}
	return labels, nil
}

// LabeledSuccessors pairs Successors(u) with Labels(u) for convenience.
func (lg *Graph) LabeledSuccessors(u int64) ([]int64, []Label, error) {
	succ, err := lg.g.Successors(u)
	if err != nil {
		return nil, nil, err
	}
	labels, err := lg.Labels(u)
	if err != nil {
		return nil, nil, err
	}
	return succ, labels, nil
}

// NumNodes delegates to the underlying structural graph.
func (lg *Graph) NumNodes() int64 { return lg.g.NumNodes() }

// NumArcs delegates to the underlying structural graph.
func (lg *Graph) NumArcs() int64 { return lg.g.NumArcs() }
