// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package batch

import (
	"sort"

	"github.com/dsnet/webgraph/bitio"
	"github.com/dsnet/webgraph/graph"
)

// Config configures a Pipeline. A BatchSize of zero or less becomes
// 1<<20 arcs; an empty TempDir puts batch files in the OS default temp
// directory; everything else defaults to off/zero.
type Config struct {
	TempDir      string
	BatchSize    int
	Symmetrize   bool
	NoLoops      bool
	Transpose    bool // key batches on (target, source): produce the transpose directly
	CompressTemp bool
	Labeled      bool
	// Merge resolves a label conflict between two arcs that collapsed to
	// the same (source, target) pair. A nil Merge makes such a conflict
	// fatal (MergeConflict).
	Merge func(a, b []byte) ([]byte, error)
	// Properties carries the codec parameters (window size, max reference
	// count, minimum interval length, zeta k, per-field code flags) used
	// to encode the merged stream. Nodes/Arcs/Stats/Version are
	// overwritten by Close.
	Properties graph.Properties
}

// Pipeline accumulates an unsorted stream of opaque-id arcs into batches,
// flushing each to a temp file, and assembles the final sequential graph
// from a k-way merge across those files on Close.
type Pipeline struct {
	cfg Config

	ids    map[int64]int64
	idList []int64

	buf   []arcRec
	files []*batchFile

	closed bool

	data    []byte
	offsets []int64
	props   graph.Properties
	degrees []int32
}

// NewPipeline returns a Pipeline configured by cfg.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1 << 20
	}
	return &Pipeline{cfg: cfg, ids: make(map[int64]int64)}
}

func (p *Pipeline) remap(id int64) int64 {
	if dense, ok := p.ids[id]; ok {
		return dense
	}
	dense := int64(len(p.idList))
	p.ids[id] = dense
	p.idList = append(p.idList, id)
	return dense
}

// PushArc records an unlabeled arc between two opaque ids.
func (p *Pipeline) PushArc(src, tgt int64) error {
	return p.push(src, tgt, nil)
}

// PushLabeledArc records a labeled arc between two opaque ids.
func (p *Pipeline) PushLabeledArc(src, tgt int64, label []byte) error {
	return p.push(src, tgt, label)
}

func (p *Pipeline) push(src, tgt int64, label []byte) error {
	if p.closed {
		return newErr(IOErrorKind, "pipeline already closed")
	}
	u, v := p.remap(src), p.remap(tgt)
	if p.cfg.NoLoops && u == v {
		return nil
	}
	if err := p.append1(u, v, label); err != nil {
		return err
	}
	if p.cfg.Symmetrize && u != v {
		return p.append1(v, u, label)
	}
	return nil
}

func (p *Pipeline) append1(u, v int64, label []byte) error {
	primary, secondary := u, v
	if p.cfg.Transpose {
		primary, secondary = v, u
	}
	p.buf = append(p.buf, arcRec{Primary: primary, Secondary: secondary, Label: label})
	if len(p.buf) >= p.cfg.BatchSize {
		return p.flush()
	}
	return nil
}

func (p *Pipeline) flush() error {
	if len(p.buf) == 0 {
		return nil
	}
	sort.Slice(p.buf, func(i, j int) bool {
		if p.buf[i].Primary != p.buf[j].Primary {
			return p.buf[i].Primary < p.buf[j].Primary
		}
		return p.buf[i].Secondary < p.buf[j].Secondary
	})
	deduped, err := dedupeSorted(p.buf, p.cfg.Merge)
	if err != nil {
		return err
	}
	bf, err := writeBatch(p.cfg.TempDir, p.cfg.CompressTemp, p.cfg.Labeled, deduped)
	if err != nil {
		return err
	}
	p.files = append(p.files, bf)
	p.buf = p.buf[:0]
	return nil
}

func dedupeSorted(arcs []arcRec, merge mergeFunc) ([]arcRec, error) {
	var out []arcRec
	for i := 0; i < len(arcs); i++ {
		cur := arcs[i]
		for i+1 < len(arcs) && arcs[i+1].Primary == cur.Primary && arcs[i+1].Secondary == cur.Secondary {
			i++
			lbl, err := mergeLabels(cur.Label, arcs[i].Label, merge)
			if err != nil {
				return nil, err
			}
			cur.Label = lbl
		}
		out = append(out, cur)
	}
	return out, nil
}

func mergeLabels(a, b []byte, merge mergeFunc) ([]byte, error) {
	if labelEqual(a, b) {
		return a, nil
	}
	if merge == nil {
		return nil, newErr(MergeConflict, "duplicate arc with differing labels and no merge strategy")
	}
	return merge(a, b)
}

// Abort discards every flushed batch file without building a graph.
func (p *Pipeline) Abort() error {
	p.cleanup()
	p.closed = true
	return nil
}

func (p *Pipeline) cleanup() {
	for _, f := range p.files {
		f.remove()
	}
	p.files = nil
}

// Close flushes any buffered arcs, k-way merges every batch file, and
// encodes the result as a compressed sequential graph. It is an error to
// Push after Close. The pipeline's temp files are removed before Close
// returns, success or failure.
func (p *Pipeline) Close() (*graph.SequentialGraph, error) {
	if p.closed {
		return nil, newErr(IOErrorKind, "pipeline already closed")
	}
	if err := p.flush(); err != nil {
		p.cleanup()
		p.closed = true
		return nil, err
	}
	defer func() {
		p.cleanup()
		p.closed = true
	}()

	m, err := newMerger(p.files, mergeFunc(p.cfg.Merge))
	if err != nil {
		return nil, err
	}

	n := int64(len(p.idList))
	props := p.cfg.Properties
	if props.GraphClass == "" {
		props.GraphClass = "BVGraph"
	}
	if props.WindowSize == 0 && props.MaxRefCount == 0 && props.MinIntervalLength == 0 {
		props = graph.DefaultProperties()
		if p.cfg.Properties.GraphClass != "" {
			props.GraphClass = p.cfg.Properties.GraphClass
		}
	}
	props.Version = graph.Version

	enc := graph.NewEncoder(props)
	w := bitio.NewWriter()
	offsets := make([]int64, 0, n+1)
	degrees := make([]int32, n)
	var arcCount int64

	g, ok, gerr := m.nextGroup()
	if gerr != nil {
		return nil, gerr
	}
	for nextID := int64(0); nextID < n; nextID++ {
		offsets = append(offsets, w.BitLength())
		if ok && g.Primary == nextID {
			enc.EncodeNode(w, g.Secondaries)
			degrees[nextID] = int32(len(g.Secondaries))
			arcCount += int64(len(g.Secondaries))
			g, ok, gerr = m.nextGroup()
			if gerr != nil {
				return nil, gerr
			}
		} else {
			enc.EncodeNode(w, nil)
		}
	}
	offsets = append(offsets, w.BitLength())

	props.Nodes = n
	props.Arcs = arcCount
	props.Stats = enc.Stats

	p.data = w.Bytes()
	p.offsets = offsets
	p.props = props
	p.degrees = degrees

	return graph.NewSequentialGraph(props, p.data), nil
}

// Data returns the raw adjacency bitstream produced by Close, the bytes
// a caller (cmd/graphconv) persists as B.graph. It is nil until Close has
// run.
func (p *Pipeline) Data() []byte { return p.data }

// Degrees returns the out-degree of every dense node id, recomputed from
// the merged stream during Close. It is nil until Close has run.
func (p *Pipeline) Degrees() []int32 { return p.degrees }

// Offsets returns the bit offset of every node's record plus the
// trailing sentinel, in the same pass that produced the SequentialGraph
// from Close, so a caller (cmd/graphconv) can persist a B.offsets file
// without a second decode pass.
func (p *Pipeline) Offsets() []int64 { return p.offsets }

// Properties returns the property record describing the graph built by
// Close, including its write-time statistics.
func (p *Pipeline) Properties() graph.Properties { return p.props }

// IDs returns the dense-position-indexed array of original opaque ids,
// the recoverable id mapping the specification requires be emitted
// alongside the graph.
func (p *Pipeline) IDs() []int64 { return p.idList }
