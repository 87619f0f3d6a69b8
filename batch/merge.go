// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package batch

import "container/heap"

// mergeItem is one pending arc from one open batch, tracked in the
// merger's heap.
type mergeItem struct {
	rec   arcRec
	batch int // index into merger.readers
}

// itemHeap orders mergeItems by (Primary, Secondary), the min-heap key
// the specification's k-way merge step is defined over.
type itemHeap []mergeItem

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	if h[i].rec.Primary != h[j].rec.Primary {
		return h[i].rec.Primary < h[j].rec.Primary
	}
	return h[i].rec.Secondary < h[j].rec.Secondary
}
func (h itemHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x any)        { *h = append(*h, x.(mergeItem)) }
func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeFunc combines the labels of two arcs the merge step discovered to
// be duplicates. A nil mergeFunc means duplicates with differing labels
// are a fatal MergeConflict.
type mergeFunc func(a, b []byte) ([]byte, error)

// merger performs the specification's k-way merge across a set of
// flushed batch files: a min-heap keyed by (current_source,
// current_target) (renamed here Primary/Secondary to stay orientation-
// agnostic for the transpose case), deduplicating identical pairs via
// merge.
type merger struct {
	readers []*batchReader
	h       itemHeap
	merge   mergeFunc

	pending    *arcRec
	pendingSet bool
}

func newMerger(files []*batchFile, merge mergeFunc) (*merger, error) {
	m := &merger{merge: merge}
	for _, bf := range files {
		br, err := openBatch(bf)
		if err != nil {
			return nil, err
		}
		m.readers = append(m.readers, br)
		if rec, ok := br.next(); ok {
			heap.Push(&m.h, mergeItem{rec: rec, batch: len(m.readers) - 1})
		}
	}
	return m, nil
}

// nextArc returns the next deduplicated arc in ascending (Primary,
// Secondary) order, merging labels across duplicates, or ok=false once
// every batch is exhausted.
func (m *merger) nextArc() (rec arcRec, ok bool, err error) {
	if m.pendingSet {
		rec, m.pendingSet = *m.pending, false
		return rec, true, nil
	}
	if m.h.Len() == 0 {
		return arcRec{}, false, nil
	}
	top := heap.Pop(&m.h).(mergeItem)
	rec = top.rec
	m.refill(top.batch)

	for m.h.Len() > 0 && m.h[0].rec.Primary == rec.Primary && m.h[0].rec.Secondary == rec.Secondary {
		dup := heap.Pop(&m.h).(mergeItem)
		m.refill(dup.batch)
		rec.Label, err = m.resolveMerge(rec.Label, dup.rec.Label)
		if err != nil {
			return arcRec{}, false, err
		}
	}
	return rec, true, nil
}

func (m *merger) resolveMerge(a, b []byte) ([]byte, error) {
	if labelEqual(a, b) {
		return a, nil
	}
	if m.merge == nil {
		return nil, newErr(MergeConflict, "duplicate arc with differing labels and no merge strategy")
	}
	return m.merge(a, b)
}

func (m *merger) refill(batch int) {
	if rec, ok := m.readers[batch].next(); ok {
		heap.Push(&m.h, mergeItem{rec: rec, batch: batch})
	}
}

func labelEqual(a, b []byte) bool {
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

// group is one primary node's fully merged, ascending successor list.
type group struct {
	Primary    int64
	Secondaries []int64
	Labels     [][]byte
}

// nextGroup collects every arc for the next primary key into one group,
// so the caller can feed it directly to graph.Encoder.EncodeNode.
func (m *merger) nextGroup() (group, bool, error) {
	rec, ok, err := m.nextArc()
	if err != nil || !ok {
		return group{}, false, err
	}
	g := group{Primary: rec.Primary}
	g.Secondaries = append(g.Secondaries, rec.Secondary)
	if rec.Label != nil {
		g.Labels = append(g.Labels, rec.Label)
	}
	for {
		next, ok, err := m.nextArc()
		if err != nil {
			return group{}, false, err
		}
		if !ok {
			break
		}
		if next.Primary != g.Primary {
			m.pending = &next
			m.pendingSet = true
			break
		}
		g.Secondaries = append(g.Secondaries, next.Secondary)
		if next.Label != nil {
			g.Labels = append(g.Labels, next.Label)
		}
	}
	return g, true, nil
}
