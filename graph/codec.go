// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package graph

import (
	"github.com/dsnet/webgraph/bitio"
	"github.com/dsnet/webgraph/internal"
)

// codecParams is the subset of Properties the codec needs on both the
// encode and decode path.
type codecParams struct {
	Window      int
	MaxRefCount int
	MinInterval int
	ZetaK       uint
	Flags       Flags
}

func paramsOf(p Properties) codecParams {
	return codecParams{
		Window:      p.WindowSize,
		MaxRefCount: p.MaxRefCount,
		MinInterval: p.MinIntervalLength,
		ZetaK:       uint(p.ZetaK),
		Flags:       p.Flags,
	}
}

func (p codecParams) writeCode(w *bitio.Writer, code Code, val uint64) {
	switch code {
	case CodeGamma:
		w.WriteGamma(val)
	case CodeDelta:
		w.WriteDelta(val)
	case CodeZeta:
		w.WriteZeta(val, p.ZetaK)
	default:
		panic(internal.Error("unknown code"))
	}
}

func (p codecParams) readCode(r *bitio.Reader, code Code) uint64 {
	switch code {
	case CodeGamma:
		return r.ReadGamma()
	case CodeDelta:
		return r.ReadDelta()
	case CodeZeta:
		return r.ReadZeta(p.ZetaK)
	default:
		panic(internal.Error("unknown code"))
	}
}

func (p codecParams) writeSigned(w *bitio.Writer, code Code, val int64) {
	p.writeCode(w, code, bitio.Zigzag(val))
}

func (p codecParams) readSigned(r *bitio.Reader, code Code) int64 {
	return bitio.Unzigzag(p.readCode(r, code))
}

// --- shared set-algebra helpers on ascending int64 slices ---

// intersectAscending returns, in order, the elements of a that also appear
// in b, plus a parallel boolean mask over a marking which positions were
// copied.
func intersectAscending(a, b []int64) (mask []bool, copied []int64) {
	mask = make([]bool, len(a))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			mask[i] = true
			copied = append(copied, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return mask, copied
}

// diffAscending returns the elements of a not present in copied (copied
// must be an ascending subsequence of a, as produced by intersectAscending
// applied with a as the second argument).
func diffAscending(a, copied []int64) []int64 {
	var out []int64
	i := 0
	for _, v := range a {
		if i < len(copied) && copied[i] == v {
			i++
			continue
		}
		out = append(out, v)
	}
	return out
}

// mergeAscending merges two disjoint ascending slices into one ascending
// slice.
func mergeAscending(a, b []int64) []int64 {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]int64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// runLengths computes the alternating run lengths of mask, treating the
// first run as logically "copied" (true) even if it has length zero.
func runLengths(mask []bool) []int {
	if len(mask) == 0 {
		return nil
	}
	var runs []int
	cur := true
	i := 0
	for i < len(mask) {
		if mask[i] == cur {
			j := i
			for j < len(mask) && mask[j] == cur {
				j++
			}
			runs = append(runs, j-i)
			i = j
			cur = !cur
		} else {
			runs = append(runs, 0)
			cur = !cur
		}
	}
	return runs
}

// maskFromRuns is the inverse of runLengths for a declared total length n.
func maskFromRuns(runs []int, n int) []bool {
	mask := make([]bool, n)
	cur := true
	pos := 0
	for _, l := range runs {
		for k := 0; k < l; k++ {
			mask[pos] = cur
			pos++
		}
		cur = !cur
	}
	return mask
}

// interval is a maximal run [Start, End] (inclusive) of consecutive node
// ids extracted from an ascending "extra" slice.
type interval struct{ Start, End int64 }

func (iv interval) length() int64 { return iv.End - iv.Start + 1 }

// extractIntervals splits an ascending, duplicate-free slice into maximal
// runs of consecutive integers of length >= minLen (returned as intervals,
// each run consumed whole) and the remaining values (residuals).
func extractIntervals(extra []int64, minLen int) (intervals []interval, residuals []int64) {
	i := 0
	for i < len(extra) {
		j := i
		for j+1 < len(extra) && extra[j+1] == extra[j]+1 {
			j++
		}
		if run := j - i + 1; run >= minLen {
			intervals = append(intervals, interval{Start: extra[i], End: extra[j]})
		} else {
			residuals = append(residuals, extra[i:j+1]...)
		}
		i = j + 1
	}
	return intervals, residuals
}

// expandIntervals flattens intervals back into individual ascending ids.
func expandIntervals(intervals []interval) []int64 {
	var out []int64
	for _, iv := range intervals {
		for v := iv.Start; v <= iv.End; v++ {
			out = append(out, v)
		}
	}
	return out
}

// encodeWindowEntry is the per-node state the encoder keeps for the last
// Window nodes, so that a later node can be checked as a reference
// candidate without re-decoding anything.
type encodeWindowEntry struct {
	node     int64
	succ     []int64
	chainLen int
}

// Encoder turns a sequence of ascending, deduplicated successor arrays,
// supplied one node at a time in node-id order, into the bitstream fields
// of the compressed codec. It keeps a sliding window of up to WindowSize
// previous nodes to select references from, per the specification's §4.B
// reference-selection policy: maximise copy length within the max chain
// length, breaking ties toward the smaller distance.
type Encoder struct {
	params codecParams
	cur    int64
	window []encodeWindowEntry // most recent last; at most WindowSize entries
	Stats  *WriteStats
}

// NewEncoder returns an Encoder for the given properties. The properties'
// Window/MaxRefCount/MinIntervalLength/ZetaK/Flags drive the encoding; its
// Nodes/Arcs/Stats fields are ignored (the caller fills those in once
// encoding completes).
func NewEncoder(props Properties) *Encoder {
	return &Encoder{params: paramsOf(props), Stats: newWriteStats()}
}

// bestReference picks the reference candidate maximising copy length,
// breaking ties toward the smallest u-r by scanning delta from 1 upward.
// It returns a candidate index into e.window (so callers can reuse the
// already-computed mask) or -1 if no candidate yields a positive copy.
func (e *Encoder) bestReference(succ []int64) (idx int, mask []bool, copied []int64) {
	best := -1
	var bestMask []bool
	var bestCopied []int64
	for delta := 1; delta <= e.params.Window; delta++ {
		wi := len(e.window) - delta
		if wi < 0 {
			break
		}
		cand := e.window[wi]
		if cand.chainLen >= e.params.MaxRefCount {
			continue
		}
		m, c := intersectAscending(cand.succ, succ)
		if len(c) > 0 && (best < 0 || len(c) > len(bestCopied)) {
			best, bestMask, bestCopied = wi, m, c
		}
	}
	return best, bestMask, bestCopied
}

// EncodeNode encodes the successor array of the next node (the node id is
// implicit: it is the number of nodes encoded so far) and returns the
// number of bits written.
func (e *Encoder) EncodeNode(w *bitio.Writer, succ []int64) int64 {
	u := e.cur
	e.cur++
	start := w.BitLength()

	d := int64(len(succ))
	p := e.params

	startOutdeg := w.BitLength()
	p.writeCode(w, p.Flags.Outdegrees, uint64(d))
	e.Stats.BitsForOutdegrees += w.BitLength() - startOutdeg

	chainLen := 0
	if d > 0 {
		refIdx, mask, copied := e.bestReference(succ)

		startRef := w.BitLength()
		if refIdx < 0 {
			p.writeCode(w, p.Flags.References, 0)
		} else {
			ref := e.window[refIdx]
			delta := u - ref.node
			p.writeCode(w, p.Flags.References, uint64(delta))
			chainLen = ref.chainLen + 1
		}
		e.Stats.BitsForReferences += w.BitLength() - startRef

		if refIdx >= 0 {
			runs := runLengths(mask)
			startBlocks := w.BitLength()
			w.WriteGamma(uint64(len(runs)))
			for i := 0; i < len(runs)-1; i++ {
				if i == 0 {
					p.writeCode(w, p.Flags.Blocks, uint64(runs[0]))
				} else {
					p.writeCode(w, p.Flags.Blocks, uint64(runs[i]-1))
				}
			}
			e.Stats.BitsForBlocks += w.BitLength() - startBlocks
			e.Stats.CopiedArcs += int64(len(copied))
		}

		extra := succ
		if refIdx >= 0 {
			extra = diffAscending(succ, copied)
		}

		intervals, residuals := extractIntervals(extra, p.MinInterval)

		startIntervals := w.BitLength()
		w.WriteGamma(uint64(len(intervals)))
		var prevEnd int64
		for i, iv := range intervals {
			if i == 0 {
				p.writeSigned(w, p.Flags.Residuals, iv.Start-u)
			} else {
				p.writeCode(w, p.Flags.Residuals, uint64(iv.Start-prevEnd-1))
			}
			p.writeCode(w, p.Flags.Residuals, uint64(iv.length()-int64(p.MinInterval)))
			prevEnd = iv.End
			e.Stats.IntervalisedArcs += iv.length()
		}
		e.Stats.BitsForIntervals += w.BitLength() - startIntervals

		startResiduals := w.BitLength()
		var prevRes int64
		for i, v := range residuals {
			if i == 0 {
				p.writeSigned(w, p.Flags.Residuals, v-u)
			} else {
				p.writeCode(w, p.Flags.Residuals, uint64(v-prevRes-1))
			}
			prevRes = v
		}
		e.Stats.BitsForResiduals += w.BitLength() - startResiduals
		e.Stats.ResidualArcs += int64(len(residuals))

		for i, v := range succ {
			if i == 0 {
				e.Stats.observeGap(v - u)
			} else {
				e.Stats.observeGap(v - succ[i-1])
			}
		}
	}

	e.window = append(e.window, encodeWindowEntry{node: u, succ: succ, chainLen: chainLen})
	if len(e.window) > e.params.Window {
		e.window = e.window[1:]
	}
	return w.BitLength() - start
}

// Decoder decodes individual node records from the compressed codec. It
// holds no per-call state of its own; the cursor cache that amortises
// sequential access lives on the caller's view (see Graph.cursor), and
// reference resolution is provided by the caller via fetch so that this
// type does not need to know about the offset index.
type Decoder struct {
	params codecParams
}

// NewDecoder returns a Decoder for the given properties.
func NewDecoder(props Properties) *Decoder {
	return &Decoder{params: paramsOf(props)}
}

// DecodeNode decodes one node's record from r, which must be positioned at
// the start of node u's record. depth is the current reference chain depth
// (0 for a directly requested node); fetch resolves a reference node id at
// depth+1 to its successor array, recursing as needed. DecodeNode returns
// the ascending successor array of u.
func (d *Decoder) DecodeNode(r *bitio.Reader, u int64, depth int, fetch func(ref int64, depth int) ([]int64, error)) (succ []int64, err error) {
	defer internal.Recover(&err)
	p := d.params

	deg := p.readCode(r, p.Flags.Outdegrees)
	internal.Assert(deg <= uint64(^uint32(0)), newErr(InvalidFormat, u, "outdegree absurdly large"))
	if deg == 0 {
		return nil, nil
	}
	dr := int64(deg)

	refDelta := p.readCode(r, p.Flags.References)

	var copied []int64
	if refDelta > 0 {
		internal.Assert(refDelta <= uint64(u), newErr(InvalidFormat, u, "reference points before node 0"))
		ref := u - int64(refDelta)
		internal.Assert(depth+1 <= p.MaxRefCount, newErr(InvalidFormat, u, "reference chain exceeds max reference count"))
		refSucc, ferr := fetch(ref, depth+1)
		if ferr != nil {
			return nil, ferr
		}

		numRuns := int(r.ReadGamma())
		internal.Assert(numRuns >= 0, newErr(InvalidFormat, u, "negative run count"))
		runs := make([]int, numRuns)
		sum := 0
		for i := 0; i < numRuns-1; i++ {
			var v uint64
			if i == 0 {
				v = p.readCode(r, p.Flags.Blocks)
			} else {
				v = p.readCode(r, p.Flags.Blocks) + 1
			}
			runs[i] = int(v)
			sum += runs[i]
			internal.Assert(sum <= len(refSucc), newErr(InvalidFormat, u, "copy block run exceeds reference outdegree"))
		}
		if numRuns > 0 {
			runs[numRuns-1] = len(refSucc) - sum
			internal.Assert(runs[numRuns-1] >= 0, newErr(InvalidFormat, u, "copy block run underflow"))
		}
		mask := maskFromRuns(runs, len(refSucc))
		for i, v := range mask {
			if v {
				copied = append(copied, refSucc[i])
			}
		}
	}

	numIntervals := int(r.ReadGamma())
	internal.Assert(numIntervals >= 0, newErr(InvalidFormat, u, "negative interval count"))
	intervals := make([]interval, numIntervals)
	var prevEnd int64
	for i := 0; i < numIntervals; i++ {
		var start int64
		if i == 0 {
			start = u + p.readSigned(r, p.Flags.Residuals)
		} else {
			start = prevEnd + 1 + int64(p.readCode(r, p.Flags.Residuals))
		}
		length := int64(p.readCode(r, p.Flags.Residuals)) + int64(p.MinInterval)
		end := start + length - 1
		internal.Assert(length >= int64(p.MinInterval), newErr(InvalidFormat, u, "interval shorter than minimum"))
		intervals[i] = interval{Start: start, End: end}
		prevEnd = end
	}

	extraFromIntervals := expandIntervals(intervals)
	intervalArcs := int64(0)
	for _, iv := range intervals {
		intervalArcs += iv.length()
	}

	residualCount := dr - int64(len(copied)) - intervalArcs
	internal.Assert(residualCount >= 0, newErr(InvalidFormat, u, "residual count underflows outdegree"))
	residuals := make([]int64, residualCount)
	var prevRes int64
	for i := range residuals {
		if i == 0 {
			residuals[i] = u + p.readSigned(r, p.Flags.Residuals)
		} else {
			residuals[i] = prevRes + 1 + int64(p.readCode(r, p.Flags.Residuals))
		}
		prevRes = residuals[i]
	}

	extra := mergeAscending(extraFromIntervals, residuals)
	succ = mergeAscending(copied, extra)

	internal.Assert(int64(len(succ)) == dr, newErr(InvalidFormat, u, "decoded successor count mismatch"))
	for i := 1; i < len(succ); i++ {
		internal.Assert(succ[i] > succ[i-1], newErr(InvalidFormat, u, "successors not strictly ascending"))
	}
	return succ, nil
}
