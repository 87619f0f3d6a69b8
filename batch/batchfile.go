// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package batch

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/ulikunitz/xz"

	"github.com/dsnet/webgraph/bitio"
)

// arcRec is one deduplicated arc within a flushed batch, keyed by
// (Primary, Secondary): (source, target) when sorting for identity or
// symmetrisation, (target, source) when the pipeline is building a
// transpose directly.
type arcRec struct {
	Primary   int64
	Secondary int64
	Label     []byte // nil if the pipeline carries no labels
}

// batchFile is a flushed, sorted, deduplicated batch living in the
// pipeline's temp directory. Its on-disk layout is a small fixed header
// (primary-group count, arc count) followed by a bitio-encoded body:
// gamma-coded primary gaps, and within each primary group a gamma-coded
// out-degree followed by gamma/signed-gamma-coded secondary gaps, in
// exactly the shape the specification describes for a flushed batch. The
// body is optionally wrapped in an xz stream to shrink the external-sort
// working set; a parallel file holds length-prefixed label blobs in the
// same arc order, when the pipeline carries labels.
type batchFile struct {
	dataPath  string
	labelPath string
	compress  bool
	arcs      int64
}

func writeBatch(dir string, compress, labeled bool, arcs []arcRec) (*batchFile, error) {
	bw := bitio.NewWriter()
	var prevPrimary int64
	i := 0
	numGroups := int64(0)
	for i < len(arcs) {
		j := i
		primary := arcs[i].Primary
		for j < len(arcs) && arcs[j].Primary == primary {
			j++
		}
		bw.WriteGamma(uint64(primary - prevPrimary))
		prevPrimary = primary
		bw.WriteGamma(uint64(j - i))
		var prevSecondary int64
		for k := i; k < j; k++ {
			if k == i {
				bw.WriteSignedGamma(arcs[k].Secondary - primary)
			} else {
				bw.WriteGamma(uint64(arcs[k].Secondary - prevSecondary - 1))
			}
			prevSecondary = arcs[k].Secondary
		}
		numGroups++
		i = j
	}

	f, err := os.CreateTemp(dir, "webgraph-batch-*.tmp")
	if err != nil {
		return nil, newErr(IOErrorKind, err.Error())
	}
	defer f.Close()

	var hdr [16]byte
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(numGroups))
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(len(arcs)))
	if _, err := f.Write(hdr[:]); err != nil {
		return nil, newErr(IOErrorKind, err.Error())
	}
	if err := writeBody(f, compress, bw.Bytes()); err != nil {
		return nil, newErr(IOErrorKind, err.Error())
	}

	bf := &batchFile{dataPath: f.Name(), compress: compress, arcs: int64(len(arcs))}

	if labeled {
		lf, err := os.CreateTemp(dir, "webgraph-labels-*.tmp")
		if err != nil {
			return nil, newErr(IOErrorKind, err.Error())
		}
		defer lf.Close()
		for _, a := range arcs {
			var lenBuf [4]byte
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(a.Label)))
			if _, err := lf.Write(lenBuf[:]); err != nil {
				return nil, newErr(IOErrorKind, err.Error())
			}
			if len(a.Label) > 0 {
				if _, err := lf.Write(a.Label); err != nil {
					return nil, newErr(IOErrorKind, err.Error())
				}
			}
		}
		bf.labelPath = lf.Name()
	}

	return bf, nil
}

func writeBody(w io.Writer, compress bool, body []byte) error {
	if !compress {
		_, err := w.Write(body)
		return err
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := xw.Write(body); err != nil {
		return err
	}
	return xw.Close()
}

func (bf *batchFile) remove() {
	os.Remove(bf.dataPath)
	if bf.labelPath != "" {
		os.Remove(bf.labelPath)
	}
}

// batchReader decodes a batchFile's arcs in ascending (Primary, Secondary)
// order, one at a time.
type batchReader struct {
	r         *bitio.Reader
	labels    [][]byte
	groupsLeft int64
	arcsLeft  int64

	curPrimary   int64
	prevPrimary  int64
	curCount     int64
	curIdx       int64
	prevSecondary int64
	arcIdx       int64
}

func openBatch(bf *batchFile) (*batchReader, error) {
	f, err := os.Open(bf.dataPath)
	if err != nil {
		return nil, newErr(IOErrorKind, err.Error())
	}
	defer f.Close()

	var hdr [16]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, newErr(IOErrorKind, err.Error())
	}
	numGroups := int64(binary.LittleEndian.Uint64(hdr[0:8]))
	numArcs := int64(binary.LittleEndian.Uint64(hdr[8:16]))

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, newErr(IOErrorKind, err.Error())
	}
	if bf.compress {
		xr, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, newErr(IOErrorKind, err.Error())
		}
		raw, err = io.ReadAll(xr)
		if err != nil {
			return nil, newErr(IOErrorKind, err.Error())
		}
	}

	br := &batchReader{r: bitio.NewReader(raw), groupsLeft: numGroups, arcsLeft: numArcs}

	if bf.labelPath != "" {
		lf, err := os.Open(bf.labelPath)
		if err != nil {
			return nil, newErr(IOErrorKind, err.Error())
		}
		defer lf.Close()
		labels := make([][]byte, 0, numArcs)
		for i := int64(0); i < numArcs; i++ {
			var lenBuf [4]byte
			if _, err := io.ReadFull(lf, lenBuf[:]); err != nil {
				return nil, newErr(IOErrorKind, err.Error())
			}
			n := binary.LittleEndian.Uint32(lenBuf[:])
			var lbl []byte
			if n > 0 {
				lbl = make([]byte, n)
				if _, err := io.ReadFull(lf, lbl); err != nil {
					return nil, newErr(IOErrorKind, err.Error())
				}
			}
			labels = append(labels, lbl)
		}
		br.labels = labels
	}

	return br, nil
}

// next returns the next arc in the batch, or ok=false once exhausted.
func (br *batchReader) next() (rec arcRec, ok bool) {
	if br.curIdx >= br.curCount {
		if br.groupsLeft == 0 {
			return arcRec{}, false
		}
		br.curPrimary = br.prevPrimary + int64(br.r.ReadGamma())
		br.prevPrimary = br.curPrimary
		br.curCount = int64(br.r.ReadGamma())
		br.curIdx = 0
		br.groupsLeft--
	}
	var secondary int64
	if br.curIdx == 0 {
		secondary = br.curPrimary + br.r.ReadSignedGamma()
	} else {
		secondary = br.prevSecondary + 1 + int64(br.r.ReadGamma())
	}
	br.prevSecondary = secondary
	br.curIdx++

	rec = arcRec{Primary: br.curPrimary, Secondary: secondary}
	if br.labels != nil {
		rec.Label = br.labels[br.arcIdx]
	}
	br.arcIdx++
	return rec, true
}
