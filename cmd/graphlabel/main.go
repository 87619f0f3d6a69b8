// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command graphlabel builds a label overlay (B.labels, B.labeloffsets)
// for an existing structural graph from a "src tgt label" arc-label
// stream, keyed against the same opaque ids recorded in the structural
// graph's B.ids file.
//
// Example usage:
//	$ graphlabel -labelspec "fixedint(8)" webgraph < weights.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/webgraph/bitio"
	"github.com/dsnet/webgraph/graph"
	"github.com/dsnet/webgraph/label"
)

type arcKey struct{ src, tgt int64 }

func main() {
	os.Exit(run())
}

func run() int {
	labelSpec := flag.String("labelspec", "int()", "label codec spec string, e.g. fixedint(8) or gamma()")
	input := flag.String("input", "", "arc-label text file (default: standard input)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: graphlabel [flags] basename")
		return 1
	}
	basename := flag.Arg(0)

	codec, err := label.Parse(*labelSpec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "graphlabel:", err)
		return 1
	}

	ids, err := readIDs(basename + ".ids")
	if err != nil {
		fmt.Fprintln(os.Stderr, "graphlabel:", err)
		return 2
	}
	dense := make(map[int64]int64, len(ids))
	for i, id := range ids {
		dense[id] = int64(i)
	}

	pf, err := os.Open(basename + ".properties")
	if err != nil {
		fmt.Fprintln(os.Stderr, "graphlabel:", err)
		return 2
	}
	props, err := graph.ReadProperties(pf)
	pf.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "graphlabel:", err)
		return 2
	}
	data, err := os.ReadFile(basename + ".graph")
	if err != nil {
		fmt.Fprintln(os.Stderr, "graphlabel:", err)
		return 2
	}

	var r io.Reader = os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			fmt.Fprintln(os.Stderr, "graphlabel:", err)
			return 2
		}
		defer f.Close()
		r = f
	}
	labels, err := readLabels(r, dense)
	if err != nil {
		fmt.Fprintln(os.Stderr, "graphlabel:", err)
		return 2
	}

	if err := writeLabelFiles(basename, props, data, codec, labels); err != nil {
		fmt.Fprintln(os.Stderr, "graphlabel:", err)
		return 2
	}
	return 0
}

func readIDs(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ids []int64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed id %q: %w", line, err)
		}
		ids = append(ids, id)
	}
	return ids, sc.Err()
}

// readLabels parses "src tgt label[,label...]" lines, remapping the
// opaque src/tgt ids through dense, and returns them keyed by the dense
// (src, tgt) pair. A comma in the label token builds an int list label;
// otherwise the label is a single scalar int.
func readLabels(r io.Reader, dense map[int64]int64) (map[arcKey]label.Label, error) {
	out := make(map[arcKey]label.Label)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			fmt.Fprintf(os.Stderr, "graphlabel: line %d: malformed entry, skipping: %q\n", lineNo, line)
			continue
		}
		srcID, err1 := strconv.ParseInt(fields[0], 10, 64)
		tgtID, err2 := strconv.ParseInt(fields[1], 10, 64)
		if err1 != nil || err2 != nil {
			fmt.Fprintf(os.Stderr, "graphlabel: line %d: malformed ids, skipping: %q\n", lineNo, line)
			continue
		}
		src, ok := dense[srcID]
		if !ok {
			return nil, fmt.Errorf("line %d: source id %d is not in %s", lineNo, srcID, "basename.ids")
		}
		tgt, ok := dense[tgtID]
		if !ok {
			return nil, fmt.Errorf("line %d: target id %d is not in %s", lineNo, tgtID, "basename.ids")
		}

		var l label.Label
		if strings.Contains(fields[2], ",") {
			var vals []int64
			for _, tok := range strings.Split(fields[2], ",") {
				v, err := strconv.ParseInt(tok, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: malformed label %q", lineNo, fields[2])
				}
				vals = append(vals, v)
			}
			l = label.NewIntListLabel("values", vals)
		} else {
			v, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: malformed label %q", lineNo, fields[2])
			}
			l = label.NewIntLabel("value", v)
		}
		out[arcKey{src, tgt}] = l
	}
	return out, sc.Err()
}

func writeLabelFiles(basename string, props graph.Properties, data []byte, codec label.Codec, labels map[arcKey]label.Label) error {
	sg := graph.NewSequentialGraph(props, data)
	w := bitio.NewWriter()
	var bitOffsets []int64
	for {
		u, succ, err := sg.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		bitOffsets = append(bitOffsets, w.BitLength())
		for _, v := range succ {
			l, ok := labels[arcKey{u, v}]
			if !ok {
				return fmt.Errorf("no label supplied for arc (%d, %d)", u, v)
			}
			if _, err := codec.ToBits(w, u, l); err != nil {
				return err
			}
		}
	}
	bitOffsets = append(bitOffsets, w.BitLength())

	if err := os.WriteFile(basename+".labels", w.Bytes(), 0o644); err != nil {
		return err
	}

	if codec.FixedWidth() < 0 {
		ow := bitio.NewWriter()
		graph.WriteOffsets(ow, bitOffsets)
		if err := os.WriteFile(basename+".labeloffsets", ow.Bytes(), 0o644); err != nil {
			return err
		}
	}

	pf, err := os.OpenFile(basename+".properties", os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer pf.Close()
	_, err = fmt.Fprintf(pf, "labelspec=%s\nunderlyinggraph=%s\n", codec.Spec(), basename)
	return err
}
