// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command graphconv reads an arc-text stream (or a gzip/xz-compressed
// one) and builds a compressed graph's on-disk files: B.graph,
// B.offsets, B.properties, and B.ids. With -export it runs in reverse,
// decoding an existing B.* graph back to arc text on stdout.
//
// Example usage:
//	$ graphconv -symmetrize -window-size 10 webgraph < arcs.txt
//	$ graphconv -export webgraph > arcs.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/dsnet/webgraph/batch"
	"github.com/dsnet/webgraph/bitio"
	"github.com/dsnet/webgraph/graph"
)

// compFlags collects repeated -comp field=code flags into a Flags value,
// starting from graph.DefaultFlags.
type compFlags struct {
	flags graph.Flags
	set   []string
}

func (c *compFlags) String() string { return strings.Join(c.set, ",") }

func (c *compFlags) Set(s string) error {
	field, codeName, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected field=code, got %q", s)
	}
	var code graph.Code
	switch strings.ToUpper(codeName) {
	case "GAMMA":
		code = graph.CodeGamma
	case "DELTA":
		code = graph.CodeDelta
	case "ZETA":
		code = graph.CodeZeta
	default:
		return fmt.Errorf("unknown code %q", codeName)
	}
	switch strings.ToUpper(field) {
	case "OUTDEGREES":
		c.flags.Outdegrees = code
	case "BLOCKS":
		c.flags.Blocks = code
	case "REFERENCES":
		c.flags.References = code
	case "RESIDUALS":
		c.flags.Residuals = code
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	c.set = append(c.set, s)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	comp := &compFlags{flags: graph.DefaultFlags}
	flag.Var(comp, "comp", "per-field code override, field=code (e.g. references=delta); repeatable")

	tempDir := flag.String("temp-dir", "", "directory for batch temp files (default: OS temp dir)")
	batchSize := flag.Int("batch-size", 1<<20, "maximum arcs buffered per batch before flushing")
	symmetrize := flag.Bool("symmetrize", false, "emit the reverse of every arc")
	noLoops := flag.Bool("no-loops", false, "drop arcs whose source equals its target")
	transpose := flag.Bool("transpose", false, "build the transpose graph directly")
	compressTemp := flag.Bool("compress-temp", false, "xz-compress batch temp files")
	gzippedInput := flag.Bool("gzipped-input", false, "arc text is gzip-compressed")
	xzInput := flag.Bool("xz-input", false, "arc text is xz-compressed")
	input := flag.String("input", "", "arc text file (default: standard input)")
	windowSize := flag.Int("window-size", 0, "reference window W (default: specification default)")
	maxRefCount := flag.Int("max-ref-count", 0, "maximum reference chain length R (default: specification default)")
	minIntervalLength := flag.Int("min-interval-length", 0, "minimum interval length L (default: specification default)")
	zetaK := flag.Int("zeta-k", 0, "zeta code parameter k (default: specification default)")
	export := flag.Bool("export", false, "reverse direction: decode an existing B.* graph to arc text on stdout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: graphconv [flags] basename")
		return 1
	}
	basename := flag.Arg(0)

	if *export {
		if err := exportArcs(basename, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "graphconv:", err)
			return 2
		}
		return 0
	}

	var r io.Reader = os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			fmt.Fprintln(os.Stderr, "graphconv:", err)
			return 1
		}
		defer f.Close()
		r = f
	}
	switch {
	case *gzippedInput:
		gr, err := gzip.NewReader(r)
		if err != nil {
			fmt.Fprintln(os.Stderr, "graphconv:", err)
			return 1
		}
		defer gr.Close()
		r = gr
	case *xzInput:
		xr, err := xz.NewReader(r)
		if err != nil {
			fmt.Fprintln(os.Stderr, "graphconv:", err)
			return 1
		}
		r = xr
	}

	props := graph.DefaultProperties()
	if *windowSize > 0 {
		props.WindowSize = *windowSize
	}
	if *maxRefCount > 0 {
		props.MaxRefCount = *maxRefCount
	}
	if *minIntervalLength > 0 {
		props.MinIntervalLength = *minIntervalLength
	}
	if *zetaK > 0 {
		props.ZetaK = *zetaK
	}
	props.Flags = comp.flags

	p := batch.NewPipeline(batch.Config{
		TempDir:      *tempDir,
		BatchSize:    *batchSize,
		Symmetrize:   *symmetrize,
		NoLoops:      *noLoops,
		Transpose:    *transpose,
		CompressTemp: *compressTemp,
		Properties:   props,
	})

	fmt.Fprintln(os.Stderr, batch.DiagBanner())
	if err := readArcs(r, p); err != nil {
		fmt.Fprintln(os.Stderr, "graphconv:", err)
		p.Abort()
		return 2
	}

	if _, err := p.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "graphconv:", err)
		return 2
	}

	if err := writeGraphFiles(basename, p); err != nil {
		fmt.Fprintln(os.Stderr, "graphconv:", err)
		return 2
	}

	fmt.Fprintf(os.Stderr, "graphconv: %d nodes, %d arcs\n", p.Properties().Nodes, p.Properties().Arcs)
	return 0
}

// readArcs parses the specification's arc-text format: whitespace-
// separated "src tgt [label]" lines, '#' comments, blank lines ignored.
// A malformed line is warned about and skipped rather than aborting the
// whole run; graphconv itself discards any label token (cmd/graphlabel
// builds the labelled overlay).
func readArcs(r io.Reader, p *batch.Pipeline) error {
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
		if len(fields) < 2 {
			fmt.Fprintf(os.Stderr, "graphconv: line %d: malformed arc, skipping: %q\n", lineNo, line)
			continue
		}
		src, err1 := strconv.ParseInt(fields[0], 10, 64)
		tgt, err2 := strconv.ParseInt(fields[1], 10, 64)
		if err1 != nil || err2 != nil {
			fmt.Fprintf(os.Stderr, "graphconv: line %d: malformed arc, skipping: %q\n", lineNo, line)
			continue
		}
		if len(fields) > 2 {
			fmt.Fprintf(os.Stderr, "graphconv: line %d: warning: trailing fields discarded\n", lineNo)
		}
		if err := p.PushArc(src, tgt); err != nil {
			return err
		}
	}
	return sc.Err()
}

// exportArcs reverses graphconv's usual direction: it decodes an existing
// B.* graph and writes its arcs as text, remapping each dense node index
// back to the original opaque id recorded in B.ids.
func exportArcs(basename string, w io.Writer) error {
	pf, err := os.Open(basename + ".properties")
	if err != nil {
		return err
	}
	props, err := graph.ReadProperties(pf)
	pf.Close()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(basename + ".graph")
	if err != nil {
		return err
	}
	ids, err := readIDs(basename + ".ids")
	if err != nil {
		return err
	}
	if int64(len(ids)) != props.Nodes {
		return fmt.Errorf("%s.ids has %d entries, properties claim %d nodes", basename, len(ids), props.Nodes)
	}

	bw := bufio.NewWriter(w)
	sg := graph.NewSequentialGraph(props, data)
	for {
		u, succ, err := sg.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		for _, v := range succ {
			if _, err := fmt.Fprintf(bw, "%d %d\n", ids[u], ids[v]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// readIDs parses the plain decimal id list written by writeGraphFiles.
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

func writeGraphFiles(basename string, p *batch.Pipeline) error {
	if err := os.WriteFile(basename+".graph", p.Data(), 0o644); err != nil {
		return err
	}

	ow := bitio.NewWriter()
	graph.WriteOffsets(ow, p.Offsets())
	if err := os.WriteFile(basename+".offsets", ow.Bytes(), 0o644); err != nil {
		return err
	}

	pf, err := os.Create(basename + ".properties")
	if err != nil {
		return err
	}
	defer pf.Close()
	if _, err := p.Properties().WriteTo(pf); err != nil {
		return err
	}

	var sb strings.Builder
	for _, id := range p.IDs() {
		fmt.Fprintln(&sb, id)
	}
	return os.WriteFile(basename+".ids", []byte(sb.String()), 0o644)
}
