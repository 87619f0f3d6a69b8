// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package label

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dsnet/webgraph/bitio"
)

// Codec encodes and decodes one arc's label. FromBits/ToBits are given the
// arc's source node as context, so a codec may in principle vary its
// coding by source (none of the codecs below do, but the interface allows
// it). FixedWidth reports the codec's per-label bit width, or -1 if
// labels vary in length; a label graph uses this to decide whether it
// must load a stored offset index or can derive offsets from out-degrees.
type Codec interface {
	FromBits(r *bitio.Reader, source int64) (Label, error)
	ToBits(w *bitio.Writer, source int64, l Label) (int64, error)
	FixedWidth() int64
	Copy() Codec
	Spec() string
	// Key names the well-known attribute this codec's labels carry,
	// matching the key a caller must use to build a Label for ToBits
	// (e.g. via NewIntLabel).
	Key() string
}

// factory builds a Codec from the parenthesized argument list of a spec
// string, e.g. "fixedint" from "fixedint(32)" called with args ["32"].
type factory func(args []string) (Codec, error)

var registry = map[string]factory{}

func registerCodec(name string, f factory) { registry[name] = f }

func init() {
	registerCodec("int", func(args []string) (Codec, error) {
		key, err := arg0(args, "value")
		if err != nil {
			return nil, err
		}
		return &IntCodec{AttrKey: key}, nil
	})
	registerCodec("fixedint", func(args []string) (Codec, error) {
		if len(args) < 1 {
			return nil, newErr(InvalidSpec, "fixedint requires a width argument")
		}
		width, err := strconv.Atoi(args[0])
		if err != nil || width <= 0 || width > 63 {
			return nil, newErr(InvalidSpec, "fixedint width must be an integer in 1..63")
		}
		key := "value"
		if len(args) > 1 {
			key = args[1]
		}
		return &FixedWidthIntCodec{Width: uint(width), AttrKey: key}, nil
	})
	registerCodec("gamma", func(args []string) (Codec, error) {
		key, err := arg0(args, "value")
		if err != nil {
			return nil, err
		}
		return &GammaCodec{AttrKey: key}, nil
	})
	registerCodec("intlist", func(args []string) (Codec, error) {
		key, err := arg0(args, "values")
		if err != nil {
			return nil, err
		}
		return &IntListCodec{AttrKey: key}, nil
	})
}

func arg0(args []string, deflt string) (string, error) {
	if len(args) == 0 {
		return deflt, nil
	}
	return args[0], nil
}

// Parse reconstructs a Codec from a spec string of the form
// name(arg1,arg2,...). A bare name with no parentheses is equivalent to
// name() and uses every argument's default.
func Parse(spec string) (Codec, error) {
	name, args, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	f, ok := registry[name]
	if !ok {
		return nil, newErr(InvalidSpec, fmt.Sprintf("unknown label codec %q", name))
	}
	return f(args)
}

func splitSpec(spec string) (name string, args []string, err error) {
	spec = strings.TrimSpace(spec)
	open := strings.IndexByte(spec, '(')
	if open < 0 {
		return spec, nil, nil
	}
	if !strings.HasSuffix(spec, ")") {
		return "", nil, newErr(InvalidSpec, "unterminated argument list in "+spec)
	}
	name = spec[:open]
	inner := spec[open+1 : len(spec)-1]
	if inner == "" {
		return name, nil, nil
	}
	for _, a := range strings.Split(inner, ",") {
		args = append(args, strings.TrimSpace(a))
	}
	return name, args, nil
}

// IntCodec encodes a single signed int64 attribute with a variable-length
// signed gamma code, suited to small or skewed label values.
type IntCodec struct{ AttrKey string }

func (c *IntCodec) FromBits(r *bitio.Reader, source int64) (Label, error) {
	return intLabel{key: c.AttrKey, value: r.ReadSignedGamma()}, nil
}

func (c *IntCodec) ToBits(w *bitio.Writer, source int64, l Label) (int64, error) {
	v, err := l.Int(c.AttrKey)
	if err != nil {
		return 0, err
	}
	before := w.BitLength()
	w.WriteSignedGamma(v)
	return w.BitLength() - before, nil
}

func (c *IntCodec) FixedWidth() int64 { return -1 }
func (c *IntCodec) Copy() Codec       { return &IntCodec{AttrKey: c.AttrKey} }
func (c *IntCodec) Spec() string      { return fmt.Sprintf("int(%s)", c.AttrKey) }
func (c *IntCodec) Key() string       { return c.AttrKey }

// FixedWidthIntCodec encodes an unsigned integer attribute in exactly
// Width bits, suited to a bounded-range attribute (e.g. a 0..255 edge
// weight) where O(1) offset derivation from out-degrees matters more than
// bit-minimal coding.
type FixedWidthIntCodec struct {
	Width   uint
	AttrKey string
}

func (c *FixedWidthIntCodec) FromBits(r *bitio.Reader, source int64) (Label, error) {
	return intLabel{key: c.AttrKey, value: int64(r.ReadInt(c.Width))}, nil
}

func (c *FixedWidthIntCodec) ToBits(w *bitio.Writer, source int64, l Label) (int64, error) {
	v, err := l.Int(c.AttrKey)
	if err != nil {
		return 0, err
	}
	if v < 0 || (c.Width < 64 && v >= int64(1)<<c.Width) {
		return 0, newErr(InvalidFormat, fmt.Sprintf("value %d does not fit in %d bits", v, c.Width))
	}
	w.WriteInt(uint64(v), c.Width)
	return int64(c.Width), nil
}

func (c *FixedWidthIntCodec) FixedWidth() int64 { return int64(c.Width) }
func (c *FixedWidthIntCodec) Copy() Codec        { return &FixedWidthIntCodec{Width: c.Width, AttrKey: c.AttrKey} }
func (c *FixedWidthIntCodec) Spec() string {
	return fmt.Sprintf("fixedint(%d,%s)", c.Width, c.AttrKey)
}
func (c *FixedWidthIntCodec) Key() string { return c.AttrKey }

// GammaCodec encodes a single non-negative int64 attribute with a plain
// gamma code, for counts and other always-positive quantities.
type GammaCodec struct{ AttrKey string }

func (c *GammaCodec) FromBits(r *bitio.Reader, source int64) (Label, error) {
	return intLabel{key: c.AttrKey, value: int64(r.ReadGamma())}, nil
}

func (c *GammaCodec) ToBits(w *bitio.Writer, source int64, l Label) (int64, error) {
	v, err := l.Int(c.AttrKey)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, newErr(InvalidFormat, "gamma codec requires a non-negative value")
	}
	before := w.BitLength()
	w.WriteGamma(uint64(v))
	return w.BitLength() - before, nil
}

func (c *GammaCodec) FixedWidth() int64 { return -1 }
func (c *GammaCodec) Copy() Codec       { return &GammaCodec{AttrKey: c.AttrKey} }
func (c *GammaCodec) Spec() string      { return fmt.Sprintf("gamma(%s)", c.AttrKey) }
func (c *GammaCodec) Key() string        { return c.AttrKey }

// IntListCodec encodes a variable-length list of int64 values: a gamma
// count followed by the values as signed gamma gaps from zero, in order.
type IntListCodec struct{ AttrKey string }

func (c *IntListCodec) FromBits(r *bitio.Reader, source int64) (Label, error) {
	n := r.ReadGamma()
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = r.ReadSignedGamma()
	}
	return intListLabel{key: c.AttrKey, values: vals}, nil
}

func (c *IntListCodec) ToBits(w *bitio.Writer, source int64, l Label) (int64, error) {
	vals, err := l.IntList(c.AttrKey)
	if err != nil {
		return 0, err
	}
	before := w.BitLength()
	w.WriteGamma(uint64(len(vals)))
	for _, v := range vals {
		w.WriteSignedGamma(v)
	}
	return w.BitLength() - before, nil
}

func (c *IntListCodec) FixedWidth() int64 { return -1 }
func (c *IntListCodec) Copy() Codec       { return &IntListCodec{AttrKey: c.AttrKey} }
func (c *IntListCodec) Spec() string      { return fmt.Sprintf("intlist(%s)", c.AttrKey) }
func (c *IntListCodec) Key() string       { return c.AttrKey }

// NewIntLabel returns a Label carrying a single scalar int attribute
// under key, for use with IntCodec, FixedWidthIntCodec, or GammaCodec.
func NewIntLabel(key string, value int64) Label { return intLabel{key: key, value: value} }

// NewIntListLabel returns a Label carrying a single int-list attribute
// under key, for use with IntListCodec.
func NewIntListLabel(key string, values []int64) Label {
	return intListLabel{key: key, values: append([]int64(nil), values...)}
}
