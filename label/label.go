// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package label

// Label is an immutable attribute bag attached to one arc. Every label
// produced by a given Codec exposes the same well-known key plus zero or
// more named keys, each with a declared primitive type. Calling the wrong
// accessor for a key's declared type is a TypeMismatch error rather than
// a zero value, so a caller cannot silently misread a label.
type Label interface {
	// WellKnownKey names the single attribute every label of this
	// codec's spec carries.
	WellKnownKey() string
	Keys() []string
	Int(key string) (int64, error)
	IntList(key string) ([]int64, error)
	Copy() Label
	Equal(other Label) bool
}

// intLabel is a Label with exactly one well-known int64 attribute,
// backing IntCodec and FixedWidthIntCodec.
type intLabel struct {
	key   string
	value int64
}

func (l intLabel) WellKnownKey() string { return l.key }
func (l intLabel) Keys() []string       { return []string{l.key} }

func (l intLabel) Int(key string) (int64, error) {
	if key != l.key {
		return 0, newErr(TypeMismatch, "no int attribute named "+key)
	}
	return l.value, nil
}

func (l intLabel) IntList(key string) ([]int64, error) {
	return nil, newErr(TypeMismatch, "attribute "+key+" is not an int list")
}

func (l intLabel) Copy() Label { return intLabel{key: l.key, value: l.value} }

func (l intLabel) Equal(other Label) bool {
	o, ok := other.(intLabel)
	return ok && o.key == l.key && o.value == l.value
}

// intListLabel is a Label with exactly one well-known int64-list
// attribute, backing IntListCodec.
type intListLabel struct {
	key    string
	values []int64
}

func (l intListLabel) WellKnownKey() string { return l.key }
func (l intListLabel) Keys() []string       { return []string{l.key} }

func (l intListLabel) Int(key string) (int64, error) {
	return 0, newErr(TypeMismatch, "attribute "+key+" is not a scalar int")
}

func (l intListLabel) IntList(key string) ([]int64, error) {
	if key != l.key {
		return nil, newErr(TypeMismatch, "no int-list attribute named "+key)
	}
	return l.values, nil
}

func (l intListLabel) Copy() Label {
	return intListLabel{key: l.key, values: append([]int64(nil), l.values...)}
}

func (l intListLabel) Equal(other Label) bool {
	o, ok := other.(intListLabel)
	if !ok || o.key != l.key || len(o.values) != len(l.values) {
		return false
	}
	for i := range l.values {
		if l.values[i] != o.values[i] {
			return false
		}
	}
	return true
}
