// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package label

import "testing"

func TestUnionGraphThreeCases(t *testing.T) {
	// left:  0 -> {1:10, 2:20}
	// right: 0 -> {2:99, 3:30}
	// union: 0 -> {1:10 (left only), 2:merge(20,99)=119, 3:30 (right only)}
	left := buildLabelGraph(t, [][]int64{{1, 2}}, [][]int64{{10, 20}})
	right := buildLabelGraph(t, [][]int64{{2, 3}}, [][]int64{{99, 30}})

	merge := func(a, b Label) Label {
		av, _ := a.Int("weight")
		bv, _ := b.Int("weight")
		return NewIntLabel("weight", av+bv)
	}
	u := Union(left, right, merge)

	succ, labels, err := u.LabeledSuccessors(0)
	if err != nil {
		t.Fatalf("LabeledSuccessors: %v", err)
	}
	wantSucc := []int64{1, 2, 3}
	wantWeight := []int64{10, 119, 30}
	if len(succ) != len(wantSucc) {
		t.Fatalf("got %v, want %v", succ, wantSucc)
	}
	for i := range wantSucc {
		if succ[i] != wantSucc[i] {
			t.Errorf("succ[%d] = %d, want %d", i, succ[i], wantSucc[i])
		}
		got, _ := labels[i].Int("weight")
		if got != wantWeight[i] {
			t.Errorf("weight[%d] = %d, want %d", i, got, wantWeight[i])
		}
	}
}

func TestUnionGraphOutOfRangeNode(t *testing.T) {
	left := buildLabelGraph(t, [][]int64{{1}}, [][]int64{{1}})
	right := buildLabelGraph(t, [][]int64{{1}}, [][]int64{{2}})
	u := Union(left, right, func(a, b Label) Label { return a })

	succ, _, err := u.LabeledSuccessors(5)
	if err != nil {
		t.Fatalf("LabeledSuccessors: %v", err)
	}
	if succ != nil {
		t.Errorf("got %v, want nil", succ)
	}
}
