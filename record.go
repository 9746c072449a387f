// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package treeseq stores and streams the genealogical output of a
// coalescent simulation: for a sample of n haploid individuals across a
// linear chromosome of L discrete loci, it retains the sequence of local
// genealogies ("trees") that describe ancestry along the chromosome.
//
// The package itself holds the record and store types (components C and
// D in the design); the streaming tree-diff algorithm (component E)
// lives in the sibling diff package, which borrows a *Store for its
// lifetime.
package treeseq

import "fmt"

// Record is a coalescence record: an assertion that, over the half-open
// genomic interval [Left, Right), the internal node Parent exists with
// children Children[0] and Children[1], formed at continuous time Time.
type Record struct {
	Left, Right uint32
	Parent      uint32
	Children    [2]uint32
	Time        float64
}

// Validate checks the invariants spec.md §3 places on a single record
// given a sample size. It does not check cross-record invariants (sort
// order, the well-formed-local-tree property); those are store-level
// checks performed by Store.Validate.
func (r Record) Validate(sampleSize uint32) error {
	if !(r.Left < r.Right) {
		return newError(KindFileFormat, fmt.Sprintf("record %+v: left must be < right", r))
	}
	if r.Children[0] == r.Children[1] {
		return newError(KindFileFormat, fmt.Sprintf("record %+v: children must differ", r))
	}
	if r.Parent <= r.Children[0] || r.Parent <= r.Children[1] {
		return newError(KindFileFormat, fmt.Sprintf("record %+v: parent must exceed both children", r))
	}
	if r.Parent <= sampleSize {
		return newError(KindFileFormat, fmt.Sprintf("record %+v: parent id must be an internal node (> sample size %d)", r, sampleSize))
	}
	if !(r.Time > 0) {
		return newError(KindFileFormat, fmt.Sprintf("record %+v: time must be > 0", r))
	}
	return nil
}
