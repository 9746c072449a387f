// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package treeseq

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/treeseq/internal/bkpt"
)

// maxColumnBytes bounds a single column allocation. It exists only to
// turn a corrupt or hostile RecordSource's absurd declared length into a
// KindNoMemory error instead of an unrecoverable runtime panic: unlike
// the C malloc this design was modeled on, Go's make() does not return
// an error on failure, so this is the closest analogue available for
// the "free partial state; return NoMemory" policy spec.md §7 demands.
const maxColumnBytes = 1 << 34

// Store is the immutable bundle of coalescence records and the
// breakpoint index described in spec.md §3. It is created once, by
// CreateFromSource or Load (see tsio), and is safe for concurrent
// readers and concurrent diff.Iterators for the remainder of its
// lifetime.
type Store struct {
	sampleSize uint32
	numLoci    uint32

	left, right, parent []uint32
	children             [][2]uint32
	time                 []float64
	breakpoints          []uint32
}

// SampleSize returns n.
func (s *Store) SampleSize() uint32 { return s.sampleSize }

// NumLoci returns L.
func (s *Store) NumLoci() uint32 { return s.numLoci }

// NumRecords returns the number of coalescence records in the store.
func (s *Store) NumRecords() uint64 { return uint64(len(s.left)) }

// NumBreakpoints returns the length of the breakpoints vector.
func (s *Store) NumBreakpoints() uint64 { return uint64(len(s.breakpoints)) }

// RecordAt returns the i'th record, in sorted (by Left) order. It
// returns a KindOutOfBounds error if i >= NumRecords().
func (s *Store) RecordAt(i uint64) (Record, error) {
	if i >= s.NumRecords() {
		return Record{}, newError(KindOutOfBounds, fmt.Sprintf("record_at(%d): store has %d records", i, s.NumRecords()))
	}
	return Record{
		Left:     s.left[i],
		Right:    s.right[i],
		Parent:   s.parent[i],
		Children: s.children[i],
		Time:     s.time[i],
	}, nil
}

// CopyBreakpointsInto copies the store's breakpoints vector into buf,
// which must have length NumBreakpoints().
func (s *Store) CopyBreakpointsInto(buf []uint32) error {
	if uint64(len(buf)) != s.NumBreakpoints() {
		return newError(KindOutOfBounds, fmt.Sprintf("copy_breakpoints_into: buf has length %d, want %d", len(buf), s.NumBreakpoints()))
	}
	copy(buf, s.breakpoints)
	return nil
}

// NewStoreFromColumns builds a Store directly from already-sorted
// columns (breakpoints and records sorted by Left). It is the
// constructor tsio.Load uses once it has decoded every dataset from
// disk; CreateFromSource is the constructor a RecordSource-driven
// caller uses instead, since that path still needs to sort.
//
// The columns become owned by the returned Store; callers must not
// retain or mutate them afterward.
func NewStoreFromColumns(sampleSize, numLoci uint32, breakpoints []uint32, records []Record) (*Store, error) {
	n := uint64(len(records))
	left, err := safeMakeUint32(n)
	if err != nil {
		return nil, err
	}
	right, err := safeMakeUint32(n)
	if err != nil {
		return nil, err
	}
	parent, err := safeMakeUint32(n)
	if err != nil {
		return nil, err
	}
	children := make([][2]uint32, n)
	time := make([]float64, n)
	for i, r := range records {
		left[i] = r.Left
		right[i] = r.Right
		parent[i] = r.Parent
		children[i] = r.Children
		time[i] = r.Time
	}
	s := &Store{
		sampleSize:  sampleSize,
		numLoci:     numLoci,
		left:        left,
		right:       right,
		parent:      parent,
		children:    children,
		time:        time,
		breakpoints: breakpoints,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func safeMakeUint32(n uint64) ([]uint32, error) {
	if n*4 > maxColumnBytes {
		return nil, newError(KindNoMemory, fmt.Sprintf("refusing to allocate %d uint32 entries", n))
	}
	return make([]uint32, n), nil
}

// CreateFromSource builds a new Store by bulk-copying src: breakpoints
// are copied directly, records are copied into a scratch buffer and
// sorted once by Left ascending (tie-breaking order is unspecified but
// stable across repeated sorts of the same input, via sort.SliceStable),
// then scattered into the store's columns. src need not present records
// in sorted order.
func CreateFromSource(src RecordSource) (*Store, error) {
	sampleSize := src.SampleSize()
	numLoci := src.NumLoci()
	numBreakpoints := src.NumBreakpoints()
	numRecords := src.NumCoalescenceRecords()

	breakpoints, err := safeMakeUint32(numBreakpoints)
	if err != nil {
		return nil, err
	}
	if err := src.CopyBreakpointsInto(breakpoints); err != nil {
		return nil, newError(KindIO, err)
	}

	scratch := make([]Record, numRecords)
	if err := src.CopyRecordsInto(scratch); err != nil {
		return nil, newError(KindIO, err)
	}
	sort.SliceStable(scratch, func(i, j int) bool { return scratch[i].Left < scratch[j].Left })

	left, err := safeMakeUint32(numRecords)
	if err != nil {
		return nil, err
	}
	right, err := safeMakeUint32(numRecords)
	if err != nil {
		return nil, err
	}
	parent, err := safeMakeUint32(numRecords)
	if err != nil {
		return nil, err
	}
	children := make([][2]uint32, numRecords)
	time := make([]float64, numRecords)

	for i, r := range scratch {
		left[i] = r.Left
		right[i] = r.Right
		parent[i] = r.Parent
		children[i] = r.Children
		time[i] = r.Time
	}

	s := &Store{
		sampleSize:  sampleSize,
		numLoci:     numLoci,
		left:        left,
		right:       right,
		parent:      parent,
		children:    children,
		time:        time,
		breakpoints: breakpoints,
	}
	if err := s.Validate(); err != nil {
		log.Error.Printf("treeseq: CreateFromSource produced an invalid store: %v", err)
		return nil, err
	}
	return s, nil
}

// Validate checks the store-level invariants of spec.md §3 that don't
// require running the tree-diff iterator:
//
//  1. records are sorted by Left, ascending;
//  2. every record individually satisfies Record.Validate;
//  3. breakpoints is strictly increasing, starts at 0, and ends at
//     NumLoci; and every distinct Left and Right value among the
//     records appears somewhere in breakpoints (breakpoints may also
//     carry additional positions with no record edge of their own --
//     diff.Iterator's ALL_BREAKPOINTS mode reports those as Empty
//     steps, see S4 in its tests).
//
// The "defines a valid rooted binary tree at every coordinate" part of
// invariant 2 in spec.md §3 is checked by actually walking the trees,
// which requires component E; see diff.ValidateTrees.
func (s *Store) Validate() error {
	n := len(s.left)
	for i := 0; i < n; i++ {
		r, _ := s.RecordAt(uint64(i))
		if err := r.Validate(s.sampleSize); err != nil {
			return err
		}
		if i > 0 && s.left[i-1] > s.left[i] {
			return newError(KindFileFormat, fmt.Sprintf("records not sorted by left: left[%d]=%d > left[%d]=%d", i-1, s.left[i-1], i, s.left[i]))
		}
	}

	bp := s.breakpoints
	if len(bp) < 2 {
		return newError(KindFileFormat, fmt.Sprintf("breakpoints must have at least 2 entries, got %d", len(bp)))
	}
	if bp[0] != 0 {
		return newError(KindFileFormat, fmt.Sprintf("breakpoints[0] must be 0, got %d", bp[0]))
	}
	if bp[len(bp)-1] != s.numLoci {
		return newError(KindFileFormat, fmt.Sprintf("breakpoints[last] must be num_loci (%d), got %d", s.numLoci, bp[len(bp)-1]))
	}
	for i := 1; i < len(bp); i++ {
		if bp[i-1] >= bp[i] {
			return newError(KindFileFormat, fmt.Sprintf("breakpoints not strictly increasing at index %d: %d >= %d", i, bp[i-1], bp[i]))
		}
	}

	// s.left is non-decreasing (checked above), so a Cursor -- which only
	// supports a monotonically advancing query position -- covers every
	// Left membership check in amortized sub-binary-search time. Right
	// isn't sorted, so each Right check gets a fresh bkpt.Search instead.
	leftCursor := bkpt.NewCursor(bp)
	for i := 0; i < n; i++ {
		if idx := leftCursor.Advance(s.left[i]); idx == len(bp) || bp[idx] != s.left[i] {
			return newError(KindFileFormat, fmt.Sprintf("record endpoint %d is not a breakpoint", s.left[i]))
		}
		if idx := bkpt.Search(bp, s.right[i]); idx == len(bp) || bp[idx] != s.right[i] {
			return newError(KindFileFormat, fmt.Sprintf("record endpoint %d is not a breakpoint", s.right[i]))
		}
	}
	return nil
}
