// Package bkpt provides a cursor for walking a sorted slice of
// monotonically-increasing breakpoint positions.
//
// It is adapted from grailbio-bio's interval/endpoint_index.go, which
// represents an interval-union as a sorted []int32 of endpoints and
// provides ExpsearchPosType to relocate a cursor into it in better than
// binary-search time when the target position only ever increases a
// little between calls. That is exactly the access pattern of the
// tree-diff iterator's ALL_BREAKPOINTS mode, which advances
// current_breakpoint_index by one position per call, and of the store's
// invariant-3 check, which probes the breakpoints slice once per record
// boundary in left-to-right order.
package bkpt

import "sort"

// Pos is the genomic coordinate type used throughout this package.
type Pos = uint32

// Search returns the index of the first element of a that is >= x, or
// len(a) if none is.
func Search(a []Pos, x Pos) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// Cursor tracks a position into a sorted, non-decreasing-over-time
// sequence of queries against a fixed breakpoints slice.
type Cursor struct {
	breakpoints []Pos
	idx         int
}

// NewCursor returns a Cursor over breakpoints, initially positioned at
// index 0.
func NewCursor(breakpoints []Pos) Cursor {
	return Cursor{breakpoints: breakpoints}
}

// Index returns the cursor's current index into the breakpoints slice.
func (c *Cursor) Index() int { return c.idx }

// Advance moves the cursor to the index of the first breakpoint >= x,
// where x must be >= the position passed to the previous Advance call
// (or 0, for the first call). It uses exponential search from the
// cursor's current index, which is faster than a fresh binary search
// when x has only advanced a short distance since the last call -- the
// common case for Store.Validate's left-to-right walk over records.
func (c *Cursor) Advance(x Pos) int {
	a := c.breakpoints
	startIdx := c.idx
	endIdx := len(a)
	idx := startIdx
	incr := 1
	for idx < endIdx {
		if a[idx] >= x {
			endIdx = idx
			break
		}
		startIdx = idx + 1
		idx += incr
		incr *= 2
	}
	for startIdx < endIdx {
		mid := int(uint(startIdx+endIdx) >> 1)
		if a[mid] >= x {
			endIdx = mid
		} else {
			startIdx = mid + 1
		}
	}
	c.idx = startIdx
	return startIdx
}
