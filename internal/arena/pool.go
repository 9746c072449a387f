// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package arena implements a fixed-capacity pool of integer handles with
// O(1) allocation and release. It is the typed-object analogue of
// encoding/pam's bump arena (unsafearena.go): where that arena only ever
// grows until the whole buffer is reset at once, this one supports
// freeing individual slots, which the tree-diff iterator needs since
// tree nodes come and go one record at a time.
//
// Pool does not store objects. A caller pairs a *Pool with its own
// backing slice (e.g. []treeNode) indexed by Handle, so the same Pool
// implementation serves every object kind the iterator needs.
package arena

// Handle identifies a slot in a Pool. The zero Handle is never returned
// by Alloc; callers may use it as a "no node" sentinel in their own
// backing slice (slot 0 is reserved for that purpose and is never
// allocated).
type Handle uint32

// Pool manages handles [1, capacity] with an intrusive free-list stored
// as a plain slice stack.
type Pool struct {
	free   []Handle
	allocs int
	frees  int
}

// NewPool returns a Pool over handles [1, capacity].
func NewPool(capacity int) *Pool {
	free := make([]Handle, capacity)
	for i := 0; i < capacity; i++ {
		// Push in descending order so Alloc() hands out handle 1 first;
		// cosmetic, but makes traces easier to read.
		free[i] = Handle(capacity - i)
	}
	return &Pool{free: free}
}

// Alloc returns a fresh handle, or ok=false if the pool is exhausted.
func (p *Pool) Alloc() (h Handle, ok bool) {
	if len(p.free) == 0 {
		return 0, false
	}
	n := len(p.free) - 1
	h = p.free[n]
	p.free = p.free[:n]
	p.allocs++
	return h, true
}

// Free returns h to the pool. Freeing a handle that was never allocated,
// or freeing it twice, silently corrupts the free-list; callers are
// expected to free each allocated handle exactly once, as the iterator
// does.
func (p *Pool) Free(h Handle) {
	p.free = append(p.free, h)
	p.frees++
}

// Empty reports whether every handle ever allocated has since been
// freed.
func (p *Pool) Empty() bool {
	return p.allocs == p.frees
}

// Allocs returns the total number of successful Alloc calls.
func (p *Pool) Allocs() int { return p.allocs }

// Frees returns the total number of Free calls.
func (p *Pool) Frees() int { return p.frees }
