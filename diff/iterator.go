// Package diff implements the tree-diff iterator: a streaming walk over
// a *treeseq.Store that emits, for each maximal interval over which the
// local tree is constant, the set of internal nodes that left and
// entered the tree since the previous interval.
//
// The iterator is single-threaded and non-reentrant: one goroutine
// drives Next to completion, and after Next panics (an arena
// exhaustion, see internal/arena) the iterator must be discarded rather
// than stepped again. It owns three bounded arenas (tree nodes, expiry
// lists, and the ordered-map nodes that index those lists by expiry
// coordinate) and releases all three, deterministically, from Close.
package diff

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/treeseq"
	"github.com/grailbio/treeseq/internal/arena"
	"github.com/grailbio/treeseq/internal/ordmap"
)

// Mode selects which of the two stepping contracts Next follows.
type Mode int

const (
	// DistinctTrees emits exactly one step per maximal interval over
	// which the local tree is constant.
	DistinctTrees Mode = iota
	// AllBreakpoints emits one step per consecutive pair of the store's
	// breakpoints, some of which carry no tree change (Empty).
	AllBreakpoints
)

// Node is the caller-visible view of one internal node entering or
// leaving the local tree. It is a plain value: copying it out of a
// StepResult's Out/In slice is the only way to retain it past the next
// call to Next, since StepResult's Out and In slices are reused.
type Node struct {
	ID       uint32
	Children [2]uint32
	Time     float64
}

// StepKind tags which variant of a StepResult is populated.
type StepKind int

const (
	// StepEnd marks the end of iteration; no more steps follow.
	StepEnd StepKind = iota
	// StepTree carries a real tree transition: Span, Out and In are
	// meaningful.
	StepTree
	// StepEmpty carries only Span; it is only produced in AllBreakpoints
	// mode, for a breakpoint pair that doesn't coincide with a tree
	// change.
	StepEmpty
)

// StepResult is the result of one call to Iterator.Next. Out and In
// alias the iterator's internal scratch buffers and are valid only
// until the next call to Next.
type StepResult struct {
	Kind StepKind
	Span uint32
	Out  []Node
	In   []Node
}

// treeNode is the arena-backed payload of one (id, children, time)
// triple, doubled per spec.md's design: one copy lives on nodesIn until
// the next step, the other lives in an active_nodes expiry list until
// its record's right coordinate is reached.
type treeNode struct {
	id       uint32
	children [2]uint32
	time     float64
	next     arena.Handle
}

// list is an intrusive singly-linked chain of treeNode handles.
type list struct {
	head, tail arena.Handle
}

// activeEntry is the payload an active_nodes map node carries: the
// handle of the expiry list, plus the map-node pool handle consumed to
// track this entry's own budget.
type activeEntry struct {
	list    arena.Handle
	mapNode arena.Handle
}

// Iterator streams local-tree deltas over a borrowed *treeseq.Store. It
// is constructed by NewIterator and must be closed with Close once the
// caller is done, whether or not Next reached StepEnd.
type Iterator struct {
	store *treeseq.Store
	mode  Mode

	treeNodes    []treeNode
	treeNodePool *arena.Pool

	lists    []list
	listPool *arena.Pool

	mapNodePool *arena.Pool
	activeNodes ordmap.Tree

	currentLeft     uint32
	nextRecordIndex uint64
	lastConsumedRight uint32

	nodesInHead, nodesInTail arena.Handle

	// pendingOut is the active_nodes entry most recently published as
	// Out. Its arena-backed list must stay readable until the next
	// call, so its actual release is deferred to the start of that
	// call (or to Close, if there is no next call).
	pendingOut *ordmap.Node

	distinctDone bool
	closed       bool

	outBuf []Node
	inBuf  []Node

	// AllBreakpoints-only state.
	breakpoints    []uint32
	bkptIdx        int
	nextBreakpoint uint32
}

// NewIterator constructs an Iterator over store in the given mode. The
// store is borrowed for the iterator's lifetime; NewIterator never
// mutates it.
func NewIterator(store *treeseq.Store, mode Mode) *Iterator {
	n := int(store.SampleSize())
	if n < 1 {
		n = 1
	}
	treeNodeCap := 3 * n
	listCap := n
	mapNodeCap := n

	it := &Iterator{
		store:        store,
		mode:         mode,
		treeNodes:    make([]treeNode, treeNodeCap+1),
		treeNodePool: arena.NewPool(treeNodeCap),
		lists:        make([]list, listCap+1),
		listPool:     arena.NewPool(listCap),
		mapNodePool:  arena.NewPool(mapNodeCap),
	}
	if mode == AllBreakpoints {
		bp := make([]uint32, store.NumBreakpoints())
		if err := store.CopyBreakpointsInto(bp); err != nil {
			log.Panicf("diff.NewIterator: %v", err)
		}
		it.breakpoints = bp
	}
	return it
}

// Next advances the iterator and returns the next StepResult. Calling
// Next after it has returned a StepEnd result, or after the iterator
// has been closed, returns StepEnd again.
//
// Next panics if an arena is exhausted; per spec this indicates a
// sizing bug (the pools are sized from the sample size at construction
// time), not a recoverable runtime condition, so the iterator must be
// discarded rather than stepped again.
func (it *Iterator) Next() StepResult {
	if it.closed {
		return StepResult{Kind: StepEnd}
	}
	if it.mode == AllBreakpoints {
		return it.nextAllBreakpoints()
	}
	return it.nextDistinctTrees()
}

func (it *Iterator) nextDistinctTrees() StepResult {
	if it.distinctDone {
		return StepResult{Kind: StepEnd}
	}
	numRecords := it.store.NumRecords()
	if numRecords == 0 {
		it.distinctDone = true
		return StepResult{Kind: StepEnd}
	}

	if it.currentLeft != 0 {
		it.retire()
	}

	for it.nextRecordIndex < numRecords {
		r, err := it.store.RecordAt(it.nextRecordIndex)
		if err != nil {
			log.Panicf("diff: RecordAt(%d): %v", it.nextRecordIndex, err)
		}
		if r.Left != it.currentLeft {
			break
		}
		it.absorb(r)
		it.nextRecordIndex++
	}

	var span uint32
	var newLeft uint32
	if it.nextRecordIndex < numRecords {
		cr, err := it.store.RecordAt(it.nextRecordIndex)
		if err != nil {
			log.Panicf("diff: RecordAt(%d): %v", it.nextRecordIndex, err)
		}
		span = cr.Left - it.currentLeft
		newLeft = cr.Left
	} else {
		span = it.lastConsumedRight - it.currentLeft
		newLeft = it.store.NumLoci()
		it.distinctDone = true
	}

	it.inBuf = it.snapshotInto(it.inBuf, it.nodesInHead)
	out := it.outBuf
	it.currentLeft = newLeft

	return StepResult{Kind: StepTree, Span: span, Out: out, In: it.inBuf}
}

func (it *Iterator) nextAllBreakpoints() StepResult {
	bp := it.breakpoints
	if it.bkptIdx >= len(bp)-1 {
		return StepResult{Kind: StepEnd}
	}
	start := bp[it.bkptIdx]
	end := bp[it.bkptIdx+1]
	span := end - start
	it.bkptIdx++

	if start != it.nextBreakpoint {
		return StepResult{Kind: StepEmpty, Span: span}
	}

	step := it.nextDistinctTrees()
	if step.Kind != StepTree {
		// The underlying record stream has nothing left to contribute
		// (or never had anything to begin with); no later breakpoint can
		// coincide with a real transition either, so report every
		// remaining pair as Empty without touching it again.
		it.nextBreakpoint = it.store.NumLoci() + 1
		return StepResult{Kind: StepEmpty, Span: span}
	}
	it.nextBreakpoint += step.Span
	return StepResult{Kind: StepTree, Span: span, Out: step.Out, In: step.In}
}

// retire frees the previous step's nodesIn chain and, if the previous
// step also published an Out list, releases that list now that its
// one-call validity window has elapsed. It then looks up this step's
// own Out list, if any, and defers its release to the next call.
func (it *Iterator) retire() {
	it.freeChain(it.nodesInHead)
	it.nodesInHead, it.nodesInTail = 0, 0

	if it.pendingOut != nil {
		it.freeActiveEntry(it.pendingOut)
		it.pendingOut = nil
	}

	it.outBuf = it.outBuf[:0]
	if node := it.activeNodes.Search(it.currentLeft); node != nil {
		e := node.Item.(activeEntry)
		it.outBuf = it.snapshotInto(it.outBuf, it.lists[e.list].head)
		it.pendingOut = node
	}
}

// absorb allocates the two arena copies of r's (id, children, time)
// triple -- one for nodesIn, one for the active_nodes expiry list keyed
// by r.Right -- per spec.md's duplicate-node design.
func (it *Iterator) absorb(r treeseq.Record) {
	h1, ok := it.treeNodePool.Alloc()
	if !ok {
		log.Panicf("diff: tree-node arena exhausted absorbing record (left=%d right=%d parent=%d)", r.Left, r.Right, r.Parent)
	}
	it.treeNodes[h1] = treeNode{id: r.Parent, children: r.Children, time: r.Time}
	it.appendChain(&it.nodesInHead, &it.nodesInTail, h1)

	node, isNewEntry := it.activeNodes.Insert(r.Right, nil)
	var lh arena.Handle
	if isNewEntry {
		var allocOK bool
		lh, allocOK = it.listPool.Alloc()
		if !allocOK {
			log.Panicf("diff: list arena exhausted at expiry coordinate %d", r.Right)
		}
		it.lists[lh] = list{}
		mh, allocOK := it.mapNodePool.Alloc()
		if !allocOK {
			log.Panicf("diff: map-node arena exhausted at expiry coordinate %d", r.Right)
		}
		node.Item = activeEntry{list: lh, mapNode: mh}
	} else {
		lh = node.Item.(activeEntry).list
	}

	h2, ok := it.treeNodePool.Alloc()
	if !ok {
		log.Panicf("diff: tree-node arena exhausted absorbing record (left=%d right=%d parent=%d)", r.Left, r.Right, r.Parent)
	}
	it.treeNodes[h2] = treeNode{id: r.Parent, children: r.Children, time: r.Time}
	l := it.lists[lh]
	it.appendChain(&l.head, &l.tail, h2)
	it.lists[lh] = l

	it.lastConsumedRight = r.Right
}

func (it *Iterator) appendChain(head, tail *arena.Handle, h arena.Handle) {
	it.treeNodes[h].next = 0
	if *head == 0 {
		*head = h
	} else {
		it.treeNodes[*tail].next = h
	}
	*tail = h
}

func (it *Iterator) freeChain(head arena.Handle) {
	for h := head; h != 0; {
		next := it.treeNodes[h].next
		it.treeNodePool.Free(h)
		h = next
	}
}

// freeActiveEntry releases everything owned by one active_nodes entry:
// its tree-node chain, its list-pool slot, the map node itself, and the
// map-node pool slot that tracked it.
//
// Removing the map node via repeated Head() (as Close does) rather than
// a Head/Next walk matters here: ordmap.Unlink's delete-by-swap
// implementation overwrites a two-children node's key/Item with its
// successor's before splicing the successor out, which would corrupt a
// successor pointer captured before the call.
func (it *Iterator) freeActiveEntry(n *ordmap.Node) {
	e := n.Item.(activeEntry)
	it.freeChain(it.lists[e.list].head)
	it.listPool.Free(e.list)
	it.activeNodes.Unlink(n)
	it.mapNodePool.Free(e.mapNode)
}

func (it *Iterator) snapshotInto(buf []Node, head arena.Handle) []Node {
	buf = buf[:0]
	for h := head; h != 0; h = it.treeNodes[h].next {
		tn := it.treeNodes[h]
		buf = append(buf, Node{ID: tn.id, Children: tn.children, Time: tn.time})
	}
	return buf
}

// Close releases every arena-backed resource the iterator still holds,
// including any nodesIn chain, deferred Out list, and active_nodes
// entries that never reached their expiry coordinate because iteration
// stopped first. It is safe to call more than once and safe to call
// after Next has returned StepEnd.
func (it *Iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true

	it.freeChain(it.nodesInHead)
	it.nodesInHead, it.nodesInTail = 0, 0

	if it.pendingOut != nil {
		it.freeActiveEntry(it.pendingOut)
		it.pendingOut = nil
	}

	for {
		n := it.activeNodes.Head()
		if n == nil {
			break
		}
		it.freeActiveEntry(n)
	}
	return nil
}

// ArenaBalanced reports whether every one of the three pools (tree
// nodes, lists and map nodes) has freed every handle it allocated.
// Exposed for tests exercising spec.md §8's arena-balance property.
func (it *Iterator) ArenaBalanced() bool {
	return it.treeNodePool.Empty() && it.listPool.Empty() && it.mapNodePool.Empty()
}
