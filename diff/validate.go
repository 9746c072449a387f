package diff

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/treeseq"
)

// ValidateTrees runs a full DistinctTrees iteration over store and
// checks the invariants that tie individual coalescence records into a
// valid sequence of rooted binary trees (spec.md §3 invariant 2):
// every local tree has exactly sample_size-1 live internal nodes, a
// node is never removed before it was added, and the spans partition
// [0, num_loci). Store.Validate cannot check any of this on its own
// since it requires walking the trees this package builds.
func ValidateTrees(store *treeseq.Store) (err error) {
	it := NewIterator(store, DistinctTrees)
	defer func() {
		if cerr := it.Close(); err == nil {
			err = cerr
		}
	}()

	n := int(store.SampleSize())
	live := make(map[uint32]bool, n)
	var totalSpan uint64

	for {
		step := it.Next()
		if step.Kind == StepEnd {
			break
		}
		for _, node := range step.Out {
			if !live[node.ID] {
				return errors.E(treeseq.KindFileFormat, fmt.Sprintf("tree diff: node %d removed but was not live", node.ID))
			}
			delete(live, node.ID)
		}
		for _, node := range step.In {
			if live[node.ID] {
				return errors.E(treeseq.KindFileFormat, fmt.Sprintf("tree diff: node %d added but was already live", node.ID))
			}
			live[node.ID] = true
		}
		totalSpan += uint64(step.Span)
		if n > 1 && len(live) != n-1 {
			return errors.E(treeseq.KindFileFormat, fmt.Sprintf("tree diff: local tree has %d live internal nodes, want %d", len(live), n-1))
		}
	}
	if totalSpan != uint64(store.NumLoci()) {
		return errors.E(treeseq.KindFileFormat, fmt.Sprintf("tree diff: spans sum to %d, want num_loci %d", totalSpan, store.NumLoci()))
	}
	return nil
}
