package diff_test

import (
	"sort"
	"testing"

	"github.com/grailbio/treeseq"
	"github.com/grailbio/treeseq/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []diff.Node) []uint32 {
	out := make([]uint32, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func buildStore(t *testing.T, sample, loci uint32, breakpoints []uint32, records []treeseq.Record) *treeseq.Store {
	t.Helper()
	st, err := treeseq.CreateFromSource(&treeseq.MemRecordSource{
		Sample:      sample,
		Loci:        loci,
		Breakpoints: breakpoints,
		Records:     records,
	})
	require.NoError(t, err)
	return st
}

// s2Records is the n=4, L=10 scenario used by S2-S4 in spec.md §8.
func s2Records() []treeseq.Record {
	return []treeseq.Record{
		{Left: 0, Right: 4, Parent: 5, Children: [2]uint32{1, 2}, Time: 0.5},
		{Left: 0, Right: 10, Parent: 6, Children: [2]uint32{3, 4}, Time: 0.8},
		{Left: 4, Right: 10, Parent: 7, Children: [2]uint32{1, 2}, Time: 0.6},
		{Left: 0, Right: 4, Parent: 8, Children: [2]uint32{5, 6}, Time: 1.0},
		{Left: 4, Right: 10, Parent: 9, Children: [2]uint32{7, 6}, Time: 1.1},
	}
}

func TestDistinctTreesSingleStep(t *testing.T) {
	// S1: three records all spanning the whole chromosome collapse into
	// one step.
	records := []treeseq.Record{
		{Left: 0, Right: 10, Parent: 5, Children: [2]uint32{1, 2}, Time: 0.5},
		{Left: 0, Right: 10, Parent: 6, Children: [2]uint32{3, 4}, Time: 0.7},
		{Left: 0, Right: 10, Parent: 7, Children: [2]uint32{5, 6}, Time: 1.3},
	}
	store := buildStore(t, 4, 10, []uint32{0, 10}, records)
	it := diff.NewIterator(store, diff.DistinctTrees)
	defer it.Close()

	step := it.Next()
	require.Equal(t, diff.StepTree, step.Kind)
	assert.EqualValues(t, 10, step.Span)
	assert.Empty(t, step.Out)
	assert.Equal(t, []uint32{5, 6, 7}, ids(step.In))

	end := it.Next()
	assert.Equal(t, diff.StepEnd, end.Kind)

	require.NoError(t, it.Close())
	assert.True(t, it.ArenaBalanced())
}

func TestDistinctTreesTwoSteps(t *testing.T) {
	store := buildStore(t, 4, 10, []uint32{0, 4, 10}, s2Records())
	it := diff.NewIterator(store, diff.DistinctTrees)
	defer it.Close()

	step1 := it.Next()
	require.Equal(t, diff.StepTree, step1.Kind)
	assert.EqualValues(t, 4, step1.Span)
	assert.Empty(t, step1.Out)
	assert.Equal(t, []uint32{5, 6, 8}, ids(step1.In))

	step2 := it.Next()
	require.Equal(t, diff.StepTree, step2.Kind)
	assert.EqualValues(t, 6, step2.Span)
	assert.Equal(t, []uint32{5, 8}, ids(step2.Out))
	assert.Equal(t, []uint32{7, 9}, ids(step2.In))

	end := it.Next()
	assert.Equal(t, diff.StepEnd, end.Kind)

	require.NoError(t, it.Close())
	assert.True(t, it.ArenaBalanced())
}

func TestSpanPartitionSumsToNumLoci(t *testing.T) {
	store := buildStore(t, 4, 10, []uint32{0, 4, 10}, s2Records())
	it := diff.NewIterator(store, diff.DistinctTrees)
	defer it.Close()

	var total uint32
	for {
		step := it.Next()
		if step.Kind == diff.StepEnd {
			break
		}
		total += step.Span
	}
	assert.EqualValues(t, store.NumLoci(), total)
}

func TestValidateTreesAcceptsWellFormedStore(t *testing.T) {
	store := buildStore(t, 4, 10, []uint32{0, 4, 10}, s2Records())
	assert.NoError(t, diff.ValidateTrees(store))
}

func TestAllBreakpointsInterleavesEmptySteps(t *testing.T) {
	// S4: an extra breakpoint at 2 that coincides with no record edge
	// produces an Empty step between the two real transitions.
	store := buildStore(t, 4, 10, []uint32{0, 2, 4, 10}, s2Records())
	it := diff.NewIterator(store, diff.AllBreakpoints)
	defer it.Close()

	step1 := it.Next()
	require.Equal(t, diff.StepTree, step1.Kind)
	assert.EqualValues(t, 2, step1.Span)
	assert.Empty(t, step1.Out)
	assert.Equal(t, []uint32{5, 6, 8}, ids(step1.In))

	step2 := it.Next()
	require.Equal(t, diff.StepEmpty, step2.Kind)
	assert.EqualValues(t, 2, step2.Span)
	assert.Empty(t, step2.Out)
	assert.Empty(t, step2.In)

	step3 := it.Next()
	require.Equal(t, diff.StepTree, step3.Kind)
	assert.EqualValues(t, 6, step3.Span)
	assert.Equal(t, []uint32{5, 8}, ids(step3.Out))
	assert.Equal(t, []uint32{7, 9}, ids(step3.In))

	end := it.Next()
	assert.Equal(t, diff.StepEnd, end.Kind)

	require.NoError(t, it.Close())
	assert.True(t, it.ArenaBalanced())
}

func TestEmptyRecordSetEndsImmediately(t *testing.T) {
	// S5: zero records; DistinctTrees ends on the first call.
	store := buildStore(t, 4, 10, []uint32{0, 5, 10}, nil)
	it := diff.NewIterator(store, diff.DistinctTrees)
	end := it.Next()
	assert.Equal(t, diff.StepEnd, end.Kind)
	require.NoError(t, it.Close())
	assert.True(t, it.ArenaBalanced())

	// AllBreakpoints covers the same chromosome as a run of Empty steps.
	it2 := diff.NewIterator(store, diff.AllBreakpoints)
	defer it2.Close()

	var total uint32
	for {
		step := it2.Next()
		if step.Kind == diff.StepEnd {
			break
		}
		assert.Equal(t, diff.StepEmpty, step.Kind)
		assert.Empty(t, step.Out)
		assert.Empty(t, step.In)
		total += step.Span
	}
	assert.EqualValues(t, 10, total)
}

func TestRecordAtBounds(t *testing.T) {
	// S6: record_at(num_records) is OutOfBounds; record_at(0) is the
	// first record in sorted order.
	store := buildStore(t, 4, 10, []uint32{0, 4, 10}, s2Records())

	_, err := store.RecordAt(store.NumRecords())
	require.Error(t, err)

	first, err := store.RecordAt(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, first.Left)
	assert.EqualValues(t, 5, first.Parent)
}
