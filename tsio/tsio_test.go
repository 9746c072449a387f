package tsio_test

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/treeseq"
	"github.com/grailbio/treeseq/tsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleStore builds a small n=4 store (its own record set, not one of
// the §8 scenarios): four coalescence records spanning a chromosome of
// length 10 with a breakpoint at position 3. Leaves are 1..4 (sampleSize); internal
// parent ids start at 5, per Record.Validate's requirement that a
// parent id exceed the sample size.
func sampleStore(t *testing.T) *treeseq.Store {
	t.Helper()
	src := &treeseq.MemRecordSource{
		Sample:      4,
		Loci:        10,
		Breakpoints: []uint32{0, 3, 10},
		Records: []treeseq.Record{
			{Left: 0, Right: 10, Parent: 5, Children: [2]uint32{1, 2}, Time: 1},
			{Left: 0, Right: 3, Parent: 6, Children: [2]uint32{3, 4}, Time: 2},
			{Left: 3, Right: 10, Parent: 7, Children: [2]uint32{2, 3}, Time: 3},
			{Left: 0, Right: 3, Parent: 8, Children: [2]uint32{5, 6}, Time: 4},
		},
	}
	st, err := treeseq.CreateFromSource(src)
	require.NoError(t, err)
	return st
}

func assertStoresEqual(t *testing.T, want, got *treeseq.Store) {
	t.Helper()
	assert.Equal(t, want.SampleSize(), got.SampleSize())
	assert.Equal(t, want.NumLoci(), got.NumLoci())
	require.Equal(t, want.NumBreakpoints(), got.NumBreakpoints())
	wantBp := make([]uint32, want.NumBreakpoints())
	gotBp := make([]uint32, got.NumBreakpoints())
	require.NoError(t, want.CopyBreakpointsInto(wantBp))
	require.NoError(t, got.CopyBreakpointsInto(gotBp))
	assert.Equal(t, wantBp, gotBp)

	require.Equal(t, want.NumRecords(), got.NumRecords())
	for i := uint64(0); i < want.NumRecords(); i++ {
		wr, err := want.RecordAt(i)
		require.NoError(t, err)
		gr, err := got.RecordAt(i)
		require.NoError(t, err)
		assert.Equal(t, wr, gr)
	}
}

func TestDumpLoadRoundTripUncompressed(t *testing.T) {
	ctx := vcontext.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "uncompressed.tsq")

	want := sampleStore(t)
	require.NoError(t, tsio.Dump(ctx, path, want, tsio.DumpOpts{Compress: false}))

	got, err := tsio.Load(ctx, path)
	require.NoError(t, err)
	assertStoresEqual(t, want, got)
}

func TestDumpLoadRoundTripCompressed(t *testing.T) {
	ctx := vcontext.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "compressed.tsq")

	want := sampleStore(t)
	require.NoError(t, tsio.Dump(ctx, path, want, tsio.DumpOpts{Compress: true}))

	got, err := tsio.Load(ctx, path)
	require.NoError(t, err)
	assertStoresEqual(t, want, got)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	ctx := vcontext.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-container.tsq")

	require.NoError(t, writeFile(path, []byte("not a tree sequence file at all")))

	_, err := tsio.Load(ctx, path)
	require.Error(t, err)
}

func TestLoadRejectsFutureFormatVersion(t *testing.T) {
	ctx := vcontext.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "future.tsq")

	want := sampleStore(t)
	require.NoError(t, tsio.Dump(ctx, path, want, tsio.DumpOpts{Compress: false}))
	bumpFormatVersion(t, path)

	_, err := tsio.Load(ctx, path)
	require.Error(t, err)
}
