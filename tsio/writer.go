package tsio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/treeseq"
	"github.com/klauspost/compress/flate"
)

// DumpOpts controls how Dump lays out a container.
type DumpOpts struct {
	// Compress turns on byte-shuffle + deflate for every dataset.
	// Disabled, datasets are stored as raw little-endian bytes, which is
	// useful for tests that want to eyeball the byte layout.
	Compress bool
}

// Dump writes store to path as a self-describing container: a magic
// header, a JSON manifest, and the six datasets' byte ranges, in that
// order. The /records group's datasets and the /parameters attributes
// are logically created before they're written, matching the
// group-before-contents ordering spec.md §4.D requires, but since this
// container's "groups" are just path prefixes rather than a nested
// structure (see manifest.go), that ordering has no separate code path
// to get wrong.
func Dump(ctx context.Context, path string, store *treeseq.Store, opts DumpOpts) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(treeseq.KindIO, err, "tsio.Dump: create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)

	blocks, datasets, err := encodeDatasets(store, opts)
	if err != nil {
		return err
	}

	m := manifest{
		FormatVersion: FormatVersion,
		SampleSize:    store.SampleSize(),
		NumLoci:       store.NumLoci(),
		Datasets:      datasets,
	}
	manifestBytes, err := json.Marshal(&m)
	if err != nil {
		return errors.E(treeseq.KindIO, err, "tsio.Dump: encode manifest")
	}

	w := out.Writer(ctx)
	if _, err := w.Write(magic[:]); err != nil {
		return errors.E(treeseq.KindIO, err, "tsio.Dump: write magic")
	}
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(manifestBytes)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.E(treeseq.KindIO, err, "tsio.Dump: write manifest length")
	}
	if _, err := w.Write(manifestBytes); err != nil {
		return errors.E(treeseq.KindIO, err, "tsio.Dump: write manifest")
	}
	for _, b := range blocks {
		if _, err := w.Write(b); err != nil {
			return errors.E(treeseq.KindIO, err, "tsio.Dump: write dataset block")
		}
	}
	return nil
}

// encodeDatasets produces, for every column, the raw-or-compressed byte
// block that will be written to the file, and the manifest entry
// describing it. Offsets are relative to the start of the dataset-block
// region, which follows the magic, the manifest length and the
// manifest; Dump stores them unchanged.
func encodeDatasets(store *treeseq.Store, opts DumpOpts) ([][]byte, []dataset, error) {
	n := store.NumRecords()
	nbp := store.NumBreakpoints()

	breakpoints := make([]uint32, nbp)
	if err := store.CopyBreakpointsInto(breakpoints); err != nil {
		return nil, nil, err
	}
	left := make([]uint32, n)
	right := make([]uint32, n)
	node := make([]uint32, n)
	children := make([]uint32, 2*n)
	timeCol := make([]float64, n)
	for i := uint64(0); i < n; i++ {
		r, err := store.RecordAt(i)
		if err != nil {
			return nil, nil, err
		}
		left[i] = r.Left
		right[i] = r.Right
		node[i] = r.Parent
		children[2*i] = r.Children[0]
		children[2*i+1] = r.Children[1]
		timeCol[i] = r.Time
	}

	type col struct {
		path  string
		dt    dtype
		shape []uint64
		raw   []byte
	}
	cols := []col{
		{PathBreakpoints, dtypeU32, []uint64{nbp}, encodeU32(breakpoints)},
		{PathRecordsLeft, dtypeU32, []uint64{n}, encodeU32(left)},
		{PathRecordsRight, dtypeU32, []uint64{n}, encodeU32(right)},
		{PathRecordsNode, dtypeU32, []uint64{n}, encodeU32(node)},
		{PathRecordsChildren, dtypeU32, []uint64{n, 2}, encodeU32(children)},
		{PathRecordsTime, dtypeF64, []uint64{n}, encodeF64(timeCol)},
	}

	blocks := make([][]byte, 0, len(cols))
	datasets := make([]dataset, 0, len(cols))
	var offset int64
	for _, c := range cols {
		stored := c.raw
		if opts.Compress {
			shuffled := shuffle(c.raw, elemSize(c.dt))
			var buf bytes.Buffer
			zw, err := flate.NewWriter(&buf, flate.BestCompression)
			if err != nil {
				return nil, nil, errors.E(treeseq.KindIO, err, "tsio.Dump: new flate writer")
			}
			if _, err := zw.Write(shuffled); err != nil {
				return nil, nil, errors.E(treeseq.KindIO, err, "tsio.Dump: deflate", c.path)
			}
			if err := zw.Close(); err != nil {
				return nil, nil, errors.E(treeseq.KindIO, err, "tsio.Dump: close flate writer", c.path)
			}
			stored = buf.Bytes()
		}
		h := seahash.New()
		h.Write(stored)
		sum := h.Sum64()
		datasets = append(datasets, dataset{
			Path:       c.path,
			Shape:      c.shape,
			DType:      c.dt,
			Compressed: opts.Compress,
			Offset:     offset,
			StoredLen:  int64(len(stored)),
			RawLen:     int64(len(c.raw)),
			Checksum:   sum,
		})
		blocks = append(blocks, stored)
		offset += int64(len(stored))
	}
	return blocks, datasets, nil
}

func elemSize(dt dtype) int {
	if dt == dtypeF64 {
		return 8
	}
	return 4
}

func encodeU32(v []uint32) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[4*i:], x)
	}
	return out
}

func encodeF64(v []float64) []byte {
	out := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(out[8*i:], doubleBits(x))
	}
	return out
}
