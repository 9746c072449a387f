package tsio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/treeseq"
	"github.com/klauspost/compress/flate"
)

// wantDataset is one entry of the fixed schema Load checks the manifest
// against, before touching any dataset bytes.
type wantDataset struct {
	path string
	rank int
}

var wantDatasets = []wantDataset{
	{PathBreakpoints, 1},
	{PathRecordsLeft, 1},
	{PathRecordsRight, 1},
	{PathRecordsNode, 1},
	{PathRecordsChildren, 2},
	{PathRecordsTime, 1},
}

// Load reads a container written by Dump and reconstructs a
// *treeseq.Store. It validates the manifest's attributes, then every
// dataset's presence and declared rank, then that the record columns
// agree on their leading extent -- all before allocating a single
// column, so that a truncated or hand-edited file fails fast rather
// than after a large, wasted allocation.
func Load(ctx context.Context, path string) (_ *treeseq.Store, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(treeseq.KindIO, err, "tsio.Load: open", path)
	}
	defer file.CloseAndReport(ctx, in, &err)

	r := in.Reader(ctx)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, errors.E(treeseq.KindFileFormat, err, "tsio.Load: read magic", path)
	}
	if gotMagic != magic {
		return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: not a tree sequence container (bad magic)", path))
	}

	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, errors.E(treeseq.KindFileFormat, err, "tsio.Load: read manifest length", path)
	}
	manifestLen := binary.LittleEndian.Uint64(lenBuf[:])
	manifestBytes := make([]byte, manifestLen)
	if _, err := io.ReadFull(r, manifestBytes); err != nil {
		return nil, errors.E(treeseq.KindFileFormat, err, "tsio.Load: read manifest", path)
	}

	var m manifest
	if err := json.Unmarshal(manifestBytes, &m); err != nil {
		return nil, errors.E(treeseq.KindFileFormat, err, "tsio.Load: parse manifest", path)
	}

	// Attributes must be present. Decoding into m cannot tell a missing
	// attribute from a zero one (a SampleSize of zero is a legitimate, if
	// useless, empty sample), so presence is checked on the raw keys; a
	// non-scalar value already failed the parse above, since each
	// attribute decodes into a uint32.
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(manifestBytes, &attrs); err != nil {
		return nil, errors.E(treeseq.KindFileFormat, err, "tsio.Load: parse manifest", path)
	}
	for _, key := range []string{"format_version", "parameters_sample_size", "parameters_num_loci"} {
		if _, ok := attrs[key]; !ok {
			return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: missing attribute %s", path, key))
		}
	}

	if m.FormatVersion > FormatVersion {
		return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: format_version %d is newer than this reader's %d", path, m.FormatVersion, FormatVersion))
	}

	resolved := make(map[string]dataset, len(wantDatasets))
	for _, w := range wantDatasets {
		d, ok := m.find(w.path)
		if !ok {
			return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: missing dataset %s", path, w.path))
		}
		if len(d.Shape) != w.rank {
			return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: dataset %s has rank %d, want %d", path, w.path, len(d.Shape), w.rank))
		}
		resolved[w.path] = d
	}

	n := resolved[PathRecordsLeft].Shape[0]
	for _, p := range []string{PathRecordsRight, PathRecordsNode} {
		if resolved[p].Shape[0] != n {
			return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: dataset %s has extent %d, want %d", path, p, resolved[p].Shape[0], n))
		}
	}
	if resolved[PathRecordsChildren].Shape[0] != n || resolved[PathRecordsChildren].Shape[1] != 2 {
		return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: dataset %s has shape %v, want [%d 2]", path, PathRecordsChildren, resolved[PathRecordsChildren].Shape, n))
	}
	if resolved[PathRecordsTime].Shape[0] != n {
		return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: dataset %s has extent %d, want %d", path, PathRecordsTime, resolved[PathRecordsTime].Shape[0], n))
	}

	// Every validation above is now complete; read and decode the
	// dataset blocks, which Dump wrote back-to-back in manifest order.
	raw := make(map[string][]byte, len(m.Datasets))
	for _, d := range m.Datasets {
		buf := make([]byte, d.StoredLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.E(treeseq.KindIO, err, "tsio.Load: read dataset", d.Path, path)
		}
		h := seahash.New()
		h.Write(buf)
		if h.Sum64() != d.Checksum {
			return nil, errors.E(treeseq.KindIntegrity, fmt.Sprintf("tsio.Load: %s: dataset %s failed checksum verification", path, d.Path))
		}
		if d.Compressed {
			zr := flate.NewReader(bytes.NewReader(buf))
			decompressed, err := io.ReadAll(zr)
			if err != nil {
				return nil, errors.E(treeseq.KindFileFormat, err, "tsio.Load: inflate", d.Path, path)
			}
			if err := zr.Close(); err != nil {
				return nil, errors.E(treeseq.KindFileFormat, err, "tsio.Load: close inflate reader", d.Path, path)
			}
			buf = unshuffle(decompressed, elemSize(d.DType))
		}
		if int64(len(buf)) != d.RawLen {
			return nil, errors.E(treeseq.KindFileFormat, fmt.Sprintf("tsio.Load: %s: dataset %s decoded to %d bytes, manifest says %d", path, d.Path, len(buf), d.RawLen))
		}
		raw[d.Path] = buf
	}

	breakpoints := decodeU32(raw[PathBreakpoints])
	left := decodeU32(raw[PathRecordsLeft])
	right := decodeU32(raw[PathRecordsRight])
	node := decodeU32(raw[PathRecordsNode])
	children := decodeU32(raw[PathRecordsChildren])
	timeCol := decodeF64(raw[PathRecordsTime])

	records := make([]treeseq.Record, n)
	for i := uint64(0); i < n; i++ {
		records[i] = treeseq.Record{
			Left:     left[i],
			Right:    right[i],
			Parent:   node[i],
			Children: [2]uint32{children[2*i], children[2*i+1]},
			Time:     timeCol[i],
		}
	}

	return treeseq.NewStoreFromColumns(m.SampleSize, m.NumLoci, breakpoints, records)
}
