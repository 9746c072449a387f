// Package tsio implements the on-disk side of the tree sequence store:
// Dump and Load for the logical container spec.md §4.D describes
// (breakpoints, the five record columns, and the format-version /
// sample-size / num-loci attributes), laid out as a magic header, a
// JSON manifest, and a contiguous run of dataset byte ranges.
//
// The manifest plays the same "self-describing record" role that
// encoding/pam's ShardIndex protobuf message plays for PAM, but is
// encoded with encoding/json rather than protobuf: the retrieval pack
// keeps no .proto/.pb.go source for biopb's generated types to ground a
// reimplementation on, while cmd/bio-pamtool/checksum.go already
// establishes encoding/json as the teacher's fallback self-describing
// format when no generated schema is in play.
package tsio

// FormatVersion is the container format version this package writes,
// and the maximum version it will Load. Readers must refuse files whose
// version exceeds this constant (spec.md §6).
const FormatVersion uint32 = 1

// magic identifies a tree sequence container file. It is checked before
// anything else is parsed.
var magic = [4]byte{'T', 'S', 'Q', '1'}

// datasetPath names, matching spec.md §4.D's table exactly.
const (
	PathBreakpoints     = "/breakpoints"
	PathRecordsLeft     = "/records/left"
	PathRecordsRight    = "/records/right"
	PathRecordsNode     = "/records/node"
	PathRecordsChildren = "/records/children"
	PathRecordsTime     = "/records/time"
)

// dtype tags the element type of a dataset, LE throughout.
type dtype string

const (
	dtypeU32 dtype = "u32"
	dtypeF64 dtype = "f64"
)

// dataset describes one stored array within the container.
type dataset struct {
	Path       string `json:"path"`
	Shape      []uint64 `json:"shape"`
	DType      dtype  `json:"dtype"`
	Compressed bool   `json:"compressed"`
	Offset     int64  `json:"offset"`
	StoredLen  int64  `json:"stored_len"`
	RawLen     int64  `json:"raw_len"`
	Checksum   uint64 `json:"checksum"`
}

// manifest is the container's self-describing header: attributes plus
// one dataset entry per array. Groups ("/records", "/parameters") are
// implicit in the dataset path prefixes rather than modeled as a
// separate nested structure -- spec.md's requirement that "the writer
// creates the /records group before any of its datasets and the
// /parameters group before its attributes" is about write ordering, not
// an on-disk structural need, since every dataset path is already
// fully qualified.
type manifest struct {
	FormatVersion uint32 `json:"format_version"`
	SampleSize    uint32 `json:"parameters_sample_size"`
	NumLoci       uint32 `json:"parameters_num_loci"`
	Datasets      []dataset `json:"datasets"`
}

func (m *manifest) find(path string) (dataset, bool) {
	for _, d := range m.Datasets {
		if d.Path == path {
			return d, true
		}
	}
	return dataset{}, false
}
