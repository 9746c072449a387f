package treeseq

// RecordSource is the external contract a coalescent simulator (or any
// other producer) implements so that Store.CreateFromSource can bulk-copy
// its output. The simulator itself, and any driver that runs it, are out
// of scope for this repository (spec.md §1); RecordSource is the seam
// between that external world and the store.
//
// Records returned by CopyRecordsInto need not be sorted by Left; the
// store sorts them during CreateFromSource.
type RecordSource interface {
	// SampleSize returns n, the number of haploid samples.
	SampleSize() uint32
	// NumLoci returns L, the number of discrete loci on the chromosome.
	NumLoci() uint32
	// NumBreakpoints returns the length of the breakpoints vector.
	NumBreakpoints() uint64
	// NumCoalescenceRecords returns the number of records that
	// CopyRecordsInto will write.
	NumCoalescenceRecords() uint64
	// CopyBreakpointsInto fills buf, which has length NumBreakpoints(),
	// with the strictly increasing breakpoint positions, buf[0] == 0 and
	// buf[len(buf)-1] == NumLoci().
	CopyBreakpointsInto(buf []uint32) error
	// CopyRecordsInto fills buf, which has length
	// NumCoalescenceRecords(), with this source's coalescence records in
	// an arbitrary order.
	CopyRecordsInto(buf []Record) error
}

// MemRecordSource is a slice-backed RecordSource, useful for tests and
// for round-tripping a Store that was loaded from disk or assembled by
// hand. It is the only concrete RecordSource this repository provides;
// a real simulator supplies its own.
type MemRecordSource struct {
	Sample      uint32
	Loci        uint32
	Breakpoints []uint32
	Records     []Record
}

// SampleSize implements RecordSource.
func (s *MemRecordSource) SampleSize() uint32 { return s.Sample }

// NumLoci implements RecordSource.
func (s *MemRecordSource) NumLoci() uint32 { return s.Loci }

// NumBreakpoints implements RecordSource.
func (s *MemRecordSource) NumBreakpoints() uint64 { return uint64(len(s.Breakpoints)) }

// NumCoalescenceRecords implements RecordSource.
func (s *MemRecordSource) NumCoalescenceRecords() uint64 { return uint64(len(s.Records)) }

// CopyBreakpointsInto implements RecordSource.
func (s *MemRecordSource) CopyBreakpointsInto(buf []uint32) error {
	copy(buf, s.Breakpoints)
	return nil
}

// CopyRecordsInto implements RecordSource.
func (s *MemRecordSource) CopyRecordsInto(buf []Record) error {
	copy(buf, s.Records)
	return nil
}
