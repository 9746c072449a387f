package treeseq

import (
	"github.com/grailbio/base/errors"
)

// Kind categorizes the error conditions spec.md §7 enumerates. It maps
// onto github.com/grailbio/base/errors.Kind so that callers who already
// know that vocabulary (errors.Is, errors.E) can inspect treeseq errors
// the same way they inspect any other grailbio/base error.
type Kind = errors.Kind

const (
	// KindNoMemory is raised when a column or arena allocation fails.
	KindNoMemory = errors.ResourceExhausted
	// KindIO is raised when the underlying container read/write fails.
	KindIO = errors.IO
	// KindFileFormat is raised on a missing dataset, wrong rank,
	// inconsistent lengths, or an unknown format version.
	KindFileFormat = errors.Invalid
	// KindIntegrity is raised when a stored checksum does not match.
	KindIntegrity = errors.Integrity
	// KindOutOfBounds is raised by RecordAt(i) when i is out of range.
	KindOutOfBounds = errors.Precondition
	// KindInvariantViolation marks a fatal sizing bug: an arena was
	// exhausted on the iterator's fast path. spec.md treats this as a
	// programming error, not a recoverable runtime condition.
	KindInvariantViolation = errors.Fatal
)

func newError(kind Kind, args ...interface{}) error {
	return errors.E(append([]interface{}{kind}, args...)...)
}
