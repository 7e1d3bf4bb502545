package cigar

import "fmt"

// ParseError reports malformed CIGAR text.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid CIGAR string: %q", e.Text)
}

// UnsupportedOperationError reports an operation that cannot be edited:
// clipping, padding or skipped regions, an edit kind other than M/I/D,
// or an unavailable ("*") CIGAR.
type UnsupportedOperationError struct {
	Op          Op
	Unavailable bool
}

func (e *UnsupportedOperationError) Error() string {
	if e.Unavailable {
		return "cannot edit an unavailable CIGAR (*)"
	}
	return fmt.Sprintf("CIGAR operation %s is not supported", e.Op)
}

// RangeExceededError reports an edit that reaches past the end of the
// CIGAR and is not an insertion.
type RangeExceededError struct {
	Edit   Edit
	Offset int
	Span   int
}

func (e *RangeExceededError) Error() string {
	return fmt.Sprintf("operation %s at %dbp exceeds the end of the CIGAR (span %d) and is no insert",
		e.Edit, e.Offset, e.Span)
}
