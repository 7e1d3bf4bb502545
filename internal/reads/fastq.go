package reads

import (
	"errors"
	"fmt"
	"io"
)

// FastqReader reads FASTQ records. Every read is given a CIGAR of
// matches over its full length; quality lines are validated and dropped.
type FastqReader struct {
	lines *lineReader
}

// NewFastqReader creates a new FASTQ reader.
func NewFastqReader(r io.Reader) *FastqReader {
	return &FastqReader{lines: newLineReader(r)}
}

// Next reads and returns the next FASTQ record.
// Returns io.EOF when no more records are available.
func (p *FastqReader) Next() (*Record, error) {
	rec := &Record{}

	// Line 1: Header (starts with @)
	line, err := p.lines.readLine()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 || line[0] != '@' {
		return nil, fmt.Errorf("line %d: %w", p.lines.num, errors.New("invalid FASTQ: header line must start with @"))
	}
	rec.Name = string(line[1:]) // strip leading @

	// Line 2: Sequence
	line, err = p.lines.readLine()
	if err != nil {
		return nil, truncated(err)
	}
	rec.Sequence = make([]byte, len(line))
	copy(rec.Sequence, line)
	rec.Cigar = FullMatch(len(rec.Sequence))

	// Line 3: Plus line (we ignore it)
	line, err = p.lines.readLine()
	if err != nil {
		return nil, truncated(err)
	}
	if len(line) == 0 || line[0] != '+' {
		return nil, fmt.Errorf("line %d: %w", p.lines.num, errors.New("invalid FASTQ: separator line must start with +"))
	}

	// Line 4: Quality scores
	line, err = p.lines.readLine()
	if err != nil {
		return nil, truncated(err)
	}

	// Validate lengths match
	if len(rec.Sequence) != len(line) {
		return nil, fmt.Errorf("line %d: %w", p.lines.num, errors.New("invalid FASTQ: sequence and quality lengths must match"))
	}

	return rec, nil
}

// truncated turns an EOF inside a record into an error of its own so
// that callers do not mistake it for a clean end of input.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
