package reads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Default column names of the tabular format.
const (
	DefaultSeqColumn   = "seq"
	DefaultCigarColumn = "cigar"
)

// TableOptions configures a TableReader.
type TableOptions struct {
	Sep         byte   // Column separator (default: tab)
	NoHeader    bool   // Input has no header line; columns 0 and 1 are used
	SeqColumn   string // Name of the sequence column (default: seq)
	CigarColumn string // Name of the CIGAR column (default: cigar)
	NewCigar    bool   // No CIGAR column; every read is a full match
}

func (o *TableOptions) withDefaults() TableOptions {
	opts := TableOptions{}
	if o != nil {
		opts = *o
	}
	if opts.Sep == 0 {
		opts.Sep = '\t'
	}
	if opts.SeqColumn == "" {
		opts.SeqColumn = DefaultSeqColumn
	}
	if opts.CigarColumn == "" {
		opts.CigarColumn = DefaultCigarColumn
	}
	return opts
}

// TableReader reads records from separator-delimited lines holding a
// sequence column and, unless NewCigar is set, a CIGAR column. Other
// columns are ignored. Empty lines are skipped.
type TableReader struct {
	lines    *lineReader
	sep      byte
	seqIdx   int
	cigarIdx int // -1 with NewCigar
	fields   [][]byte
}

// NewTableReader creates a reader and consumes the header line unless
// opts.NoHeader is set.
func NewTableReader(r io.Reader, opts *TableOptions) (*TableReader, error) {
	o := opts.withDefaults()
	t := &TableReader{
		lines:    newLineReader(r),
		sep:      o.Sep,
		seqIdx:   0,
		cigarIdx: 1,
	}
	if o.NewCigar {
		t.cigarIdx = -1
	}
	if o.NoHeader {
		return t, nil
	}

	line, err := t.lines.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("reading table header: empty input")
		}
		return nil, fmt.Errorf("reading table header: %w", err)
	}
	header := make([]string, 0, 4)
	for _, f := range bytes.Split(line, []byte{o.Sep}) {
		header = append(header, string(f))
	}

	t.seqIdx = slices.Index(header, o.SeqColumn)
	if t.seqIdx < 0 {
		return nil, fmt.Errorf("column %q not found in header", o.SeqColumn)
	}
	if !o.NewCigar {
		t.cigarIdx = slices.Index(header, o.CigarColumn)
		if t.cigarIdx < 0 {
			return nil, fmt.Errorf("column %q not found in header", o.CigarColumn)
		}
	}
	return t, nil
}

// Next reads and returns the next record.
// Returns io.EOF when no more records are available.
func (t *TableReader) Next() (*Record, error) {
	var line []byte
	for {
		var err error
		line, err = t.lines.readLine()
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(line)) > 0 {
			break
		}
	}

	t.fields = t.fields[:0]
	for f := range bytes.SplitSeq(line, []byte{t.sep}) {
		t.fields = append(t.fields, f)
	}

	need := max(t.seqIdx, t.cigarIdx) + 1
	if len(t.fields) < need {
		return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", t.lines.num, need, len(t.fields))
	}

	seq := t.fields[t.seqIdx]
	rec := &Record{Sequence: make([]byte, len(seq))}
	copy(rec.Sequence, seq)
	if t.cigarIdx < 0 {
		rec.Cigar = FullMatch(len(rec.Sequence))
	} else {
		rec.Cigar = string(t.fields[t.cigarIdx])
	}
	return rec, nil
}
