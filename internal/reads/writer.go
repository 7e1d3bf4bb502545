package reads

import (
	"bufio"
	"io"
)

// TableWriter writes records as separator-delimited sequence and CIGAR
// columns.
type TableWriter struct {
	w      *bufio.Writer
	sep    byte
	header []string
}

// NewTableWriter returns a writer that starts with a header line naming
// the sequence and CIGAR columns, unless opts.NoHeader is set.
func NewTableWriter(w io.Writer, opts *TableOptions) *TableWriter {
	o := opts.withDefaults()
	tw := &TableWriter{w: bufio.NewWriter(w), sep: o.Sep}
	if !o.NoHeader {
		tw.header = []string{o.SeqColumn, o.CigarColumn}
	}
	return tw
}

// writeHeader writes the header once. bufio.Writer keeps the first
// error, so only the last write is checked.
func (tw *TableWriter) writeHeader() error {
	if tw.header == nil {
		return nil
	}
	_, _ = tw.w.WriteString(tw.header[0])
	_ = tw.w.WriteByte(tw.sep)
	_, _ = tw.w.WriteString(tw.header[1])
	tw.header = nil
	return tw.w.WriteByte('\n')
}

// Write writes one record.
func (tw *TableWriter) Write(rec *Record) error {
	if err := tw.writeHeader(); err != nil {
		return err
	}

	// Direct writes instead of fmt.Fprintf to avoid format parsing per record
	_, _ = tw.w.Write(rec.Sequence)
	_ = tw.w.WriteByte(tw.sep)
	_, _ = tw.w.WriteString(rec.Cigar)
	return tw.w.WriteByte('\n')
}

// Flush writes buffered data. The header is written even if no record
// was.
func (tw *TableWriter) Flush() error {
	if err := tw.writeHeader(); err != nil {
		return err
	}
	return tw.w.Flush()
}
