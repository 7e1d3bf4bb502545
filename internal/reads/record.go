// Package reads reads and writes the (sequence, CIGAR) records the
// mutation tools operate on.
package reads

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
)

// Record is one read and the CIGAR string describing its alignment.
type Record struct {
	Name     string // FASTQ header without '@'; empty for table input
	Sequence []byte
	Cigar    string
}

// Source yields records one at a time. Next returns io.EOF when no more
// records are available.
type Source interface {
	Next() (*Record, error)
}

// FullMatch returns the CIGAR of a read of length n without indels.
func FullMatch(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n) + "M"
}

// NextBatch reads up to n records from src. If fewer than n records are
// available, it returns what's available; io.EOF is only returned with
// an empty batch.
func NextBatch(src Source, n int) ([]*Record, error) {
	batch := make([]*Record, 0, n)
	for range n {
		rec, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) && len(batch) > 0 {
				return batch, nil
			}
			return batch, err
		}
		batch = append(batch, rec)
	}
	return batch, nil
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []*Record
}

// NewSliceSource returns a Source yielding records in order.
func NewSliceSource(records ...*Record) *SliceSource {
	return &SliceSource{records: records}
}

// Next returns the next record or io.EOF.
func (s *SliceSource) Next() (*Record, error) {
	if len(s.records) == 0 {
		return nil, io.EOF
	}
	rec := s.records[0]
	s.records = s.records[1:]
	return rec, nil
}

// lineReader reads lines reusing an internal buffer.
type lineReader struct {
	reader *bufio.Reader
	line   []byte
	num    int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		reader: bufio.NewReaderSize(r, 1<<20), // 1MB buffer
		line:   make([]byte, 0, 512),
	}
}

// readLine reads a line from the input, stripping the newline. The
// returned slice is only valid until the next call.
func (l *lineReader) readLine() ([]byte, error) {
	l.line = l.line[:0]

	for {
		segment, isPrefix, err := l.reader.ReadLine()
		if err != nil {
			return nil, err
		}

		l.line = append(l.line, segment...)

		if !isPrefix {
			break
		}
	}
	l.num++

	// Trim any trailing CR (for Windows line endings)
	l.line = bytes.TrimSuffix(l.line, []byte{'\r'})

	return l.line, nil
}

// NewSource returns a FastqReader if fastq is set and a TableReader
// otherwise.
func NewSource(r io.Reader, fastq bool, opts *TableOptions) (Source, error) {
	if fastq {
		return NewFastqReader(r), nil
	}
	return NewTableReader(r, opts)
}
