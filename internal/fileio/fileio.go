// Package fileio opens record input and output, transparently handling
// gzip and zstd compression.
package fileio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const bufferSize = 1 << 20

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Compression is a stream compression format.
type Compression int

// Supported compression formats.
const (
	None Compression = iota
	Gzip
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	}
	return "none"
}

// CompressionFor returns the compression implied by a file name suffix.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	}
	return None
}

// OpenInput opens path for reading, or stdin for "" and "-". Gzip and
// zstd input is detected from the file suffix or the leading magic bytes
// and decompressed. The returned cleanup function closes everything.
func OpenInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return wrapInput(None, os.Stdin, func() {})
	}

	f, err := os.Open(path) //nolint:gosec // CLI tool needs to open user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open input: %w", err)
	}
	return wrapInput(CompressionFor(path), f, func() { _ = f.Close() })
}

func wrapInput(byName Compression, in io.Reader, closeInput func()) (io.Reader, func(), error) {
	br := bufio.NewReaderSize(in, bufferSize)
	comp, err := sniff(br)
	if err != nil {
		closeInput()
		return nil, nil, fmt.Errorf("cannot inspect input: %w", err)
	}
	if comp == None {
		comp = byName
	}

	switch comp {
	case Gzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			closeInput()
			return nil, nil, fmt.Errorf("cannot open gzip input: %w", err)
		}
		return gz, func() {
			_ = gz.Close()
			closeInput()
		}, nil
	case Zstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			closeInput()
			return nil, nil, fmt.Errorf("cannot open zstd input: %w", err)
		}
		return dec, func() {
			dec.Close()
			closeInput()
		}, nil
	}
	return br, closeInput, nil
}

// sniff detects compressed input from its magic bytes.
func sniff(br *bufio.Reader) (Compression, error) {
	header, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return None, err
	}
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return Gzip, nil
	case bytes.HasPrefix(header, zstdMagic):
		return Zstd, nil
	}
	return None, nil
}

// OpenOutput opens path for writing, or stdout for "" and "-". Output to
// a .gz or .zst file is compressed. The returned cleanup function flushes
// and closes everything and must be called for the output to be
// complete.
func OpenOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		bw := bufio.NewWriterSize(os.Stdout, bufferSize)
		return bw, bw.Flush, nil
	}

	f, err := os.Create(path) //nolint:gosec // CLI tool needs to create user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output: %w", err)
	}

	var (
		w         io.Writer = f
		closeComp           = func() error { return nil }
	)
	switch CompressionFor(path) {
	case Gzip:
		gz := gzip.NewWriter(f)
		w, closeComp = gz, gz.Close
	case Zstd:
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		w, closeComp = enc, enc.Close
	}

	bw := bufio.NewWriterSize(w, bufferSize)
	return bw, func() error {
		return errors.Join(bw.Flush(), closeComp(), f.Close())
	}, nil
}
