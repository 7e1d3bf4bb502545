// Package pipeline streams records from a reader through a mutation
// stage into a writer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/vertti/readmut/internal/reads"
)

// DefaultBatchSize is the default number of records per batch.
const DefaultBatchSize = 4096

// Options configures a pipeline run.
type Options struct {
	BatchSize int // Records per batch (default: 4096)
	Buffer    int // Batches buffered between goroutines (default: 2)
}

// Sink receives the output records in input order.
type Sink interface {
	Write(rec *reads.Record) error
	Flush() error
}

// Stage wraps a source with a mutation step. It is called once, and the
// returned source is read from a single goroutine.
type Stage func(src reads.Source) reads.Source

// Run reads src in batches, passes the records through stage and writes
// the result to sink, which is flushed at the end. Reading, mutating and
// writing run concurrently; the stage sees every record in input order.
// The first error stops the pipeline and is returned.
func Run(ctx context.Context, src reads.Source, stage Stage, sink Sink, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 2
	}

	in := make(chan []*reads.Record, buffer)
	out := make(chan []*reads.Record, buffer)

	g, ctx := errgroup.WithContext(ctx)

	// Producer: read batches from the source
	g.Go(func() error {
		defer close(in)
		return produceBatches(ctx, src, in, batchSize)
	})

	// Stage: a single goroutine keeps the mutation sequential
	g.Go(func() error {
		defer close(out)
		return runStage(ctx, stage(&chanSource{ctx: ctx, batches: in}), out, batchSize)
	})

	// Collector: write results in order
	g.Go(func() error {
		return collectAndWrite(out, sink)
	})

	return g.Wait()
}

func produceBatches(ctx context.Context, src reads.Source, in chan<- []*reads.Record, batchSize int) error {
	for {
		records, err := reads.NextBatch(src, batchSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading records: %w", err)
		}
		if len(records) == 0 {
			return nil
		}

		select {
		case in <- records:
		case <-ctx.Done():
			return ctx.Err()
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func runStage(ctx context.Context, src reads.Source, out chan<- []*reads.Record, batchSize int) error {
	emit := func(records []*reads.Record) error {
		select {
		case out <- records:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	records := make([]*reads.Record, 0, batchSize)
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("mutating records: %w", err)
		}
		records = append(records, rec)
		if len(records) == batchSize {
			if err := emit(records); err != nil {
				return err
			}
			records = make([]*reads.Record, 0, batchSize)
		}
	}
	if len(records) > 0 {
		return emit(records)
	}
	return nil
}

func collectAndWrite(out <-chan []*reads.Record, sink Sink) error {
	written := 0
	for records := range out {
		for _, rec := range records {
			if err := sink.Write(rec); err != nil {
				return fmt.Errorf("writing record %d: %w", written+1, err)
			}
			written++
		}
	}
	if err := sink.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}

// chanSource reads the records of batches arriving on a channel.
type chanSource struct {
	ctx     context.Context
	batches <-chan []*reads.Record
	pending []*reads.Record
}

func (s *chanSource) Next() (*reads.Record, error) {
	for len(s.pending) == 0 {
		select {
		case b, ok := <-s.batches:
			if !ok {
				return nil, io.EOF
			}
			s.pending = b
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		}
	}
	rec := s.pending[0]
	s.pending = s.pending[1:]
	return rec, nil
}
