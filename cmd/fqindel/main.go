// fqindel inserts and deletes random stretches of bases in reads and
// updates their CIGAR strings to match.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/vertti/readmut/internal/cli"
	"github.com/vertti/readmut/internal/fileio"
	"github.com/vertti/readmut/internal/indel"
	"github.com/vertti/readmut/internal/pipeline"
	"github.com/vertti/readmut/internal/reads"
)

var version = "dev"

const (
	exitSuccess = 0
	exitError   = 1
)

type config struct {
	inputFile   string
	outputFile  string
	indel       indel.Config
	table       reads.TableOptions
	fastq       bool
	skipInvalid bool
	batchSize   int
	verbosity   cli.Verbosity
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, done, err := parseFlags(args, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}
	if done {
		return exitSuccess
	}
	cli.SetupLogging(os.Stderr, cfg.verbosity)

	if err := execute(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}
	return exitSuccess
}

func parseFlags(args []string, stdout, stderr io.Writer) (config, bool, error) {
	var (
		cfg                   config
		showVersion, showHelp bool
		insertExp, deleteExp  float64
		seed                  uint64
		sep                   string
	)

	fs := flag.NewFlagSet("fqindel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.inputFile, "i", "", "input file, plain, .gz or .zst (default: stdin)")
	fs.StringVar(&cfg.outputFile, "o", "", "output file, .gz and .zst are compressed (default: stdout)")
	fs.Float64Var(&cfg.indel.InsertProb, "in-prob", 0, "per-base probability of an insertion")
	fs.Float64Var(&insertExp, "in-exp", 0, "insertion length parameter L: length is Geometric(1-L)+1, 0 <= L < 1")
	fs.Float64Var(&cfg.indel.DeleteProb, "del-prob", 0, "per-base probability of a deletion")
	fs.Float64Var(&deleteExp, "del-exp", 0, "deletion length parameter L: length is Geometric(1-L)+1, 0 <= L < 1")
	fs.Uint64Var(&seed, "seed", 0, "random seed for reproducible output (default: random)")
	fs.BoolVar(&cfg.table.NewCigar, "cigar-new", false, "input has no CIGAR column; every read starts as a full match")
	fs.BoolVar(&cfg.fastq, "fastq", false, "read FASTQ input instead of a table")
	fs.StringVar(&cfg.table.SeqColumn, "col-seq", reads.DefaultSeqColumn, "name of the sequence column")
	fs.StringVar(&cfg.table.CigarColumn, "col-cigar", reads.DefaultCigarColumn, "name of the CIGAR column")
	fs.BoolVar(&cfg.table.NoHeader, "no-header", false, "input has no header line; sequence and CIGAR are columns 1 and 2")
	fs.StringVar(&sep, "sep", `\t`, "column separator")
	fs.BoolVar(&cfg.skipInvalid, "skip-invalid", false, "leave reads whose CIGAR cannot be edited unchanged instead of failing")
	fs.IntVar(&cfg.batchSize, "batch", pipeline.DefaultBatchSize, "records per batch")
	fs.Var(&cfg.verbosity, "v", "verbose logging, repeat for trace output")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")
	fs.BoolVar(&showHelp, "h", false, "show help")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, true, nil
		}
		return cfg, false, err
	}

	if showHelp {
		fs.Usage()
		return cfg, true, nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "fqindel version %s\n", version)
		return cfg, true, nil
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if cfg.indel.InsertProb != 0 && !set["in-exp"] {
		return cfg, false, errors.New("-in-prob requires -in-exp")
	}
	if cfg.indel.DeleteProb != 0 && !set["del-exp"] {
		return cfg, false, errors.New("-del-prob requires -del-exp")
	}
	cfg.indel.InsertLenParam = insertExp
	cfg.indel.DeleteLenParam = deleteExp
	if set["seed"] {
		cfg.indel.Seed = &seed
	}
	if err := cfg.indel.Validate(); err != nil {
		return cfg, false, err
	}

	b, err := cli.ParseSep(sep)
	if err != nil {
		return cfg, false, err
	}
	cfg.table.Sep = b

	// Positional input file
	if fs.NArg() > 0 && cfg.inputFile == "" {
		cfg.inputFile = fs.Arg(0)
	}
	return cfg, false, nil
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `fqindel - Insert and delete random bases in reads

Positions are drawn along the concatenation of all reads, so the distance
to the next event carries over from one read to the next. CIGAR strings
are updated to describe the mutated reads.

Usage:
  fqindel [options] [-i input.tsv] [-o output.tsv]

Options:
`)
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  fqindel -in-prob 0.01 -in-exp 0.5 -i reads.tsv -o mutated.tsv
  fqindel -del-prob 0.02 -del-exp 0.3 -seed 42 -fastq -i sample.fq.gz
  cut -f1 seqs.txt | fqindel -cigar-new -no-header -in-prob 0.01 -in-exp 0
`)
}

func execute(ctx context.Context, cfg config) error {
	input, closeInput, err := fileio.OpenInput(cfg.inputFile)
	if err != nil {
		return err
	}
	defer closeInput()

	src, err := reads.NewSource(input, cfg.fastq, &cfg.table)
	if err != nil {
		return err
	}

	output, closeOutput, err := fileio.OpenOutput(cfg.outputFile)
	if err != nil {
		return err
	}

	opts := []indel.Option{indel.WithLogger(log.StandardLogger())}
	if cfg.skipInvalid {
		opts = append(opts, indel.WithSkipInvalid())
	}
	var engine *indel.Engine
	stage := func(src reads.Source) reads.Source {
		e, err := indel.New(src, cfg.indel, opts...)
		if err != nil {
			return errorSource{err}
		}
		engine = e
		return e
	}

	sink := reads.NewTableWriter(output, &cfg.table)
	runErr := pipeline.Run(ctx, src, stage, sink, &pipeline.Options{BatchSize: cfg.batchSize})
	if err := errors.Join(runErr, closeOutput()); err != nil {
		return err
	}

	stats := engine.Stats()
	if stats.Skipped > 0 {
		log.Warnf("Left %d of %d records unchanged", stats.Skipped, stats.Records)
	}
	log.WithFields(log.Fields{
		"records":        stats.Records,
		"insertions":     stats.Insertions,
		"inserted_bases": stats.InsertedBases,
		"deletions":      stats.Deletions,
		"deleted_bases":  stats.DeletedBases,
	}).Debug("Done")
	return nil
}

// errorSource fails on the first read.
type errorSource struct{ err error }

func (s errorSource) Next() (*reads.Record, error) { return nil, s.err }
