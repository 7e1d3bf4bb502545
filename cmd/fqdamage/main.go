// fqdamage simulates DNA damage by exchanging bases with a probability
// that decays geometrically with the distance from a read end.
//
// The exchange probability of a base at distance x (1, 2, 3, ...) from
// the chosen end is
//
//	factor * dgeom(x, geom_prob) + intercept
//
// with one row of a parameter table per exchanged base. Substituted bases
// are recorded in the CIGAR as M.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/vertti/readmut/internal/cli"
	"github.com/vertti/readmut/internal/damage"
	"github.com/vertti/readmut/internal/fileio"
	"github.com/vertti/readmut/internal/pipeline"
	"github.com/vertti/readmut/internal/reads"
)

var version = "dev"

const (
	exitSuccess = 0
	exitError   = 1
)

type config struct {
	paramFile  string
	inputFile  string
	outputFile string
	seed       *uint64
	table      reads.TableOptions
	fastq      bool
	batchSize  int
	verbosity  cli.Verbosity
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
		seed                  uint64
		sep                   string
	)

	fs := flag.NewFlagSet("fqdamage", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.paramFile, "p", "", "parameter table (required)")
	fs.StringVar(&cfg.inputFile, "i", "", "input file, plain, .gz or .zst (default: stdin)")
	fs.StringVar(&cfg.outputFile, "o", "", "output file, .gz and .zst are compressed (default: stdout)")
	fs.Uint64Var(&seed, "seed", 0, "random seed for reproducible output (default: random)")
	fs.BoolVar(&cfg.table.NewCigar, "cigar-new", false, "input has no CIGAR column; every read starts as a full match")
	fs.BoolVar(&cfg.fastq, "fastq", false, "read FASTQ input instead of a table")
	fs.StringVar(&cfg.table.SeqColumn, "col-seq", reads.DefaultSeqColumn, "name of the sequence column")
	fs.StringVar(&cfg.table.CigarColumn, "col-cigar", reads.DefaultCigarColumn, "name of the CIGAR column")
	fs.BoolVar(&cfg.table.NoHeader, "no-header", false, "input has no header line; sequence and CIGAR are columns 1 and 2")
	fs.StringVar(&sep, "sep", `\t`, "column separator")
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
		fmt.Fprintf(stdout, "fqdamage version %s\n", version)
		return cfg, true, nil
	}

	// Positional parameter table, then input file
	rest := fs.Args()
	if cfg.paramFile == "" && len(rest) > 0 {
		cfg.paramFile, rest = rest[0], rest[1:]
	}
	if cfg.inputFile == "" && len(rest) > 0 {
		cfg.inputFile = rest[0]
	}
	if cfg.paramFile == "" {
		return cfg, false, errors.New("a parameter table is required (-p)")
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.seed = &seed
		}
	})

	b, err := cli.ParseSep(sep)
	if err != nil {
		return cfg, false, err
	}
	cfg.table.Sep = b
	return cfg, false, nil
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `fqdamage - Exchange bases near read ends

Usage:
  fqdamage -p params.tsv [-i input.tsv] [-o output.tsv]

The parameter table is whitespace separated, one exchanged base per row:

  # Lines starting with a hash are ignored as comments
  strand  from  to  factor      geom_prob   intercept
  3p      G     A   0.79513996  0.26918746  0.039386893
  5p      C     T   0.43360246  0.35249167  0.027965522

strand is 5p or 3p, the end distances are counted from. A * in the from
column matches every base; a * in the to column picks a random different
nucleotide.

Options:
`)
	fs.PrintDefaults()
}

func loadChain(path string) (damage.Chain, error) {
	r, cleanup, err := fileio.OpenInput(path)
	if err != nil {
		return nil, fmt.Errorf("opening parameter table: %w", err)
	}
	defer cleanup()

	chain, err := damage.ParseTable(r)
	if err != nil {
		return nil, fmt.Errorf("parameter table %s: %w", path, err)
	}
	for _, m := range chain {
		log.WithFields(log.Fields{
			"from":      string(m.From),
			"to":        string(m.To),
			"factor":    m.Factor,
			"geom_prob": m.GeomProb,
			"intercept": m.Intercept,
			"from_end":  m.FromEnd,
		}).Debug("Mutator")
	}
	return chain, nil
}

func execute(ctx context.Context, cfg config) error {
	chain, err := loadChain(cfg.paramFile)
	if err != nil {
		return err
	}

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

	var rng *rand.Rand
	if cfg.seed != nil {
		//nolint:gosec // intentionally using math/rand for reproducibility, not security
		rng = rand.New(rand.NewPCG(*cfg.seed, *cfg.seed))
	} else {
		//nolint:gosec // simulation, not security
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var stream *damage.Stream
	stage := func(src reads.Source) reads.Source {
		stream = damage.NewStream(src, chain, rng)
		return stream
	}

	sink := reads.NewTableWriter(output, &cfg.table)
	runErr := pipeline.Run(ctx, src, stage, sink, &pipeline.Options{BatchSize: cfg.batchSize})
	if err := errors.Join(runErr, closeOutput()); err != nil {
		return err
	}

	stats := stream.Stats()
	log.WithFields(log.Fields{
		"records":       stats.Records,
		"substitutions": stats.Substitutions,
	}).Debug("Done")
	return nil
}
