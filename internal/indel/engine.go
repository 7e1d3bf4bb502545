// Package indel inserts and deletes random stretches of bases in a
// stream of reads and keeps their CIGAR strings consistent.
//
// Events are spaced geometrically along the concatenated stream, so a
// distance that reaches past the end of one read carries over into the
// next. Insertions and deletions are placed at span offsets of the
// read's CIGAR.
package indel

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/vertti/readmut/internal/cigar"
	"github.com/vertti/readmut/internal/reads"
)

// Stats counts the records and events an Engine has produced.
type Stats struct {
	Records       int
	Insertions    int
	Deletions     int
	InsertedBases int
	DeletedBases  int
	Skipped       int // Records left unchanged after an edit error
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source, overriding Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSkipInvalid makes the Engine yield a record unchanged, instead of
// failing, when its CIGAR cannot be edited. The skipped record counts as
// having received no event: the distances carried to later records are
// those from before the record, and events that fell within it move to
// the start of the next one.
func WithSkipInvalid() Option {
	return func(e *Engine) { e.skipInvalid = true }
}

// WithLogger sets the logger events are traced to.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// Engine is a reads.Source that mutates the records of another Source.
// It is not safe for concurrent use, and it cannot be restarted: a fresh
// Engine (and, for reproducible output, a freshly seeded random source)
// is needed to process the input again.
type Engine struct {
	src         reads.Source
	cfg         Config
	rng         *rand.Rand
	log         *logrus.Logger
	passthrough bool
	skipInvalid bool

	counters
	consumed int

	stats Stats
}

// counters are the pending events, carried across records.
type counters struct {
	toInsert  int
	insertLen int
	toDelete  int
	deleteLen int
}

// New returns an Engine reading from src. Random values are drawn in a
// fixed order, so a seeded Engine always produces the same output for
// the same input.
func New(src reads.Source, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		src:         src,
		cfg:         cfg,
		passthrough: cfg.Passthrough(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		if cfg.Seed != nil {
			//nolint:gosec // intentionally using math/rand for reproducibility, not security
			e.rng = rand.New(rand.NewPCG(*cfg.Seed, *cfg.Seed))
		} else {
			//nolint:gosec // simulation, not security
			e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	if e.log == nil {
		e.log = logrus.New()
		e.log.SetOutput(io.Discard)
	}

	if e.passthrough {
		e.toInsert, e.toDelete = never, never
		return e, nil
	}

	// Only the first insertion may happen right at offset 0
	e.toInsert = advance(spacing(e.rng, cfg.InsertProb), -1)
	e.insertLen = e.nextInsertLen()
	e.toDelete = spacing(e.rng, cfg.DeleteProb)
	e.deleteLen = e.nextDeleteLen()
	return e, nil
}

// Stats returns the counts so far.
func (e *Engine) Stats() Stats { return e.stats }

// Next returns the next record, mutated. The record returned by the
// underlying Source is modified and returned. Records that receive no
// event keep their CIGAR text unchanged, even if it is malformed.
func (e *Engine) Next() (*reads.Record, error) {
	if e.passthrough {
		rec, err := e.src.Next()
		if err == nil {
			e.stats.Records++
		}
		return rec, err
	}

	e.toInsert = advance(e.toInsert, -e.consumed)
	e.toDelete = advance(e.toDelete, -e.consumed)
	e.consumed = 0

	rec, err := e.src.Next()
	if err != nil {
		return nil, err
	}

	saved, stats := e.counters, e.stats
	m := mutation{rec: rec, seq: rec.Sequence}
	if err := e.mutate(&m); err != nil {
		err = fmt.Errorf("record %d: %w", e.stats.Records+1, err)
		if !e.skipInvalid {
			return nil, err
		}
		e.log.WithError(err).Warn("Leaving record unchanged")
		e.counters, e.stats = saved, stats
		e.stats.Skipped++
		m = mutation{rec: rec, seq: rec.Sequence}
		e.toInsert = max(e.toInsert, len(m.seq))
		e.toDelete = max(e.toDelete, len(m.seq))
	}

	rec.Sequence = m.seq
	if m.cigar != nil {
		rec.Cigar = m.cigar.String()
	}
	e.consumed = len(m.seq)
	e.stats.Records++
	return rec, nil
}

// mutate applies every event that falls within the record.
func (e *Engine) mutate(m *mutation) error {
	for {
		l := len(m.seq)
		if e.toInsert == e.toDelete {
			// Tie: skip one of the two events, chosen at random
			if e.rng.IntN(2) == 0 {
				e.toInsert = advance(e.toInsert, spacing(e.rng, e.cfg.InsertProb))
			} else {
				e.toDelete = advance(e.toDelete, spacing(e.rng, e.cfg.DeleteProb))
			}
			continue
		}

		switch {
		case e.toInsert < e.toDelete && e.toInsert < l:
			if err := e.insert(m); err != nil {
				return err
			}
		case e.toDelete < e.toInsert && e.toDelete < l:
			if err := e.delete(m); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (e *Engine) insert(m *mutation) error {
	pos, n := e.toInsert, e.insertLen
	if err := m.ensureCigar(); err != nil {
		return err
	}

	bases := randomBases(e.rng, n)
	if err := m.cigar.ApplyAt(cigar.Edit{Len: n, Op: cigar.Insert}, pos); err != nil {
		return fmt.Errorf("inserting %d bases at %d: %w", n, pos, err)
	}
	m.seq = slices.Insert(m.seq, pos, bases...)
	e.trace("insert", pos, n)
	e.stats.Insertions++
	e.stats.InsertedBases += n

	// Positions behind the insertion moved by n
	e.toDelete = advance(e.toDelete, n)
	e.toInsert = advance(advance(e.toInsert, spacing(e.rng, e.cfg.InsertProb)), n)
	e.insertLen = e.nextInsertLen()
	return nil
}

func (e *Engine) delete(m *mutation) error {
	pos := e.toDelete
	if err := m.ensureCigar(); err != nil {
		return err
	}

	// A deletion stops at the end of the read
	n := min(e.deleteLen, len(m.seq)-pos)
	if err := m.cigar.ApplyAt(cigar.Edit{Len: n, Op: cigar.Delete}, pos); err != nil {
		return fmt.Errorf("deleting %d bases at %d: %w", n, pos, err)
	}
	m.seq = slices.Delete(m.seq, pos, pos+n)
	e.trace("delete", pos, n)
	e.stats.Deletions++
	e.stats.DeletedBases += n

	e.toDelete = advance(e.toDelete, spacing(e.rng, e.cfg.DeleteProb))
	e.deleteLen = e.nextDeleteLen()
	return nil
}

func (e *Engine) nextInsertLen() int {
	if e.cfg.InsertProb == 0 {
		return 0
	}
	return eventLength(e.rng, e.cfg.InsertLenParam)
}

func (e *Engine) nextDeleteLen() int {
	if e.cfg.DeleteProb == 0 {
		return 0
	}
	return eventLength(e.rng, e.cfg.DeleteLenParam)
}

func (e *Engine) trace(event string, pos, n int) {
	if !e.log.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	e.log.WithFields(logrus.Fields{
		"record": e.stats.Records + 1,
		"pos":    pos,
		"len":    n,
	}).Trace(event)
}

// mutation is the record being edited. The CIGAR is parsed and the
// sequence copied on the first edit only.
type mutation struct {
	rec   *reads.Record
	seq   []byte
	cigar *cigar.Cigar
}

func (m *mutation) ensureCigar() error {
	if m.cigar != nil {
		return nil
	}
	c, err := cigar.Parse(m.rec.Cigar)
	if err != nil {
		return err
	}
	m.cigar = c
	m.seq = slices.Clone(m.seq)
	return nil
}
