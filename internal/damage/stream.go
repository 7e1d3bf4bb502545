package damage

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/vertti/readmut/internal/cigar"
	"github.com/vertti/readmut/internal/reads"
)

// Chain applies its mutators one after another.
type Chain []Mutator

// Mutate runs every mutator over seq in place and returns the sorted
// positions that changed.
func (c Chain) Mutate(seq []byte, rng *rand.Rand) []int {
	var changed []int
	mark := func(i int) { changed = append(changed, i) }
	for _, m := range c {
		m.Mutate(seq, rng, mark)
	}
	slices.Sort(changed)
	return slices.Compact(changed)
}

// Stats counts the records and substitutions a Stream has produced.
type Stats struct {
	Records       int
	Substitutions int
}

// Stream is a reads.Source that damages the records of another Source.
// Substituted bases are recorded in the CIGAR as M.
type Stream struct {
	src   reads.Source
	chain Chain
	rng   *rand.Rand
	stats Stats
}

// NewStream returns a Stream reading from src.
func NewStream(src reads.Source, chain Chain, rng *rand.Rand) *Stream {
	return &Stream{src: src, chain: chain, rng: rng}
}

// Stats returns the counts so far.
func (s *Stream) Stats() Stats { return s.stats }

// Next returns the next record. Records without substitutions keep their
// CIGAR text unchanged.
func (s *Stream) Next() (*reads.Record, error) {
	rec, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	s.stats.Records++

	seq := slices.Clone(rec.Sequence)
	changed := s.chain.Mutate(seq, s.rng)
	rec.Sequence = seq
	if len(changed) == 0 {
		return rec, nil
	}
	s.stats.Substitutions += len(changed)

	text, err := recordSubstitutions(rec.Cigar, changed)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", s.stats.Records, err)
	}
	rec.Cigar = text
	return rec, nil
}

// recordSubstitutions applies a one base Match edit for every changed
// read position.
func recordSubstitutions(text string, changed []int) (string, error) {
	c, err := cigar.Parse(text)
	if err != nil {
		return "", err
	}
	if c.IsUnavailable() {
		return text, nil
	}
	for _, i := range changed {
		off, err := c.ReadOffset(i)
		if err != nil {
			return "", err
		}
		if err := c.ApplyAt(cigar.Edit{Len: 1, Op: cigar.Match}, off); err != nil {
			return "", fmt.Errorf("substituting base %d: %w", i, err)
		}
	}
	return c.String(), nil
}
