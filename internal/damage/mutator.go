// Package damage exchanges bases with a probability that decays
// geometrically with the distance from one end of the read, the pattern
// left by ancient DNA damage.
//
// The exchange probability of the base at distance k (1, 2, 3, ...) from
// the chosen end is
//
//	factor * (1-p)^(k-1) * p + intercept
package damage

import (
	"math"
	"math/rand/v2"
)

// Any matches every base in From and picks a random different nucleotide
// in To.
const Any = '*'

const nucleotides = "ACGT"

// Mutator exchanges one kind of base.
type Mutator struct {
	From      byte    // Base to exchange, matched case-insensitively, or Any
	To        byte    // Replacement base, or Any
	Factor    float64 // Scale of the geometric term
	GeomProb  float64 // Success probability of the geometric density
	Intercept float64 // Position independent probability
	FromEnd   bool    // Count distances from the 3' end
}

// Prob returns the exchange probability of position i in a read of
// length n.
func (m Mutator) Prob(i, n int) float64 {
	k := i + 1
	if m.FromEnd {
		k = n - i
	}
	return m.Factor*dgeom(k, m.GeomProb) + m.Intercept
}

func dgeom(k int, p float64) float64 {
	if k < 1 {
		return 0
	}
	return math.Pow(1-p, float64(k-1)) * p
}

func (m Mutator) matches(b byte) bool {
	return m.From == Any || lower(b) == lower(m.From)
}

// Mutate exchanges bases of seq in place and calls changed with the
// position of every base whose value changed. One uniform value is drawn
// per matching base.
func (m Mutator) Mutate(seq []byte, rng *rand.Rand, changed func(i int)) {
	for i, b := range seq {
		if !m.matches(b) {
			continue
		}
		if rng.Float64() >= m.Prob(i, len(seq)) {
			continue
		}
		if nb := m.replacement(b, rng); nb != b {
			seq[i] = nb
			changed(i)
		}
	}
}

// replacement returns the base b is exchanged for. Characters other than
// A, C, G and T are never replaced by a random pick.
func (m Mutator) replacement(b byte, rng *rand.Rand) byte {
	if m.To != Any {
		return m.To
	}
	idx := indexBase(b)
	if idx < 0 {
		return b
	}
	// Pick one of the three other nucleotides, keeping the case
	pick := (idx + 1 + rng.IntN(len(nucleotides)-1)) % len(nucleotides)
	nb := nucleotides[pick]
	if b >= 'a' {
		nb = lower(nb)
	}
	return nb
}

func indexBase(b byte) int {
	switch lower(b) {
	case 'a':
		return 0
	case 'c':
		return 1
	case 'g':
		return 2
	case 't':
		return 3
	}
	return -1
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
