package indel

import (
	"math"
	"math/rand/v2"
)

// never is the distance to an event that is disabled.
const never = math.MaxInt

// maxDraw caps sampled values so that distances can be summed.
const maxDraw = math.MaxInt / 4

// maxEventLen caps the length of a single insertion or deletion. Length
// parameters close to 1 would otherwise yield lengths that cannot be
// allocated.
const maxEventLen = 1 << 20

const nucleotides = "ATGC"

// geometric draws from a geometric distribution with success probability
// p on {0, 1, 2, ...} by inverting its CDF, 1-(1-p)^(k+1). One uniform
// value is drawn even for p == 1.
func geometric(rng *rand.Rand, p float64) int {
	u := rng.Float64()
	if p == 1 {
		return 0
	}
	k := math.Ceil(math.Log1p(-u)/math.Log1p(-p) - 1)
	switch {
	case k < 0 || math.IsNaN(k):
		return 0
	case k > maxDraw:
		return maxDraw
	}
	return int(k)
}

// spacing draws the distance to the next event, at least 1. It draws
// nothing and returns never for p == 0.
func spacing(rng *rand.Rand, p float64) int {
	if p == 0 {
		return never
	}
	return geometric(rng, p) + 1
}

// eventLength draws an event length, at least 1 and at most maxEventLen.
func eventLength(rng *rand.Rand, lenParam float64) int {
	return min(geometric(rng, 1-lenParam)+1, maxEventLen)
}

// advance moves a distance by n bases. Distances of disabled events stay
// infinite.
func advance(d, n int) int {
	if d == never {
		return never
	}
	if n > 0 && d > never-1-n {
		return never - 1
	}
	return d + n
}

// randomBases returns n bases drawn uniformly from A, T, G and C.
func randomBases(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = nucleotides[rng.IntN(len(nucleotides))]
	}
	return b
}
