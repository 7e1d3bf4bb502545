package indel

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometricMean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p    float64
		want float64
	}{
		{0.2, 4},
		{0.5, 1},
		{0.9, 1.0 / 9},
	}

	for _, tt := range tests {
		rng := seeded(123)
		const n = 200000
		sum := 0
		for range n {
			sum += geometric(rng, tt.p)
		}
		// Mean of Geometric(p) on {0, 1, ...} is (1-p)/p
		assert.InDelta(t, tt.want, float64(sum)/n, tt.want*0.05, "p=%v", tt.p)
	}
}

func TestGeometricEdgeCases(t *testing.T) {
	t.Parallel()

	src := &countingSource{src: rand.NewPCG(1, 2)}
	rng := rand.New(src)

	assert.Equal(t, 0, geometric(rng, 1))
	assert.Equal(t, 1, src.draws)

	assert.Equal(t, never, spacing(rng, 0))
	assert.Equal(t, 1, src.draws)

	assert.Equal(t, 1, spacing(rng, 1))
	assert.Equal(t, 1, eventLength(rng, 0))
	assert.Equal(t, 3, src.draws)

	for range 1000 {
		assert.LessOrEqual(t, geometric(rng, 1e-300), maxDraw)
	}
}

func TestEventLengthCapped(t *testing.T) {
	t.Parallel()

	rng := seeded(2)
	capped := 0
	for range 100 {
		n := eventLength(rng, 1-0x1p-53)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, maxEventLen)
		if n == maxEventLen {
			capped++
		}
	}
	assert.Positive(t, capped)
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, advance(5, 2))
	assert.Equal(t, 3, advance(5, -2))
	assert.Equal(t, never, advance(never, 10))
	assert.Equal(t, never, advance(never, -10))
	assert.Equal(t, never-1, advance(never-5, 10))
}

func TestRandomBases(t *testing.T) {
	t.Parallel()

	counts := map[byte]int{}
	for _, b := range randomBases(seeded(9), 4000) {
		counts[b]++
	}
	assert.Len(t, counts, 4)
	for _, c := range []byte("ATGC") {
		assert.InDelta(t, 1000, counts[c], 150, string(c))
	}
	assert.Empty(t, randomBases(seeded(9), 0))
}
