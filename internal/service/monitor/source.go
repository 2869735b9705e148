package monitor

import (
	"math/rand/v2"
	"sync"
)

// Source produces samples in [0, 1).
type Source interface {
	Float64() (float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (float64, error)

// Float64 calls f.
func (f SourceFunc) Float64() (float64, error) {
	return f()
}

// RandomSource draws uniformly distributed samples from a PCG generator.
type RandomSource struct {
	// mu protects rng, which is not safe for concurrent use.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a source seeded with seed, or with a random
// seed when seed is zero.
func NewRandomSource(seed uint64) *RandomSource {
	hi, lo := seed, seed^0x9E3779B97F4A7C15
	if seed == 0 {
		hi, lo = rand.Uint64(), rand.Uint64()
	}

	return &RandomSource{
		rng: rand.New(rand.NewPCG(hi, lo)), //nolint:gosec // Demo values, not secrets.
	}
}

// Float64 returns the next sample. It never fails.
func (s *RandomSource) Float64() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Float64(), nil
}
