// Package random provides the Random Source used for rand32 and for drawing
// secrets.
package random

import (
	"math/rand/v2"
	"sync"
)

// Source draws uniformly distributed integers from a PCG generator.
// It is safe for concurrent use.
type Source struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewSource returns a deterministic Source for the given seed.
func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewEntropySource returns a Source seeded from the runtime's entropy.
func NewEntropySource() *Source {
	return NewSource(rand.Uint64())
}

// Rand32 returns a value in the inclusive range [low, high].
// If low > high the bounds are swapped.
func (s *Source) Rand32(low, high uint32) uint32 {
	if low > high {
		low, high = high, low
	}
	span := uint64(high) - uint64(low) + 1

	s.mu.Lock()
	n := s.rng.Uint64N(span)
	s.mu.Unlock()

	return low + uint32(n) //nolint:gosec // G115: n < span <= 2^32
}

// Uint32 returns a value drawn from the full 32-bit range.
func (s *Source) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint32()
}
