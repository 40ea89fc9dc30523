package ports

// RandomSource supplies uniformly distributed integers.
// Implementations must be safe for concurrent use.
type RandomSource interface {
	// Rand32 returns a value in the inclusive range [low, high].
	// If low > high the bounds are swapped.
	Rand32(low, high uint32) uint32
}
