package entities

// GuessResult is the outcome of submitting a single guess.
type GuessResult int

const (
	// Match means the guess equals the secret.
	Match GuessResult = iota
	// Lower means the guess is below the secret.
	Lower
	// Higher means the guess is above the secret.
	Higher
)

// String returns the lowercase name of the result.
func (r GuessResult) String() string {
	switch r {
	case Match:
		return "match"
	case Lower:
		return "lower"
	case Higher:
		return "higher"
	default:
		return "unknown"
	}
}

// Code encodes the result as the small signed integer that crosses the
// host/guest boundary: -1 too low, 0 match, 1 too high.
func (r GuessResult) Code() int8 {
	switch r {
	case Lower:
		return -1
	case Higher:
		return 1
	default:
		return 0
	}
}
