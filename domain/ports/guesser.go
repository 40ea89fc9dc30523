package ports

import "github.com/reglet-dev/guessgame/domain/entities"

// Guesser is the capability through which guest code submits guesses.
// It is the only channel by which a guest can mutate host state.
type Guesser interface {
	// Submit compares candidate against the secret. The state transition, if
	// any, is applied before Submit returns.
	Submit(candidate uint32) entities.GuessResult
}

// CompletionReporter exposes the completion flag observed by the game loop.
type CompletionReporter interface {
	// Completed reports whether some prior Submit matched the secret.
	Completed() bool
}
