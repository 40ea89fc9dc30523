package entities

import (
	"time"
)

// Outcome is the terminal state of a game run.
type Outcome string

const (
	// OutcomeDone indicates the guest found the secret.
	OutcomeDone Outcome = "done"

	// OutcomeAborted indicates the run stopped without the secret being found,
	// because of a trap, a budget limit or cancellation.
	OutcomeAborted Outcome = "aborted"
)

// GuessRecord is one observed submit_guess call.
type GuessRecord struct {
	// Turn is the 1-based turn during which the guess was submitted.
	Turn int `json:"turn"`

	// Guess is the submitted candidate.
	Guess uint32 `json:"guess"`

	// Result is how the candidate compared to the secret.
	Result GuessResult `json:"result"`
}

// RunReport summarises a single game run.
type RunReport struct {
	// StartedAt is when the game loop entered the Running state.
	StartedAt time.Time `json:"started_at"`

	// Error contains structured error information if Outcome is aborted.
	Error *ErrorDetail `json:"error,omitempty"`

	// Player identifies the guest that played.
	Player string `json:"player,omitempty"`

	// Outcome is the terminal state of the run.
	Outcome Outcome `json:"outcome"`

	// Guesses lists every submitted guess in order.
	Guesses []GuessRecord `json:"guesses,omitempty"`

	// Duration is the wall-clock time spent in the game loop.
	Duration time.Duration `json:"duration"`

	// Turns is the number of turn() invocations that returned, plus the failing
	// one for aborted runs.
	Turns int `json:"turns"`

	// Secret is the number the guest had to find.
	Secret uint32 `json:"secret"`
}

// IsDone returns true if the secret was found.
func (r RunReport) IsDone() bool {
	return r.Outcome == OutcomeDone
}
