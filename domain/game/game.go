// Package game implements the host-owned guessing game state machine.
package game

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/guessgame/domain/entities"
)

// Guess is one submission as seen by the game.
type Guess struct {
	Candidate uint32
	Result    entities.GuessResult
}

// GuessingGame owns the secret and the completion flag.
//
// The secret never changes after construction. The completion flag moves
// from false to true exactly once and is read by the game loop while being
// written from the import closure, so it is an atomic.
type GuessingGame struct {
	logger    *slog.Logger
	history   []Guess
	mu        sync.Mutex
	completed atomic.Bool
	secret    uint32
}

// Option configures a GuessingGame.
type Option func(*GuessingGame)

// WithLogger sets the logger used to report guesses.
func WithLogger(l *slog.Logger) Option {
	return func(g *GuessingGame) {
		g.logger = l
	}
}

// New creates a game around the given secret.
func New(secret uint32, opts ...Option) *GuessingGame {
	g := &GuessingGame{secret: secret}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Secret returns the number to be guessed.
func (g *GuessingGame) Secret() uint32 {
	return g.secret
}

// Submit compares candidate against the secret.
// A match marks the game completed; repeated matches are idempotent.
func (g *GuessingGame) Submit(candidate uint32) entities.GuessResult {
	var res entities.GuessResult
	switch {
	case candidate < g.secret:
		res = entities.Lower
	case candidate > g.secret:
		res = entities.Higher
	default:
		res = entities.Match
		g.completed.Store(true)
	}

	g.mu.Lock()
	g.history = append(g.history, Guess{Candidate: candidate, Result: res})
	g.mu.Unlock()

	g.logger.Debug("guess submitted", "guess", candidate, "result", res.String())
	return res
}

// Completed reports whether some prior Submit matched the secret.
func (g *GuessingGame) Completed() bool {
	return g.completed.Load()
}

// Attempts returns the number of Submit calls so far.
func (g *GuessingGame) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history)
}

// History returns the submissions starting at index from.
// An out-of-range from yields nil.
func (g *GuessingGame) History(from int) []Guess {
	g.mu.Lock()
	defer g.mu.Unlock()
	if from < 0 || from >= len(g.history) {
		return nil
	}
	out := make([]Guess, len(g.history)-from)
	copy(out, g.history[from:])
	return out
}
