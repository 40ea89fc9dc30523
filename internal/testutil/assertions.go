// Package testutil provides common test utilities and assertions for harness tests
package testutil

import (
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/guessgame/domain/entities"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// RequireErrorAs requires that err wraps an error of type T and returns it.
func RequireErrorAs[T error](t *testing.T, err error, msgAndArgs ...interface{}) T {
	t.Helper()

	var target T
	require.True(t, errors.As(err, &target), append([]interface{}{"error %v is not a %T", err, target}, msgAndArgs...)...)
	return target
}

// AssertResultsConsistent asserts that every recorded result matches how the
// guess compares to secret.
func AssertResultsConsistent(t *testing.T, secret uint32, guesses []entities.GuessRecord) {
	t.Helper()

	for _, g := range guesses {
		want := entities.Match
		switch {
		case g.Guess < secret:
			want = entities.Lower
		case g.Guess > secret:
			want = entities.Higher
		}
		assert.Equal(t, want, g.Result, "turn %d guess %d secret %d", g.Turn, g.Guess, secret)
	}
}

// AssertNarrowing asserts that every guess falls inside the window left by
// the previous results, starting from the full 32-bit range.
func AssertNarrowing(t *testing.T, guesses []entities.GuessRecord) {
	t.Helper()

	lower, upper := uint32(0), uint32(math.MaxUint32)
	for _, g := range guesses {
		if !assert.True(t, g.Guess >= lower && g.Guess <= upper,
			"turn %d guess %d outside [%d, %d]", g.Turn, g.Guess, lower, upper) {
			return
		}
		switch g.Result {
		case entities.Higher:
			upper = g.Guess - 1
		case entities.Lower:
			lower = g.Guess + 1
		}
	}
}

// AssertFound asserts a completed run whose final guess is the secret.
func AssertFound(t *testing.T, report entities.RunReport) {
	t.Helper()

	require.True(t, report.IsDone(), "run aborted: %v", report.Error)
	require.NotEmpty(t, report.Guesses)

	last := report.Guesses[len(report.Guesses)-1]
	assert.Equal(t, report.Secret, last.Guess)
	assert.Equal(t, entities.Match, last.Result)
	assert.Equal(t, report.Turns, last.Turn)
	AssertResultsConsistent(t, report.Secret, report.Guesses)
}
