package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reglet-dev/guessgame/domain/entities"
	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
)

func TestRequireErrorAs(t *testing.T) {
	err := fmt.Errorf("play: %w", &domainerrors.ExecutionError{Turn: 4})
	execErr := RequireErrorAs[*domainerrors.ExecutionError](t, err)
	assert.Equal(t, 4, execErr.Turn)
}

func TestAssertFound(t *testing.T) {
	AssertFound(t, entities.RunReport{
		Outcome: entities.OutcomeDone,
		Secret:  10,
		Turns:   3,
		Guesses: []entities.GuessRecord{
			{Turn: 1, Guess: 50, Result: entities.Higher},
			{Turn: 2, Guess: 5, Result: entities.Lower},
			{Turn: 3, Guess: 10, Result: entities.Match},
		},
	})
}

func TestAssertNarrowing(t *testing.T) {
	AssertNarrowing(t, []entities.GuessRecord{
		{Turn: 1, Guess: 4294967295, Result: entities.Higher},
		{Turn: 2, Guess: 0, Result: entities.Lower},
		{Turn: 3, Guess: 4294967294, Result: entities.Higher},
		{Turn: 4, Guess: 1, Result: entities.Match},
	})
}
