package host

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/guessgame/domain/entities"
	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
	"github.com/reglet-dev/guessgame/domain/game"
)

// scriptedPlayer submits a fixed batch of guesses on each turn.
type scriptedPlayer struct {
	g      *game.GuessingGame
	err    error
	turns  [][]uint32
	failAt int
	delay  time.Duration
	taken  int
}

func (p *scriptedPlayer) Turn(ctx context.Context) error {
	p.taken++
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	batch := p.turns[(p.taken-1)%len(p.turns)]
	for _, guess := range batch {
		p.g.Submit(guess)
	}
	if p.taken == p.failAt {
		return p.err
	}
	return nil
}

func quietGame(secret uint32) *game.GuessingGame {
	return game.New(secret, game.WithLogger(slog.New(slog.DiscardHandler)))
}

func quietRun() RunOption {
	return WithRunLogger(slog.New(slog.DiscardHandler))
}

func TestRun_DoneOnMatchingTurn(t *testing.T) {
	g := quietGame(5)
	p := &scriptedPlayer{g: g, turns: [][]uint32{{1}, {9}, {5}, {7}}}

	report, err := Run(context.Background(), g, p, quietRun(), WithPlayerName("scripted"))
	require.NoError(t, err)

	assert.True(t, report.IsDone())
	assert.Equal(t, "scripted", report.Player)
	assert.Equal(t, uint32(5), report.Secret)
	assert.Equal(t, 3, report.Turns)
	assert.Nil(t, report.Error)
	assert.Equal(t, []entities.GuessRecord{
		{Turn: 1, Guess: 1, Result: entities.Lower},
		{Turn: 2, Guess: 9, Result: entities.Higher},
		{Turn: 3, Guess: 5, Result: entities.Match},
	}, report.Guesses)
	assert.False(t, report.StartedAt.IsZero())
}

func TestRun_SeveralGuessesPerTurn(t *testing.T) {
	g := quietGame(3)
	p := &scriptedPlayer{g: g, turns: [][]uint32{{0, 1}, {2, 3}}}

	report, err := Run(context.Background(), g, p, quietRun())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Turns)
	require.Len(t, report.Guesses, 4)
	assert.Equal(t, 1, report.Guesses[1].Turn)
	assert.Equal(t, 2, report.Guesses[2].Turn)
}

func TestRun_TurnFailure(t *testing.T) {
	g := quietGame(100)
	trap := &domainerrors.ExecutionError{Turn: 2, Err: errors.New("unreachable")}
	p := &scriptedPlayer{g: g, turns: [][]uint32{{1}}, failAt: 2, err: trap}

	report, err := Run(context.Background(), g, p, quietRun())
	require.ErrorIs(t, err, trap)

	assert.Equal(t, entities.OutcomeAborted, report.Outcome)
	assert.Equal(t, 2, report.Turns)
	assert.Len(t, report.Guesses, 2)
	require.NotNil(t, report.Error)
	assert.Equal(t, "execution", report.Error.Type)
	assert.Equal(t, "turn_2", report.Error.Code)
	assert.Equal(t, 2, p.taken)
}

func TestRun_MaxTurns(t *testing.T) {
	g := quietGame(100)
	p := &scriptedPlayer{g: g, turns: [][]uint32{{1}}}

	report, err := Run(context.Background(), g, p, quietRun(), WithMaxTurns(5))

	var budgetErr *domainerrors.BudgetError
	require.True(t, errors.As(err, &budgetErr))
	assert.False(t, budgetErr.Timeout())
	assert.Equal(t, 5, budgetErr.Turns)
	assert.Equal(t, 5, report.Turns)
	assert.Equal(t, "max_turns", report.Error.Code)
}

func TestRun_MaxTurnsNotHitWhenMatchedOnLastTurn(t *testing.T) {
	g := quietGame(3)
	p := &scriptedPlayer{g: g, turns: [][]uint32{{1}, {2}, {3}}}

	report, err := Run(context.Background(), g, p, quietRun(), WithMaxTurns(3))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Turns)
}

func TestRun_Timeout(t *testing.T) {
	g := quietGame(100)
	p := &scriptedPlayer{g: g, turns: [][]uint32{{1}}, delay: 20 * time.Millisecond}

	report, err := Run(context.Background(), g, p, quietRun(), WithTimeout(50*time.Millisecond))

	var budgetErr *domainerrors.BudgetError
	require.True(t, errors.As(err, &budgetErr), "got %v", err)
	assert.True(t, budgetErr.Timeout())
	assert.Equal(t, 50*time.Millisecond, budgetErr.TimeLimit)
	assert.GreaterOrEqual(t, budgetErr.Elapsed, 50*time.Millisecond)
	assert.True(t, report.Error.IsTimeout)
}

func TestRun_CallerCancellation(t *testing.T) {
	g := quietGame(100)
	p := &scriptedPlayer{g: g, turns: [][]uint32{{1}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, g, p, quietRun(), WithTimeout(time.Minute))
	require.ErrorIs(t, err, context.Canceled)

	var budgetErr *domainerrors.BudgetError
	assert.False(t, errors.As(err, &budgetErr))
	assert.Equal(t, 0, report.Turns)
	assert.Equal(t, 0, p.taken)
}

// trappingPlayer fails its first turn the way an interrupted guest does.
type trappingPlayer struct{}

func (trappingPlayer) Turn(ctx context.Context) error {
	<-ctx.Done()
	return &domainerrors.ExecutionError{Turn: 1, Err: ctx.Err()}
}

func TestRun_CallerCancellationDuringTurn(t *testing.T) {
	g := quietGame(100)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	report, err := Run(ctx, g, trappingPlayer{}, quietRun(), WithTimeout(time.Minute))
	require.ErrorIs(t, err, context.Canceled)

	var execErr *domainerrors.ExecutionError
	assert.False(t, errors.As(err, &execErr))
	var budgetErr *domainerrors.BudgetError
	assert.False(t, errors.As(err, &budgetErr))
	assert.Equal(t, entities.OutcomeAborted, report.Outcome)
	assert.Equal(t, 1, report.Turns)
}
