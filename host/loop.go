package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reglet-dev/guessgame/domain/entities"
	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
	"github.com/reglet-dev/guessgame/domain/game"
)

// TurnTaker advances a game by one guest turn.
type TurnTaker interface {
	Turn(ctx context.Context) error
}

// GameState is the read side of a game that the loop observes.
type GameState interface {
	Secret() uint32
	Completed() bool
	Attempts() int
	History(from int) []game.Guess
}

// Run drives p until g reports completion.
//
// Completion is checked only after a turn returns, so the turn that submitted
// the matching guess is always the last one. A failing turn, a cancelled ctx
// or an exhausted budget aborts the run; the report is returned in every case
// and the error is nil only when the outcome is done.
func Run(ctx context.Context, g GameState, p TurnTaker, opts ...RunOption) (entities.RunReport, error) {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger.With("player", cfg.player, "secret", g.Secret())

	report := entities.RunReport{
		StartedAt: time.Now(),
		Player:    cfg.player,
		Outcome:   entities.OutcomeAborted,
		Secret:    g.Secret(),
	}

	loopCtx := ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		loopCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	abort := func(err error) (entities.RunReport, error) {
		report.Duration = time.Since(report.StartedAt)
		report.Error = domainerrors.ToErrorDetail(err)
		logger.ErrorContext(ctx, "game aborted", "turns", report.Turns, "error", err)
		return report, err
	}

	// budgetExceeded reports whether loopCtx expired because of our own
	// timeout rather than the caller's context.
	budgetExceeded := func() bool {
		return cfg.timeout > 0 && ctx.Err() == nil && errors.Is(loopCtx.Err(), context.DeadlineExceeded)
	}
	timeBudgetError := func() error {
		return &domainerrors.BudgetError{
			Turns:     report.Turns,
			TimeLimit: cfg.timeout,
			Elapsed:   time.Since(report.StartedAt),
		}
	}

	logger.InfoContext(ctx, "game started", "max_turns", cfg.maxTurns, "timeout", cfg.timeout)
	seen := g.Attempts()

	for !g.Completed() {
		if cfg.maxTurns > 0 && report.Turns >= cfg.maxTurns {
			return abort(&domainerrors.BudgetError{Turns: report.Turns, MaxTurns: cfg.maxTurns})
		}
		if budgetExceeded() {
			return abort(timeBudgetError())
		}
		if err := ctx.Err(); err != nil {
			return abort(fmt.Errorf("game cancelled after %d turns: %w", report.Turns, err))
		}

		report.Turns++
		err := p.Turn(loopCtx)

		for _, guess := range g.History(seen) {
			report.Guesses = append(report.Guesses, entities.GuessRecord{
				Turn:   report.Turns,
				Guess:  guess.Candidate,
				Result: guess.Result,
			})
			seen++
		}

		if err != nil {
			if budgetExceeded() {
				return abort(timeBudgetError())
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return abort(fmt.Errorf("game cancelled during turn %d: %w", report.Turns, ctxErr))
			}
			return abort(err)
		}
	}

	report.Outcome = entities.OutcomeDone
	report.Duration = time.Since(report.StartedAt)
	logger.InfoContext(ctx, "game finished", "turns", report.Turns, "duration", report.Duration)
	return report, nil
}
