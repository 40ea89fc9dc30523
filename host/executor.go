package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/guessgame/domain/entities"
	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
	"github.com/reglet-dev/guessgame/domain/game"
	"github.com/reglet-dev/guessgame/domain/ports"
	"github.com/reglet-dev/guessgame/hostfuncs"
	"github.com/reglet-dev/guessgame/infrastructure/wazero"
)

// Executor compiles guest modules and creates players on one sandbox runtime.
// It is safe for concurrent use as long as the runtime is.
type Executor struct {
	runtime     ports.SandboxRuntime
	logger      *slog.Logger
	middleware  []hostfuncs.Middleware
	ownsRuntime bool
}

// NewExecutor creates a new executor with the given options.
// Without WithRuntime it creates a wazero runtime that honours context
// cancellation during guest calls.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	if e.runtime == nil {
		rt, err := wazero.NewRuntime(ctx, wazero.WithCloseOnContextDone(true))
		if err != nil {
			return nil, fmt.Errorf("failed to create runtime: %w", err)
		}
		e.runtime = rt
		e.ownsRuntime = true
	}

	return e, nil
}

// Close releases the runtime if the executor created it.
func (e *Executor) Close(ctx context.Context) error {
	if !e.ownsRuntime {
		return nil
	}
	return e.runtime.Close(ctx)
}

// Compile compiles a guest artifact. Malformed input yields *errors.CompileError.
func (e *Executor) Compile(ctx context.Context, wasm []byte) (ports.CompiledModule, error) {
	module, err := e.runtime.Compile(ctx, wasm)
	if err != nil {
		e.logger.ErrorContext(ctx, "compile failed", "size", len(wasm), "error", err)
		return nil, err
	}
	return module, nil
}

// NewPlayer instantiates module for one game. See NewPlayer.
func (e *Executor) NewPlayer(ctx context.Context, module ports.CompiledModule, g ports.Guesser, src ports.RandomSource) (*Player, error) {
	return NewPlayer(ctx, e.runtime, module, g, src,
		WithPlayerLogger(e.logger),
		WithPlayerMiddleware(e.middleware...),
	)
}

// Play runs one complete game: it creates a player for g, drives it with Run
// and releases it. A link failure is reported as an aborted run with no turns.
func (e *Executor) Play(ctx context.Context, module ports.CompiledModule, g *game.GuessingGame, src ports.RandomSource, opts ...RunOption) (entities.RunReport, error) {
	opts = append([]RunOption{WithRunLogger(e.logger)}, opts...)

	player, err := e.NewPlayer(ctx, module, g, src)
	if err != nil {
		cfg := defaultRunConfig()
		for _, opt := range opts {
			opt(&cfg)
		}
		cfg.logger.ErrorContext(ctx, "player setup failed", "player", cfg.player, "error", err)
		return entities.RunReport{
			Player:  cfg.player,
			Outcome: entities.OutcomeAborted,
			Secret:  g.Secret(),
			Error:   domainerrors.ToErrorDetail(err),
		}, err
	}
	defer func() {
		if err := player.Close(ctx); err != nil {
			e.logger.WarnContext(ctx, "failed to close player", "error", err)
		}
	}()

	return Run(ctx, g, player, opts...)
}
