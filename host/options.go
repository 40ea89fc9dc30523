package host

import (
	"log/slog"
	"time"

	"github.com/reglet-dev/guessgame/domain/ports"
	"github.com/reglet-dev/guessgame/hostfuncs"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithRuntime makes the executor use rt instead of creating its own wazero
// runtime. The executor does not close a runtime it did not create.
func WithRuntime(rt ports.SandboxRuntime) Option {
	return func(e *Executor) {
		e.runtime = rt
	}
}

// WithLogger sets the logger handed to players and game loops.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHostMiddleware adds middleware to the import table of every player,
// after the built-in recovery, logging and counting middleware.
func WithHostMiddleware(mw ...hostfuncs.Middleware) Option {
	return func(e *Executor) {
		e.middleware = append(e.middleware, mw...)
	}
}

// PlayerOption configures a Player.
type PlayerOption func(*playerConfig)

type playerConfig struct {
	logger     *slog.Logger
	middleware []hostfuncs.Middleware
}

// WithPlayerLogger sets the logger used for host function calls.
func WithPlayerLogger(logger *slog.Logger) PlayerOption {
	return func(c *playerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPlayerMiddleware adds middleware to the player's import table.
func WithPlayerMiddleware(mw ...hostfuncs.Middleware) PlayerOption {
	return func(c *playerConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// RunOption configures a game loop.
type RunOption func(*runConfig)

type runConfig struct {
	logger   *slog.Logger
	player   string
	maxTurns int
	timeout  time.Duration
}

func defaultRunConfig() runConfig {
	return runConfig{
		logger: slog.Default(),
	}
}

// WithMaxTurns aborts the run with a BudgetError once n turns have been
// taken without completing the game. Zero means unlimited.
func WithMaxTurns(n int) RunOption {
	return func(c *runConfig) {
		c.maxTurns = n
	}
}

// WithTimeout aborts the run with a BudgetError once d has elapsed.
// Zero means no limit. A turn in progress is only interrupted if the sandbox
// runtime honours context cancellation.
func WithTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		c.timeout = d
	}
}

// WithRunLogger sets the logger for game loop events.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPlayerName labels the run report and log records.
func WithPlayerName(name string) RunOption {
	return func(c *runConfig) {
		c.player = name
	}
}
