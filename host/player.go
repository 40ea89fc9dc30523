package host

import (
	"context"
	"fmt"
	"log/slog"

	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
	"github.com/reglet-dev/guessgame/domain/ports"
	"github.com/reglet-dev/guessgame/hostfuncs"
)

// TurnExport is the guest entry point called once per turn.
const TurnExport = "turn"

// Player owns one guest instance wired to one game and one random source.
// Turn must not be called concurrently.
type Player struct {
	instance ports.Instance
	counter  *hostfuncs.CallCounter
	turns    int
}

// NewPlayer instantiates module with an import table serving g and src.
//
// The module must import rand32 and one of submit_guess or guess, and export
// turn taking and returning nothing. Anything else it imports must also
// resolve against the import table. Failures are reported as *errors.LinkError.
func NewPlayer(ctx context.Context, rt ports.SandboxRuntime, module ports.CompiledModule, g ports.Guesser, src ports.RandomSource, opts ...PlayerOption) (*Player, error) {
	cfg := playerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkContract(module); err != nil {
		return nil, err
	}

	counter := hostfuncs.NewCallCounter()
	middleware := append([]hostfuncs.Middleware{
		hostfuncs.PanicRecoveryMiddleware(),
		hostfuncs.LoggingMiddleware(cfg.logger),
		counter.Middleware(),
	}, cfg.middleware...)

	imports, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(middleware...),
		hostfuncs.WithBundle(hostfuncs.GameBundle(g, src)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build import table: %w", err)
	}

	instance, err := rt.Instantiate(ctx, module, imports)
	if err != nil {
		return nil, err
	}

	cfg.logger.DebugContext(ctx, "player ready", "instance", instance.Name())
	return &Player{instance: instance, counter: counter}, nil
}

// checkContract verifies the game imports and the turn export.
func checkContract(module ports.CompiledModule) error {
	imported := make(map[string]bool)
	for _, def := range module.ImportedFunctions() {
		imported[def.Name] = true
	}

	if !imported[hostfuncs.Rand32Name] {
		return &domainerrors.LinkError{Import: hostfuncs.Rand32Name, Reason: "not imported by guest"}
	}
	if !imported[hostfuncs.SubmitGuessName] && !imported[hostfuncs.GuessName] {
		return &domainerrors.LinkError{Import: hostfuncs.SubmitGuessName, Reason: "not imported by guest"}
	}

	for _, def := range module.ExportedFunctions() {
		if def.Name != TurnExport {
			continue
		}
		if len(def.Params) != 0 || len(def.Results) != 0 {
			return &domainerrors.LinkError{
				Import: TurnExport,
				Reason: fmt.Sprintf("export has signature %s, want turn() -> ()", def),
			}
		}
		return nil
	}
	return &domainerrors.LinkError{Import: TurnExport, Reason: "not exported by guest"}
}

// Turn calls the guest's turn export once. A trap is returned as
// *errors.ExecutionError carrying the 1-based turn number.
func (p *Player) Turn(ctx context.Context) error {
	p.turns++
	if err := p.instance.Call(ctx, TurnExport); err != nil {
		return &domainerrors.ExecutionError{Turn: p.turns, Err: err}
	}
	return nil
}

// Turns returns how many times Turn has been called.
func (p *Player) Turns() int {
	return p.turns
}

// Name returns the name of the underlying instance.
func (p *Player) Name() string {
	return p.instance.Name()
}

// Calls returns successful host function calls made by the guest, per import.
func (p *Player) Calls() map[string]int {
	return p.counter.Counts()
}

// Close releases the guest instance.
func (p *Player) Close(ctx context.Context) error {
	return p.instance.Close(ctx)
}
