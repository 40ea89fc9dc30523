// Command guessgame runs guessing games played by sandboxed WebAssembly guests.
//
// Usage:
//
//	guessgame [-player random|midpoint] [-wasm file.wasm] [-secret n] [-games n] ...
//	guessgame -list -wasm file.wasm
//	guessgame -schema
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/reglet-dev/guessgame/config"
	"github.com/reglet-dev/guessgame/domain/entities"
	"github.com/reglet-dev/guessgame/domain/game"
	"github.com/reglet-dev/guessgame/domain/ports"
	"github.com/reglet-dev/guessgame/host"
	"github.com/reglet-dev/guessgame/infrastructure/random"
	"github.com/reglet-dev/guessgame/infrastructure/wazero"
	"github.com/reglet-dev/guessgame/internal/guest"
	"github.com/reglet-dev/guessgame/internal/report"
	"github.com/reglet-dev/guessgame/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	schema     bool
	list       bool
	guesses    bool
}

// parseFlags resolves the configuration from defaults, an optional YAML
// file, the environment and finally the flags explicitly set in args.
func parseFlags(args []string, stderr io.Writer) (config.Config, options, error) {
	var opts options
	cfg := config.Default()

	fs := flag.NewFlagSet("guessgame", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	fs.BoolVar(&opts.schema, "schema", false, "Print the config JSON schema and exit")
	fs.BoolVar(&opts.list, "list", false, "List the player's imports and exports and exit")
	fs.BoolVar(&opts.guesses, "guesses", false, "List every guess in the report")

	player := fs.String("player", cfg.Player, fmt.Sprintf("Built-in player %v", guest.BuiltinNames()))
	wasmPath := fs.String("wasm", "", "Path to a guest module (overrides -player)")
	secret := fs.Uint("secret", uint(cfg.Secret), "Number to guess")
	randomSecret := fs.Bool("random-secret", false, "Draw a random secret for every game")
	seed := fs.Uint64("seed", 0, "Random seed (0 for nondeterministic)")
	maxTurns := fs.Int("max-turns", 0, "Turn budget per game (0 for unlimited)")
	timeout := fs.Duration("timeout", 0, "Time budget per game (0 for unlimited)")
	games := fs.Int("games", cfg.Games, "Number of concurrent games")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return cfg, opts, err
	}
	if opts.schema {
		return cfg, opts, nil
	}

	if err := config.LoadEnv(); err != nil {
		return cfg, opts, err
	}
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, opts, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, opts, err
	}

	var secretErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "player":
			cfg.Player = *player
		case "wasm":
			cfg.WasmPath = *wasmPath
		case "secret":
			if *secret > 0xFFFFFFFF {
				secretErr = fmt.Errorf("secret %d does not fit in 32 bits", *secret)
			}
			cfg.Secret = uint32(*secret) //nolint:gosec // G115: range checked above
		case "random-secret":
			cfg.RandomSecret = *randomSecret
		case "seed":
			cfg.Seed = *seed
		case "max-turns":
			cfg.MaxTurns = *maxTurns
		case "timeout":
			cfg.Timeout = *timeout
		case "games":
			cfg.Games = *games
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if secretErr != nil {
		return cfg, opts, secretErr
	}

	return cfg, opts, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.schema {
		schema, err := config.Schema()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(schema))
		return 0
	}

	if err := play(ctx, cfg, opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func play(ctx context.Context, cfg config.Config, opts options, stdout, stderr io.Writer) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := log.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	logOpts := []log.HandlerOption{log.WithLevel(level), log.WithFormat(format), log.WithOutput(stderr)}
	logger := log.New(logOpts...)
	wazero.SetLogger(log.NewZap(logOpts...))

	wasm, name, err := loadPlayer(cfg)
	if err != nil {
		return err
	}

	rt, err := wazero.NewRuntime(ctx,
		wazero.WithModuleName(cfg.ImportModule),
		wazero.WithMemoryLimitPages(cfg.MemoryLimitPages),
		wazero.WithCloseOnContextDone(true),
	)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	exec, err := host.NewExecutor(ctx, host.WithRuntime(rt), host.WithLogger(logger))
	if err != nil {
		return err
	}
	defer exec.Close(context.Background())

	module, err := exec.Compile(ctx, wasm)
	if err != nil {
		return err
	}

	if opts.list {
		describe(stdout, name, rt.ModuleName(), module)
		return nil
	}

	reports := playGames(ctx, exec, module, cfg, name, logger)

	r := report.NewRenderer(stdout, report.WithGuesses(opts.guesses))
	fmt.Fprint(stdout, r.Render(reports))

	var aborted int
	for i, rep := range reports {
		if rep.IsDone() {
			continue
		}
		aborted++
		msg := "unknown error"
		if rep.Error != nil {
			msg = rep.Error.Message
		}
		fmt.Fprintf(stderr, "game %d aborted: %s\n", i+1, msg)
	}
	if aborted > 0 {
		return fmt.Errorf("%d of %d games aborted", aborted, len(reports))
	}
	return nil
}

// loadPlayer returns the guest artifact and a display name for it.
func loadPlayer(cfg config.Config) ([]byte, string, error) {
	if cfg.WasmPath != "" {
		wasm, err := os.ReadFile(cfg.WasmPath)
		if err != nil {
			return nil, "", fmt.Errorf("read player: %w", err)
		}
		return wasm, cfg.WasmPath, nil
	}
	wasm, err := guest.Builtin(cfg.Player)
	return wasm, cfg.Player, err
}

func playGames(ctx context.Context, exec *host.Executor, module ports.CompiledModule, cfg config.Config, name string, logger *slog.Logger) []entities.RunReport {
	secrets := newSource(cfg.Seed, 0)

	reports := make([]entities.RunReport, cfg.Games)
	var wg sync.WaitGroup
	for i := range cfg.Games {
		secret := cfg.Secret
		if cfg.RandomSecret {
			secret = secrets.Uint32()
		}
		src := newSource(cfg.Seed, i+1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i], _ = exec.Play(ctx, module, game.New(secret, game.WithLogger(logger)), src,
				host.WithPlayerName(name),
				host.WithMaxTurns(cfg.MaxTurns),
				host.WithTimeout(cfg.Timeout),
			)
		}()
	}
	wg.Wait()
	return reports
}

// newSource returns the n-th source derived from seed. A zero seed yields
// independent unseeded sources.
func newSource(seed uint64, n int) *random.Source {
	if seed == 0 {
		return random.NewEntropySource()
	}
	return random.NewSource(seed + uint64(n)) //nolint:gosec // G115: n is non-negative
}

func describe(w io.Writer, name, hostModule string, module ports.CompiledModule) {
	fmt.Fprintf(w, "Player: %s\n", name)
	fmt.Fprintf(w, "Host module: %s\n", hostModule)
	fmt.Fprintf(w, "\nImports:\n")
	for _, def := range module.ImportedFunctions() {
		fmt.Fprintf(w, "  %s\n", def)
	}
	fmt.Fprintf(w, "\nExports:\n")
	for _, def := range module.ExportedFunctions() {
		fmt.Fprintf(w, "  %s\n", def)
	}
}
