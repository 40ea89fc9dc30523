package wazero

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/guessgame/domain/entities"
	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
	"github.com/reglet-dev/guessgame/domain/game"
	"github.com/reglet-dev/guessgame/domain/ports"
	"github.com/reglet-dev/guessgame/hostfuncs"
	"github.com/reglet-dev/guessgame/infrastructure/random"
	"github.com/reglet-dev/guessgame/internal/guest"
)

func newTestRuntime(t *testing.T, opts ...AdapterOption) *Runtime {
	t.Helper()
	ctx := context.Background()
	r, err := NewRuntime(ctx, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(ctx) })
	return r
}

func gameImports(t *testing.T, g *game.GuessingGame) *hostfuncs.HandlerRegistry {
	t.Helper()
	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithBundle(hostfuncs.GameBundle(g, random.NewSource(1))),
	)
	require.NoError(t, err)
	return reg
}

func compile(t *testing.T, r *Runtime, wasm []byte) ports.CompiledModule {
	t.Helper()
	m, err := r.Compile(context.Background(), wasm)
	require.NoError(t, err)
	return m
}

func TestNewRuntime_Options(t *testing.T) {
	r := newTestRuntime(t)
	assert.Equal(t, DefaultModuleName, r.ModuleName())
	assert.Equal(t, AdapterConfig{ModuleName: "env"}, r.cfg)

	r = newTestRuntime(t,
		WithModuleName("game"),
		WithMemoryLimitPages(16),
		WithCloseOnContextDone(true),
	)
	assert.Equal(t, "game", r.ModuleName())
	assert.Equal(t, uint32(16), r.cfg.MemoryLimitPages)
	assert.True(t, r.cfg.CloseOnContextDone)

	_, err := NewRuntime(context.Background(), WithModuleName(""))
	assert.Error(t, err)
}

func TestCompile_Errors(t *testing.T) {
	r := newTestRuntime(t)

	tests := []struct {
		name string
		wasm []byte
	}{
		{name: "empty", wasm: nil},
		{name: "garbage", wasm: []byte("not a wasm module")},
		{name: "truncated", wasm: guest.Random()[:12]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := r.Compile(context.Background(), tt.wasm)
			assert.Nil(t, m)

			var compileErr *domainerrors.CompileError
			require.True(t, errors.As(err, &compileErr), "got %v", err)
		})
	}
}

func TestCompile_DescribesModule(t *testing.T) {
	r := newTestRuntime(t)
	m := compile(t, r, guest.Midpoint())

	imports := m.ImportedFunctions()
	require.Len(t, imports, 2)
	assert.Equal(t, "env.rand32(i32, i32) -> (i32)", imports[0].String())
	assert.Equal(t, "env.submit_guess(i32) -> (i32)", imports[1].String())

	exports := m.ExportedFunctions()
	require.Len(t, exports, 1)
	assert.Equal(t, "turn", exports[0].Name)
	assert.Empty(t, exports[0].Params)
	assert.Empty(t, exports[0].Results)
}

func TestInstantiate_PlaysToCompletion(t *testing.T) {
	ctx := context.Background()
	r := newTestRuntime(t)
	g := game.New(42)

	inst, err := r.Instantiate(ctx, compile(t, r, guest.Midpoint()), gameImports(t, g))
	require.NoError(t, err)
	defer inst.Close(ctx)

	for turns := 0; !g.Completed(); turns++ {
		require.Less(t, turns, 64)
		require.NoError(t, inst.Call(ctx, guest.TurnExport))
	}
	assert.Equal(t, uint32(42), g.History(g.Attempts() - 1)[0].Candidate)
}

func TestInstantiate_LinkErrors(t *testing.T) {
	tests := []struct {
		name       string
		wantImport string
		wasm       []byte
	}{
		{name: "foreign import module", wasm: guest.ForeignModule("game"), wantImport: "game.rand32"},
		{name: "unknown host function", wasm: guest.UnknownImport(), wantImport: "env.print"},
		{name: "signature mismatch", wasm: guest.WrongGuessSignature(), wantImport: "env.submit_guess"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRuntime(t)
			inst, err := r.Instantiate(context.Background(), compile(t, r, tt.wasm), gameImports(t, game.New(42)))
			assert.Nil(t, inst)

			var linkErr *domainerrors.LinkError
			require.True(t, errors.As(err, &linkErr), "got %v", err)
			assert.Equal(t, tt.wantImport, linkErr.Import)
		})
	}
}

func TestInstantiate_MismatchedImportTable(t *testing.T) {
	ctx := context.Background()
	r := newTestRuntime(t)
	m := compile(t, r, guest.Midpoint())

	_, err := r.Instantiate(ctx, m, gameImports(t, game.New(1)))
	require.NoError(t, err)

	partial, err := hostfuncs.NewRegistry(hostfuncs.WithFunction(hostfuncs.NewRand32Function(random.NewSource(1))))
	require.NoError(t, err)

	_, err = r.Instantiate(ctx, m, partial)
	var linkErr *domainerrors.LinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "env", linkErr.Import)
}

type foreignModule struct{ ports.CompiledModule }

func TestInstantiate_ForeignCompiledModule(t *testing.T) {
	r := newTestRuntime(t)
	_, err := r.Instantiate(context.Background(), foreignModule{}, gameImports(t, game.New(1)))

	var linkErr *domainerrors.LinkError
	assert.True(t, errors.As(err, &linkErr))
}

func TestInstance_Call(t *testing.T) {
	ctx := context.Background()
	r := newTestRuntime(t)

	t.Run("trap", func(t *testing.T) {
		inst, err := r.Instantiate(ctx, compile(t, r, guest.Trap()), gameImports(t, game.New(42)))
		require.NoError(t, err)
		defer inst.Close(ctx)

		assert.Error(t, inst.Call(ctx, guest.TurnExport))
	})

	t.Run("missing export", func(t *testing.T) {
		inst, err := r.Instantiate(ctx, compile(t, r, guest.MissingTurn()), gameImports(t, game.New(42)))
		require.NoError(t, err)
		defer inst.Close(ctx)

		assert.EqualError(t, inst.Call(ctx, guest.TurnExport), `export "turn" not found`)
	})

	t.Run("constant guess reaches the game", func(t *testing.T) {
		g := game.New(7)
		inst, err := r.Instantiate(ctx, compile(t, r, guest.Constant(7)), gameImports(t, g))
		require.NoError(t, err)
		defer inst.Close(ctx)

		require.NoError(t, inst.Call(ctx, guest.TurnExport))
		assert.True(t, g.Completed())
	})
}

func TestInstance_CallInterruptedByContext(t *testing.T) {
	r := newTestRuntime(t, WithCloseOnContextDone(true))
	inst, err := r.Instantiate(context.Background(), compile(t, r, guest.Spin()), gameImports(t, game.New(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, inst.Call(ctx, guest.TurnExport))
}

func TestInstance_NamesAndBindings(t *testing.T) {
	ctx := context.Background()
	r := newTestRuntime(t)
	m := compile(t, r, guest.Midpoint())

	a, err := r.Instantiate(ctx, m, gameImports(t, game.New(1)))
	require.NoError(t, err)
	b, err := r.Instantiate(ctx, m, gameImports(t, game.New(2)))
	require.NoError(t, err)

	assert.NotEqual(t, a.Name(), b.Name())
	_, ok := r.binding(a.Name())
	assert.True(t, ok)

	require.NoError(t, a.Close(ctx))
	_, ok = r.binding(a.Name())
	assert.False(t, ok)

	require.NoError(t, b.Close(ctx))
}

func TestDispatch_CarriesInstanceName(t *testing.T) {
	ctx := context.Background()
	r := newTestRuntime(t)
	g := game.New(3)

	var mu sync.Mutex
	var seen []string
	record := func(next hostfuncs.StackHandler) hostfuncs.StackHandler {
		return func(ctx context.Context, stack []uint64) error {
			name, ok := hostfuncs.InstanceNameFrom(ctx)
			require.True(t, ok)
			mu.Lock()
			seen = append(seen, name)
			mu.Unlock()
			return next(ctx, stack)
		}
	}
	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithBundle(hostfuncs.GameBundle(g, random.NewSource(1))),
		hostfuncs.WithMiddleware(record),
	)
	require.NoError(t, err)

	inst, err := r.Instantiate(ctx, compile(t, r, guest.Constant(3)), reg)
	require.NoError(t, err)
	defer inst.Close(ctx)

	require.NoError(t, inst.Call(ctx, guest.TurnExport))
	require.NotEmpty(t, seen)
	for _, name := range seen {
		assert.Equal(t, inst.Name(), name)
	}
}

func TestInstances_DoNotShareState(t *testing.T) {
	ctx := context.Background()
	r := newTestRuntime(t)
	m := compile(t, r, guest.Random())

	secrets := []uint32{0, 42, 1 << 20, 0xFFFFFFFF, 123456789, 7, 99, 1}
	var wg sync.WaitGroup
	errs := make([]error, len(secrets))
	games := make([]*game.GuessingGame, len(secrets))

	for i, secret := range secrets {
		games[i] = game.New(secret)
		inst, err := r.Instantiate(ctx, m, gameImports(t, games[i]))
		require.NoError(t, err)

		wg.Add(1)
		go func(i int, inst ports.Instance) {
			defer wg.Done()
			defer inst.Close(ctx)
			for turns := 0; !games[i].Completed(); turns++ {
				if turns > 1000 {
					errs[i] = errors.New("too many turns")
					return
				}
				if err := inst.Call(ctx, guest.TurnExport); err != nil {
					errs[i] = err
					return
				}
			}
		}(i, inst)
	}
	wg.Wait()

	for i, secret := range secrets {
		require.NoError(t, errs[i], "secret %d", secret)
		for _, guess := range games[i].History(0) {
			switch {
			case guess.Candidate < secret:
				assert.Equal(t, entities.Lower, guess.Result)
			case guess.Candidate > secret:
				assert.Equal(t, entities.Higher, guess.Result)
			default:
				assert.Equal(t, entities.Match, guess.Result)
			}
		}
	}
}
