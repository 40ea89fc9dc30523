// Package host drives guessing games played by sandboxed guest modules.
//
// An Executor compiles guest artifacts once against a shared sandbox runtime.
// A Player wires one game and one random source into the import table of a
// fresh guest instance and exposes Turn, which calls the guest's turn export
// exactly once. Run repeats Turn until the game reports completion, a turn
// fails, or an optional budget is exhausted.
//
// Basic usage:
//
//	exec, err := host.NewExecutor(ctx)
//	if err != nil {
//	    return err
//	}
//	defer exec.Close(ctx)
//
//	module, err := exec.Compile(ctx, wasmBytes)
//	if err != nil {
//	    return err // *errors.CompileError
//	}
//
//	g := game.New(42)
//	report, err := exec.Play(ctx, module, g, random.NewEntropySource())
package host
