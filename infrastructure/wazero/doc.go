// Package wazero implements the sandbox runtime port on top of the wazero
// WebAssembly runtime.
//
// A single Runtime compiles a player module once and instantiates it many
// times. The host import module (default "env") is instantiated once per
// Runtime; every call into it is dispatched to the import table bound to the
// calling guest instance, so independent games never share host state.
//
// # Basic Usage
//
//	rt, err := wazero.NewRuntime(ctx, wazero.WithCloseOnContextDone(true))
//	if err != nil {
//	    return err
//	}
//	defer rt.Close(ctx)
//
//	compiled, err := rt.Compile(ctx, wasmBytes)
//	if err != nil {
//	    return err // *errors.CompileError
//	}
//
//	registry, _ := hostfuncs.NewRegistry(hostfuncs.WithBundle(hostfuncs.GameBundle(g, src)))
//	inst, err := rt.Instantiate(ctx, compiled, registry)
//	if err != nil {
//	    return err // *errors.LinkError
//	}
//	err = inst.Call(ctx, "turn")
package wazero
