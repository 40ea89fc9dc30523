// Package hostfuncs provides the host functions imported by guest players.
//
// Functions are plain Go handlers operating on a WebAssembly value stack, so
// they can be tested without a sandbox runtime. A HandlerRegistry groups them
// into the import table handed to the runtime adapter.
package hostfuncs
