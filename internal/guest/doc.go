// Package guest builds WebAssembly player modules in-process.
//
// The built-in players are what the CLI runs when no artifact path is given;
// the fixtures exercise the harness failure paths in tests. Modules are
// emitted directly in the binary format, so no external toolchain is needed.
package guest
