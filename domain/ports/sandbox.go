package ports

import (
	"context"
	"slices"
	"strings"
)

// ValueType is a WebAssembly value type, encoded as in the binary format.
type ValueType byte

const (
	// ValueTypeI32 is a 32-bit integer.
	ValueTypeI32 ValueType = 0x7f
	// ValueTypeI64 is a 64-bit integer.
	ValueTypeI64 ValueType = 0x7e
	// ValueTypeF32 is a 32-bit float.
	ValueTypeF32 ValueType = 0x7d
	// ValueTypeF64 is a 64-bit float.
	ValueTypeF64 ValueType = 0x7c
)

// String returns the WebAssembly text name of the type.
func (v ValueType) String() string {
	switch v {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	default:
		return "unknown"
	}
}

// ImportTable is the set of host functions offered to a guest instance.
// Handlers follow the stack convention of the runtime: parameters are read
// from stack and results are written back into it starting at index 0.
type ImportTable interface {
	// Names returns the sorted list of provided function names.
	Names() []string

	// Signature returns the parameter and result types of a function.
	Signature(name string) (params, results []ValueType, ok bool)

	// Invoke calls the named function with the given value stack.
	Invoke(ctx context.Context, name string, stack []uint64) error
}

// SandboxRuntime compiles and instantiates sandboxed modules.
type SandboxRuntime interface {
	// Compile validates and compiles a binary module.
	// Fails with *errors.CompileError on malformed input.
	Compile(ctx context.Context, wasm []byte) (CompiledModule, error)

	// Instantiate links a compiled module against an import table.
	// Fails with *errors.LinkError on missing or mismatched imports or exports.
	Instantiate(ctx context.Context, module CompiledModule, imports ImportTable) (Instance, error)

	// Close releases the runtime and every module compiled by it.
	Close(ctx context.Context) error
}

// FunctionDef describes an imported or exported function of a module.
type FunctionDef struct {
	// Module is the import module name; empty for exports.
	Module  string
	Name    string
	Params  []ValueType
	Results []ValueType
}

// String renders the definition as "module.name(params) -> (results)".
func (d FunctionDef) String() string {
	name := d.Name
	if d.Module != "" {
		name = d.Module + "." + d.Name
	}
	return name + formatTypes(d.Params) + " -> " + formatTypes(d.Results)
}

// SameSignature reports whether d and other take and return the same types.
func (d FunctionDef) SameSignature(other FunctionDef) bool {
	return slices.Equal(d.Params, other.Params) && slices.Equal(d.Results, other.Results)
}

func formatTypes(types []ValueType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// CompiledModule is a module compiled once and instantiated many times.
type CompiledModule interface {
	// ImportedFunctions lists the functions the module imports, in order.
	ImportedFunctions() []FunctionDef

	// ExportedFunctions lists the functions the module exports, sorted by name.
	ExportedFunctions() []FunctionDef

	// Close releases the compiled code.
	Close(ctx context.Context) error
}

// Instance is one instantiated guest with its own memory and globals.
type Instance interface {
	// Name returns the runtime-unique instance name.
	Name() string

	// Call invokes a zero-argument, no-result export. A guest fault is
	// returned as an error.
	Call(ctx context.Context, export string) error

	// Close releases the instance.
	Close(ctx context.Context) error
}
