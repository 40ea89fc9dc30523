package hostfuncs

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/reglet-dev/guessgame/domain/ports"
)

// HandlerRegistry is an immutable collection of named host functions.
// Once created via NewRegistry, functions cannot be added or removed.
// This ensures thread safety and lock-free lookups during execution.
type HandlerRegistry struct {
	functions map[string]Function
	names     []string // sorted for consistent iteration
}

var _ ports.ImportTable = (*HandlerRegistry)(nil)

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	functions  map[string]Function
	middleware []Middleware
	errors     []error
}

// NewRegistry creates an immutable HandlerRegistry with the given options.
// Returns an error if any function name is registered twice.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithBundle(GameBundle(game, source)),
//	)
func NewRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	b := &registryBuilder{
		functions: make(map[string]Function),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.functions))
	for name := range b.functions {
		names = append(names, name)
	}
	sort.Strings(names)

	// Apply middleware chain to all handlers (FIFO order)
	wrapped := make(map[string]Function, len(b.functions))
	for name, fn := range b.functions {
		h := fn.Handler
		for i := len(b.middleware) - 1; i >= 0; i-- {
			h = b.middleware[i](h)
		}
		fn.Handler = h
		wrapped[name] = fn
	}

	return &HandlerRegistry{
		functions: wrapped,
		names:     names,
	}, nil
}

// Invoke dispatches a host function call by name.
func (r *HandlerRegistry) Invoke(ctx context.Context, name string, stack []uint64) error {
	fn, ok := r.functions[name]
	if !ok {
		return fmt.Errorf("unknown host function: %s", name)
	}
	if err := fn.checkStack(stack); err != nil {
		return err
	}

	// Wrap context with function name for middleware access
	return fn.Handler(HostContextFrom(ctx, name), stack)
}

// Names returns a sorted list of all registered function names.
func (r *HandlerRegistry) Names() []string {
	return slices.Clone(r.names)
}

// Signature returns the parameter and result types of a function.
func (r *HandlerRegistry) Signature(name string) (params, results []ports.ValueType, ok bool) {
	fn, ok := r.functions[name]
	if !ok {
		return nil, nil, false
	}
	return slices.Clone(fn.Params), slices.Clone(fn.Results), true
}

// addFunction registers a function under its name.
// Returns an error if the name is empty, already registered, or has no handler.
func (b *registryBuilder) addFunction(fn Function) error {
	if fn.Name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if fn.Handler == nil {
		return fmt.Errorf("function %q has no handler", fn.Name)
	}
	if _, exists := b.functions[fn.Name]; exists {
		return fmt.Errorf("duplicate function name: %q", fn.Name)
	}
	b.functions[fn.Name] = fn
	return nil
}

// WithFunction registers a single host function.
func WithFunction(fn Function) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addFunction(fn); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
