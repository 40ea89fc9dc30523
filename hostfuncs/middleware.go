package hostfuncs

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Middleware is a function that wraps a StackHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next StackHandler) StackHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that converts panics in a host
// function into an error naming the function. The runtime adapter turns that
// error into a guest trap instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next StackHandler) StackHandler {
		return func(ctx context.Context, stack []uint64) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("host function %s panicked: %v", FunctionNameFrom(ctx), r)
				}
			}()
			return next(ctx, stack)
		}
	}
}

// LoggingMiddleware returns a middleware that logs host function invocations
// with their raw parameters and results at debug level. Calls made on behalf
// of a named instance carry an "instance" attribute.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next StackHandler) StackHandler {
		return func(ctx context.Context, stack []uint64) error {
			l := logger.With("function", FunctionNameFrom(ctx))
			if instance, ok := InstanceNameFrom(ctx); ok {
				l = l.With("instance", instance)
			}
			params := slices.Clone(stack)
			err := next(ctx, stack)
			if err != nil {
				l.ErrorContext(ctx, "host function failed", "params", params, "error", err)
				return err
			}
			l.DebugContext(ctx, "host function completed", "params", params, "results", stack)
			return nil
		}
	}
}

// CallCounter counts successful host function invocations per function name.
// It is safe for concurrent use.
type CallCounter struct {
	counts map[string]int
	mu     sync.Mutex
}

// NewCallCounter creates an empty CallCounter.
func NewCallCounter() *CallCounter {
	return &CallCounter{counts: make(map[string]int)}
}

// Middleware returns the middleware that feeds this counter.
func (c *CallCounter) Middleware() Middleware {
	return func(next StackHandler) StackHandler {
		return func(ctx context.Context, stack []uint64) error {
			if err := next(ctx, stack); err != nil {
				return err
			}
			c.mu.Lock()
			c.counts[FunctionNameFrom(ctx)]++
			c.mu.Unlock()
			return nil
		}
	}
}

// Count returns the number of successful calls to name.
func (c *CallCounter) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Counts returns a snapshot of all counters.
func (c *CallCounter) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.counts)
}
