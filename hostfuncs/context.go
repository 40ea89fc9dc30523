package hostfuncs

import (
	"context"
)

// HostContext wraps a standard context.Context with host function-specific helpers.
type HostContext interface {
	context.Context

	// FunctionName returns the name of the host function being invoked.
	FunctionName() string
}

// hostContext is the concrete implementation of HostContext.
type hostContext struct {
	context.Context
	funcName string
}

// NewHostContext creates a new HostContext wrapping the given context.
func NewHostContext(ctx context.Context, funcName string) HostContext {
	return &hostContext{
		Context:  ctx,
		funcName: funcName,
	}
}

// FunctionName returns the name of the host function being invoked.
func (c *hostContext) FunctionName() string {
	return c.funcName
}

// HostContextFrom extracts a HostContext from a context.Context.
// If the context is already a HostContext for the same function, it is
// returned directly. Otherwise, a new HostContext is created.
func HostContextFrom(ctx context.Context, funcName string) HostContext {
	if hc, ok := ctx.(HostContext); ok && hc.FunctionName() == funcName {
		return hc
	}
	return NewHostContext(ctx, funcName)
}

// FunctionNameFrom returns the invoked function name carried by ctx, or
// "unknown" when ctx is not a HostContext.
func FunctionNameFrom(ctx context.Context) string {
	if hc, ok := ctx.(HostContext); ok {
		return hc.FunctionName()
	}
	return "unknown"
}

type instanceNameKey struct{}

// WithInstanceName records the name of the guest instance making a host call.
func WithInstanceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, instanceNameKey{}, name)
}

// InstanceNameFrom returns the calling instance name recorded by
// WithInstanceName.
func InstanceNameFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(instanceNameKey{}).(string)
	return name, ok
}
