package hostfuncs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHostContext(t *testing.T) {
	hc := NewHostContext(context.Background(), "rand32")

	require.NotNil(t, hc)
	assert.Equal(t, "rand32", hc.FunctionName())
}

func TestHostContextFrom(t *testing.T) {
	t.Run("reuses matching host context", func(t *testing.T) {
		hc := NewHostContext(context.Background(), "guess")
		assert.Same(t, hc, HostContextFrom(hc, "guess"))
	})

	t.Run("rewraps for another function", func(t *testing.T) {
		hc := NewHostContext(context.Background(), "guess")
		other := HostContextFrom(hc, "rand32")
		assert.Equal(t, "rand32", other.FunctionName())
	})

	t.Run("wraps plain context", func(t *testing.T) {
		hc := HostContextFrom(context.Background(), "submit_guess")
		assert.Equal(t, "submit_guess", hc.FunctionName())
	})
}

func TestFunctionNameFrom(t *testing.T) {
	assert.Equal(t, "unknown", FunctionNameFrom(context.Background()))
	assert.Equal(t, "guess", FunctionNameFrom(NewHostContext(context.Background(), "guess")))
}

func TestInstanceName(t *testing.T) {
	_, ok := InstanceNameFrom(context.Background())
	assert.False(t, ok)

	ctx := WithInstanceName(context.Background(), "player-3")
	name, ok := InstanceNameFrom(NewHostContext(ctx, "guess"))
	assert.True(t, ok)
	assert.Equal(t, "player-3", name)
}
