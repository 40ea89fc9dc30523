package hostfuncs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameBundle(t *testing.T) {
	g := &secretGuesser{secret: 5}
	reg, err := NewRegistry(WithBundle(GameBundle(g, &fixedSource{})))
	require.NoError(t, err)

	assert.Equal(t, []string{GuessName, Rand32Name, SubmitGuessName}, reg.Names())

	// Both guess names reach the same guesser.
	stack := []uint64{4}
	require.NoError(t, reg.Invoke(context.Background(), SubmitGuessName, stack))
	assert.Equal(t, uint64(0xffff_ffff), stack[0])

	stack = []uint64{5}
	require.NoError(t, reg.Invoke(context.Background(), GuessName, stack))
	assert.Equal(t, uint64(0), stack[0])
	assert.Equal(t, 2, g.calls)
}

func TestWithBundle_Conflict(t *testing.T) {
	_, err := NewRegistry(
		WithBundle(GameBundle(&secretGuesser{}, &fixedSource{})),
		WithFunction(echoFunction(Rand32Name)),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate function name")
}
