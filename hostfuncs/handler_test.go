package hostfuncs

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/guessgame/domain/entities"
)

// fixedSource returns low when pick is false and high otherwise.
type fixedSource struct {
	lastLow, lastHigh uint32
	pickHigh          bool
}

func (s *fixedSource) Rand32(low, high uint32) uint32 {
	s.lastLow, s.lastHigh = low, high
	if s.pickHigh {
		return high
	}
	return low
}

// secretGuesser compares against a fixed secret without any state.
type secretGuesser struct {
	secret uint32
	calls  int
}

func (g *secretGuesser) Submit(candidate uint32) entities.GuessResult {
	g.calls++
	switch {
	case candidate < g.secret:
		return entities.Lower
	case candidate > g.secret:
		return entities.Higher
	default:
		return entities.Match
	}
}

func TestRand32Function(t *testing.T) {
	src := &fixedSource{pickHigh: true}
	fn := NewRand32Function(src)

	assert.Equal(t, Rand32Name, fn.Name)
	assert.Len(t, fn.Params, 2)
	assert.Len(t, fn.Results, 1)

	stack := []uint64{10, uint64(math.MaxUint32)}
	require.NoError(t, fn.Handler(context.Background(), stack))
	assert.Equal(t, uint64(math.MaxUint32), stack[0])
	assert.Equal(t, uint32(10), src.lastLow)
	assert.Equal(t, uint32(math.MaxUint32), src.lastHigh)
}

func TestRand32Function_IgnoresUpperBits(t *testing.T) {
	src := &fixedSource{}
	fn := NewRand32Function(src)

	stack := []uint64{0xdead_0000_0005, 0xbeef_0000_0009}
	require.NoError(t, fn.Handler(context.Background(), stack))
	assert.Equal(t, uint32(5), src.lastLow)
	assert.Equal(t, uint32(9), src.lastHigh)
	assert.Equal(t, uint64(5), stack[0])
}

func TestSubmitGuessFunction_Encoding(t *testing.T) {
	g := &secretGuesser{secret: 42}
	fn := NewSubmitGuessFunction(SubmitGuessName, g)

	tests := []struct {
		name  string
		guess uint64
		want  int32
	}{
		{"too low", 41, -1},
		{"match", 42, 0},
		{"too high", 43, 1},
		{"max value", math.MaxUint32, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := []uint64{tt.guess}
			require.NoError(t, fn.Handler(context.Background(), stack))
			assert.Equal(t, tt.want, int32(uint32(stack[0])))
		})
	}
	assert.Equal(t, 4, g.calls)
}

func TestFunction_CheckStack(t *testing.T) {
	fn := NewRand32Function(&fixedSource{})
	assert.NoError(t, fn.checkStack(make([]uint64, 2)))
	assert.Error(t, fn.checkStack(make([]uint64, 1)))
}
