package hostfuncs

import (
	"context"
	"fmt"

	"github.com/reglet-dev/guessgame/domain/ports"
)

// Host function names imported by guest players.
const (
	Rand32Name      = "rand32"
	SubmitGuessName = "submit_guess"
	// GuessName is the short alias of SubmitGuessName.
	GuessName = "guess"
)

// StackHandler is a host function operating on the runtime value stack.
// Parameters are read from stack and results are written back starting at
// index 0; stack is sized to hold the larger of the two.
type StackHandler func(ctx context.Context, stack []uint64) error

// Function describes one host function and its WebAssembly signature.
type Function struct {
	Handler StackHandler
	Name    string
	Params  []ports.ValueType
	Results []ports.ValueType
}

// stackSize returns the number of slots Handler expects.
func (f Function) stackSize() int {
	return max(len(f.Params), len(f.Results))
}

// NewRand32Function returns the rand32(low, high) -> value import backed by
// src. The operands are treated as unsigned.
func NewRand32Function(src ports.RandomSource) Function {
	return Function{
		Name:    Rand32Name,
		Params:  []ports.ValueType{ports.ValueTypeI32, ports.ValueTypeI32},
		Results: []ports.ValueType{ports.ValueTypeI32},
		Handler: func(_ context.Context, stack []uint64) error {
			low, high := decodeU32(stack[0]), decodeU32(stack[1])
			stack[0] = encodeU32(src.Rand32(low, high))
			return nil
		},
	}
}

// NewSubmitGuessFunction returns the guess submission import backed by g,
// exported under name. The result crosses the boundary as -1 (too low),
// 0 (match) or 1 (too high).
func NewSubmitGuessFunction(name string, g ports.Guesser) Function {
	return Function{
		Name:    name,
		Params:  []ports.ValueType{ports.ValueTypeI32},
		Results: []ports.ValueType{ports.ValueTypeI32},
		Handler: func(_ context.Context, stack []uint64) error {
			res := g.Submit(decodeU32(stack[0]))
			stack[0] = encodeI32(int32(res.Code()))
			return nil
		},
	}
}

// checkStack verifies that stack can hold f's parameters and results.
func (f Function) checkStack(stack []uint64) error {
	if len(stack) < f.stackSize() {
		return fmt.Errorf("host function %q: stack has %d slots, need %d", f.Name, len(stack), f.stackSize())
	}
	return nil
}

func decodeU32(v uint64) uint32 {
	return uint32(v) //nolint:gosec // G115: i32 values occupy the low 32 bits
}

func encodeU32(v uint32) uint64 {
	return uint64(v)
}

func encodeI32(v int32) uint64 {
	return uint64(uint32(v)) //nolint:gosec // G115: two's complement reinterpretation
}
