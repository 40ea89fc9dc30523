package guest

import (
	"fmt"
	"sort"

	"github.com/reglet-dev/guessgame/domain/ports"
)

// Names of the game imports and the turn export.
const (
	ImportModule = "env"
	Rand32       = "rand32"
	SubmitGuess  = "submit_guess"
	Guess        = "guess"
	TurnExport   = "turn"
)

var (
	i32  = ports.ValueTypeI32
	i64  = ports.ValueTypeI64
	none []ports.ValueType
)

// bounds global indices shared by the bisecting players.
const (
	globalLower = 0
	globalUpper = 1
)

// turn locals.
const (
	localCandidate = 0
	localResult    = 1
)

var builtins = map[string]func() []byte{
	"random":   Random,
	"midpoint": Midpoint,
}

// Builtin returns the built-in player registered under name.
func Builtin(name string) ([]byte, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("invalid player name: %q", name)
	}
	return build(), nil
}

// BuiltinNames lists the built-in player names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Random bisects the candidate window [lower, upper] by drawing a uniform
// candidate from the host on each turn and narrowing on the answer.
// It submits through the guess alias.
func Random() []byte {
	b := NewBuilder()
	rand32 := b.ImportFunc(ImportModule, Rand32, []ports.ValueType{i32, i32}, []ports.ValueType{i32})
	guess := b.ImportFunc(ImportModule, Guess, []ports.ValueType{i32}, []ports.ValueType{i32})
	b.GlobalI32(true, 0)
	b.GlobalI32(true, -1)

	code := NewCode().
		GlobalGet(globalLower).
		GlobalGet(globalUpper).
		Call(rand32).
		LocalSet(localCandidate)
	narrow(code, guess)

	turn := b.Func(none, none, []ports.ValueType{i32, i32}, code)
	b.Export(TurnExport, turn)
	return b.Bytes()
}

// Midpoint bisects the candidate window exactly, submitting
// lower + (upper-lower)/2 on each turn. It imports rand32 without calling it.
func Midpoint() []byte {
	b := NewBuilder()
	b.ImportFunc(ImportModule, Rand32, []ports.ValueType{i32, i32}, []ports.ValueType{i32})
	submit := b.ImportFunc(ImportModule, SubmitGuess, []ports.ValueType{i32}, []ports.ValueType{i32})
	b.GlobalI32(true, 0)
	b.GlobalI32(true, -1)

	code := NewCode().
		GlobalGet(globalLower).
		GlobalGet(globalUpper).
		GlobalGet(globalLower).
		I32Sub().
		I32Const(1).
		I32ShrU().
		I32Add().
		LocalSet(localCandidate)
	narrow(code, submit)

	turn := b.Func(none, none, []ports.ValueType{i32, i32}, code)
	b.Export(TurnExport, turn)
	return b.Bytes()
}

// narrow submits the candidate and moves the window bounds past it:
// a too-high answer sets upper to candidate-1, a too-low answer sets
// lower to candidate+1, and a match leaves both untouched.
func narrow(code *Code, submit uint32) {
	code.
		LocalGet(localCandidate).
		Call(submit).
		LocalSet(localResult).
		// too high
		LocalGet(localResult).
		I32Const(0).
		I32GtS().
		If().
		LocalGet(localCandidate).
		I32Const(1).
		I32Sub().
		GlobalSet(globalUpper).
		End().
		// too low
		LocalGet(localResult).
		I32Const(0).
		I32LtS().
		If().
		LocalGet(localCandidate).
		I32Const(1).
		I32Add().
		GlobalSet(globalLower).
		End()
}
