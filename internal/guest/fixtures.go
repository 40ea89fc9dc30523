package guest

import "github.com/reglet-dev/guessgame/domain/ports"

// Fixture modules for exercising the harness failure paths.

func gameImports(b *Builder) (rand32, submit uint32) {
	rand32 = b.ImportFunc(ImportModule, Rand32, []ports.ValueType{i32, i32}, []ports.ValueType{i32})
	submit = b.ImportFunc(ImportModule, SubmitGuess, []ports.ValueType{i32}, []ports.ValueType{i32})
	return rand32, submit
}

// Trap imports the game functions and traps on every turn.
func Trap() []byte {
	b := NewBuilder()
	gameImports(b)
	b.Export(TurnExport, b.Func(none, none, nil, NewCode().Unreachable()))
	return b.Bytes()
}

// TrapOnTurn submits 0 on each turn and traps on the n-th turn.
func TrapOnTurn(n int32) []byte {
	b := NewBuilder()
	_, submit := gameImports(b)
	counter := b.GlobalI32(true, 0)

	code := NewCode().
		GlobalGet(counter).
		I32Const(1).
		I32Add().
		GlobalSet(counter).
		GlobalGet(counter).
		I32Const(n).
		I32Eq().
		If().
		Unreachable().
		End().
		I32Const(0).
		Call(submit).
		Drop()
	b.Export(TurnExport, b.Func(none, none, nil, code))
	return b.Bytes()
}

// Constant submits v on every turn.
func Constant(v uint32) []byte {
	b := NewBuilder()
	_, submit := gameImports(b)
	code := NewCode().
		I32Const(int32(v)). //nolint:gosec // G115: reinterpreted as i32 bits
		Call(submit).
		Drop()
	b.Export(TurnExport, b.Func(none, none, nil, code))
	return b.Bytes()
}

// Spin never returns from turn.
func Spin() []byte {
	b := NewBuilder()
	gameImports(b)
	code := NewCode().
		Loop().
		Br(0).
		End()
	b.Export(TurnExport, b.Func(none, none, nil, code))
	return b.Bytes()
}

// MissingSubmitGuess imports rand32 only and discards the draw.
func MissingSubmitGuess() []byte {
	b := NewBuilder()
	rand32 := b.ImportFunc(ImportModule, Rand32, []ports.ValueType{i32, i32}, []ports.ValueType{i32})
	code := NewCode().
		I32Const(0).
		I32Const(10).
		Call(rand32).
		Drop()
	b.Export(TurnExport, b.Func(none, none, nil, code))
	return b.Bytes()
}

// MissingTurn exports its turn function under a different name.
func MissingTurn() []byte {
	b := NewBuilder()
	gameImports(b)
	b.Export("play", b.Func(none, none, nil, NewCode()))
	return b.Bytes()
}

// TurnWithParams exports turn with a parameter.
func TurnWithParams() []byte {
	b := NewBuilder()
	gameImports(b)
	b.Export(TurnExport, b.Func([]ports.ValueType{i32}, none, nil, NewCode()))
	return b.Bytes()
}

// WrongGuessSignature imports submit_guess returning i64.
func WrongGuessSignature() []byte {
	b := NewBuilder()
	b.ImportFunc(ImportModule, Rand32, []ports.ValueType{i32, i32}, []ports.ValueType{i32})
	b.ImportFunc(ImportModule, SubmitGuess, []ports.ValueType{i32}, []ports.ValueType{i64})
	b.Export(TurnExport, b.Func(none, none, nil, NewCode()))
	return b.Bytes()
}

// UnknownImport imports a function the host does not provide.
func UnknownImport() []byte {
	b := NewBuilder()
	gameImports(b)
	b.ImportFunc(ImportModule, "print", []ports.ValueType{i32}, none)
	b.Export(TurnExport, b.Func(none, none, nil, NewCode()))
	return b.Bytes()
}

// ForeignModule imports the game functions from module instead of env.
func ForeignModule(module string) []byte {
	b := NewBuilder()
	b.ImportFunc(module, Rand32, []ports.ValueType{i32, i32}, []ports.ValueType{i32})
	b.ImportFunc(module, SubmitGuess, []ports.ValueType{i32}, []ports.ValueType{i32})
	b.Export(TurnExport, b.Func(none, none, nil, NewCode()))
	return b.Bytes()
}
