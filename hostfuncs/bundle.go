package hostfuncs

import (
	"github.com/reglet-dev/guessgame/domain/ports"
)

// HostFuncBundle is a pre-configured set of related host functions.
// Bundles allow registering multiple functions at once.
type HostFuncBundle interface {
	// Functions returns the functions provided by the bundle.
	Functions() []Function
}

// staticBundle implements HostFuncBundle with a fixed set of functions.
type staticBundle struct {
	functions []Function
}

func (b *staticBundle) Functions() []Function {
	return b.functions
}

// GameBundle returns the imports a guest player links against:
// rand32, submit_guess and its alias guess.
func GameBundle(g ports.Guesser, src ports.RandomSource) HostFuncBundle {
	return &staticBundle{
		functions: []Function{
			NewRand32Function(src),
			NewSubmitGuessFunction(SubmitGuessName, g),
			NewSubmitGuessFunction(GuessName, g),
		},
	}
}

// WithBundle registers all functions from a bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for _, fn := range bundle.Functions() {
			if err := b.addFunction(fn); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
