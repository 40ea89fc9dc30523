// Package config loads and validates harness configuration.
//
// Values are resolved in order: Default, then a YAML file (Load), then
// GUESSGAME_* environment variables (ApplyEnv, optionally seeded from a .env
// file by LoadEnv), then command-line flags applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
)

// Config is the harness configuration.
type Config struct {
	// Player names a built-in guest. Ignored when WasmPath is set.
	Player string `yaml:"player" validate:"omitempty,oneof=random midpoint" jsonschema:"enum=random,enum=midpoint,default=random,description=Built-in guest to play"`

	// WasmPath is a guest artifact on disk.
	WasmPath string `yaml:"wasm_path" validate:"required_without=Player" jsonschema:"description=Path to a guest module; overrides player"`

	// Secret is the number to guess unless RandomSecret is set.
	Secret uint32 `yaml:"secret" jsonschema:"default=42,description=Number the guest must find"`

	// RandomSecret draws a fresh secret for every game.
	RandomSecret bool `yaml:"random_secret" jsonschema:"description=Draw a random secret per game"`

	// Seed makes random draws reproducible. Zero seeds from entropy.
	Seed uint64 `yaml:"seed" jsonschema:"description=Seed for the random source; 0 means nondeterministic"`

	// MaxTurns bounds every game. Zero means unlimited.
	MaxTurns int `yaml:"max_turns" validate:"gte=0" jsonschema:"minimum=0,description=Turn budget per game; 0 means unlimited"`

	// Timeout bounds every game in wall-clock time. Zero means unlimited.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0" jsonschema:"oneof_type=string;integer,description=Time budget per game such as 5s; 0 means unlimited"`

	// Games is the number of independent games run concurrently.
	Games int `yaml:"games" validate:"min=1,max=1024" jsonschema:"minimum=1,maximum=1024,default=1,description=Number of concurrent games"`

	// ImportModule is the module name guests import the game functions from.
	ImportModule string `yaml:"import_module" validate:"required" jsonschema:"default=env,description=Host import module name"`

	// MemoryLimitPages caps guest memory in 64KiB pages. Zero keeps the runtime default.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages" validate:"lte=65536" jsonschema:"maximum=65536,description=Guest memory limit in 64KiB pages"`

	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	LogFormat string `yaml:"log_format" validate:"oneof=text json" jsonschema:"enum=text,enum=json,default=text"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Player:       "random",
		Secret:       42,
		Games:        1,
		ImportModule: "env",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return cfg, &domainerrors.ConfigError{Err: fmt.Errorf("%s: %w", path, err)}
	}
	return cfg, nil
}

// Parse decodes YAML bytes over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return cfg, &domainerrors.ConfigError{Err: err}
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints. The first violation is returned as
// *errors.ConfigError naming the YAML key.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domainerrors.ConfigError{
			Field: fe.Field(),
			Err:   fmt.Errorf("failed on '%s' with value %v", fe.Tag(), fe.Value()),
		}
	}
	return &domainerrors.ConfigError{Err: err}
}
