package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "GUESSGAME_"

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. With no arguments it loads
// ./.env if present.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// envSetters maps a variable suffix to the field it sets.
var envSetters = map[string]func(c *Config, v string) error{
	"PLAYER":    func(c *Config, v string) error { c.Player = v; return nil },
	"WASM_PATH": func(c *Config, v string) error { c.WasmPath = v; return nil },
	"SECRET": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 32)
		c.Secret = uint32(n)
		return err
	},
	"RANDOM_SECRET": func(c *Config, v string) (err error) {
		c.RandomSecret, err = strconv.ParseBool(v)
		return err
	},
	"SEED": func(c *Config, v string) (err error) {
		c.Seed, err = strconv.ParseUint(v, 10, 64)
		return err
	},
	"MAX_TURNS": func(c *Config, v string) (err error) {
		c.MaxTurns, err = strconv.Atoi(v)
		return err
	},
	"TIMEOUT": func(c *Config, v string) (err error) {
		c.Timeout, err = time.ParseDuration(v)
		return err
	},
	"GAMES": func(c *Config, v string) (err error) {
		c.Games, err = strconv.Atoi(v)
		return err
	},
	"IMPORT_MODULE": func(c *Config, v string) error { c.ImportModule = v; return nil },
	"MEMORY_LIMIT_PAGES": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 32)
		c.MemoryLimitPages = uint32(n)
		return err
	},
	"LOG_LEVEL":  func(c *Config, v string) error { c.LogLevel = v; return nil },
	"LOG_FORMAT": func(c *Config, v string) error { c.LogFormat = v; return nil },
}

// ApplyEnv overrides fields from GUESSGAME_* variables found by lookup,
// typically os.LookupEnv. Unparseable values yield *errors.ConfigError.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for suffix, set := range envSetters {
		v, ok := lookup(EnvPrefix + suffix)
		if !ok {
			continue
		}
		next := *c
		if err := set(&next, v); err != nil {
			return &domainerrors.ConfigError{Field: EnvPrefix + suffix, Err: err}
		}
		*c = next
	}
	return nil
}
