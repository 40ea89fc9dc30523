// Package log builds the structured loggers used by the harness: slog for
// host code and zap for the sandbox engine, both configured from the same
// level and format.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the record encoding.
type Format string

const (
	// FormatText writes key=value records.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// HandlerOption configures the handlers built by this package.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	output    io.Writer
	format    Format
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		output: os.Stderr,
		format: FormatText,
		level:  slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithFormat selects text or JSON output.
func WithFormat(format Format) HandlerOption {
	return func(c *handlerConfig) {
		c.format = format
	}
}

// WithOutput redirects records to w (default: stderr).
func WithOutput(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		if w != nil {
			c.output = w
		}
	}
}

func newConfig(opts []HandlerOption) handlerConfig {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewHandler creates an slog handler with the given options.
func NewHandler(opts ...HandlerOption) slog.Handler {
	cfg := newConfig(opts)
	hopts := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}
	if cfg.format == FormatJSON {
		return slog.NewJSONHandler(cfg.output, hopts)
	}
	return slog.NewTextHandler(cfg.output, hopts)
}

// New creates an slog logger with the given options.
func New(opts ...HandlerOption) *slog.Logger {
	return slog.New(NewHandler(opts...))
}

// NewZap creates the engine logger with the same options.
func NewZap(opts ...HandlerOption) *zap.Logger {
	cfg := newConfig(opts)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(cfg.output), zapLevel(cfg.level))
	var zopts []zap.Option
	if cfg.addSource {
		zopts = append(zopts, zap.AddCaller())
	}
	return zap.New(core, zopts...).Named("engine")
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// ParseLevel parses debug, info, warn or error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// ParseFormat parses text or json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}
