// Package errors provides the harness error taxonomy.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/reglet-dev/guessgame/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is an interface for error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
// Errors that do not implement DetailedError are reported as internal.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return entities.NewErrorDetail("internal", err.Error())
}

// CompileError reports that a sandbox artifact is not a valid module.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile failed: %v", e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *CompileError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "compile"}
}

// LinkError reports that a module's imports or exports do not match what the
// host provides or expects.
type LinkError struct {
	Err    error
	Import string // Offending import or export, e.g. "env.submit_guess"
	Reason string
}

func (e *LinkError) Error() string {
	switch {
	case e.Import != "" && e.Err != nil:
		return fmt.Sprintf("link failed for %s: %s: %v", e.Import, e.Reason, e.Err)
	case e.Import != "":
		return fmt.Sprintf("link failed for %s: %s", e.Import, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("link failed: %v", e.Err)
	default:
		return fmt.Sprintf("link failed: %s", e.Reason)
	}
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LinkError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "link", Code: e.Import}
}

// ExecutionError reports that the guest trapped during a turn.
type ExecutionError struct {
	Err  error
	Turn int
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("turn %d trapped: %v", e.Turn, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ExecutionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "execution",
		Code:    fmt.Sprintf("turn_%d", e.Turn),
		Details: map[string]any{"turn": e.Turn},
	}
}

// BudgetError reports that the game loop exhausted its turn or time budget
// before the secret was found.
type BudgetError struct {
	Turns     int
	MaxTurns  int // Zero when the turn budget was not the cause
	Elapsed   time.Duration
	TimeLimit time.Duration // Zero when the time budget was not the cause
}

func (e *BudgetError) Error() string {
	if e.TimeLimit > 0 {
		return fmt.Sprintf("time budget of %v exhausted after %d turns (%v elapsed)", e.TimeLimit, e.Turns, e.Elapsed)
	}
	return fmt.Sprintf("turn budget of %d exhausted", e.MaxTurns)
}

// Timeout reports whether the wall-clock budget was the cause.
func (e *BudgetError) Timeout() bool {
	return e.TimeLimit > 0
}

// ToErrorDetail implements DetailedError.
func (e *BudgetError) ToErrorDetail() *entities.ErrorDetail {
	code := "max_turns"
	if e.TimeLimit > 0 {
		code = "timeout"
	}
	return &entities.ErrorDetail{Message: e.Error(), Type: "budget", Code: code, IsTimeout: e.Timeout()}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}
