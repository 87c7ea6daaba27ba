package pipeline

import (
	"errors"
	"fmt"

	"github.com/vk/variantgrid/internal/command"
)

// ErrNoInput is returned by discovery when no source file matched. The run
// treats it as a successful no-op.
var ErrNoInput = errors.New("no source files found")

// ConfigurationError reports a problem detected before any output state is
// modified.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// StageExecutionError reports a build stage that failed for a unit. Err is
// usually a *command.ExecError; file staging failures are reported the same
// way because they abort the run just as surely.
type StageExecutionError struct {
	Unit  SourceUnit
	Stage string
	Err   error
}

func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("stage %q failed for %s: %v", e.Stage, e.Unit.Path, e.Err)
}

func (e *StageExecutionError) Unwrap() error { return e.Err }

// ExecError returns the underlying command failure, if any.
func (e *StageExecutionError) ExecError() (*command.ExecError, bool) {
	var execErr *command.ExecError
	ok := errors.As(e.Err, &execErr)
	return execErr, ok
}

// FilesystemError reports a failed attempt to remove the output tree.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
