package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Spec describes a single external invocation.
type Spec struct {
	// Description is a short human readable label used in logs.
	Description string
	// Args is the argument vector; Args[0] is the program.
	Args []string
}

// String renders the argument vector as a single line for diagnostics.
func (s Spec) String() string {
	return strings.Join(s.Args, " ")
}

// Result holds the captured outcome of a completed invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Runner executes a Spec to completion. A non-nil error is always an
// *ExecError.
type Runner interface {
	Run(ctx context.Context, spec Spec) (*Result, error)
}

// ExecError reports an invocation that could not be launched, exited with a
// non-zero status, or ran past its timeout.
type ExecError struct {
	Spec     Spec
	ExitCode int // -1 when the process never produced an exit status
	Stdout   []byte
	Stderr   []byte
	TimedOut bool
	Err      error
}

func (e *ExecError) Error() string {
	switch {
	case e.TimedOut:
		return fmt.Sprintf("command %q timed out: %v", e.Spec.String(), e.Err)
	case e.ExitCode >= 0:
		return fmt.Sprintf("command %q exited with status %d", e.Spec.String(), e.ExitCode)
	default:
		return fmt.Sprintf("command %q could not be run: %v", e.Spec.String(), e.Err)
	}
}

func (e *ExecError) Unwrap() error { return e.Err }

// ExitStatus reports the exit status carried by err if it is an *ExecError
// for a process that ran to completion.
func ExitStatus(err error) (int, bool) {
	var execErr *ExecError
	if errors.As(err, &execErr) && execErr.ExitCode >= 0 && !execErr.TimedOut {
		return execErr.ExitCode, true
	}
	return 0, false
}
