package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/vk/variantgrid/internal/ctxlog"
)

// DefaultTimeout bounds a single invocation when no timeout is configured.
const DefaultTimeout = 300 * time.Second

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the direct child has been killed.
const waitDelay = 2 * time.Second

// ExecRunner runs commands as child processes of the current process.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates a runner with the given per-invocation timeout.
// A non-positive timeout selects DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Timeout: timeout}
}

// Run executes spec and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if len(spec.Args) == 0 || spec.Args[0] == "" {
		return nil, &ExecError{Spec: spec, ExitCode: -1, Err: errors.New("empty argument vector")}
	}

	runCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, spec.Args[0], spec.Args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	logger.Debug("Running command.", "description", spec.Description, "command", spec.String())
	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err == nil {
		logger.Debug("Command finished.", "description", spec.Description, "duration", res.Duration)
		return res, nil
	}

	execErr := &ExecError{
		Spec:     spec,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Err:      err,
	}
	// The deadline of runCtx is ours; a cancelled parent is reported as is.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		execErr.TimedOut = true
		execErr.ExitCode = -1
		execErr.Err = context.DeadlineExceeded
	} else if ctx.Err() != nil {
		execErr.ExitCode = -1
		execErr.Err = ctx.Err()
	}
	return res, execErr
}
