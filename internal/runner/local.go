package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const stderrLimitBytes = 64 << 10

// Local runs programs directly on the host with a wall-clock deadline.
type Local struct {
	outputLimit int64
}

func NewLocal(outputLimitBytes int64) *Local {
	if outputLimitBytes <= 0 {
		outputLimitBytes = DefaultOutputLimitBytes
	}
	return &Local{outputLimit: outputLimitBytes}
}

func (l *Local) Run(ctx context.Context, req Request) (*Result, error) {
	if req.TimeLimitMs <= 0 {
		return nil, fmt.Errorf("invalid time limit %d ms", req.TimeLimitMs)
	}
	outputLimit := req.OutputLimitBytes
	if outputLimit <= 0 {
		outputLimit = l.outputLimit
	}

	runCtx, cancelDeadline := context.WithTimeout(ctx, time.Duration(req.TimeLimitMs)*time.Millisecond)
	defer cancelDeadline()
	// cancelled separately so an output overflow is not mistaken for a timeout
	killCtx, kill := context.WithCancel(runCtx)
	defer kill()

	cmd := exec.CommandContext(killCtx, req.Path, req.Args...)
	cmd.Dir = req.WorkDir
	cmd.Stdin = strings.NewReader(req.Stdin)
	stdout := NewCappedBuffer(outputLimit, kill)
	stderr := NewCappedBuffer(stderrLimitBytes, nil)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 500 * time.Millisecond

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", req.Path, err)
	}
	err := cmd.Wait()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &Result{
		Stdout:              stdout.String(),
		Stderr:              stderr.String(),
		ElapsedMs:           elapsed.Milliseconds(),
		OutputLimitExceeded: stdout.Exceeded(),
	}
	// Wait may outlive the deadline while a leftover child holds the pipes,
	// so only a process that was killed counts as timed out.
	killed := cmd.ProcessState != nil && !cmd.ProcessState.Exited()
	res.TimedOut = killed && errors.Is(runCtx.Err(), context.DeadlineExceeded)

	if err != nil && !errors.Is(err, exec.ErrWaitDelay) {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to wait for %s: %w", req.Path, err)
		}
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	return res, nil
}
