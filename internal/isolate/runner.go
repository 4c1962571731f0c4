package isolate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/programme-lv/sampler/internal/runner"
)

// Runner is a runner.Service executing programs inside isolate boxes.
type Runner struct {
	isolate     *Isolate
	outputLimit int64
}

var _ runner.Service = (*Runner)(nil)

func NewRunner(isolate *Isolate, outputLimitBytes int64) *Runner {
	if outputLimitBytes <= 0 {
		outputLimitBytes = runner.DefaultOutputLimitBytes
	}
	return &Runner{isolate: isolate, outputLimit: outputLimitBytes}
}

func (r *Runner) Run(ctx context.Context, req runner.Request) (*runner.Result, error) {
	if req.TimeLimitMs <= 0 {
		return nil, fmt.Errorf("invalid time limit %d ms", req.TimeLimitMs)
	}
	outputLimit := req.OutputLimitBytes
	if outputLimit <= 0 {
		outputLimit = r.outputLimit
	}

	box, err := r.isolate.NewBox(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create isolate box: %w", err)
	}
	defer func() {
		if err := box.Close(); err != nil {
			slog.Warn("failed to close isolate box", "box", box.Id(), "error", err)
		}
	}()

	metaPath, err := newMetaFile()
	if err != nil {
		return nil, fmt.Errorf("failed to create meta file: %w", err)
	}
	defer os.Remove(metaPath)

	runCtx, kill := context.WithCancel(ctx)
	defer kill()

	args := box.runArgs(metaPath, ForTimeLimit(req.TimeLimitMs), req.WorkDir, req.Path, req.Args)
	cmd := exec.CommandContext(runCtx, r.isolate.binary, args...)
	cmd.Stdin = strings.NewReader(req.Stdin)
	stdout := runner.NewCappedBuffer(outputLimit, kill)
	stderr := runner.NewCappedBuffer(64<<10, nil)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 500 * time.Millisecond

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start isolate: %w", err)
	}
	err = cmd.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil && !errors.Is(err, exec.ErrWaitDelay) {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to wait for isolate: %w", err)
		}
	}

	res := &runner.Result{
		Stdout:              stdout.String(),
		Stderr:              stderr.String(),
		OutputLimitExceeded: stdout.Exceeded(),
	}
	if res.OutputLimitExceeded {
		// killed before isolate could write its meta file
		res.ExitCode = -1
		return res, nil
	}

	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read meta file: %w", err)
	}
	metrics, err := parseMetaFile(metaBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse meta file: %w", err)
	}
	applyMetrics(res, metrics)
	if metrics.Status == StatusInternal {
		return nil, fmt.Errorf("isolate internal error: %s", metrics.Message)
	}
	return res, nil
}

func applyMetrics(res *runner.Result, m *Metrics) {
	res.ElapsedMs = int64(m.TimeWallSec * 1000)
	res.ExitCode = m.ExitCode
	switch m.Status {
	case StatusTimedOut:
		res.TimedOut = true
	case StatusSignaled:
		res.ExitCode = -1
	case StatusRuntimeError:
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
	}
}
