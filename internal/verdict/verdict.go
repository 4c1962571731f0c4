package verdict

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/programme-lv/sampler/api"
	"github.com/programme-lv/sampler/internal/runner"
	"github.com/programme-lv/sampler/internal/samples"
)

// Resolver turns a sample source into text.
type Resolver interface {
	Resolve(src samples.Source, baseDir string) (string, error)
}

// Engine decides the verdict of one compiled program on one test case.
type Engine struct {
	runs        runner.Service
	files       Resolver
	outputLimit int64
	tmpDir      string
}

func NewEngine(runs runner.Service, files Resolver, outputLimitBytes int64, tmpDir string) *Engine {
	return &Engine{
		runs:        runs,
		files:       files,
		outputLimit: outputLimitBytes,
		tmpDir:      tmpDir,
	}
}

type Job struct {
	Executable string
	// Checker is the compiled special judge, empty when there is none.
	Checker string
	UseSpj  bool

	Input       samples.Source
	Expected    samples.Source
	TimeLimitMs int
	BaseDir     string
}

func errorVerdict(err error) api.Verdict {
	return api.Verdict{Status: api.InternalError, Output: Truncate(err.Error())}
}

// Classify runs the program and never fails: problems reading the case or
// starting the program become an Error verdict.
func (e *Engine) Classify(ctx context.Context, job Job) api.Verdict {
	input, err := e.files.Resolve(job.Input, job.BaseDir)
	if err != nil {
		return errorVerdict(fmt.Errorf("input: %w", err))
	}
	expected, err := e.files.Resolve(job.Expected, job.BaseDir)
	if err != nil {
		return errorVerdict(fmt.Errorf("expected output: %w", err))
	}

	timeLimit := job.TimeLimitMs
	if timeLimit <= 0 {
		timeLimit = samples.DefaultTimeLimitMs
	}
	res, err := e.runs.Run(ctx, runner.Request{
		Path:             job.Executable,
		Stdin:            input,
		TimeLimitMs:      timeLimit,
		OutputLimitBytes: e.outputLimit,
	})
	if err != nil {
		return errorVerdict(err)
	}

	v := api.Verdict{
		Output:    Truncate(res.Stdout),
		ElapsedMs: res.ElapsedMs,
	}
	switch {
	case res.OutputLimitExceeded:
		v.Status = api.OutputLimitExceeded
	case res.TimedOut:
		v.Status = api.TimeLimitExceeded
	case res.ExitCode != 0:
		v.Status = api.RuntimeError
	case job.UseSpj && job.Checker != "":
		v.UsedSpj = true
		v.Status, err = e.check(ctx, job.Checker, input, res.Stdout, expected)
		if err != nil {
			slog.Warn("special judge failed to run", "error", err)
			v.Status = api.InternalError
		}
	case job.UseSpj:
		v.Status = api.WrongAnswer
	default:
		v.Status = Compare(res.Stdout, expected)
		if v.Status == api.WrongAnswer {
			v.Mismatch = FirstMismatch(res.Stdout, expected)
		}
	}
	return v
}

// Compare decides AC or WA by comparing normalised texts.
func Compare(actual, expected string) api.Status {
	if Normalize(actual) == Normalize(expected) {
		return api.Accepted
	}
	return api.WrongAnswer
}
