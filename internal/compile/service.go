package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

type Request struct {
	InputPath    string
	OutputPath   string
	CompilerPath string
	Args         []string
	WorkDir      string
}

type Outcome struct {
	Success bool
	// Diagnostics may be left nil, the orchestrator then parses Output.
	Diagnostics []Diagnostic
	Output      string
	ElapsedMs   int64
}

// Service invokes a compiler. A compiler that rejects the source, or cannot be
// started at all, is an unsuccessful Outcome rather than an error.
type Service interface {
	Compile(ctx context.Context, req Request) (*Outcome, error)
}

// GccService runs gcc/clang compatible compilers on the host.
type GccService struct {
	timeout time.Duration
}

func NewGccService(timeout time.Duration) *GccService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GccService{timeout: timeout}
}

func (g *GccService) Compile(ctx context.Context, req Request) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	args := append([]string{}, req.Args...)
	args = append(args, req.InputPath, "-o", req.OutputPath)

	cmd := exec.CommandContext(ctx, req.CompilerPath, args...)
	cmd.Dir = req.WorkDir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if err == nil {
		return &Outcome{Success: true, Output: out.String(), ElapsedMs: elapsed}, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		out.WriteString(fmt.Sprintf("\ncompilation timed out after %s", g.timeout))
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	} else {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			out.WriteString(err.Error())
		}
	}
	return &Outcome{Success: false, Output: out.String(), ElapsedMs: elapsed}, nil
}
