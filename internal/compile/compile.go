package compile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/shlex"
	"github.com/google/uuid"
)

// CheckerPrefix marks compile output that belongs to the special judge.
const CheckerPrefix = "special judge: "

var ErrNoCompiler = errors.New("compiler path is not configured")

type Settings struct {
	CompilerPath string
	Args         []string
	IncludeDirs  []string
	// SourceExt is the extension given to the temporary source, ".cpp" if empty.
	SourceExt string
}

// ParseArgs splits a shell-quoted flag string such as `-O2 -std=c++17 -DLOCAL`.
func ParseArgs(s string) ([]string, error) {
	args, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse compiler args %q: %w", s, err)
	}
	return args, nil
}

type Diagnostic struct {
	Line     int
	Column   int
	Severity string
	Message  string
}

type Result struct {
	Success        bool
	ExecutablePath string
	Diagnostics    []Diagnostic
	// Output is the raw compiler output.
	Output    string
	ElapsedMs int64
}

// Orchestrator turns source text into temporary executables.
type Orchestrator struct {
	service Service
	tmpDir  string
}

func NewOrchestrator(service Service, tmpDir string) *Orchestrator {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Orchestrator{service: service, tmpDir: tmpDir}
}

// Compile writes source to a temporary file, compiles it with debug symbols
// and removes the source again. On success the caller owns the executable
// at Result.ExecutablePath. A failed compilation is not an error.
func (o *Orchestrator) Compile(ctx context.Context, source string, settings Settings, extraIncludeDirs []string) (*Result, error) {
	if settings.CompilerPath == "" {
		return nil, ErrNoCompiler
	}

	ext := settings.SourceExt
	if ext == "" {
		ext = ".cpp"
	}
	name := "sampler-" + uuid.NewString()
	srcPath := filepath.Join(o.tmpDir, name+ext)
	exePath := filepath.Join(o.tmpDir, name)
	if runtime.GOOS == "windows" {
		exePath += ".exe"
	}

	if err := os.WriteFile(srcPath, []byte(source), 0644); err != nil {
		return nil, fmt.Errorf("failed to write temporary source: %w", err)
	}
	defer removeLogged(srcPath)

	args := append([]string{}, settings.Args...)
	args = append(args, "-g")
	for _, dir := range settings.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	for _, dir := range extraIncludeDirs {
		args = append(args, "-I"+dir)
	}

	slog.Debug("compiling", "compiler", settings.CompilerPath, "source", srcPath)
	outcome, err := o.service.Compile(ctx, Request{
		InputPath:    srcPath,
		OutputPath:   exePath,
		CompilerPath: settings.CompilerPath,
		Args:         args,
		WorkDir:      o.tmpDir,
	})
	if err != nil {
		removeIfExists(exePath)
		return nil, fmt.Errorf("failed to compile: %w", err)
	}

	res := &Result{
		Success:     outcome.Success,
		Diagnostics: outcome.Diagnostics,
		Output:      outcome.Output,
		ElapsedMs:   outcome.ElapsedMs,
	}
	if res.Diagnostics == nil {
		res.Diagnostics = ParseDiagnostics(outcome.Output)
	}

	if res.Success {
		if _, err := os.Stat(exePath); err != nil {
			res.Success = false
			res.Output += fmt.Sprintf("\ncompiler reported success but produced no executable: %v", err)
		}
	}
	if !res.Success {
		removeIfExists(exePath)
		return res, nil
	}
	res.ExecutablePath = exePath
	return res, nil
}

// CompileChecker compiles a special judge with the testlib directory on the
// include path. A failed compilation has its output prefixed with CheckerPrefix.
func (o *Orchestrator) CompileChecker(ctx context.Context, source string, settings Settings, testlibDir string) (*Result, error) {
	var extra []string
	if testlibDir != "" {
		extra = []string{testlibDir}
	}
	res, err := o.Compile(ctx, source, settings, extra)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		res.Output = CheckerPrefix + res.Output
	}
	return res, nil
}

func removeLogged(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove temporary file", "path", path, "error", err)
	}
}

func removeIfExists(path string) {
	_ = os.Remove(path)
}
