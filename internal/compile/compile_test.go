package compile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/programme-lv/sampler/internal/compile"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	calls   []compile.Request
	sources []string
	fail    bool
	noExe   bool
	err     error
}

func (f *fakeService) Compile(ctx context.Context, req compile.Request) (*compile.Outcome, error) {
	f.calls = append(f.calls, req)
	src, err := os.ReadFile(req.InputPath)
	if err != nil {
		return nil, err
	}
	f.sources = append(f.sources, string(src))
	if f.err != nil {
		return nil, f.err
	}
	if f.fail {
		return &compile.Outcome{Output: "a.cpp:3:5: error: expected ';' before '}' token\n"}, nil
	}
	if !f.noExe {
		if err := os.WriteFile(req.OutputPath, []byte("bin"), 0755); err != nil {
			return nil, err
		}
	}
	return &compile.Outcome{Success: true}, nil
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, e := range list {
		names = append(names, e.Name())
	}
	return names
}

func TestCompileSuccess(t *testing.T) {
	tmp := t.TempDir()
	svc := &fakeService{}
	o := compile.NewOrchestrator(svc, tmp)

	res, err := o.Compile(context.Background(), "int main(){}", compile.Settings{
		CompilerPath: "g++",
		Args:         []string{"-O2"},
		IncludeDirs:  []string{"/inc"},
	}, []string{"/extra"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.FileExists(t, res.ExecutablePath)
	require.Empty(t, res.Diagnostics)

	require.Len(t, svc.calls, 1)
	req := svc.calls[0]
	require.Equal(t, "g++", req.CompilerPath)
	require.Equal(t, []string{"-O2", "-g", "-I/inc", "-I/extra"}, req.Args)
	require.Equal(t, ".cpp", filepath.Ext(req.InputPath))
	require.Equal(t, "int main(){}", svc.sources[0])

	// only the executable survives
	require.NoFileExists(t, req.InputPath)
	require.Equal(t, []string{filepath.Base(res.ExecutablePath)}, entries(t, tmp))
}

func TestCompileFailure(t *testing.T) {
	tmp := t.TempDir()
	o := compile.NewOrchestrator(&fakeService{fail: true}, tmp)

	res, err := o.Compile(context.Background(), "int main(){", compile.Settings{CompilerPath: "g++"}, nil)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Empty(t, res.ExecutablePath)
	require.Equal(t, []compile.Diagnostic{{Line: 3, Column: 5, Severity: "error", Message: "expected ';' before '}' token"}}, res.Diagnostics)
	require.Empty(t, entries(t, tmp))
}

func TestCompileMissingExecutable(t *testing.T) {
	tmp := t.TempDir()
	o := compile.NewOrchestrator(&fakeService{noExe: true}, tmp)

	res, err := o.Compile(context.Background(), "", compile.Settings{CompilerPath: "g++"}, nil)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.Output, "no executable")
}

func TestCompileServiceError(t *testing.T) {
	tmp := t.TempDir()
	o := compile.NewOrchestrator(&fakeService{err: errors.New("boom")}, tmp)

	_, err := o.Compile(context.Background(), "", compile.Settings{CompilerPath: "g++"}, nil)
	require.Error(t, err)
	require.Empty(t, entries(t, tmp))
}

func TestCompileNoCompiler(t *testing.T) {
	svc := &fakeService{}
	// the directory does not exist: no file I/O may happen before the check
	o := compile.NewOrchestrator(svc, filepath.Join(t.TempDir(), "missing"))

	_, err := o.Compile(context.Background(), "", compile.Settings{}, nil)
	require.ErrorIs(t, err, compile.ErrNoCompiler)
	require.Empty(t, svc.calls)
}

func TestCompileChecker(t *testing.T) {
	tmp := t.TempDir()
	svc := &fakeService{fail: true}
	o := compile.NewOrchestrator(svc, tmp)

	res, err := o.CompileChecker(context.Background(), "chk", compile.Settings{CompilerPath: "g++"}, "/testlib")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.Output, compile.CheckerPrefix)
	require.Equal(t, []string{"-g", "-I/testlib"}, svc.calls[0].Args)

	svc.fail = false
	res, err = o.CompileChecker(context.Background(), "chk", compile.Settings{CompilerPath: "g++"}, "/testlib")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotContains(t, res.Output, compile.CheckerPrefix)
}

func TestParseArgs(t *testing.T) {
	args, err := compile.ParseArgs(`-O2 -std=c++17 -DNAME="a b"`)
	require.NoError(t, err)
	require.Equal(t, []string{"-O2", "-std=c++17", "-DNAME=a b"}, args)

	_, err = compile.ParseArgs(`-D"unterminated`)
	require.Error(t, err)
}

func fakeCompiler(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func gccRequest(t *testing.T, compiler string) compile.Request {
	dir := t.TempDir()
	return compile.Request{
		InputPath:    filepath.Join(dir, "main.cpp"),
		OutputPath:   filepath.Join(dir, "main"),
		CompilerPath: compiler,
		WorkDir:      dir,
	}
}

func TestGccServiceSuccess(t *testing.T) {
	// $3 is the path after -o.
	cc := fakeCompiler(t, "echo ok; touch \"$3\"\n")
	req := gccRequest(t, cc)

	out, err := compile.NewGccService(0).Compile(context.Background(), req)
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, "ok\n", out.Output)
	require.FileExists(t, req.OutputPath)
}

func TestGccServiceRejectsSource(t *testing.T) {
	cc := fakeCompiler(t, "echo \"main.cpp:1:1: error: nope\" >&2; exit 1\n")

	out, err := compile.NewGccService(0).Compile(context.Background(), gccRequest(t, cc))
	require.NoError(t, err)
	require.False(t, out.Success)
	require.Equal(t, "main.cpp:1:1: error: nope\n", out.Output)
}

func TestGccServiceMissingCompiler(t *testing.T) {
	out, err := compile.NewGccService(0).Compile(context.Background(), gccRequest(t, "/nonexistent/g++"))
	require.NoError(t, err)
	require.False(t, out.Success)
	require.Contains(t, strings.ToLower(out.Output), "no such file")
}

func TestGccServiceTimeout(t *testing.T) {
	cc := fakeCompiler(t, "exec sleep 5\n")

	start := time.Now()
	out, err := compile.NewGccService(200*time.Millisecond).Compile(context.Background(), gccRequest(t, cc))
	require.NoError(t, err)
	require.False(t, out.Success)
	require.Contains(t, out.Output, "timed out")
	require.Less(t, time.Since(start), 4*time.Second)
}

func TestGccServiceCancelled(t *testing.T) {
	cc := fakeCompiler(t, "exec sleep 5\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := compile.NewGccService(0).Compile(ctx, gccRequest(t, cc))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, out)
}
