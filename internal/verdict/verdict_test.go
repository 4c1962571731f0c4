package verdict_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/programme-lv/sampler/api"
	"github.com/programme-lv/sampler/internal/runner"
	"github.com/programme-lv/sampler/internal/samples"
	"github.com/programme-lv/sampler/internal/verdict"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]string

func (m mapResolver) Resolve(src samples.Source, baseDir string) (string, error) {
	if !src.IsFile() {
		return src.Text, nil
	}
	content, ok := m[src.Path]
	if !ok {
		return "", fmt.Errorf("open %s: %w", src.Path, os.ErrNotExist)
	}
	return content, nil
}

// fakeRuns answers by executable path.
type fakeRuns struct {
	mu       sync.Mutex
	results  map[string]*runner.Result
	err      error
	requests []runner.Request
	// files seen by the checker while it was running
	checkerFiles map[string]string
}

func (f *fakeRuns) Run(ctx context.Context, req runner.Request) (*runner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(req.Args) == 3 {
		f.checkerFiles = map[string]string{}
		for _, a := range req.Args {
			body, err := os.ReadFile(a)
			if err != nil {
				return nil, err
			}
			f.checkerFiles[filepath.Base(a)] = string(body)
		}
	}
	res, ok := f.results[req.Path]
	if !ok {
		return nil, fmt.Errorf("unexpected executable %s", req.Path)
	}
	cp := *res
	return &cp, nil
}

func newEngine(runs runner.Service, files verdict.Resolver, t *testing.T) *verdict.Engine {
	return verdict.NewEngine(runs, files, 0, t.TempDir())
}

func TestExactMatch(t *testing.T) {
	runs := &fakeRuns{results: map[string]*runner.Result{"sol": {Stdout: "6\n", ElapsedMs: 3}}}
	e := newEngine(runs, mapResolver{}, t)

	v := e.Classify(context.Background(), verdict.Job{
		Executable:  "sol",
		Input:       samples.Text("3\n1 2 3"),
		Expected:    samples.Text("6"),
		TimeLimitMs: 1000,
	})
	require.Equal(t, api.Accepted, v.Status)
	require.Equal(t, "6\n", v.Output)
	require.Equal(t, int64(3), v.ElapsedMs)
	require.False(t, v.UsedSpj)
	require.Nil(t, v.Mismatch)

	require.Len(t, runs.requests, 1)
	require.Equal(t, "3\n1 2 3", runs.requests[0].Stdin)
	require.Equal(t, 1000, runs.requests[0].TimeLimitMs)
}

func TestWhitespaceInsensitive(t *testing.T) {
	runs := &fakeRuns{results: map[string]*runner.Result{"sol": {Stdout: "6  \n\n"}}}
	v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{
		Executable: "sol",
		Expected:   samples.Text("6"),
	})
	require.Equal(t, api.Accepted, v.Status)
	require.Equal(t, samples.DefaultTimeLimitMs, runs.requests[0].TimeLimitMs)
}

func TestWrongAnswerMismatch(t *testing.T) {
	runs := &fakeRuns{results: map[string]*runner.Result{"sol": {Stdout: "1\n7\n"}}}
	v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{
		Executable: "sol",
		Expected:   samples.Text("1\n6"),
	})
	require.Equal(t, api.WrongAnswer, v.Status)
	require.Equal(t, &api.Mismatch{Line: 2, Column: 1}, v.Mismatch)
}

func TestTimeout(t *testing.T) {
	runs := &fakeRuns{results: map[string]*runner.Result{"sol": {TimedOut: true, ElapsedMs: 1500, ExitCode: -1}}}
	v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{
		Executable:  "sol",
		Expected:    samples.Text("6"),
		TimeLimitMs: 1000,
	})
	require.Equal(t, api.TimeLimitExceeded, v.Status)
	require.InDelta(t, 1500, v.ElapsedMs, 50)
}

func TestPriorityOrdering(t *testing.T) {
	for _, ole := range []bool{false, true} {
		for _, tle := range []bool{false, true} {
			for _, exit := range []int{0, 1, -1} {
				runs := &fakeRuns{results: map[string]*runner.Result{"sol": {
					Stdout:              "6",
					ExitCode:            exit,
					TimedOut:            tle,
					OutputLimitExceeded: ole,
				}}}
				v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{
					Executable: "sol",
					Expected:   samples.Text("6"),
				})
				want := api.Accepted
				switch {
				case ole:
					want = api.OutputLimitExceeded
				case tle:
					want = api.TimeLimitExceeded
				case exit != 0:
					want = api.RuntimeError
				}
				require.Equal(t, want, v.Status, "ole=%v tle=%v exit=%d", ole, tle, exit)
			}
		}
	}
}

func TestFileReadFailure(t *testing.T) {
	runs := &fakeRuns{results: map[string]*runner.Result{"sol": {}}}
	e := newEngine(runs, mapResolver{"in.txt": "1"}, t)

	v := e.Classify(context.Background(), verdict.Job{
		Executable: "sol",
		Input:      samples.File("missing.txt"),
		Expected:   samples.Text(""),
	})
	require.Equal(t, api.InternalError, v.Status)
	require.Contains(t, v.Output, "input")

	v = e.Classify(context.Background(), verdict.Job{
		Executable: "sol",
		Input:      samples.File("in.txt"),
		Expected:   samples.File("missing.ans"),
	})
	require.Equal(t, api.InternalError, v.Status)
	require.Empty(t, runs.requests)
}

func TestRunFailure(t *testing.T) {
	runs := &fakeRuns{err: errors.New("exec format error")}
	v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{Executable: "sol"})
	require.Equal(t, api.InternalError, v.Status)
	require.Contains(t, v.Output, "exec format error")
}

func TestOutputIsTruncated(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	runs := &fakeRuns{results: map[string]*runner.Result{"sol": {Stdout: string(long), OutputLimitExceeded: true}}}
	v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{Executable: "sol"})
	require.Equal(t, api.OutputLimitExceeded, v.Status)
	require.Len(t, v.Output, verdict.DisplayCap+len(verdict.TruncatedMarker))
}

func TestSpjAccepts(t *testing.T) {
	tmp := t.TempDir()
	runs := &fakeRuns{results: map[string]*runner.Result{
		"sol": {Stdout: "3 1  \n\n"},
		"chk": {ExitCode: 0},
	}}
	e := verdict.NewEngine(runs, mapResolver{}, 0, tmp)

	v := e.Classify(context.Background(), verdict.Job{
		Executable: "sol",
		Checker:    "chk",
		UseSpj:     true,
		Input:      samples.Text("2\n"),
		Expected:   samples.Text("1 3\n"),
	})
	require.Equal(t, api.Accepted, v.Status)
	require.True(t, v.UsedSpj)
	require.Equal(t, "3 1  \n\n", v.Output)

	require.Len(t, runs.requests, 2)
	chk := runs.requests[1]
	require.Equal(t, verdict.SpjTimeLimitMs, chk.TimeLimitMs)
	require.Equal(t, chk.WorkDir, filepath.Dir(chk.Args[0]))
	require.Equal(t, map[string]string{
		"input.txt":  "2\n",
		"output.txt": "3 1",
		"answer.txt": "1 3",
	}, runs.checkerFiles)

	// the three files and their directory are gone
	require.NoDirExists(t, chk.WorkDir)
	list, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestSpjOutcomes(t *testing.T) {
	tests := []struct {
		name string
		res  runner.Result
		want api.Status
	}{
		{"rejects", runner.Result{ExitCode: 1}, api.WrongAnswer},
		{"presentation error", runner.Result{ExitCode: 2}, api.WrongAnswer},
		{"times out", runner.Result{TimedOut: true, ExitCode: -1}, api.TimeLimitExceeded},
		{"floods output", runner.Result{OutputLimitExceeded: true, TimedOut: true}, api.OutputLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.res
			runs := &fakeRuns{results: map[string]*runner.Result{"sol": {Stdout: "1"}, "chk": &res}}
			v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{
				Executable: "sol",
				Checker:    "chk",
				UseSpj:     true,
				Expected:   samples.Text("1"),
			})
			require.Equal(t, tt.want, v.Status)
			require.True(t, v.UsedSpj)
		})
	}
}

func TestSpjMissingBinary(t *testing.T) {
	runs := &fakeRuns{results: map[string]*runner.Result{"sol": {Stdout: "1"}}}
	v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{
		Executable: "sol",
		UseSpj:     true,
		Expected:   samples.Text("1"),
	})
	require.Equal(t, api.WrongAnswer, v.Status)
	require.False(t, v.UsedSpj)
	require.Len(t, runs.requests, 1)
}

func TestSpjNotConsultedOnRuntimeError(t *testing.T) {
	runs := &fakeRuns{results: map[string]*runner.Result{"sol": {ExitCode: 139}, "chk": {}}}
	v := newEngine(runs, mapResolver{}, t).Classify(context.Background(), verdict.Job{
		Executable: "sol",
		Checker:    "chk",
		UseSpj:     true,
	})
	require.Equal(t, api.RuntimeError, v.Status)
	require.False(t, v.UsedSpj)
	require.Len(t, runs.requests, 1)
}
