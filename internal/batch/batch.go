package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/programme-lv/sampler/api"
	"github.com/programme-lv/sampler/internal/compile"
	"github.com/programme-lv/sampler/internal/logger"
	"github.com/programme-lv/sampler/internal/samples"
	"github.com/programme-lv/sampler/internal/verdict"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

// TestlibSource locates the directory holding testlib.h.
type TestlibSource interface {
	IncludeDir(ctx context.Context) (string, error)
}

// PoolSize is the number of workers used for n cases: half the CPUs, at
// least one and never more than n.
func PoolSize(n int) int {
	return min(n, max(1, runtime.NumCPU()/2))
}

type Runner struct {
	compiler *compile.Orchestrator
	engine   *verdict.Engine
	testlib  TestlibSource
	gath     ResultGatherer
	// workers overrides PoolSize when positive.
	workers int
}

func NewRunner(
	compiler *compile.Orchestrator,
	engine *verdict.Engine,
	testlib TestlibSource,
	gath ResultGatherer,
	workers int,
) *Runner {
	if gath == nil {
		gath = NoopGatherer{}
	}
	return &Runner{
		compiler: compiler,
		engine:   engine,
		testlib:  testlib,
		gath:     gath,
		workers:  workers,
	}
}

// RunAll compiles the source of set once and judges every case.
// A compile error is written to every case and is not returned as an error.
func (r *Runner) RunAll(ctx context.Context, set *samples.Set, settings compile.Settings) error {
	return r.run(ctx, set, set.Cases(), settings)
}

// RunOne judges the single case id.
func (r *Runner) RunOne(ctx context.Context, set *samples.Set, id int, settings compile.Settings) error {
	tc, err := set.Case(id)
	if err != nil {
		return err
	}
	return r.run(ctx, set, []*samples.TestCase{tc}, settings)
}

func (r *Runner) poolSize(n int) int {
	if r.workers > 0 {
		return min(n, r.workers)
	}
	return PoolSize(n)
}

func (r *Runner) run(ctx context.Context, set *samples.Set, cases []*samples.TestCase, settings compile.Settings) error {
	if settings.CompilerPath == "" {
		return compile.ErrNoCompiler
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("invalid sample set: %w", err)
	}
	if err := set.Begin(); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	defer func() {
		if err := set.Advance(samples.Done); err != nil {
			log.Warn("failed to finish sample set", "error", err)
		}
	}()

	exes := &executables{}
	defer exes.remove(ctx)

	r.gath.StartJob(set.SourcePath(), len(cases))

	source, err := os.ReadFile(set.SourcePath())
	if err != nil {
		err = fmt.Errorf("failed to read source: %w", err)
		r.gath.InternalError(err.Error())
		return err
	}

	r.gath.StartCompile()
	solution, err := r.compiler.Compile(ctx, string(source), settings, nil)
	if err != nil {
		r.gath.InternalError(err.Error())
		return err
	}
	r.gath.FinishCompile(solution.Success, solution.Output, solution.ElapsedMs)
	if !solution.Success {
		r.broadcastCompileError(set, cases, solution.Output)
		return nil
	}
	exes.add(solution.ExecutablePath)
	log.Info("compiled solution", "elapsed_ms", solution.ElapsedMs)

	judge := set.Judge()
	checker := ""
	if judge.UseSpj && judge.SpjSourcePath != "" {
		res, err := r.compileChecker(ctx, set, judge.SpjSourcePath, settings)
		if err != nil {
			r.gath.InternalError(err.Error())
			return err
		}
		if !res.Success {
			r.broadcastCompileError(set, cases, res.Output)
			return nil
		}
		exes.add(res.ExecutablePath)
		checker = res.ExecutablePath
	}

	if err := set.Advance(samples.Running); err != nil {
		return err
	}

	template := verdict.Job{
		Executable: solution.ExecutablePath,
		Checker:    checker,
		UseSpj:     judge.UseSpj,
		BaseDir:    set.BaseDir(),
	}
	if err := r.judgeAll(ctx, set, cases, template); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			r.gath.InternalError(err.Error())
		}
		return err
	}
	r.gath.FinishNoError()
	return nil
}

// compileChecker compiles the special judge. A source that cannot be read is
// reported like a failed compilation.
func (r *Runner) compileChecker(ctx context.Context, set *samples.Set, path string, settings compile.Settings) (*compile.Result, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(set.BaseDir(), path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return &compile.Result{Output: compile.CheckerPrefix + err.Error()}, nil
	}

	testlibDir := ""
	if r.testlib != nil {
		testlibDir, err = r.testlib.IncludeDir(ctx)
		if err != nil {
			logger.FromContext(ctx).Warn("testlib.h is unavailable", "error", err)
			testlibDir = ""
		}
	}

	r.gath.StartCompile()
	res, err := r.compiler.CompileChecker(ctx, string(source), settings, testlibDir)
	if err != nil {
		return nil, err
	}
	r.gath.FinishCompile(res.Success, res.Output, res.ElapsedMs)
	return res, nil
}

func (r *Runner) broadcastCompileError(set *samples.Set, cases []*samples.TestCase, output string) {
	v := api.Verdict{Status: api.CompileError, Output: verdict.Truncate(output)}
	for _, tc := range cases {
		set.SetVerdict(tc, v)
	}
	r.gath.CompileError(output)
}

func (r *Runner) judgeAll(ctx context.Context, set *samples.Set, cases []*samples.TestCase, template verdict.Job) error {
	indices := make(chan int, len(cases))
	for i := range cases {
		indices <- i
	}
	close(indices)

	log := logger.FromContext(ctx)
	done := xsync.NewCounter()
	workers := r.poolSize(len(cases))
	log.Debug("judging cases", "cases", len(cases), "workers", workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				var i int
				select {
				case <-ctx.Done():
					return ctx.Err()
				case idx, ok := <-indices:
					if !ok {
						return nil
					}
					i = idx
				}
				if err := ctx.Err(); err != nil {
					return err
				}

				tc := cases[i]
				r.gath.ReachTest(tc.ID)
				job := template
				job.Input = tc.Input
				job.Expected = tc.Expected
				job.TimeLimitMs = tc.TimeLimitMs

				v := r.judgeCase(ctx, tc.ID, job)
				if err := ctx.Err(); err != nil {
					return err
				}
				set.SetVerdict(tc, v)
				r.gath.FinishTest(tc.ID, v)

				done.Inc()
				log.Debug("judged case",
					"case", tc.ID,
					"status", v.Status,
					"elapsed_ms", v.ElapsedMs,
					"done", done.Value(),
					"total", len(cases))
			}
		})
	}
	return g.Wait()
}

// judgeCase turns a panic while judging into an Error verdict for that case.
func (r *Runner) judgeCase(ctx context.Context, id int, job verdict.Job) (v api.Verdict) {
	defer func() {
		if p := recover(); p != nil {
			logger.FromContext(ctx).Error("panic while judging case", "case", id, "panic", p)
			v = api.Verdict{Status: api.InternalError, Output: fmt.Sprintf("panic: %v", p)}
		}
	}()
	return r.engine.Classify(ctx, job)
}
