package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/programme-lv/sampler/internal/compile"
	"github.com/programme-lv/sampler/internal/environment"
	"github.com/programme-lv/sampler/internal/isolate"
	"github.com/programme-lv/sampler/internal/logger"
	"github.com/programme-lv/sampler/internal/runner"
	"github.com/programme-lv/sampler/internal/samples"
	"github.com/programme-lv/sampler/internal/testlib"
	"github.com/urfave/cli/v3"
)

// app holds what every subcommand needs.
type app struct {
	cfg       *environment.Config
	log       *slog.Logger
	workspace string
	store     *samples.Store
	verbose   bool
}

func newApp(ctx context.Context, cmd *cli.Command) (*app, context.Context, error) {
	cfg, err := environment.Load(cmd.String("config"))
	if err != nil {
		return nil, ctx, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, ctx, err
	}
	verbose := cmd.Bool("verbose")
	if verbose {
		level = slog.LevelDebug
	}
	log := logger.New(os.Stderr, level, os.Getenv("NO_COLOR") != "")
	slog.SetDefault(log)

	ws := cmd.String("workspace")
	if ws == "" {
		if ws, err = os.Getwd(); err != nil {
			return nil, ctx, err
		}
	}
	if ws, err = filepath.Abs(ws); err != nil {
		return nil, ctx, err
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		workspace: ws,
		store:     samples.NewStore(),
		verbose:   verbose,
	}
	return a, logger.WithLogger(ctx, log), nil
}

// sourceArg returns the absolute path of the n-th positional argument.
func sourceArg(cmd *cli.Command, n int) (string, error) {
	arg := cmd.Args().Get(n)
	if arg == "" {
		return "", errors.New("missing source file argument")
	}
	return filepath.Abs(arg)
}

func (a *app) load(source string) (*samples.Set, error) {
	return a.store.Load(a.workspace, source)
}

func (a *app) compileSettings() (compile.Settings, error) {
	args, err := compile.ParseArgs(a.cfg.CompilerArgs)
	if err != nil {
		return compile.Settings{}, err
	}
	return compile.Settings{
		CompilerPath: a.cfg.Compiler,
		Args:         args,
		IncludeDirs:  a.cfg.IncludeDirs,
	}, nil
}

func (a *app) runService() (runner.Service, error) {
	switch a.cfg.Runner {
	case environment.RunnerLocal:
		return runner.NewLocal(a.cfg.OutputLimitBytes()), nil
	case environment.RunnerIsolate:
		return isolate.NewRunner(isolate.New(a.cfg.IsolateBinary), a.cfg.OutputLimitBytes()), nil
	default:
		return nil, fmt.Errorf("unknown runner %q", a.cfg.Runner)
	}
}

func (a *app) testlibProvider() *testlib.Provider {
	return testlib.NewProvider(a.cfg.TestlibDir, filepath.Join(a.cfg.CacheDir(), "testlib"), a.cfg.TestlibURL)
}
