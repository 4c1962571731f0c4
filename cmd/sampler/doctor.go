package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/sampler/internal/environment"
	"github.com/programme-lv/sampler/internal/isolate"
	"github.com/urfave/cli/v3"
)

func doctorCommand() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "check that the compiler, sandbox and testlib are available",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, ctx, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()

			ok := true
			check := func(name string, detail string, err error) {
				if err != nil {
					ok = false
					color.New(color.FgRed, color.Bold).Printf("[fail] ")
					fmt.Printf("%s: %v\n", name, err)
					return
				}
				color.New(color.FgGreen, color.Bold).Printf("[ ok ] ")
				fmt.Printf("%s: %s\n", name, detail)
			}

			fmt.Printf("config: %s\n", environment.DefaultPath())

			version, err := compilerVersion(ctx, a.cfg.Compiler)
			check("compiler", version, err)

			if a.cfg.Runner == environment.RunnerIsolate {
				version, err := isolate.New(a.cfg.IsolateBinary).Version(ctx)
				check("isolate", version, err)
			}

			dir, err := a.testlibProvider().IncludeDir(ctx)
			check("testlib", dir, err)

			if !ok {
				return fmt.Errorf("some checks failed")
			}
			return nil
		},
	}
}

func compilerVersion(ctx context.Context, compiler string) (string, error) {
	if compiler == "" {
		return "", fmt.Errorf("no compiler configured")
	}
	path, err := exec.LookPath(compiler)
	if err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version: %w", path, err)
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return fmt.Sprintf("%s (%s)", first, path), nil
}
