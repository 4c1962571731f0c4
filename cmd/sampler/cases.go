package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/programme-lv/sampler/internal/behave"
	"github.com/programme-lv/sampler/internal/gatherer/termgath"
	"github.com/programme-lv/sampler/internal/samples"
	"github.com/urfave/cli/v3"
)

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "append a test case",
		ArgsUsage: "<source>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input text"},
			&cli.StringFlag{Name: "ans", Usage: "expected output text"},
			&cli.StringFlag{Name: "in-file", Usage: "file holding the input (.zst is decompressed)"},
			&cli.StringFlag{Name: "ans-file", Usage: "file holding the expected output (.zst is decompressed)"},
			&cli.IntFlag{Name: "tl", Usage: "time limit in milliseconds", Value: samples.DefaultTimeLimitMs},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, _, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			source, err := sourceArg(cmd, 0)
			if err != nil {
				return err
			}
			in, err := sourceFlag(cmd, "in", "in-file")
			if err != nil {
				return err
			}
			ans, err := sourceFlag(cmd, "ans", "ans-file")
			if err != nil {
				return err
			}

			set, err := a.load(source)
			if err != nil {
				return err
			}
			tc, err := set.Add(in, ans, int(cmd.Int("tl")))
			if err != nil {
				return err
			}
			if err := a.store.Save(set); err != nil {
				return err
			}
			fmt.Printf("added case %d\n", tc.ID)
			return nil
		},
	}
}

func sourceFlag(cmd *cli.Command, text, file string) (samples.Source, error) {
	switch {
	case cmd.IsSet(text) && cmd.IsSet(file):
		return samples.Source{}, fmt.Errorf("--%s and --%s are mutually exclusive", text, file)
	case cmd.IsSet(file):
		path, err := filepath.Abs(cmd.String(file))
		if err != nil {
			return samples.Source{}, err
		}
		return samples.File(path), nil
	case cmd.IsSet(text):
		return samples.Text(cmd.String(text)), nil
	default:
		return samples.Source{}, fmt.Errorf("one of --%s or --%s is required", text, file)
	}
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "delete a test case, later cases are renumbered",
		ArgsUsage: "<source> <id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, _, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			source, err := sourceArg(cmd, 0)
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(cmd.Args().Get(1))
			if err != nil {
				return fmt.Errorf("invalid case id %q", cmd.Args().Get(1))
			}
			set, err := a.load(source)
			if err != nil {
				return err
			}
			if err := set.Delete(id); err != nil {
				return err
			}
			return a.store.Save(set)
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "show test cases and their last verdicts",
		ArgsUsage: "<source>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, _, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			source, err := sourceArg(cmd, 0)
			if err != nil {
				return err
			}
			set, err := a.load(source)
			if err != nil {
				return err
			}
			printCases(set)
			return nil
		},
	}
}

func printCases(set *samples.Set) {
	judge := set.Judge()
	if judge.UseSpj {
		fmt.Printf("special judge: %s\n", judge.SpjSourcePath)
	}
	faint := color.New(color.Faint)
	for _, tc := range set.Cases() {
		fmt.Printf("#%d  %s -> %s  %dms  ", tc.ID, describe(tc.Input), describe(tc.Expected), tc.TimeLimitMs)
		if tc.LastVerdict == nil {
			faint.Println("not run")
			continue
		}
		termgath.StatusColor(tc.LastVerdict.Status).Printf("%s", tc.LastVerdict.Status)
		fmt.Printf(" %dms\n", tc.LastVerdict.ElapsedMs)
	}
}

func describe(src samples.Source) string {
	if src.IsFile() {
		return "file:" + src.Path
	}
	s := strings.ReplaceAll(src.Text, "\n", `\n`)
	if len([]rune(s)) > 20 {
		s = string([]rune(s)[:20]) + "..."
	}
	return strconv.Quote(s)
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "append test cases from a TOML file",
		ArgsUsage: "<source> <file.toml>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, _, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			source, err := sourceArg(cmd, 0)
			if err != nil {
				return err
			}
			if cmd.Args().Get(1) == "" {
				return errors.New("missing TOML file argument")
			}
			f, err := behave.Parse(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			set, err := a.load(source)
			if err != nil {
				return err
			}
			n, err := behave.Apply(set, f)
			if err != nil {
				return err
			}
			if err := a.store.Save(set); err != nil {
				return err
			}
			fmt.Printf("imported %d cases\n", n)
			return nil
		},
	}
}

func spjCommand() *cli.Command {
	return &cli.Command{
		Name:      "spj",
		Usage:     "configure the special judge",
		ArgsUsage: "<source> [checker source]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "off", Usage: "compare outputs directly"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, _, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			source, err := sourceArg(cmd, 0)
			if err != nil {
				return err
			}
			set, err := a.load(source)
			if err != nil {
				return err
			}

			cfg := samples.JudgeConfig{}
			if !cmd.Bool("off") {
				cfg.UseSpj = true
				if checker := cmd.Args().Get(1); checker != "" {
					if cfg.SpjSourcePath, err = filepath.Abs(checker); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(os.Stderr, "warning: no checker given, every case will be judged WA")
				}
			}
			if err := set.SetJudge(cfg); err != nil {
				return err
			}
			return a.store.Save(set)
		},
	}
}
