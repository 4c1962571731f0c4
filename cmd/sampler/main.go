package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "sampler",
		Usage: "judge a solution against its sample test cases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config.toml (default: $XDG_CONFIG_HOME/sampler/config.toml)",
			},
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "workspace root holding the .samples directory (default: current directory)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print program output and debug logs",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			addCommand(),
			rmCommand(),
			listCommand(),
			importCommand(),
			spjCommand(),
			doctorCommand(),
		},
	}
}
