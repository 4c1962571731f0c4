package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/programme-lv/sampler/internal/batch"
	"github.com/programme-lv/sampler/internal/compile"
	"github.com/programme-lv/sampler/internal/filestore"
	"github.com/programme-lv/sampler/internal/gatherer/natsgath"
	"github.com/programme-lv/sampler/internal/gatherer/termgath"
	"github.com/programme-lv/sampler/internal/logger"
	"github.com/programme-lv/sampler/internal/verdict"
	"github.com/programme-lv/sampler/sqsgath"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "compile the source and judge its samples",
		ArgsUsage: "<source>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "case",
				Usage: "judge only the case with this id",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, ctx, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			source, err := sourceArg(cmd, 0)
			if err != nil {
				return err
			}
			return a.run(ctx, source, int(cmd.Int("case")))
		},
	}
}

func (a *app) run(ctx context.Context, source string, caseID int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobUuid := uuid.NewString()
	ctx = logger.WithJob(ctx, jobUuid)

	set, err := a.load(source)
	if err != nil {
		return err
	}
	settings, err := a.compileSettings()
	if err != nil {
		return err
	}
	runs, err := a.runService()
	if err != nil {
		return err
	}

	files, err := filestore.New()
	if err != nil {
		return err
	}
	defer files.Close()

	tmpDir, err := os.MkdirTemp("", "sampler-*")
	if err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logger.FromContext(ctx).Warn("failed to remove work dir", "dir", tmpDir, "error", err)
		}
	}()

	gath, closeGath, err := a.gatherers(ctx, jobUuid)
	if err != nil {
		return err
	}
	defer closeGath()

	orch := compile.NewOrchestrator(compile.NewGccService(0), tmpDir)
	engine := verdict.NewEngine(runs, files, a.cfg.OutputLimitBytes(), tmpDir)
	r := batch.NewRunner(orch, engine, a.testlibProvider(), gath, a.cfg.Workers)

	if caseID > 0 {
		err = r.RunOne(ctx, set, caseID, settings)
	} else {
		err = r.RunAll(ctx, set, settings)
	}
	if saveErr := a.store.Save(set); saveErr != nil {
		logger.FromContext(ctx).Error("failed to save verdicts", "error", saveErr)
		if err == nil {
			err = saveErr
		}
	}
	return err
}

// gatherers always reports to the terminal and additionally publishes to
// NATS and SQS when they are configured.
func (a *app) gatherers(ctx context.Context, jobUuid string) (batch.ResultGatherer, func(), error) {
	gs := batch.Gatherers{termgath.New(os.Stdout, a.verbose)}
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if a.cfg.Nats.URL != "" {
		nc, err := natsgath.Connect(a.cfg.Nats.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		closers = append(closers, func() { flushAndClose(ctx, nc) })
		gs = append(gs, natsgath.New(nc, a.cfg.Nats.Subject, jobUuid))
	}

	if a.cfg.Sqs.QueueURL != "" {
		client, err := sqsgath.NewClient(ctx, a.cfg.Sqs.Region)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		gs = append(gs, sqsgath.NewSqsResponseQueueGatherer(client, a.cfg.Sqs.QueueURL, jobUuid))
	}
	return gs, closeAll, nil
}

func flushAndClose(ctx context.Context, nc *nats.Conn) {
	if err := nc.Flush(); err != nil {
		logger.FromContext(ctx).Warn("failed to flush NATS connection", "error", err)
	}
	nc.Close()
}
