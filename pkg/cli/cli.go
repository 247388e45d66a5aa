package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/seqpipe/pkg/cli/config"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		loggerCfg = config.Logger{Output: stderr}
		sentryCfg config.Sentry
		fileCfg   config.File
		logger    *slog.Logger
	)
	doc := &config.Document{}

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, fileCfg.Flags()...)

	app := &cli.Command{
		Name:      "seqpipe",
		Usage:     "Align sequencing reads and fetch runs from GEO/SRA",
		Version:   types.Version,
		Flags:     flags,
		Writer:    stdout,
		ErrWriter: stderr,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			logger = logger.With("job_id", uuid.NewString())

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			loaded, err := fileCfg.Load()
			if err != nil {
				return nil, err
			}
			*doc = *loaded

			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}

			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdAlign(doc),
			cmdDiscover(doc),
			cmdFetch(doc),
			cmdDownload(doc),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(stderr, nil))
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentryCfg.Capture(ctxlog.With(ctx, logger), err)
		return err
	}

	return nil
}
