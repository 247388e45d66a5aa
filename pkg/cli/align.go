package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/cli/config"
	"github.com/m-mizutani/seqpipe/pkg/infra/bam"
	"github.com/m-mizutani/seqpipe/pkg/infra/star"
	"github.com/m-mizutani/seqpipe/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdAlign(doc *config.Document) *cli.Command {
	var alignCfg config.Align

	return &cli.Command{
		Name:      "align",
		Aliases:   []string{"a"},
		Usage:     "Align every read file under the given directories",
		ArgsUsage: "[directory...]",
		Flags:     alignCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			alignCfg.Merge(c, doc.Align)
			if err := alignCfg.Validate(); err != nil {
				return err
			}

			dirs := c.Args().Slice()
			if len(dirs) == 0 {
				dirs = []string{"."}
			}

			ctxlog.From(ctx).Info("Starting alignment",
				"config", alignCfg,
				"directories", dirs,
			)

			aligner := star.NewRunner(
				star.WithBinary(alignCfg.Aligner),
				star.WithOutput(c.Root().Writer, c.Root().ErrWriter),
			)

			opts := []usecase.AlignOption{
				usecase.WithReadPattern(alignCfg.Pattern),
				usecase.WithProcesses(alignCfg.Processes),
				usecase.WithThreads(alignCfg.Threads),
			}
			if alignCfg.Verify {
				opts = append(opts, usecase.WithInspector(bam.NewInspector(0)))
			}

			uc, err := usecase.NewAlign(aligner, alignCfg.Genome, opts...)
			if err != nil {
				return err
			}

			if err := uc.AlignDirectories(ctx, dirs); err != nil {
				return goerr.Wrap(err, "alignment failed")
			}
			return nil
		},
	}
}
