package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/seqpipe/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdDownload(doc *config.Document) *cli.Command {
	var (
		geoCfg     config.GEO
		archiveCfg config.Archive
	)

	var flags []cli.Flag
	flags = append(flags, geoCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"d"},
		Usage:     "Resolve GEO series and download the files of their matching runs",
		ArgsUsage: "<series...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			runs, err := discoverRuns(ctx, c, &geoCfg, doc)
			if err != nil {
				return quietOnInterrupt(ctx, err)
			}

			if len(runs) == 0 {
				ctxlog.From(ctx).Warn("No runs matched, nothing to download")
				return nil
			}

			results, err := downloadRuns(ctx, c, &archiveCfg, doc, runs)
			if err != nil {
				return quietOnInterrupt(ctx, err)
			}

			printDownloadSummary(c, results)
			return nil
		},
	}
}
