package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/cli/config"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/infra/ftp"
	"github.com/m-mizutani/seqpipe/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// downloadRuns merges configuration and fetches the files of runs
func downloadRuns(ctx context.Context, c *cli.Command, cfg *config.Archive, doc *config.Document, runs []string) ([]*model.DownloadResult, error) {
	if err := cfg.Merge(c, doc.Archive); err != nil {
		return nil, err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Starting download",
		"config", cfg,
		"runs", runs,
	)

	archive := ftp.NewArchive(
		ftp.WithAddr(cfg.Addr),
		ftp.WithLogin(cfg.User, cfg.Password),
		ftp.WithTimeout(cfg.Timeout),
	)

	uc := usecase.NewDownload(archive,
		usecase.WithDestination(cfg.Dest),
		usecase.WithWorkers(cfg.Workers),
		usecase.WithFailurePolicy(policy),
	)

	return uc.Download(ctx, runs)
}

func cmdFetch(doc *config.Document) *cli.Command {
	var archiveCfg config.Archive

	return &cli.Command{
		Name:      "fetch",
		Usage:     "Download the files of the given SRA runs",
		ArgsUsage: "<run...>",
		Flags:     archiveCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			runs := c.Args().Slice()
			if len(runs) == 0 {
				return goerr.New("at least one run accession is required")
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

func printDownloadSummary(c *cli.Command, results []*model.DownloadResult) {
	var downloaded, skipped int
	var size int64
	for _, r := range results {
		downloaded += len(r.Downloaded)
		skipped += len(r.Skipped)
		size += r.Size
	}

	color.New(color.FgGreen).Fprintf(c.Root().ErrWriter,
		"%d run(s): %d file(s) downloaded (%d bytes), %d already present\n",
		len(results), downloaded, size, skipped)
}
