package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/cli/config"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/infra/ncbi"
	"github.com/m-mizutani/seqpipe/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func newGEOClient(cfg *config.GEO) interfaces.GEOClient {
	return ncbi.NewClient(
		ncbi.WithGEOURL(cfg.GEOURL),
		ncbi.WithSRAURL(cfg.SRAURL),
		ncbi.WithTimeout(cfg.Timeout),
	)
}

// discoverRuns merges configuration and resolves series into run accessions
func discoverRuns(ctx context.Context, c *cli.Command, cfg *config.GEO, doc *config.Document) ([]string, error) {
	if err := cfg.Merge(c, doc.GEO); err != nil {
		return nil, err
	}

	series := c.Args().Slice()
	if len(series) == 0 {
		return nil, goerr.New("at least one series accession is required")
	}

	filter, err := cfg.Filter()
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Resolving series",
		"config", cfg,
		"series", series,
	)

	return usecase.NewDiscovery(newGEOClient(cfg)).Discover(ctx, series, filter)
}

func cmdDiscover(doc *config.Document) *cli.Command {
	var geoCfg config.GEO

	return &cli.Command{
		Name:      "discover",
		Usage:     "Print the SRA runs of matching samples of GEO series",
		ArgsUsage: "<series...>",
		Flags:     geoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			runs, err := discoverRuns(ctx, c, &geoCfg, doc)
			if err != nil {
				return quietOnInterrupt(ctx, err)
			}

			w := c.Root().Writer
			for _, run := range runs {
				fmt.Fprintln(w, run)
			}

			summary := color.New(color.FgGreen)
			if len(runs) == 0 {
				summary = color.New(color.FgYellow)
			}
			summary.Fprintf(c.Root().ErrWriter, "%d run(s) found in %d series\n", len(runs), c.Args().Len())
			return nil
		},
	}
}
