package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/utils/async"
)

// DefaultDiscoveryWorkers is the number of samples resolved concurrently
const DefaultDiscoveryWorkers = 8

type discoveryUseCase struct {
	geo     interfaces.GEOClient
	workers int
}

// NewDiscovery creates a new instance of DiscoveryUseCase
func NewDiscovery(geo interfaces.GEOClient) interfaces.DiscoveryUseCase {
	return &discoveryUseCase{
		geo:     geo,
		workers: DefaultDiscoveryWorkers,
	}
}

// Discover resolves series one after another; the samples of a series are
// resolved concurrently. Runs are returned in series order, then sample
// order, without removing duplicates. Any failure aborts the discovery.
func (uc *discoveryUseCase) Discover(ctx context.Context, series []string, filter model.SampleFilter) ([]string, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Starting discovery",
		"series", series,
		"library", filter.Library,
		"species", filter.Species,
	)

	var runs []string
	for _, s := range series {
		found, err := uc.discoverSeries(ctx, s, filter)
		if err != nil {
			return nil, err
		}
		runs = append(runs, found...)
	}

	return runs, nil
}

func (uc *discoveryUseCase) discoverSeries(ctx context.Context, series string, filter model.SampleFilter) ([]string, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Searching series", "series", series)
	samples, err := uc.geo.SeriesSamples(ctx, series)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read series", goerr.V("series", series))
	}

	logger.Info("Found samples",
		"series", series,
		"count", len(samples),
		"samples", samples,
	)

	perSample, err := async.Map(ctx, uc.workers, samples, func(ctx context.Context, sample string) ([]string, error) {
		return uc.ResolveSample(ctx, sample, filter)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve samples", goerr.V("series", series))
	}

	var runs []string
	for _, r := range perSample {
		runs = append(runs, r...)
	}
	return runs, nil
}

// ResolveSample returns the runs of a sample. A sample whose strategy or
// organism is not accepted, or that has no SRA relation, resolves to no runs
// without error.
func (uc *discoveryUseCase) ResolveSample(ctx context.Context, sample string, filter model.SampleFilter) ([]string, error) {
	logger := ctxlog.From(ctx).With("sample", sample)

	logger.Info("Working on sample")
	rec, err := uc.geo.Sample(ctx, sample)
	if err != nil {
		return nil, err
	}

	if !filter.Accepts(rec) {
		logger.Debug("Skipping sample",
			"strategy", rec.Strategy,
			"organism", rec.Organism,
			"sra", rec.RelationKey,
		)
		return nil, nil
	}

	logger.Info("Found relevant SRA relation", "sra", rec.RelationKey)

	runs, err := uc.geo.SearchRuns(ctx, rec.RelationKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search runs",
			goerr.V("sample", sample),
			goerr.V("sra", rec.RelationKey),
		)
	}

	logger.Info("Resolved runs", "runs", runs)
	return runs, nil
}
