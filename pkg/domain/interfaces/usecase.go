package interfaces

import (
	"context"

	"github.com/m-mizutani/seqpipe/pkg/domain/model"
)

// AlignUseCase aligns read files with the external aligner
type AlignUseCase interface {
	// AlignDirectories aligns every read file found under dirs
	AlignDirectories(ctx context.Context, dirs []string) error

	// AlignFile aligns a single read file
	AlignFile(ctx context.Context, path string) error
}

// DiscoveryUseCase resolves GEO series into SRA run accessions
type DiscoveryUseCase interface {
	// Discover returns the runs of every accepted sample of every series
	Discover(ctx context.Context, series []string, filter model.SampleFilter) ([]string, error)

	// ResolveSample returns the runs of one sample, or none if it is filtered out
	ResolveSample(ctx context.Context, sample string, filter model.SampleFilter) ([]string, error)
}

// DownloadUseCase fetches run files from the archive
type DownloadUseCase interface {
	// Download fetches the files of every run
	Download(ctx context.Context, runs []string) ([]*model.DownloadResult, error)

	// DownloadRun fetches the files of one run
	DownloadRun(ctx context.Context, accession string) (*model.DownloadResult, error)
}
