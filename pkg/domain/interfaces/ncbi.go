package interfaces

import (
	"context"

	"github.com/m-mizutani/seqpipe/pkg/domain/model"
)

// GEOClient reads the NCBI GEO and SRA web pages needed to resolve samples
type GEOClient interface {
	// SeriesSamples returns the sample accessions linked from a series page
	SeriesSamples(ctx context.Context, series string) ([]string, error)

	// Sample returns the strategy, organism and SRA relation of a sample page
	Sample(ctx context.Context, sample string) (*model.SampleRecord, error)

	// SearchRuns returns the run accessions listed by an SRA search
	SearchRuns(ctx context.Context, term string) ([]string, error)
}
