package interfaces

import (
	"context"

	"github.com/m-mizutani/seqpipe/pkg/domain/model"
)

// Aligner runs the external sequence aligner for one read file
type Aligner interface {
	// Align runs one aligner process and blocks until it exits
	Align(ctx context.Context, job *model.AlignJob) error
}

// AlignmentInspector reads a BAM file produced by the aligner
type AlignmentInspector interface {
	// Inspect reads the header and every record of the BAM at path
	Inspect(ctx context.Context, path string) (*model.AlignmentSummary, error)
}
