package bam

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
)

// cancellation is checked once per this many records
const checkInterval = 1 << 16

type inspector struct {
	concurrency int
}

// NewInspector creates an AlignmentInspector. concurrency is the number of
// BGZF decompression goroutines; zero means GOMAXPROCS.
func NewInspector(concurrency int) interfaces.AlignmentInspector {
	return &inspector{concurrency: concurrency}
}

func (x *inspector) Inspect(ctx context.Context, path string) (*model.AlignmentSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open BAM", goerr.V("path", path))
	}
	defer f.Close()

	r, err := bam.NewReader(f, x.concurrency)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read BAM header",
			goerr.V("path", path),
			goerr.T(types.ErrTagParse),
		)
	}
	defer r.Close()

	h := r.Header()
	summary := &model.AlignmentSummary{
		Path:       path,
		SortOrder:  h.SortOrder.String(),
		References: len(h.Refs()),
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read BAM record",
				goerr.V("path", path),
				goerr.V("records", summary.Records),
				goerr.T(types.ErrTagParse),
			)
		}

		summary.Records++
		if rec.Flags&sam.Unmapped == 0 {
			summary.Mapped++
		}

		if summary.Records%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, goerr.Wrap(err, "BAM inspection interrupted", goerr.V("path", path))
			}
		}
	}

	return summary, nil
}
