package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/utils/async"
)

type alignConfig struct {
	pattern   string
	processes int
	threads   int
	inspector interfaces.AlignmentInspector
}

// AlignOption is a functional option for the alignment use case
type AlignOption func(*alignConfig)

// WithReadPattern sets the file name pattern of read files
func WithReadPattern(pattern string) AlignOption {
	return func(c *alignConfig) {
		c.pattern = pattern
	}
}

// WithProcesses sets how many aligner processes run at once
func WithProcesses(n int) AlignOption {
	return func(c *alignConfig) {
		c.processes = n
	}
}

// WithThreads sets the thread count passed to each aligner process
func WithThreads(n int) AlignOption {
	return func(c *alignConfig) {
		c.threads = n
	}
}

// WithInspector checks the sorted BAM of every successful alignment
func WithInspector(inspector interfaces.AlignmentInspector) AlignOption {
	return func(c *alignConfig) {
		c.inspector = inspector
	}
}

type alignUseCase struct {
	aligner interfaces.Aligner
	genome  string
	cfg     alignConfig
}

// NewAlign creates a new instance of AlignUseCase. The genome directory is
// resolved to an absolute path because every aligner runs in a different
// working directory.
func NewAlign(aligner interfaces.Aligner, genome string, opts ...AlignOption) (interfaces.AlignUseCase, error) {
	if genome == "" {
		return nil, goerr.New("genome directory is required")
	}

	abs, err := filepath.Abs(genome)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve genome directory", goerr.V("genome", genome))
	}

	cfg := alignConfig{
		pattern:   model.DefaultReadPattern,
		processes: model.DefaultProcesses,
		threads:   model.DefaultThreads,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &alignUseCase{
		aligner: aligner,
		genome:  abs,
		cfg:     cfg,
	}, nil
}

// AlignDirectories aligns every read file under dirs. All files are
// processed even if some fail; the first failure is returned.
func (uc *alignUseCase) AlignDirectories(ctx context.Context, dirs []string) error {
	logger := ctxlog.From(ctx)

	files, err := FindReadFiles(dirs, uc.cfg.pattern)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		logger.Warn("No read files found",
			"directories", dirs,
			"pattern", uc.cfg.pattern,
		)
		return nil
	}

	logger.Info("Found read files",
		"count", len(files),
		"processes", uc.cfg.processes,
		"genome", uc.genome,
	)

	return async.Each(ctx, uc.cfg.processes, files, uc.AlignFile)
}

// AlignFile runs the aligner for one read file
func (uc *alignUseCase) AlignFile(ctx context.Context, path string) error {
	logger := ctxlog.From(ctx)
	job := model.NewAlignJob(path, uc.genome, uc.cfg.threads)

	logger.Info("Aligning read file",
		"read_file", path,
		"dir", job.Dir,
		"prefix", job.Prefix,
	)

	if err := uc.aligner.Align(ctx, job); err != nil {
		logger.Error("Alignment failed", "read_file", path, "error", err)
		return err
	}

	if uc.cfg.inspector == nil {
		logger.Info("Finished aligning read file", "read_file", path)
		return nil
	}

	summary, err := uc.cfg.inspector.Inspect(ctx, job.OutputBAM())
	if err != nil {
		return goerr.Wrap(err, "aligner output is not a readable BAM", goerr.V("read_file", path))
	}

	logger.Info("Finished aligning read file",
		"read_file", path,
		"bam", summary.Path,
		"records", summary.Records,
		"mapped", summary.Mapped,
		"references", summary.References,
		"sort_order", summary.SortOrder,
	)
	return nil
}

// FindReadFiles returns the files matching pattern at any depth below each
// directory, sorted per directory and in the order the directories are given
func FindReadFiles(dirs []string, pattern string) ([]string, error) {
	var files []string

	for _, dir := range dirs {
		matches, err := doublestar.Glob(os.DirFS(dir), "**/"+pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search read files",
				goerr.V("dir", dir),
				goerr.V("pattern", pattern),
			)
		}
		sort.Strings(matches)

		for _, m := range matches {
			files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}

	return files, nil
}
