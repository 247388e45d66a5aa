package usecase

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/utils/async"
)

type downloadConfig struct {
	dest    string
	workers int
	policy  model.FailurePolicy
}

// DownloadOption is a functional option for the download use case
type DownloadOption func(*downloadConfig)

// WithDestination sets the local directory receiving run files
func WithDestination(dir string) DownloadOption {
	return func(c *downloadConfig) {
		c.dest = dir
	}
}

// WithWorkers sets how many runs are downloaded at once
func WithWorkers(n int) DownloadOption {
	return func(c *downloadConfig) {
		c.workers = n
	}
}

// WithFailurePolicy sets what happens to completed files of a failed run
func WithFailurePolicy(p model.FailurePolicy) DownloadOption {
	return func(c *downloadConfig) {
		c.policy = p
	}
}

type downloadUseCase struct {
	archive interfaces.Archive
	cfg     downloadConfig
}

// NewDownload creates a new instance of DownloadUseCase
func NewDownload(archive interfaces.Archive, opts ...DownloadOption) interfaces.DownloadUseCase {
	cfg := downloadConfig{
		dest:    model.DefaultReadsDir,
		workers: model.DefaultWorkers,
		policy:  model.FailureKeep,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &downloadUseCase{
		archive: archive,
		cfg:     cfg,
	}
}

// Download fetches every run with a bounded number of concurrent archive
// sessions. All runs are attempted; the first failure is returned.
func (uc *downloadUseCase) Download(ctx context.Context, runs []string) ([]*model.DownloadResult, error) {
	if err := os.MkdirAll(uc.cfg.dest, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create destination directory", goerr.V("dest", uc.cfg.dest))
	}

	return async.Map(ctx, uc.cfg.workers, runs, uc.DownloadRun)
}

// DownloadRun fetches all files of one run that are not present locally
func (uc *downloadUseCase) DownloadRun(ctx context.Context, accession string) (*model.DownloadResult, error) {
	logger := ctxlog.From(ctx).With("accession", accession)

	remoteDir, err := model.RunPath(accession)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(uc.cfg.dest, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create destination directory", goerr.V("dest", uc.cfg.dest))
	}

	sess, err := uc.archive.Connect(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open archive session", goerr.V("accession", accession))
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("Failed to close archive session", "error", err)
		}
	}()

	logger.Info("Beginning download of run", "remote_dir", remoteDir)

	if err := sess.ChangeDir(remoteDir); err != nil {
		return nil, goerr.Wrap(err, "failed to open run directory", goerr.V("accession", accession))
	}

	names, err := sess.List()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list run files", goerr.V("accession", accession))
	}

	result := &model.DownloadResult{
		Accession: accession,
		RemoteDir: remoteDir,
	}

	for _, name := range names {
		// listings may carry a directory part; files always land directly in dest
		name = path.Base(name)
		final := filepath.Join(uc.cfg.dest, name)

		if _, err := os.Stat(final); err == nil {
			logger.Info("File already exists, moving on", "file", name)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		logger.Info("Beginning download of file", "file", name)
		n, err := uc.fetchFile(ctx, sess, name, final)
		if err != nil {
			uc.onFailure(ctx, result)
			return nil, goerr.Wrap(err, "failed to download run file",
				goerr.V("accession", accession),
				goerr.V("file", name),
			)
		}

		result.Downloaded = append(result.Downloaded, name)
		result.Size += n
		logger.Info("Finished download of file", "file", name, "bytes", n)
	}

	logger.Info("Finished download of run",
		"downloaded", len(result.Downloaded),
		"skipped", len(result.Skipped),
		"bytes", result.Size,
	)
	return result, nil
}

// fetchFile writes the remote file to a temporary sibling and renames it into
// place only after a complete transfer. The temporary file never survives.
func (uc *downloadUseCase) fetchFile(ctx context.Context, sess interfaces.ArchiveSession, name, final string) (int64, error) {
	tmp := filepath.Join(uc.cfg.dest, model.TempFilePrefix+name)
	defer func() {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			ctxlog.From(ctx).Warn("Failed to remove temporary file", "path", tmp, "error", err)
		}
	}()

	f, err := os.Create(tmp)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create temporary file", goerr.V("path", tmp))
	}

	n, err := sess.Retrieve(ctx, name, f)
	if err != nil {
		_ = f.Close()
		return n, err
	}
	if err := f.Close(); err != nil {
		return n, goerr.Wrap(err, "failed to close temporary file", goerr.V("path", tmp))
	}

	if err := os.Rename(tmp, final); err != nil {
		return n, goerr.Wrap(err, "failed to move file into place",
			goerr.V("from", tmp),
			goerr.V("to", final),
		)
	}
	return n, nil
}

func (uc *downloadUseCase) onFailure(ctx context.Context, result *model.DownloadResult) {
	if uc.cfg.policy != model.FailureRollback {
		return
	}

	logger := ctxlog.From(ctx)
	for _, name := range result.Downloaded {
		p := filepath.Join(uc.cfg.dest, name)
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Failed to roll back file", "path", p, "error", err)
			continue
		}
		logger.Info("Rolled back file", "accession", result.Accession, "file", name)
	}
}
