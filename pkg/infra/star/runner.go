package star

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
)

// config holds internal runner configuration
type config struct {
	binary string
	stdout io.Writer
	stderr io.Writer
}

// Option is a functional option for the runner
type Option func(*config)

// WithBinary sets the aligner executable name or path
func WithBinary(binary string) Option {
	return func(c *config) {
		c.binary = binary
	}
}

// WithOutput sets where the aligner's stdout and stderr go
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

type runner struct {
	cfg config
}

// NewRunner creates an Aligner that executes the STAR binary
func NewRunner(opts ...Option) interfaces.Aligner {
	cfg := config{
		binary: model.DefaultAligner,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &runner{cfg: cfg}
}

// Align runs one aligner process inside the read file's directory. The
// process working directory of seqpipe itself is never changed.
func (r *runner) Align(ctx context.Context, job *model.AlignJob) error {
	logger := ctxlog.From(ctx)

	cmd := exec.CommandContext(ctx, r.cfg.binary, job.Args()...)
	cmd.Dir = job.Dir
	cmd.Stdin = nil
	cmd.Stdout = r.cfg.stdout
	cmd.Stderr = r.cfg.stderr

	logger.Debug("Starting aligner",
		"binary", r.cfg.binary,
		"dir", job.Dir,
		"args", job.Args(),
	)

	if err := cmd.Run(); err != nil {
		opts := []goerr.Option{
			goerr.V("binary", r.cfg.binary),
			goerr.V("read_file", job.ReadPath),
			goerr.V("prefix", job.Prefix),
			goerr.V("dir", job.Dir),
			goerr.T(types.ErrTagProcess),
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			opts = append(opts, goerr.V("exit_code", exitErr.ExitCode()))
			return goerr.Wrap(err, "aligner exited with failure", opts...)
		}
		return goerr.Wrap(err, "failed to run aligner", opts...)
	}

	return nil
}
