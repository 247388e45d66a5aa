package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Align holds alignment runner configuration
type Align struct {
	Genome    string
	Processes int
	Threads   int
	Aligner   string
	Pattern   string
	Verify    bool
}

// Flags returns CLI flags for alignment configuration
func (c *Align) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "genome",
			Aliases:     []string{"g"},
			Usage:       "Path to the genome index directory",
			Destination: &c.Genome,
			Sources:     cli.EnvVars("SEQPIPE_GENOME"),
		},
		&cli.IntFlag{
			Name:        "processes",
			Aliases:     []string{"p"},
			Usage:       "Number of aligner processes run at once",
			Value:       model.DefaultProcesses,
			Destination: &c.Processes,
			Sources:     cli.EnvVars("SEQPIPE_PROCESSES"),
		},
		&cli.IntFlag{
			Name:        "threads",
			Usage:       "Threads passed to each aligner process",
			Value:       model.DefaultThreads,
			Destination: &c.Threads,
			Sources:     cli.EnvVars("SEQPIPE_THREADS"),
		},
		&cli.StringFlag{
			Name:        "aligner",
			Usage:       "Aligner executable",
			Value:       model.DefaultAligner,
			Destination: &c.Aligner,
			Sources:     cli.EnvVars("SEQPIPE_ALIGNER"),
		},
		&cli.StringFlag{
			Name:        "pattern",
			Usage:       "Read file name pattern, matched recursively",
			Value:       model.DefaultReadPattern,
			Destination: &c.Pattern,
			Sources:     cli.EnvVars("SEQPIPE_PATTERN"),
		},
		&cli.BoolFlag{
			Name:        "verify",
			Usage:       "Read every produced BAM and log its record counts",
			Destination: &c.Verify,
			Sources:     cli.EnvVars("SEQPIPE_VERIFY"),
		},
	}
}

// Merge fills values from the config file for flags not given explicitly
func (c *Align) Merge(cmd *cli.Command, s AlignSection) {
	merge(cmd, "genome", &c.Genome, s.Genome)
	merge(cmd, "processes", &c.Processes, s.Processes)
	merge(cmd, "threads", &c.Threads, s.Threads)
	merge(cmd, "aligner", &c.Aligner, s.Aligner)
	merge(cmd, "pattern", &c.Pattern, s.Pattern)
	merge(cmd, "verify", &c.Verify, s.Verify)
}

// Validate checks the configuration after flags and config file are merged
func (c *Align) Validate() error {
	if c.Genome == "" {
		return goerr.New("genome directory is required (--genome)")
	}
	if c.Processes < 1 {
		return goerr.New("processes must be positive", goerr.V("processes", c.Processes))
	}
	if c.Threads < 1 {
		return goerr.New("threads must be positive", goerr.V("threads", c.Threads))
	}
	return nil
}
