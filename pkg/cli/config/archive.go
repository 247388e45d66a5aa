package config

import (
	"time"

	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

const DefaultFTPTimeout = 30 * time.Second

// Archive holds run archive (FTP) and download configuration
type Archive struct {
	Addr      string
	User      string
	Password  string `masq:"secret"`
	Dest      string
	Workers   int
	OnFailure string
	Timeout   time.Duration
}

// Flags returns CLI flags for archive configuration
func (c *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-addr",
			Usage:       "FTP archive host:port",
			Value:       model.DefaultArchiveHost,
			Destination: &c.Addr,
			Sources:     cli.EnvVars("SEQPIPE_ARCHIVE_ADDR"),
		},
		&cli.StringFlag{
			Name:        "archive-user",
			Usage:       "FTP login user",
			Value:       model.DefaultArchiveUser,
			Destination: &c.User,
			Sources:     cli.EnvVars("SEQPIPE_ARCHIVE_USER"),
		},
		&cli.StringFlag{
			Name:        "archive-password",
			Usage:       "FTP login password",
			Value:       model.DefaultArchiveUser,
			Destination: &c.Password,
			Sources:     cli.EnvVars("SEQPIPE_ARCHIVE_PASSWORD"),
		},
		&cli.StringFlag{
			Name:        "dest",
			Aliases:     []string{"d"},
			Usage:       "Directory receiving downloaded files",
			Value:       model.DefaultReadsDir,
			Destination: &c.Dest,
			Sources:     cli.EnvVars("SEQPIPE_DEST"),
		},
		&cli.IntFlag{
			Name:        "workers",
			Aliases:     []string{"w"},
			Usage:       "Number of runs downloaded at once",
			Value:       model.DefaultWorkers,
			Destination: &c.Workers,
			Sources:     cli.EnvVars("SEQPIPE_WORKERS"),
		},
		&cli.StringFlag{
			Name:        "on-failure",
			Usage:       "What to do with completed files of a failed run (keep, rollback)",
			Value:       string(model.FailureKeep),
			Destination: &c.OnFailure,
			Sources:     cli.EnvVars("SEQPIPE_ON_FAILURE"),
		},
		&cli.DurationFlag{
			Name:        "archive-timeout",
			Usage:       "FTP connect timeout",
			Value:       DefaultFTPTimeout,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("SEQPIPE_ARCHIVE_TIMEOUT"),
		},
	}
}

// Merge fills values from the config file for flags not given explicitly
func (c *Archive) Merge(cmd *cli.Command, s ArchiveSection) error {
	merge(cmd, "archive-addr", &c.Addr, s.Addr)
	merge(cmd, "archive-user", &c.User, s.User)
	merge(cmd, "archive-password", &c.Password, s.Password)
	merge(cmd, "dest", &c.Dest, s.Dest)
	merge(cmd, "workers", &c.Workers, s.Workers)
	merge(cmd, "on-failure", &c.OnFailure, s.OnFailure)
	return mergeDuration(cmd, "archive-timeout", &c.Timeout, s.Timeout)
}

// Policy parses the failure policy
func (c *Archive) Policy() (model.FailurePolicy, error) {
	return model.ParseFailurePolicy(c.OnFailure)
}
