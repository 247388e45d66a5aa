package config

import (
	"bytes"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File holds the path of the optional TOML configuration file
type File struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML configuration file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("SEQPIPE_CONFIG"),
		},
	}
}

// Document is the content of a configuration file. A value in it is used
// only when the matching flag is set neither on the command line nor in the
// environment.
type Document struct {
	Align   AlignSection   `toml:"align"`
	GEO     GEOSection     `toml:"geo"`
	Archive ArchiveSection `toml:"archive"`
}

type AlignSection struct {
	Genome    *string `toml:"genome"`
	Processes *int    `toml:"processes"`
	Threads   *int    `toml:"threads"`
	Aligner   *string `toml:"aligner"`
	Pattern   *string `toml:"pattern"`
	Verify    *bool   `toml:"verify"`
}

type GEOSection struct {
	Library *string   `toml:"library"`
	Species *[]string `toml:"species"`
	GEOURL  *string   `toml:"geo_url"`
	SRAURL  *string   `toml:"sra_url"`
	Timeout *string   `toml:"timeout"`
}

type ArchiveSection struct {
	Addr      *string `toml:"addr"`
	User      *string `toml:"user"`
	Password  *string `toml:"password"`
	Dest      *string `toml:"dest"`
	Workers   *int    `toml:"workers"`
	OnFailure *string `toml:"on_failure"`
	Timeout   *string `toml:"timeout"`
}

// Load reads the configuration file. No path yields an empty document.
func (c *File) Load() (*Document, error) {
	var doc Document
	if c.Path == "" {
		return &doc, nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", c.Path))
	}

	dec := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.Path))
	}

	return &doc, nil
}

func merge[T any](cmd *cli.Command, name string, dst *T, v *T) {
	if v == nil || cmd.IsSet(name) {
		return
	}
	*dst = *v
}

func mergeDuration(cmd *cli.Command, name string, dst *time.Duration, v *string) error {
	if v == nil || cmd.IsSet(name) {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return goerr.Wrap(err, "invalid duration in config file", goerr.V("key", name), goerr.V("value", *v))
	}
	*dst = d
	return nil
}
