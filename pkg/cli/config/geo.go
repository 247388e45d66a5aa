package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

const (
	DefaultLibrary     = "ncRNA-seq"
	DefaultSpecies     = "homo_sapiens"
	DefaultHTTPTimeout = time.Minute
)

// GEO holds sample discovery configuration
type GEO struct {
	Library string
	Species []string
	GEOURL  string
	SRAURL  string
	Timeout time.Duration
}

// Flags returns CLI flags for sample discovery configuration
func (c *GEO) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "library",
			Aliases:     []string{"l"},
			Usage:       "Library strategy a sample must have",
			Value:       DefaultLibrary,
			Destination: &c.Library,
			Sources:     cli.EnvVars("SEQPIPE_LIBRARY"),
		},
		&cli.StringSliceFlag{
			Name:        "species",
			Aliases:     []string{"s"},
			Usage:       "Accepted organism, repeatable (underscores read as spaces)",
			Value:       []string{DefaultSpecies},
			Destination: &c.Species,
			Sources:     cli.EnvVars("SEQPIPE_SPECIES"),
		},
		&cli.StringFlag{
			Name:        "geo-url",
			Usage:       "GEO accession display endpoint",
			Value:       model.DefaultGEOURL,
			Destination: &c.GEOURL,
			Sources:     cli.EnvVars("SEQPIPE_GEO_URL"),
		},
		&cli.StringFlag{
			Name:        "sra-url",
			Usage:       "SRA search endpoint",
			Value:       model.DefaultSRAURL,
			Destination: &c.SRAURL,
			Sources:     cli.EnvVars("SEQPIPE_SRA_URL"),
		},
		&cli.DurationFlag{
			Name:        "http-timeout",
			Usage:       "Timeout of each GEO or SRA request",
			Value:       DefaultHTTPTimeout,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("SEQPIPE_HTTP_TIMEOUT"),
		},
	}
}

// Merge fills values from the config file for flags not given explicitly
func (c *GEO) Merge(cmd *cli.Command, s GEOSection) error {
	merge(cmd, "library", &c.Library, s.Library)
	merge(cmd, "species", &c.Species, s.Species)
	merge(cmd, "geo-url", &c.GEOURL, s.GEOURL)
	merge(cmd, "sra-url", &c.SRAURL, s.SRAURL)
	return mergeDuration(cmd, "http-timeout", &c.Timeout, s.Timeout)
}

// Filter returns the normalized sample filter
func (c *GEO) Filter() (model.SampleFilter, error) {
	if len(c.Species) == 0 {
		return model.SampleFilter{}, goerr.New("at least one species is required")
	}
	return model.NewSampleFilter(c.Library, c.Species), nil
}
