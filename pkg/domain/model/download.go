package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// Default archive settings
const (
	DefaultArchiveHost = "ftp.sra.ebi.ac.uk:21"
	DefaultArchiveUser = "anonymous"
	DefaultReadsDir    = "Reads"
	DefaultWorkers     = 8
	TempFilePrefix     = "tmp_"
)

// Public NCBI endpoints used for sample discovery
const (
	DefaultGEOURL = "https://www.ncbi.nlm.nih.gov/geo/query/acc.cgi"
	DefaultSRAURL = "https://www.ncbi.nlm.nih.gov/sra"
)

// FailurePolicy decides what happens to files already fetched for a run when
// a later file of the same run fails
type FailurePolicy string

const (
	// FailureKeep leaves completed sibling files in place
	FailureKeep FailurePolicy = "keep"
	// FailureRollback removes files completed by this invocation for the run
	FailureRollback FailurePolicy = "rollback"
)

// ParseFailurePolicy validates a policy name
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case FailureKeep, FailureRollback:
		return p, nil
	case "":
		return FailureKeep, nil
	default:
		return "", goerr.New("unknown failure policy", goerr.V("policy", s))
	}
}

// DownloadResult represents the files handled for one run accession
type DownloadResult struct {
	Accession  string   // Run accession
	RemoteDir  string   // Directory on the archive
	Downloaded []string // Files fetched by this invocation
	Skipped    []string // Files that already existed locally
	Size       int64    // Total bytes transferred
}
