package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures by where they came from. None of them is
// retried; the tag only tells the operator which layer to look at.
var (
	// ErrTagProcess marks an external process that exited with failure
	ErrTagProcess = goerr.NewTag("process")

	// ErrTagNetwork marks HTTP and FTP failures, including non-2xx responses
	ErrTagNetwork = goerr.NewTag("network")

	// ErrTagParse marks markup or identifiers that lack the expected structure
	ErrTagParse = goerr.NewTag("parse")
)
