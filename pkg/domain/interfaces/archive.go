package interfaces

import (
	"context"
	"io"
)

// Archive opens sessions on the remote run archive
type Archive interface {
	// Connect opens a new logged-in session. Sessions are not shared between
	// workers.
	Connect(ctx context.Context) (ArchiveSession, error)
}

// ArchiveSession is a single logged-in archive connection
type ArchiveSession interface {
	// ChangeDir moves the session into dir
	ChangeDir(dir string) error

	// List returns the file names in the current directory
	List() ([]string, error)

	// Retrieve copies the named file of the current directory into w
	Retrieve(ctx context.Context, name string, w io.Writer) (int64, error)

	// Close ends the session
	Close() error
}
