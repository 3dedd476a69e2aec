package tantivy

import "errors"

var (
	// ErrWriterClosed is returned when documents are added after Commit.
	ErrWriterClosed = errors.New("index writer is closed")

	// ErrInvalidNumWorkers is returned when the configured worker count is
	// not positive.
	ErrInvalidNumWorkers = errors.New("number of workers must be positive")
)
