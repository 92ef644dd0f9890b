// Package errs defines the sentinel errors shared across emnet packages.
// Callers match them with errors.Is; producers wrap them with context via %w.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageRead means the persisted index could not be read or decoded.
	ErrStorageRead = errors.New("storage read failed")
	// ErrStorageWrite means the persisted index could not be written.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrNotExist means no persisted index exists yet. It also matches ErrStorageRead.
	ErrNotExist = fmt.Errorf("%w: index store does not exist", ErrStorageRead)
	// ErrNotFound means a document identifier is absent from the index.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput means a degenerate input such as an empty document or a blank query.
	ErrInvalidInput = errors.New("invalid input")
)
