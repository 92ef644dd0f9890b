package indexer

import (
	"fmt"

	"github.com/hyperjump/emnet/internal/errs"
)

// EmptyDocumentError reports a corpus document with no tokens. It matches errs.ErrInvalidInput.
type EmptyDocumentError struct {
	Path string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("%s: %s has no text to embed", errs.ErrInvalidInput, e.Path)
}

func (e *EmptyDocumentError) Unwrap() error { return errs.ErrInvalidInput }

// EmptyDocuments returns the paths of every EmptyDocumentError in err's tree,
// including errors combined with errors.Join.
func EmptyDocuments(err error) []string {
	var paths []string
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *EmptyDocumentError:
			paths = append(paths, e.Path)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)
	return paths
}
