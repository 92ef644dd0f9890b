package search

import (
	"fmt"

	"github.com/hyperjump/emnet/internal/corpus"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/pkg/utils"
)

// maxSuggestDistance bounds how far a suggested name may be from the query.
const maxSuggestDistance = 3

// NotFoundError reports a file-mode query naming a document that is not indexed.
// It matches errs.ErrNotFound.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (did you mean %s?)", errs.ErrNotFound, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", errs.ErrNotFound, e.Name)
}

func (e *NotFoundError) Unwrap() error { return errs.ErrNotFound }

func notFound(name string, ids []string) *NotFoundError {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = corpus.DisplayName(id)
	}
	suggestion, _ := utils.Closest(name, names, maxSuggestDistance)
	return &NotFoundError{Name: name, Suggestion: suggestion}
}
