// Package cli provides output formatting and the interactive loop for the emnet CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hyperjump/emnet/internal/corpus"
	"github.com/hyperjump/emnet/internal/indexer"
	"github.com/hyperjump/emnet/internal/models"
	"github.com/hyperjump/emnet/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat returns the format named s. Unknown names are an error.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch SearchOutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	writeSearchResultsText(w, response)
	return nil
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if len(response.Results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	for _, result := range response.Results {
		fmt.Fprintf(w, "%d. %s\n", result.Rank, result.Name)
	}
}

// WriteVerboseResults writes one block per result with its title and score.
func WriteVerboseResults(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\n%s %q: %d results in %dms\n\n",
		response.Mode, utils.Truncate(response.Query, 60), len(response.Results), response.QueryTime)
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", result.Rank, result.Score)
		fmt.Fprintf(w, "File: %s\n", result.Name)
		fmt.Fprintf(w, "Title: %s\n", result.Title)
	}
	fmt.Fprintln(w)
}

// WriteDocument prints a document's title followed by its content.
func WriteDocument(w io.Writer, doc *corpus.Document) {
	fmt.Fprintf(w, "%s\n\n%s\n", doc.Title, doc.Content)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteErrorHints prints a remedy for each empty corpus document named in err and
// reports whether it printed anything.
func WriteErrorHints(w io.Writer, err error) bool {
	paths := indexer.EmptyDocuments(err)
	for _, path := range paths {
		fmt.Fprintf(w, "Hint: %s contains no text. Add text to it or move it out of %s, then run emnet again.\n",
			corpus.DisplayName(path), filepath.Dir(path))
	}
	return len(paths) > 0
}
