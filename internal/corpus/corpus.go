// Package corpus lists and reads the plain-text documents of a corpus directory.
// A document's identifier is its path; its display name is the file's base name.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/emnet/internal/errs"
)

// Document is a corpus file with its derived names.
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List returns the identifiers of regular files in root matching pattern, sorted.
// Subdirectories are not descended into.
func List(root, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid corpus pattern %q: %w", pattern, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", root, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); !ok {
			continue
		}
		ids = append(ids, ID(root, e.Name()))
	}
	sort.Strings(ids)
	return ids, nil
}

// ID returns the identifier of the file called name in root.
func ID(root, name string) string {
	return filepath.Join(root, name)
}

// DisplayName returns the base name shown to users for an identifier.
func DisplayName(id string) string {
	return filepath.Base(id)
}

// Title turns a display name into a readable heading: "Nahuatl_language.txt" -> "Nahuatl language".
func Title(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(name, "_", " ")
}

// ReadText returns the file content as a string. Invalid UTF-8 sequences are replaced
// with the replacement character.
func ReadText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "\ufffd"), nil
	}
	return string(content), nil
}

// Tokens splits text on any run of whitespace.
func Tokens(text string) []string {
	return strings.Fields(text)
}

// Open reads the document called name in root. A missing file yields errs.ErrNotFound.
// Names containing a path separator are rejected so lookups stay inside the corpus.
func Open(root, name string) (*Document, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: invalid document name %q", errs.ErrInvalidInput, name)
	}
	id := ID(root, name)
	content, err := ReadText(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, name)
		}
		return nil, err
	}
	return &Document{ID: id, Name: name, Title: Title(name), Content: content}, nil
}
