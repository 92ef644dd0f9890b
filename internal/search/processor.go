package search

import (
	"fmt"
	"strings"

	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/models"
)

// Mode selects how the query vector is obtained.
type Mode int

const (
	// ModeTopic embeds the query text.
	ModeTopic Mode = iota
	// ModeFile uses the stored vector of the named corpus file.
	ModeFile
)

func (m Mode) String() string {
	if m == ModeFile {
		return "By file"
	}
	return "By topic"
}

// ParseMode accepts "By topic", "By file" and the short forms "topic" and "file".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "by topic", "topic":
		return ModeTopic, nil
	case "by file", "file":
		return ModeFile, nil
	}
	return 0, fmt.Errorf("%w: unknown search mode %q", errs.ErrInvalidInput, s)
}

// ProcessQuery validates the search query and resolves its mode. An empty mode means topic.
func ProcessQuery(query *models.SearchQuery) (Mode, error) {
	if err := query.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrInvalidInput, err)
	}
	if query.Mode == "" {
		return ModeTopic, nil
	}
	return ParseMode(query.Mode)
}
