package models

import (
	"fmt"
	"strings"
)

// SearchQuery represents a search request.
type SearchQuery struct {
	Mode  string `json:"mode"`
	Query string `json:"query"`
}

// Validate trims the query and rejects a blank one.
func (q *SearchQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}
