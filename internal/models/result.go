package models

// SearchResult represents a single ranked document.
type SearchResult struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchResponse is the response for a search request. Results are best first.
type SearchResponse struct {
	Query     string          `json:"query"`
	Mode      string          `json:"mode"`
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
}

// Names returns the display names of the results in rank order.
func (r *SearchResponse) Names() []string {
	names := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		names = append(names, res.Name)
	}
	return names
}
