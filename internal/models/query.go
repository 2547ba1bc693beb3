package models

import "fmt"

// SearchQuery represents a keyword search over imported recipes.
type SearchQuery struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
	Category string `json:"category,omitempty"`
}

// Validate ensures the search query has valid fields and sets defaults.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// SearchHit is a single keyword search match.
type SearchHit struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category,omitempty"`
	Score    float64 `json:"score"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Hits      []SearchHit `json:"hits"`
	Total     uint64      `json:"total"`
	QueryTime int64       `json:"query_time_ms"`
	Query     string      `json:"query"`

	// Suggestion is a respelled query offered when nothing matched.
	Suggestion string `json:"suggestion,omitempty"`
}
