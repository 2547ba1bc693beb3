package models

import (
	"fmt"
	"strings"
)

// DuplicatePolicy selects what happens when an incoming recipe's title matches
// an existing one.
type DuplicatePolicy string

const (
	// PolicySkip leaves the existing recipe untouched and persists nothing.
	PolicySkip DuplicatePolicy = "skip"
	// PolicyUpdate overwrites the existing recipe and its ingredient lines.
	PolicyUpdate DuplicatePolicy = "update"
	// PolicyCreate always inserts a new recipe.
	PolicyCreate DuplicatePolicy = "create"
)

// ParseDuplicatePolicy parses a policy name. Empty defaults to skip.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicySkip, nil
	case PolicySkip, PolicyUpdate, PolicyCreate:
		return p, nil
	case "overwrite":
		return PolicyUpdate, nil
	case "new", "keep_both":
		return PolicyCreate, nil
	}
	return "", fmt.Errorf("unknown duplicate policy: %q (use skip, update, or create)", s)
}

// ImportStatus is the outcome of importing one recipe record.
type ImportStatus string

const (
	StatusCreated ImportStatus = "created"
	StatusUpdated ImportStatus = "updated"
	StatusSkipped ImportStatus = "skipped"
	StatusFailed  ImportStatus = "failed"
)

// RecordResult reports the outcome for one record of a source.
type RecordResult struct {
	Index  int          `json:"index"`
	Title  string       `json:"title,omitempty"`
	ID     string       `json:"id,omitempty"`
	Status ImportStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// ImportResult is returned by a completed import. ID is the identifier of the
// last persisted recipe and is empty when nothing was persisted.
type ImportResult struct {
	ID      string         `json:"id,omitempty"`
	Title   string         `json:"title,omitempty"`
	Status  ImportStatus   `json:"status"`
	Format  Format         `json:"format"`
	Backend string         `json:"backend,omitempty"`
	Records []RecordResult `json:"records"`
}

// Counts returns how many records ended in each status.
func (r *ImportResult) Counts() map[ImportStatus]int {
	counts := make(map[ImportStatus]int)
	for _, rec := range r.Records {
		counts[rec.Status]++
	}
	return counts
}
