// Package models defines core data structures for recipes, field bags, and import results.
package models

import (
	"strings"
	"time"
)

// DefaultTitle is used when no title could be resolved from a source.
const DefaultTitle = "Imported Recipe"

// IngredientLine is one ingredient entry, split into quantity, unit, and name
// where possible. RawText always holds the line as it appeared in the source.
type IngredientLine struct {
	Quantity *string `json:"quantity,omitempty"`
	Unit     *string `json:"unit,omitempty"`
	Name     string  `json:"name"`
	RawText  string  `json:"raw_text"`
}

// RecipeDraft is the validated, canonical recipe ready to be persisted.
type RecipeDraft struct {
	Title        string           `json:"title"`
	Category     string           `json:"category"`
	Type         *string          `json:"type,omitempty"`
	Servings     *int             `json:"servings,omitempty"`
	PrepTime     *string          `json:"prep_time,omitempty"`
	CookTime     *string          `json:"cook_time,omitempty"`
	TotalTime    *string          `json:"total_time,omitempty"`
	Difficulty   *string          `json:"difficulty,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	Source       *string          `json:"source,omitempty"`
	URL          *string          `json:"url,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
	Ingredients  []IngredientLine `json:"ingredients"`
	Instructions []string         `json:"instructions"`
}

// Recipe is a persisted recipe.
type Recipe struct {
	ID string `json:"id"`
	RecipeDraft
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	IngredientCount int       `json:"ingredient_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NormalizeTitle returns the key used for duplicate matching: lowercased,
// trimmed, with internal whitespace collapsed to single spaces.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// StringPtr returns a pointer to s, or nil when s is empty after trimming.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the value of p, or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
