// Package keyword indexes imported recipes in Bleve for keyword search.
package keyword

import (
	"context"
	"strings"

	"github.com/hyperjump/larder/internal/models"
)

// KeywordIndex defines keyword search operations over recipes.
type KeywordIndex interface {
	Index(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResponse, error)
	DocCount() (uint64, error)
	Close() error
}

// recipeDoc is the indexed form of a recipe. Bleve maps fields by their json names.
type recipeDoc struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	CategoryKey  string `json:"category_key"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	Tags         string `json:"tags"`
	Notes        string `json:"notes"`
}

func newRecipeDoc(r *models.Recipe) recipeDoc {
	names := make([]string, 0, len(r.Ingredients))
	for _, l := range r.Ingredients {
		names = append(names, l.Name)
	}
	return recipeDoc{
		Title:        r.Title,
		Category:     r.Category,
		CategoryKey:  strings.ToLower(strings.TrimSpace(r.Category)),
		Ingredients:  strings.Join(names, "\n"),
		Instructions: strings.Join(r.Instructions, "\n"),
		Tags:         strings.Join(r.Tags, " "),
		Notes:        strings.TrimSpace(models.Deref(r.Description) + "\n" + models.Deref(r.Notes)),
	}
}

// tokenizeQuery splits query into lowercase terms, filtering out empty strings.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
