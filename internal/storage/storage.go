// Package storage defines the persistence interface for recipes.
package storage

import (
	"context"

	"github.com/hyperjump/larder/internal/models"
)

// ListOptions filters and pages ListRecipes.
type ListOptions struct {
	Category string
	Offset   int
	Limit    int
}

// Storage defines recipe persistence operations.
type Storage interface {
	// Upsert writes draft under id, or under a fresh id when id is empty, and
	// returns the id used. The recipe, its ingredients and its tags are
	// written in one transaction.
	Upsert(ctx context.Context, id string, draft *models.RecipeDraft) (string, error)
	// FindIDByTitle looks up a recipe whose title equals title after
	// models.NormalizeTitle on both sides.
	FindIDByTitle(ctx context.Context, title string) (string, bool, error)

	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	ListRecipes(ctx context.Context, opts ListOptions) ([]*models.RecipeSummary, error)
	DeleteRecipe(ctx context.Context, id string) error

	// Stats
	CountRecipes(ctx context.Context) (int64, error)

	Close() error
}
