package dedupe

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/storage"
)

func newStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func draft(title string) *models.RecipeDraft {
	return &models.RecipeDraft{
		Title:        title,
		Category:     "Mains",
		Ingredients:  []models.IngredientLine{{Name: "rice", RawText: "rice"}},
		Instructions: []string{"Cook."},
	}
}

func TestApply_Policies(t *testing.T) {
	tests := []struct {
		policy     models.DuplicatePolicy
		wantAction Action
		wantCount  int64
		sameID     bool
	}{
		{models.PolicySkip, ActionSkip, 1, false},
		{models.PolicyUpdate, ActionUpdate, 1, true},
		{models.PolicyCreate, ActionCreate, 2, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			store := newStore(t)
			r := NewResolver(store)
			ctx := context.Background()

			first, action, err := r.Apply(ctx, draft("Fried Rice"), tt.policy)
			if err != nil || action != ActionCreate || first == "" {
				t.Fatalf("first Apply = %q, %q, %v", first, action, err)
			}

			id, action, err := r.Apply(ctx, draft("  fried   RICE "), tt.policy)
			if err != nil {
				t.Fatal(err)
			}
			if action != tt.wantAction {
				t.Errorf("action = %q, want %q", action, tt.wantAction)
			}
			if tt.wantAction == ActionSkip && id != "" {
				t.Errorf("skip returned id %q", id)
			}
			if tt.sameID && id != first {
				t.Errorf("update id = %q, want %q", id, first)
			}
			if tt.wantAction == ActionCreate && id == first {
				t.Error("create reused the existing id")
			}
			if n, _ := store.CountRecipes(ctx); n != tt.wantCount {
				t.Errorf("CountRecipes = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestApply_UpdateOverwrites(t *testing.T) {
	store := newStore(t)
	r := NewResolver(store)
	ctx := context.Background()

	id, _, err := r.Apply(ctx, draft("Pho"), models.PolicySkip)
	if err != nil {
		t.Fatal(err)
	}
	d := draft("Pho")
	d.Ingredients = []models.IngredientLine{{Name: "beef", RawText: "beef"}, {Name: "noodles", RawText: "noodles"}}
	if _, _, err := r.Apply(ctx, d, models.PolicyUpdate); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetRecipe(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Ingredients) != 2 || got.Ingredients[0].Name != "beef" {
		t.Errorf("ingredients = %+v", got.Ingredients)
	}
}

func TestApply_ConcurrentSameTitle(t *testing.T) {
	store := newStore(t)
	r := NewResolver(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := r.Apply(ctx, draft("Jollof Rice"), models.PolicySkip); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if n, _ := store.CountRecipes(ctx); n != 1 {
		t.Errorf("CountRecipes = %d, want 1", n)
	}
}

func TestResolve_NoMatchCreates(t *testing.T) {
	r := NewResolver(newStore(t))
	for _, p := range []models.DuplicatePolicy{models.PolicySkip, models.PolicyUpdate, models.PolicyCreate} {
		d, err := r.Resolve(context.Background(), draft("Bibimbap"), p)
		if err != nil || d.Action != ActionCreate || d.ExistingID != "" {
			t.Errorf("Resolve(%s) = %+v, %v", p, d, err)
		}
	}
}

type failingStore struct{}

func (failingStore) FindIDByTitle(context.Context, string) (string, bool, error) {
	return "", false, fmt.Errorf("database is locked")
}
func (failingStore) Upsert(context.Context, string, *models.RecipeDraft) (string, error) {
	return "", fmt.Errorf("database is locked")
}

func TestApply_PersistenceError(t *testing.T) {
	r := NewResolver(failingStore{})
	_, _, err := r.Apply(context.Background(), draft("Laksa"), models.PolicySkip)
	if !errors.Is(err, errors.ErrPersistence) {
		t.Errorf("want Persistence, got %v", err)
	}
	_, _, err = r.Apply(context.Background(), draft("Laksa"), models.PolicyCreate)
	if !errors.Is(err, errors.ErrPersistence) {
		t.Errorf("want Persistence, got %v", err)
	}
}
