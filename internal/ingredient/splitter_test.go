package ingredient

import (
	"testing"

	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/vocab"
)

func ptr(s string) *string { return &s }

func eq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestSplit(t *testing.T) {
	s := NewSplitter(vocab.Default())
	tests := []struct {
		raw  string
		want models.IngredientLine
	}{
		{"2 cups gluten-free flour", models.IngredientLine{Quantity: ptr("2"), Unit: ptr("cups"), Name: "gluten-free flour"}},
		{"salt", models.IngredientLine{Name: "salt"}},
		{"1 1/2 cups milk", models.IngredientLine{Quantity: ptr("1 1/2"), Unit: ptr("cups"), Name: "milk"}},
		{"- 200g sugar", models.IngredientLine{Quantity: ptr("200"), Unit: ptr("g"), Name: "sugar"}},
		{"3 eggs", models.IngredientLine{Quantity: ptr("3"), Name: "eggs"}},
		{"2 large eggs", models.IngredientLine{Quantity: ptr("2"), Name: "large eggs"}},
		{"½ tsp. vanilla", models.IngredientLine{Quantity: ptr("½"), Unit: ptr("tsp"), Name: "vanilla"}},
		{"2-3 cloves garlic", models.IngredientLine{Quantity: ptr("2-3"), Unit: ptr("cloves"), Name: "garlic"}},
		{"1 cup of rice", models.IngredientLine{Quantity: ptr("1"), Unit: ptr("cup"), Name: "rice"}},
		{"• Salt and pepper to taste", models.IngredientLine{Name: "Salt and pepper to taste"}},
		{"2 cups", models.IngredientLine{Name: "2 cups"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := s.Split(tt.raw)
			if !eq(got.Quantity, tt.want.Quantity) {
				t.Errorf("quantity = %v, want %v", deref(got.Quantity), deref(tt.want.Quantity))
			}
			if !eq(got.Unit, tt.want.Unit) {
				t.Errorf("unit = %v, want %v", deref(got.Unit), deref(tt.want.Unit))
			}
			if got.Name != tt.want.Name {
				t.Errorf("name = %q, want %q", got.Name, tt.want.Name)
			}
			if got.RawText != tt.raw {
				t.Errorf("raw = %q, want %q", got.RawText, tt.raw)
			}
		})
	}
}

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestSplitAll_PreservesOrder(t *testing.T) {
	s := NewSplitter(vocab.Default())
	lines := s.SplitAll([]string{"1 cup flour", "", "2 eggs", "milk"})
	if len(lines) != 3 {
		t.Fatalf("len = %d, want 3", len(lines))
	}
	if lines[0].Name != "flour" || lines[1].Name != "eggs" || lines[2].Name != "milk" {
		t.Errorf("got %+v", lines)
	}
}

func TestLooksLikeIngredient(t *testing.T) {
	s := NewSplitter(vocab.Default())
	tests := []struct {
		line string
		want bool
	}{
		{"2 cups flour", true},
		{"* 100 ml cream", true},
		{"1 tbsp. oil", true},
		{"3 eggs", false},
		{"Preheat the oven to 180 C", false},
		{"Serves 4", false},
	}
	for _, tt := range tests {
		if got := s.LooksLikeIngredient(tt.line); got != tt.want {
			t.Errorf("LooksLikeIngredient(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestSplit_CustomVocabulary(t *testing.T) {
	v, err := vocab.New(vocab.Tables{Units: []string{"el"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := NewSplitter(v)
	got := s.Split("2 EL Öl")
	if got.Unit == nil || *got.Unit != "EL" || got.Name != "Öl" {
		t.Errorf("got %+v", got)
	}
	got = s.Split("2 cups flour")
	if got.Unit != nil || got.Name != "cups flour" {
		t.Errorf("cups should not be a unit here: %+v", got)
	}
}
